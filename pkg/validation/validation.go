// Package validation wires go-playground/validator with English messages keyed by JSON field names.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

const (
	dateTag       = "isodate"
	dateText      = "{0} must be a date in YYYY-MM-DD format"
	serialTag     = "serial"
	serialText    = "{0} may only contain letters, digits, dashes and underscores"
	requiredTag   = "required"
	requiredText  = "{0} is required"
	isoDateLayout = "2006-01-02"
)

var serialRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

// New returns the shared validator with translations and custom tags registered.
func New() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, translator)

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation(dateTag, isoDate)
		_ = validate.RegisterValidation(serialTag, func(fl validator.FieldLevel) bool {
			return serialRegex.MatchString(fl.Field().String())
		})
		registerTranslation(dateTag, dateText)
		registerTranslation(serialTag, serialText)
		registerTranslation(requiredTag, requiredText)
	})
	return validate
}

// FieldErrors flattens validator errors into field → message pairs.
// It returns nil when err does not come from the validator.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	New()
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if idx := strings.Index(key, "."); idx >= 0 {
			key = key[idx+1:]
		}
		out[key] = fe.Translate(translator)
	}
	return out
}

func isoDate(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	_, err := time.Parse(isoDateLayout, raw)
	return err == nil
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
