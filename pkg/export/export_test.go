package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Curriculum",
		Headers: []string{"code", "name"},
		Rows: []map[string]string{
			{"code": "MATH", "name": "Mathematics"},
			{"code": "CS", "name": "Computer Science"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "code,name\nMATH,Mathematics\nCS,Computer Science\n", string(out))
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(xlsxSheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", v)
}

func TestRenderRequiresHeaders(t *testing.T) {
	for _, r := range []Renderer{NewCSVExporter(), NewPDFExporter(), NewXLSXExporter()} {
		_, err := r.Render(Dataset{})
		assert.Error(t, err, r.Extension())
	}
}
