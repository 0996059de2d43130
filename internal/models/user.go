package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one the API recognises.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Principal is the authenticated caller. Handlers resolve it from the request
// and pass it to services explicitly.
type Principal struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	SubjectID string   `json:"subject_id,omitempty"`
}

// IsAdmin reports whether the caller has administrative rights.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasRole reports whether the caller holds any of the given roles.
func (p Principal) HasRole(roles ...UserRole) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination normalises page inputs the same way repositories clamp them.
func NewPagination(page, size, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}
