package types

import (
	"fmt"
	"strings"
	"time"
)

// Resident roles.
const (
	RoleResident = "resident"
	RoleOwner    = "owner"
	RoleStaff    = "staff"
	RoleManager  = "manager"
)

var validRoles = map[string]bool{
	RoleResident: true,
	RoleOwner:    true,
	RoleStaff:    true,
	RoleManager:  true,
}

// Resident is a person living or working in the building.
type Resident struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
}

// EntityID returns the server-assigned identifier.
func (r Resident) EntityID() string { return r.ID }

// CreateResidentRequest is the payload for adding a resident.
type CreateResidentRequest struct {
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// New builds a Resident. Role defaults to "resident".
func (req CreateResidentRequest) New(id string, createdAt time.Time) (Resident, error) {
	r := Resident{
		ID:        id,
		CreatedAt: createdAt,
		Name:      strings.TrimSpace(req.Name),
		Unit:      strings.TrimSpace(req.Unit),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      req.Role,
	}
	if r.Role == "" {
		r.Role = RoleResident
	}
	return r, r.validate()
}

// UpdateResidentRequest is a partial update; nil fields are left unchanged.
type UpdateResidentRequest struct {
	Name  *string `json:"name,omitempty"`
	Unit  *string `json:"unit,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// ApplyTo copies the non-nil fields onto r and validates the result.
func (req UpdateResidentRequest) ApplyTo(r *Resident) error {
	next := *r
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		next.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Email != nil {
		next.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		next.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		next.Role = *req.Role
	}
	if err := next.validate(); err != nil {
		return err
	}
	*r = next
	return nil
}

func (r Resident) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: resident name is required", ErrInvalidData)
	}
	if r.Unit == "" {
		return fmt.Errorf("%w: resident unit is required", ErrInvalidData)
	}
	if !validRoles[r.Role] {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidData, r.Role)
	}
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidData, r.Email)
	}
	return nil
}
