package types

import (
	"fmt"
	"strings"
	"time"
)

// Package statuses. A package is received at the front desk, the resident is
// notified, and it is eventually picked up or returned to the carrier.
const (
	PackageReceived = "received"
	PackageNotified = "notified"
	PackagePickedUp = "picked_up"
	PackageReturned = "returned"
)

var validPackageStatuses = map[string]bool{
	PackageReceived: true,
	PackageNotified: true,
	PackagePickedUp: true,
	PackageReturned: true,
}

// Package is a parcel held for a resident.
type Package struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	ResidentID     string     `json:"resident_id"`
	Carrier        string     `json:"carrier,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	PickedUpAt     *time.Time `json:"picked_up_at,omitempty"`
}

// EntityID returns the server-assigned identifier.
func (p Package) EntityID() string { return p.ID }

// Terminal reports whether the package has left the building.
func (p Package) Terminal() bool {
	return p.Status == PackagePickedUp || p.Status == PackageReturned
}

// CreatePackageRequest is the payload for logging a newly received package.
type CreatePackageRequest struct {
	ResidentID     string `json:"resident_id"`
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Description    string `json:"description,omitempty"`
}

// New builds a Package in the "received" status.
func (req CreatePackageRequest) New(id string, createdAt time.Time) (Package, error) {
	p := Package{
		ID:             id,
		CreatedAt:      createdAt,
		ResidentID:     strings.TrimSpace(req.ResidentID),
		Carrier:        strings.TrimSpace(req.Carrier),
		TrackingNumber: strings.TrimSpace(req.TrackingNumber),
		Description:    strings.TrimSpace(req.Description),
		Status:         PackageReceived,
	}
	if p.ResidentID == "" {
		return Package{}, fmt.Errorf("%w: package resident is required", ErrInvalidData)
	}
	return p, nil
}

// UpdatePackageRequest is a partial update; nil fields are left unchanged.
type UpdatePackageRequest struct {
	Status      *string `json:"status,omitempty"`
	Carrier     *string `json:"carrier,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ApplyTo copies the non-nil fields onto p. Moving to "picked_up" stamps
// PickedUpAt; a package that has left the building cannot change status.
func (req UpdatePackageRequest) ApplyTo(p *Package) error {
	next := *p
	if req.Carrier != nil {
		next.Carrier = strings.TrimSpace(*req.Carrier)
	}
	if req.Description != nil {
		next.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil && *req.Status != p.Status {
		if !validPackageStatuses[*req.Status] {
			return fmt.Errorf("%w: unknown package status %q", ErrInvalidData, *req.Status)
		}
		if p.Terminal() {
			return fmt.Errorf("%w: package is already %s", ErrConflict, p.Status)
		}
		next.Status = *req.Status
		if next.Status == PackagePickedUp {
			now := time.Now().UTC()
			next.PickedUpAt = &now
		}
	}
	*p = next
	return nil
}
