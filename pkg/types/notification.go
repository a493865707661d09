package types

import (
	"fmt"
	"strings"
	"time"
)

// Notification kinds.
const (
	NotificationPackage      = "package"
	NotificationAnnouncement = "announcement"
	NotificationSocial       = "social"
	NotificationMaintenance  = "maintenance"
)

var validNotificationKinds = map[string]bool{
	NotificationPackage:      true,
	NotificationAnnouncement: true,
	NotificationSocial:       true,
	NotificationMaintenance:  true,
}

// Notification is a message addressed to one resident, or to everyone when
// ResidentID is empty.
type Notification struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ResidentID string    `json:"resident_id,omitempty"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	Read       bool      `json:"read"`
}

// EntityID returns the server-assigned identifier.
func (n Notification) EntityID() string { return n.ID }

// CreateNotificationRequest is the payload for sending a notification.
type CreateNotificationRequest struct {
	ResidentID string `json:"resident_id,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
}

// New builds an unread Notification. Kind defaults to "announcement".
func (req CreateNotificationRequest) New(id string, createdAt time.Time) (Notification, error) {
	n := Notification{
		ID:         id,
		CreatedAt:  createdAt,
		ResidentID: strings.TrimSpace(req.ResidentID),
		Kind:       req.Kind,
		Title:      strings.TrimSpace(req.Title),
		Body:       strings.TrimSpace(req.Body),
	}
	if n.Kind == "" {
		n.Kind = NotificationAnnouncement
	}
	return n, n.validate()
}

// UpdateNotificationRequest is a partial update; nil fields are left unchanged.
type UpdateNotificationRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
	Read  *bool   `json:"read,omitempty"`
}

// ApplyTo copies the non-nil fields onto n and validates the result.
func (req UpdateNotificationRequest) ApplyTo(n *Notification) error {
	next := *n
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		next.Body = strings.TrimSpace(*req.Body)
	}
	if req.Read != nil {
		next.Read = *req.Read
	}
	if err := next.validate(); err != nil {
		return err
	}
	*n = next
	return nil
}

func (n Notification) validate() error {
	if n.Title == "" {
		return fmt.Errorf("%w: notification title is required", ErrInvalidData)
	}
	if !validNotificationKinds[n.Kind] {
		return fmt.Errorf("%w: unknown notification kind %q", ErrInvalidData, n.Kind)
	}
	return nil
}
