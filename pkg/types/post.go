package types

import (
	"fmt"
	"strings"
	"time"
)

// MaxPostLength bounds the body of a social post, in bytes.
const MaxPostLength = 4000

// Post is an entry in the building's social feed.
type Post struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url,omitempty"`
	Likes     int       `json:"likes"`
}

// EntityID returns the server-assigned identifier.
func (p Post) EntityID() string { return p.ID }

// CreatePostRequest is the payload for publishing a post.
type CreatePostRequest struct {
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url,omitempty"`
}

// New builds a Post with no likes.
func (req CreatePostRequest) New(id string, createdAt time.Time) (Post, error) {
	p := Post{
		ID:        id,
		CreatedAt: createdAt,
		AuthorID:  strings.TrimSpace(req.AuthorID),
		Body:      strings.TrimSpace(req.Body),
		ImageURL:  strings.TrimSpace(req.ImageURL),
	}
	if p.AuthorID == "" {
		return Post{}, fmt.Errorf("%w: post author is required", ErrInvalidData)
	}
	return p, p.validate()
}

// UpdatePostRequest is a partial update; nil fields are left unchanged.
type UpdatePostRequest struct {
	Body     *string `json:"body,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Likes    *int    `json:"likes,omitempty"`
}

// ApplyTo copies the non-nil fields onto p and validates the result.
func (req UpdatePostRequest) ApplyTo(p *Post) error {
	next := *p
	if req.Body != nil {
		next.Body = strings.TrimSpace(*req.Body)
	}
	if req.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Likes != nil {
		next.Likes = *req.Likes
	}
	if err := next.validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p Post) validate() error {
	if p.Body == "" {
		return fmt.Errorf("%w: post body is required", ErrInvalidData)
	}
	if len(p.Body) > MaxPostLength {
		return fmt.Errorf("%w: post body exceeds %d bytes", ErrInvalidData, MaxPostLength)
	}
	if p.Likes < 0 {
		return fmt.Errorf("%w: likes must not be negative", ErrInvalidData)
	}
	return nil
}
