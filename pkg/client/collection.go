package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// Collection is the HTTP implementation of types.Collection for one entity
// type.
type Collection[E, C, U any] struct {
	client *Client
	name   types.CollectionName
}

// NewCollection returns the collection served under /api/v1/<name.Plural>.
func NewCollection[E, C, U any](c *Client, name types.CollectionName) *Collection[E, C, U] {
	return &Collection[E, C, U]{client: c, name: name}
}

func (c *Collection[E, C, U]) path() string {
	return APIPrefix + "/" + c.name.Plural
}

func (c *Collection[E, C, U]) itemPath(id string) string {
	return c.path() + "/" + url.PathEscape(id)
}

// List retrieves the whole collection in server order.
func (c *Collection[E, C, U]) List(ctx context.Context) ([]E, error) {
	var result types.ListResponse[E]
	if err := c.client.do(ctx, http.MethodGet, c.path(), nil, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []E{}
	}
	return result.Items, nil
}

// Create sends payload to the service. The created entity in the response,
// if any, is discarded.
func (c *Collection[E, C, U]) Create(ctx context.Context, payload C) error {
	return c.client.do(ctx, http.MethodPost, c.path(), payload, nil)
}

// Update sends a partial update for id.
func (c *Collection[E, C, U]) Update(ctx context.Context, id string, payload U) error {
	if id == "" {
		return fmt.Errorf("%w: empty %s id", types.ErrInvalidID, c.name.Singular)
	}
	return c.client.do(ctx, http.MethodPatch, c.itemPath(id), payload, nil)
}

// Delete removes id.
func (c *Collection[E, C, U]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty %s id", types.ErrInvalidID, c.name.Singular)
	}
	return c.client.do(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
}
