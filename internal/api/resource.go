package api

import (
	"context"
	"fmt"
)

// Resource is a CRUD collection rooted at path. Req is the request body type
// and Resp the response type.
type Resource[Req any, Resp any] struct {
	client *Client
	path   string
}

// NewResource returns a Resource for path (e.g. "/tasks").
func NewResource[Req any, Resp any](c *Client, path string) Resource[Req, Resp] {
	return Resource[Req, Resp]{client: c, path: path}
}

// Path returns the collection path.
func (r Resource[Req, Resp]) Path() string { return r.path }

// List fetches every item in the collection.
func (r Resource[Req, Resp]) List(ctx context.Context) ([]Resp, error) {
	var out []Resp
	if err := r.client.Get(ctx, r.path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts body and returns the created item.
func (r Resource[Req, Resp]) Create(ctx context.Context, body Req) (Resp, error) {
	var out Resp
	err := r.client.Post(ctx, r.path, body, &out)
	return out, err
}

// Update replaces the item with the given id.
func (r Resource[Req, Resp]) Update(ctx context.Context, id int64, body Req) (Resp, error) {
	var out Resp
	err := r.client.Put(ctx, r.itemPath(id), body, &out)
	return out, err
}

// Delete removes the item with the given id.
func (r Resource[Req, Resp]) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, r.itemPath(id))
}

func (r Resource[Req, Resp]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}
