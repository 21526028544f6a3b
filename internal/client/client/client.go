package client

import (
	"context"

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
)

// Client is the read-only view of the remote character API.
type Client interface {
	// List returns one page of characters matching filters (nil means none).
	List(ctx context.Context, filters *models.Filters) (*models.Page, error)

	// GetByID returns a single character.
	GetByID(ctx context.Context, id int) (*models.Character, error)
}
