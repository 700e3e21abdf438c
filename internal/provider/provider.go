// Package provider defines the interface for movie metadata providers
// and the OMDb implementation.
package provider

import (
	"context"
	"errors"

	"marquee/internal/media"
)

var (
	// ErrAPI wraps error responses reported by the provider's API.
	ErrAPI = errors.New("api error")

	// ErrInvalidID is returned for IDs that fail validation before any request is made.
	ErrInvalidID = errors.New("invalid id")
)

// Provider is the interface that metadata providers must implement.
type Provider interface {
	// Search returns one page of results for term. An unknown term yields an
	// empty page, not an error.
	Search(ctx context.Context, term string, page int) (*media.SearchPage, error)

	// Details returns full metadata for one title.
	Details(ctx context.Context, id string) (*media.Detail, error)
}
