package ports

import (
	"context"

	"go.trai.ch/notekeep/internal/core/domain"
)

// CatalogProvider serves the queryable view of a cache file.
//
//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks
type CatalogProvider interface {
	// RefreshIfStale returns the current catalog, reloading it first when the
	// underlying file changed since the previous load.
	RefreshIfStale(ctx context.Context) (*domain.Catalog, error)
}
