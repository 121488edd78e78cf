package repository

import (
	"context"

	"github.com/rpattn/propertyapi/internal/domain"
)

// PropertyRepository defines the storage port for properties.
// Lookups of a missing id return domain.ErrNotFound.
type PropertyRepository interface {
	Create(ctx context.Context, property domain.Property) (domain.Property, error)
	CreateBatch(ctx context.Context, properties []domain.Property) ([]domain.Property, error)
	GetByID(ctx context.Context, id int64) (domain.Property, error)
	List(ctx context.Context, filter domain.PropertyFilter, page domain.PageRequest) ([]domain.Property, int64, error)
	Update(ctx context.Context, property domain.Property) (domain.Property, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
