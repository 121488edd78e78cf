package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/rpattn/propertyapi/internal/domain"
)

// memoryPropertyRepository keeps properties in process memory.
type memoryPropertyRepository struct {
	mu     sync.RWMutex
	rows   map[int64]domain.Property
	nextID int64
}

// NewMemoryPropertyRepository creates an empty in-memory property repository.
func NewMemoryPropertyRepository() PropertyRepository {
	return &memoryPropertyRepository{
		rows:   make(map[int64]domain.Property),
		nextID: 1,
	}
}

func (r *memoryPropertyRepository) Create(ctx context.Context, property domain.Property) (domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return domain.Property{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(property), nil
}

func (r *memoryPropertyRepository) CreateBatch(ctx context.Context, properties []domain.Property) ([]domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	created := make([]domain.Property, 0, len(properties))
	for _, property := range properties {
		created = append(created, r.insertLocked(property))
	}
	return created, nil
}

func (r *memoryPropertyRepository) insertLocked(property domain.Property) domain.Property {
	property.ID = r.nextID
	r.nextID++
	r.rows[property.ID] = property
	return property
}

func (r *memoryPropertyRepository) GetByID(ctx context.Context, id int64) (domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return domain.Property{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	property, ok := r.rows[id]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return property, nil
}

func (r *memoryPropertyRepository) List(
	ctx context.Context,
	filter domain.PropertyFilter,
	page domain.PageRequest,
) ([]domain.Property, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if _, ok := propertyColumnNames[page.Sort.Field]; !ok {
		return nil, 0, domain.NewQueryError("No property '%s' found for type 'Property'", page.Sort.Field)
	}

	predicates := filter.Predicates()

	r.mu.RLock()
	matches := make([]domain.Property, 0, len(r.rows))
	for _, property := range r.rows {
		if domain.MatchesAll(predicates, property) {
			matches = append(matches, property)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, page.Sort.Compare)

	total := int64(len(matches))
	offset := page.Offset()
	if offset >= total {
		return []domain.Property{}, total, nil
	}
	end := min(offset+int64(page.Size), total)

	return matches[offset:end], total, nil
}

func (r *memoryPropertyRepository) Update(ctx context.Context, property domain.Property) (domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return domain.Property{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[property.ID]; !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	r.rows[property.ID] = property
	return property, nil
}

func (r *memoryPropertyRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryPropertyRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
