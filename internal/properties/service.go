package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rpattn/propertyapi/internal/domain"
	"github.com/rpattn/propertyapi/internal/logger"
	"github.com/rpattn/propertyapi/internal/repository"
)

// ListQuery carries the raw listing request: filter criteria, pagination and
// the requested sort.
type ListQuery struct {
	Filter    domain.PropertyFilter
	Page      int
	Size      int
	SortBy    string
	Direction string
}

// DefaultListQuery returns page 0 of 10 rows sorted by id ascending.
func DefaultListQuery() ListQuery {
	return ListQuery{
		Page:      domain.DefaultPageNumber,
		Size:      domain.DefaultPageSize,
		SortBy:    string(domain.PropertyFieldID),
		Direction: string(domain.SortDirectionAsc),
	}
}

// PageRequest resolves the sort and pagination of the query.
func (q ListQuery) PageRequest() (domain.PageRequest, error) {
	field, err := domain.ParsePropertySortField(q.SortBy)
	if err != nil {
		return domain.PageRequest{}, err
	}
	sort := domain.PropertySort{Field: field, Direction: domain.ParseSortDirection(q.Direction)}
	return domain.NewPageRequest(q.Page, q.Size, sort)
}

// Service implements the property operations on top of a repository.
type Service struct {
	repo repository.PropertyRepository
	log  *logrus.Entry
}

// NewService creates a property service.
func NewService(repo repository.PropertyRepository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Log.WithField("component", "properties"),
	}
}

// Create validates and stores a new property. Any id supplied by the caller
// is discarded.
func (s *Service) Create(ctx context.Context, property domain.Property) (domain.Property, error) {
	property = property.WithoutID()
	if err := domain.ValidateProperty(property); err != nil {
		return domain.Property{}, err
	}

	created, err := s.repo.Create(ctx, property)
	if err != nil {
		return domain.Property{}, err
	}

	s.log.WithField("id", created.ID).Info("Property created")
	return created, nil
}

// CreateBatch validates and stores several properties at once. Nothing is
// stored when any of them is invalid.
func (s *Service) CreateBatch(ctx context.Context, properties []domain.Property) ([]domain.Property, error) {
	pending := make([]domain.Property, len(properties))
	for i, property := range properties {
		pending[i] = property.WithoutID()
		if err := domain.ValidateProperty(pending[i]); err != nil {
			return nil, fmt.Errorf("property %d: %w", i, err)
		}
	}

	created, err := s.repo.CreateBatch(ctx, pending)
	if err != nil {
		return nil, err
	}

	s.log.WithField("count", len(created)).Info("Properties created")
	return created, nil
}

// List returns one page of properties matching the query.
func (s *Service) List(ctx context.Context, query ListQuery) (domain.Page[domain.Property], error) {
	pageRequest, err := query.PageRequest()
	if err != nil {
		return domain.Page[domain.Property]{}, err
	}

	rows, total, err := s.repo.List(ctx, query.Filter, pageRequest)
	if err != nil {
		return domain.Page[domain.Property]{}, err
	}

	return domain.NewPage(rows, total, pageRequest), nil
}

// Get returns the property with the id. The boolean is false when it does not
// exist.
func (s *Service) Get(ctx context.Context, id int64) (domain.Property, bool, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Property{}, false, nil
		}
		return domain.Property{}, false, err
	}
	return property, true, nil
}

// Update overwrites address, price, size and description of an existing
// property. A missing id yields domain.ErrNotFound from the store.
func (s *Service) Update(ctx context.Context, id int64, changes domain.Property) (domain.Property, error) {
	if err := domain.ValidateProperty(changes); err != nil {
		return domain.Property{}, err
	}

	saved, err := s.repo.Update(ctx, domain.Property{ID: id}.WithChanges(changes))
	if err != nil {
		return domain.Property{}, err
	}

	s.log.WithField("id", saved.ID).Info("Property updated")
	return saved, nil
}

// Delete removes a property permanently. A missing id yields
// domain.ErrNotFound from the store.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithField("id", id).Info("Property deleted")
	return nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
