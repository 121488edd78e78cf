package properties

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/propertyapi/internal/domain"
	"github.com/rpattn/propertyapi/internal/repository"
)

func newTestService() *Service {
	return NewService(repository.NewMemoryPropertyRepository())
}

func TestServiceCreate_IgnoresClientID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	input := domain.Property{ID: 500, Address: "1 Elm St", Price: 250000, Size: 120, Description: "corner lot"}
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)

	assert.NotEqual(t, int64(500), created.ID)
	assert.Equal(t, input.WithoutID(), created.WithoutID())

	stored, found, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created, stored)
}

func TestServiceCreate_RejectsInvalidProperty(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), domain.Property{Address: "", Price: 10, Size: 0})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Fields, 2)

	page, err := svc.List(context.Background(), DefaultListQuery())
	require.NoError(t, err)
	assert.Zero(t, page.TotalElements)
}

func TestServiceGet_MissingIsNotAnError(t *testing.T) {
	_, found, err := newTestService().Get(context.Background(), 12)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestServiceUpdateAndDelete_NotFound(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, 3, domain.NewProperty("x", 1, 1, ""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 3), domain.ErrNotFound)
}

func TestServiceUpdate_OverwritesMutableFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.NewProperty("1 Elm St", 250000, 120, "old"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, domain.Property{ID: 77, Address: "2 Elm St", Price: 260000, Size: 120})
	require.NoError(t, err)
	assert.Equal(t, domain.Property{ID: created.ID, Address: "2 Elm St", Price: 260000, Size: 120}, updated)

	_, err = svc.Update(ctx, created.ID, domain.NewProperty("2 Elm St", -1, 120, ""))
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestServiceCreateBatch_AllOrNothing(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateBatch(ctx, []domain.Property{
		domain.NewProperty("a", 1, 1, ""),
		domain.NewProperty("", 1, 1, ""),
	})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)

	created, err := svc.CreateBatch(ctx, []domain.Property{
		domain.NewProperty("a", 1, 1, ""),
		domain.NewProperty("b", 2, 2, ""),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	page, err := svc.List(ctx, DefaultListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestServiceList_RejectsBadPaginationAndSort(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	query := DefaultListQuery()
	query.Page = -1
	_, err := svc.List(ctx, query)
	var argErr *domain.InvalidArgumentError
	assert.ErrorAs(t, err, &argErr)

	query = DefaultListQuery()
	query.Size = 0
	_, err = svc.List(ctx, query)
	assert.ErrorAs(t, err, &argErr)

	query = DefaultListQuery()
	query.SortBy = "rooms"
	_, err = svc.List(ctx, query)
	var queryErr *domain.QueryError
	assert.ErrorAs(t, err, &queryErr)
}

type failingRepository struct {
	repository.PropertyRepository
}

func (failingRepository) GetByID(context.Context, int64) (domain.Property, error) {
	return domain.Property{}, errors.New("connection reset")
}

func TestServiceUpdate_WritesWithoutPriorRead(t *testing.T) {
	repo := repository.NewMemoryPropertyRepository()
	created, err := repo.Create(context.Background(), domain.NewProperty("1 Elm St", 100, 10, ""))
	require.NoError(t, err)

	svc := NewService(failingRepository{PropertyRepository: repo})
	updated, err := svc.Update(context.Background(), created.ID, domain.NewProperty("2 Elm St", 120, 10, "renovated"))
	require.NoError(t, err)
	assert.Equal(t, domain.Property{ID: created.ID, Address: "2 Elm St", Price: 120, Size: 10, Description: "renovated"}, updated)

	_, err = svc.Update(context.Background(), created.ID+1, domain.NewProperty("x", 1, 1, ""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceDelete_ReportsMissingFromStore(t *testing.T) {
	repo := repository.NewMemoryPropertyRepository()
	created, err := repo.Create(context.Background(), domain.NewProperty("1 Elm St", 100, 10, ""))
	require.NoError(t, err)

	svc := NewService(failingRepository{PropertyRepository: repo})
	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), domain.ErrNotFound)
}

func TestServiceGet_PropagatesStoreErrors(t *testing.T) {
	svc := NewService(failingRepository{PropertyRepository: repository.NewMemoryPropertyRepository()})

	_, found, err := svc.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.False(t, found)
}
