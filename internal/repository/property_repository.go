package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rpattn/propertyapi/internal/db"
	"github.com/rpattn/propertyapi/internal/domain"
)

// propertyRepository implements PropertyRepository on postgres
type propertyRepository struct {
	conn *db.Connection
}

// NewPropertyRepository creates a new postgres backed property repository
func NewPropertyRepository(conn *db.Connection) PropertyRepository {
	return &propertyRepository{conn: conn}
}

const insertPropertySQL = `INSERT INTO properties (address, price, size, description)
VALUES ($1, $2, $3, $4)
RETURNING ` + propertyColumns

// Create inserts a property and returns it with its generated id
func (r *propertyRepository) Create(ctx context.Context, property domain.Property) (domain.Property, error) {
	created, err := insertProperty(ctx, r.conn.Pool, property)
	if err != nil {
		return domain.Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	return created, nil
}

// CreateBatch inserts every property in a single transaction
func (r *propertyRepository) CreateBatch(ctx context.Context, properties []domain.Property) ([]domain.Property, error) {
	if len(properties) == 0 {
		return []domain.Property{}, nil
	}

	created := make([]domain.Property, 0, len(properties))
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, property := range properties {
			batch.Queue(insertPropertySQL, property.Address, property.Price, property.Size, descriptionParam(property.Description))
		}

		results := tx.SendBatch(ctx, batch)
		for range properties {
			row, err := scanProperty(results.QueryRow())
			if err != nil {
				_ = results.Close()
				return err
			}
			created = append(created, row)
		}
		return results.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create property batch: %w", err)
	}

	return created, nil
}

// GetByID retrieves a property by id
func (r *propertyRepository) GetByID(ctx context.Context, id int64) (domain.Property, error) {
	row := r.conn.Pool.QueryRow(ctx, "SELECT "+propertyColumns+" FROM properties WHERE id = $1", id)
	property, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, fmt.Errorf("failed to get property: %w", err)
	}
	return property, nil
}

// List retrieves one page of properties matching the filter, plus the total
// number of matches
func (r *propertyRepository) List(
	ctx context.Context,
	filter domain.PropertyFilter,
	page domain.PageRequest,
) ([]domain.Property, int64, error) {
	listQuery, countQuery, err := buildListQueries(filter, page)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.conn.Pool.QueryRow(ctx, countQuery.SQL, countQuery.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}
	if total == 0 || page.Offset() >= total {
		return []domain.Property{}, total, nil
	}

	rows, err := r.conn.Pool.Query(ctx, listQuery.SQL, listQuery.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list properties: %w", err)
	}
	properties, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Property, error) {
		return scanProperty(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan properties: %w", err)
	}

	return properties, total, nil
}

// Update overwrites the mutable fields of a stored property
func (r *propertyRepository) Update(ctx context.Context, property domain.Property) (domain.Property, error) {
	row := r.conn.Pool.QueryRow(ctx, `UPDATE properties
SET address = $2, price = $3, size = $4, description = $5
WHERE id = $1
RETURNING `+propertyColumns,
		property.ID, property.Address, property.Price, property.Size, descriptionParam(property.Description),
	)
	updated, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, fmt.Errorf("failed to update property: %w", err)
	}
	return updated, nil
}

// Delete removes a property permanently
func (r *propertyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn.Pool.Exec(ctx, "DELETE FROM properties WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks the database connection
func (r *propertyRepository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

func insertProperty(ctx context.Context, q db.DBTX, property domain.Property) (domain.Property, error) {
	row := q.QueryRow(ctx, insertPropertySQL, property.Address, property.Price, property.Size, descriptionParam(property.Description))
	return scanProperty(row)
}

func descriptionParam(description string) pgtype.Text {
	return pgtype.Text{String: description, Valid: true}
}

func scanProperty(row pgx.Row) (domain.Property, error) {
	var (
		property    domain.Property
		description pgtype.Text
	)
	if err := row.Scan(&property.ID, &property.Address, &property.Price, &property.Size, &description); err != nil {
		return domain.Property{}, err
	}
	property.Description = description.String
	return property, nil
}
