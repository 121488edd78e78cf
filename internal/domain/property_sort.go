package domain

import (
	"cmp"
	"strings"
)

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// ParseSortDirection maps a request value to a direction. Only "desc" (in any
// case) sorts descending; everything else sorts ascending.
func ParseSortDirection(raw string) SortDirection {
	if strings.EqualFold(raw, string(SortDirectionDesc)) {
		return SortDirectionDesc
	}
	return SortDirectionAsc
}

var sortableFields = map[PropertyField]struct{}{
	PropertyFieldID:          {},
	PropertyFieldAddress:     {},
	PropertyFieldPrice:       {},
	PropertyFieldSize:        {},
	PropertyFieldDescription: {},
}

// ParsePropertySortField resolves a sort field name. An empty name selects id.
func ParsePropertySortField(raw string) (PropertyField, error) {
	if raw == "" {
		return PropertyFieldID, nil
	}
	field := PropertyField(raw)
	if _, ok := sortableFields[field]; !ok {
		return "", NewQueryError("No property '%s' found for type 'Property'", raw)
	}
	return field, nil
}

// PropertySort captures ordering preferences for property listings.
type PropertySort struct {
	Field     PropertyField
	Direction SortDirection
}

// DefaultPropertySort orders by id ascending.
func DefaultPropertySort() PropertySort {
	return PropertySort{Field: PropertyFieldID, Direction: SortDirectionAsc}
}

// Compare orders two properties by the sort field and direction, falling back
// to ascending id so that pages are stable.
func (s PropertySort) Compare(a, b Property) int {
	var result int
	switch s.Field {
	case PropertyFieldAddress:
		result = strings.Compare(a.Address, b.Address)
	case PropertyFieldPrice:
		result = cmp.Compare(a.Price, b.Price)
	case PropertyFieldSize:
		result = cmp.Compare(a.Size, b.Size)
	case PropertyFieldDescription:
		result = strings.Compare(a.Description, b.Description)
	default:
		result = cmp.Compare(a.ID, b.ID)
	}
	if s.Direction == SortDirectionDesc {
		result = -result
	}
	if result == 0 && s.Field != PropertyFieldID {
		return cmp.Compare(a.ID, b.ID)
	}
	return result
}
