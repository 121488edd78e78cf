package domain

import "strings"

// PropertyField names a stored attribute of a property.
type PropertyField string

const (
	PropertyFieldID          PropertyField = "id"
	PropertyFieldAddress     PropertyField = "address"
	PropertyFieldPrice       PropertyField = "price"
	PropertyFieldSize        PropertyField = "size"
	PropertyFieldDescription PropertyField = "description"
)

// PredicateOp is the comparison applied by a predicate.
type PredicateOp string

const (
	// PredicateOpContainsFold matches when the stored text contains the value,
	// ignoring case.
	PredicateOpContainsFold PredicateOp = "contains_ci"
	PredicateOpGreaterEqual PredicateOp = "gte"
	PredicateOpLessEqual    PredicateOp = "lte"
)

// Predicate is a single condition over one property field. Text is used by
// PredicateOpContainsFold, Number by the range operators.
type Predicate struct {
	Field  PropertyField
	Op     PredicateOp
	Text   string
	Number float64
}

// PropertyFilter represents the optional criteria for listing properties.
// A nil bound leaves that axis unconstrained.
type PropertyFilter struct {
	Address  string
	MinPrice *float64
	MaxPrice *float64
	MinSize  *float64
	MaxSize  *float64
}

// Predicates compiles the filter into the conjunction of its present criteria.
// An empty result matches every property.
func (f PropertyFilter) Predicates() []Predicate {
	predicates := make([]Predicate, 0, 5)
	if strings.TrimSpace(f.Address) != "" {
		predicates = append(predicates, Predicate{Field: PropertyFieldAddress, Op: PredicateOpContainsFold, Text: f.Address})
	}
	if f.MinPrice != nil {
		predicates = append(predicates, Predicate{Field: PropertyFieldPrice, Op: PredicateOpGreaterEqual, Number: *f.MinPrice})
	}
	if f.MaxPrice != nil {
		predicates = append(predicates, Predicate{Field: PropertyFieldPrice, Op: PredicateOpLessEqual, Number: *f.MaxPrice})
	}
	if f.MinSize != nil {
		predicates = append(predicates, Predicate{Field: PropertyFieldSize, Op: PredicateOpGreaterEqual, Number: *f.MinSize})
	}
	if f.MaxSize != nil {
		predicates = append(predicates, Predicate{Field: PropertyFieldSize, Op: PredicateOpLessEqual, Number: *f.MaxSize})
	}
	return predicates
}

// Matches evaluates the predicate against a property.
func (p Predicate) Matches(property Property) bool {
	switch p.Op {
	case PredicateOpContainsFold:
		value, ok := textValue(property, p.Field)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(p.Text))
	case PredicateOpGreaterEqual:
		value, ok := numberValue(property, p.Field)
		return ok && value >= p.Number
	case PredicateOpLessEqual:
		value, ok := numberValue(property, p.Field)
		return ok && value <= p.Number
	default:
		return false
	}
}

// MatchesAll reports whether the property satisfies every predicate.
func MatchesAll(predicates []Predicate, property Property) bool {
	for _, predicate := range predicates {
		if !predicate.Matches(property) {
			return false
		}
	}
	return true
}

func textValue(property Property, field PropertyField) (string, bool) {
	switch field {
	case PropertyFieldAddress:
		return property.Address, true
	case PropertyFieldDescription:
		return property.Description, true
	}
	return "", false
}

func numberValue(property Property, field PropertyField) (float64, bool) {
	switch field {
	case PropertyFieldID:
		return float64(property.ID), true
	case PropertyFieldPrice:
		return property.Price, true
	case PropertyFieldSize:
		return property.Size, true
	}
	return 0, false
}
