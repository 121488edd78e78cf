package domain

// Property is a real-estate listing record.
type Property struct {
	ID          int64   `json:"id"`
	Address     string  `json:"address" validate:"notblank"`
	Price       float64 `json:"price" validate:"finite,gt=0"`
	Size        float64 `json:"size" validate:"finite,gt=0"`
	Description string  `json:"description" validate:"max=1000"`
}

// NewProperty creates a property that has not been persisted yet.
func NewProperty(address string, price, size float64, description string) Property {
	return Property{
		Address:     address,
		Price:       price,
		Size:        size,
		Description: description,
	}
}

// WithoutID returns a copy of the property with the identifier cleared, so the
// store assigns a fresh one.
func (p Property) WithoutID() Property {
	p.ID = 0
	return p
}

// WithChanges returns a copy of the property with every mutable field taken
// from changes. The identifier is kept.
func (p Property) WithChanges(changes Property) Property {
	return Property{
		ID:          p.ID,
		Address:     changes.Address,
		Price:       changes.Price,
		Size:        changes.Size,
		Description: changes.Description,
	}
}
