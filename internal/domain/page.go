package domain

import "math"

const (
	DefaultPageNumber = 0
	DefaultPageSize   = 10
)

// PageRequest describes which slice of a sorted listing to return.
type PageRequest struct {
	Number int
	Size   int
	Sort   PropertySort
}

// NewPageRequest validates pagination input.
func NewPageRequest(number, size int, sort PropertySort) (PageRequest, error) {
	if number < 0 {
		return PageRequest{}, NewInvalidArgumentError("page", "page index must not be less than zero")
	}
	if size < 1 {
		return PageRequest{}, NewInvalidArgumentError("size", "page size must not be less than one")
	}
	if int64(number) > math.MaxInt64/int64(size) {
		return PageRequest{}, NewInvalidArgumentError("page", "page index is out of range")
	}
	if sort.Field == "" {
		sort.Field = PropertyFieldID
	}
	if sort.Direction == "" {
		sort.Direction = SortDirectionAsc
	}
	return PageRequest{Number: number, Size: size, Sort: sort}, nil
}

// Offset is the number of rows skipped before this page.
func (r PageRequest) Offset() int64 {
	return int64(r.Number) * int64(r.Size)
}

// Page is a bounded slice of results plus pagination metadata.
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage assembles a page from the rows of one request and the total number
// of matching rows.
func NewPage[T any](content []T, total int64, req PageRequest) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Number:           req.Number,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Number == 0,
		Last:             req.Number+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}
