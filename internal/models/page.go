package models

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into the 1-based page of the given size. Pages
// past the end are empty; a non-positive size returns everything on one
// page.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)
	if pageSize <= 0 {
		pageSize = total
	}
	if page < 1 {
		page = 1
	}

	p := Page[T]{
		Items:    []T{},
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	if pageSize == 0 {
		return p
	}
	p.TotalPages = (total + pageSize - 1) / pageSize
	if page > p.TotalPages {
		return p
	}

	start := (page - 1) * pageSize
	if start >= total {
		return p
	}
	end := min(start+pageSize, total)
	p.Items = append(p.Items, items[start:end]...)
	return p
}
