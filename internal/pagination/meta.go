package pagination

// Meta describes where a page sits in the full collection.
type Meta struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
	PerPage     int `json:"per_page"`
}

// pageCount is ceil(count/perPage), 0 for an empty collection.
func pageCount(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}

// lastPage is the highest page a client can land on. An empty collection
// still has page 1.
func lastPage(totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	return totalPages
}
