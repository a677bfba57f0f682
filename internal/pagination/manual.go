package pagination

// ManualStrategy computes the window directly from the request arithmetic.
type ManualStrategy struct{}

// Name implements Strategy.
func (ManualStrategy) Name() string { return StrategyManual }

// Plan implements Strategy.
func (ManualStrategy) Plan(req Request, totalCount int) Plan {
	perPage := req.PerPage
	if perPage < 1 {
		perPage = DefaultSettings().PerPage
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	totalPages := pageCount(totalCount, perPage)
	last := lastPage(totalPages)

	plan := Plan{
		Meta: Meta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  totalCount,
			PerPage:     perPage,
		},
	}

	if page > last {
		plan.Overflow = true
		plan.Meta.CurrentPage = last
		return plan
	}

	plan.Offset = (page - 1) * perPage
	plan.Limit = perPage
	return plan
}
