package utils

const pageSizeDefault = 10
const pageSizeMax = 100

// GetPageParams normalises 1-based page and page size query values.
// Nil or non-positive values fall back to page 1 and the default page size,
// and the page size is capped at a maximum value.
func GetPageParams(page *int, pageSize *int) (int, int) {
	finalPage := 1
	finalSize := pageSizeDefault

	if page != nil && *page > 0 {
		finalPage = *page
	}

	if pageSize != nil && *pageSize > 0 {
		finalSize = min(*pageSize, pageSizeMax)
	}

	return finalPage, finalSize
}
