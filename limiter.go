package facet

// pageBounds returns the [start, end) window of page (1-based) over total
// entries with perPage entries per page, clamped to [0, total].
func pageBounds(page, perPage, total int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		return 0, 0
	}
	if total <= 0 {
		return 0, 0
	}
	// pages past the last one are empty; checked first so the
	// multiplication below cannot overflow
	if page-1 > (total-1)/perPage {
		return total, total
	}
	start := (page - 1) * perPage
	if perPage >= total-start {
		return start, total
	}
	return start, start + perPage
}

// paginate returns the entries of page.
func paginate[T any](entries []T, page, perPage int) []T {
	start, end := pageBounds(page, perPage, len(entries))
	return entries[start:end]
}

// sanitize returns v, or def when v is not positive.
func sanitize(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
