// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Paginate computes the slice bounds of a 1-based page over total items.
// A page past the end yields start == end; CurrentPage is clamped to
// [1, max(1, TotalPages)]. Sizes below 1 are treated as 1.
func Paginate(total, page, size int) (start, end int, p Pagination) {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	pages := (total + size - 1) / size
	p = Pagination{
		CurrentPage: min(page, max(1, pages)),
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       size,
	}

	start = min((page-1)*size, total)
	end = min(start+size, total)
	return start, end, p
}
