package core

import (
	"slices"
	"strings"
)

// Normalize fills in default paging values. Non-positive page or limit
// fall back to DefaultPage and DefaultLimit.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

// Match reports whether r satisfies the search term and all status filters.
func (f Filter) Match(r Registration) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(r.FullName), q) &&
			!strings.Contains(strings.ToLower(r.Email), q) &&
			!strings.Contains(strings.ToLower(r.Phone), q) {
			return false
		}
	}
	if f.DemoStatus != "" && string(r.DemoStatus) != f.DemoStatus {
		return false
	}
	if f.EnrollmentStatus != "" && string(r.EnrollmentStatus) != f.EnrollmentStatus {
		return false
	}
	if f.PaymentStatus != "" && string(r.PaymentStatus) != f.PaymentStatus {
		return false
	}
	return true
}

// SortNewestFirst orders records by registration date, most recent first.
// The sort is stable so records with equal dates keep insertion order.
// The input slice is not modified.
func SortNewestFirst(records []Registration) []Registration {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Registration) int {
		return b.RegistrationDate.Compare(a.RegistrationDate)
	})
	return out
}

// Select returns every record matching f, newest first, without paging.
func Select(records []Registration, f Filter) []Registration {
	matched := make([]Registration, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			matched = append(matched, r)
		}
	}
	return SortNewestFirst(matched)
}

// Query filters, orders and paginates records. Pages past the end yield an
// empty slice; the pagination block always carries the pre-paging total.
func Query(records []Registration, f Filter) Page {
	f = f.Normalize()
	matched := Select(records, f)
	total := len(matched)

	// page and limit may be up to MaxInt; multiply only once the page
	// is known to start inside the result.
	pages := total / f.Limit
	if total%f.Limit != 0 {
		pages++
	}
	start, end := total, total
	if f.Page-1 < pages {
		start = (f.Page - 1) * f.Limit
		end = start + min(f.Limit, total-start)
	}

	return Page{
		Records: matched[start:end:end],
		Pagination: Pagination{
			Total: total,
			Page:  f.Page,
			Limit: f.Limit,
			Pages: pages,
		},
	}
}
