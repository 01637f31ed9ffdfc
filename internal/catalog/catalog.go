// Package catalog implements the pure query pipeline over book views:
// filtering, sorting and pagination. It holds no state and performs no I/O,
// so the same pipeline serves the catalog, rental history and content lists.
package catalog

import (
	"sort"
	"strings"

	"booklend/internal/model"
)

// Page size sets per list surface. An invalid requested size falls back to
// the surface default (the first entry).
var (
	PageSizesCatalog = []int{12, 24, 48, 100}
	PageSizesRentals = []int{5, 10, 20, 50}
	PageSizesContent = []int{10, 30, 50}
)

// Query describes one catalog request. Zero values mean "no constraint"
// except Page/PerPage, which are normalized by Apply.
type Query struct {
	Category     string
	Status       string
	Text         string
	FavoriteOnly bool
	Sort         string
	Column       string
	ColumnDesc   bool
	Page         int
	PerPage      int
}

// Page is one page of query results.
type Page struct {
	Items      []model.BookView `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"perPage"`
	TotalPages int              `json:"totalPages"`
}

// Column sort fields for the list/table view.
const (
	ColumnStatus          = "status"
	ColumnTitle           = "title"
	ColumnAuthor          = "author"
	ColumnCategory        = "category"
	ColumnLocation        = "location"
	ColumnRecommendations = "recommendations"
	ColumnBorrowed        = "borrowed"
	ColumnRating          = "rating"
)

// Apply runs filter, sort and pagination in order.
func Apply(views []model.BookView, q Query, sizes []int) Page {
	matched := Filter(views, q)
	if q.Column != "" {
		SortColumn(matched, q.Column, q.ColumnDesc)
	} else {
		Sort(matched, q.Sort)
	}
	return Paginate(matched, q.Page, NormalizeSize(q.PerPage, sizes))
}

// Filter keeps the views matching every active clause (AND-combined).
func Filter(views []model.BookView, q Query) []model.BookView {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]model.BookView, 0, len(views))
	for _, v := range views {
		if !matchCategory(v, q.Category) {
			continue
		}
		if !matchStatus(v, q.Status) {
			continue
		}
		if text != "" && !matchText(v, text) {
			continue
		}
		if q.FavoriteOnly && !v.Favorite {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matchCategory(v model.BookView, category string) bool {
	return category == "" || category == model.FilterAll || v.Category == category
}

func matchStatus(v model.BookView, status string) bool {
	switch status {
	case "", model.FilterAll:
		return true
	case model.StatusFilterAvailable:
		return v.Available > 0
	case model.StatusFilterBorrowed:
		return v.Available == 0
	case model.StatusFilterReserved:
		return v.Available == 0 && v.Reserved
	default:
		return true
	}
}

func matchText(v model.BookView, lowered string) bool {
	return strings.Contains(strings.ToLower(v.Title), lowered) ||
		strings.Contains(strings.ToLower(v.Author), lowered) ||
		strings.Contains(strings.ToLower(v.Publisher), lowered)
}

// Sort orders views in place by the primary sort key, stable for ties.
// An unknown or empty key falls back to popularity.
func Sort(views []model.BookView, key string) {
	var less func(a, b model.BookView) bool
	switch key {
	case model.SortNewest:
		less = func(a, b model.BookView) bool { return a.RegisteredDate.After(b.RegisteredDate) }
	case model.SortRating:
		less = func(a, b model.BookView) bool { return a.Rating > b.Rating }
	case model.SortName:
		less = func(a, b model.BookView) bool { return a.Title < b.Title }
	case model.SortRecommended:
		less = func(a, b model.BookView) bool {
			if a.Recommendations != b.Recommendations {
				return a.Recommendations > b.Recommendations
			}
			return a.HasBadge(model.BadgeRecommended) && !b.HasBadge(model.BadgeRecommended)
		}
	case model.SortBest:
		less = func(a, b model.BookView) bool {
			return a.HasBadge(model.BadgeBest) && !b.HasBadge(model.BadgeBest)
		}
	default: // model.SortPopular
		less = func(a, b model.BookView) bool { return a.TimesBorrowed > b.TimesBorrowed }
	}
	sort.SliceStable(views, func(i, j int) bool { return less(views[i], views[j]) })
}

// SortColumn orders views in place by one table column. The toggle cycle
// (first click descending, second ascending) lives in the client; the
// server just honors the requested direction.
func SortColumn(views []model.BookView, column string, desc bool) {
	var less func(a, b model.BookView) bool
	switch column {
	case ColumnStatus:
		less = func(a, b model.BookView) bool { return statusRank(a) < statusRank(b) }
	case ColumnTitle:
		less = func(a, b model.BookView) bool { return a.Title < b.Title }
	case ColumnAuthor:
		less = func(a, b model.BookView) bool { return a.Author < b.Author }
	case ColumnCategory:
		less = func(a, b model.BookView) bool { return a.Category < b.Category }
	case ColumnLocation:
		less = func(a, b model.BookView) bool { return a.Location < b.Location }
	case ColumnRecommendations:
		less = func(a, b model.BookView) bool { return a.Recommendations < b.Recommendations }
	case ColumnBorrowed:
		less = func(a, b model.BookView) bool { return a.TimesBorrowed < b.TimesBorrowed }
	case ColumnRating:
		less = func(a, b model.BookView) bool { return a.Rating < b.Rating }
	default:
		return
	}
	sort.SliceStable(views, func(i, j int) bool {
		if desc {
			return less(views[j], views[i])
		}
		return less(views[i], views[j])
	})
}

// statusRank orders availability states: available < reserved < borrowed.
func statusRank(v model.BookView) int {
	switch {
	case v.Available > 0:
		return 0
	case v.Reserved:
		return 1
	default:
		return 2
	}
}

// Paginate slices out one 1-indexed page. An out-of-range page yields an
// empty item list; TotalPages is always at least 1.
func Paginate(views []model.BookView, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	total := len(views)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	items := make([]model.BookView, end-start)
	copy(items, views[start:end])

	return Page{
		Items:      items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

// TotalPages computes the page count for a list of n items, minimum 1.
func TotalPages(n, perPage int) int {
	pages := (n + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// NormalizeSize reports the effective page size for a surface, falling
// back to the surface default when the requested size is not allowed.
func NormalizeSize(requested int, sizes []int) int {
	for _, s := range sizes {
		if requested == s {
			return requested
		}
	}
	return sizes[0]
}
