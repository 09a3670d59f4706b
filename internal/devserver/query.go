package devserver

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/campus/internal/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// parseQuery reads page, limit, category, search, sort and order from the URL.
func parseQuery[T domain.Item, P any](r *http.Request, schema Schema[T, P]) (domain.Query, *domain.ValidationError) {
	v := r.URL.Query()
	errs := fieldErrors{}
	q := domain.Query{Page: 1, Limit: defaultLimit}

	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			errs["page"] = "must be a positive integer"
		}
		q.Page = n
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLimit {
			errs["limit"] = "must be between 1 and " + strconv.Itoa(maxLimit)
		}
		q.Limit = n
	}

	q.Category = v.Get("category")
	if q.Category != "" && !slices.Contains(schema.Categories, q.Category) {
		errs["category"] = "must be one of " + strings.Join(schema.Categories, ", ")
	}
	q.Search = strings.TrimSpace(v.Get("search"))

	q.SortField = v.Get("sort")
	if q.SortField != "" {
		if _, ok := schema.SortKeys[q.SortField]; !ok {
			errs["sort"] = "unknown sort field"
		}
	}
	switch order := domain.SortOrder(v.Get("order")); order {
	case "", domain.SortAsc, domain.SortDesc:
		q.SortOrder = order
	default:
		errs["order"] = "must be asc or desc"
	}

	return q, errs.err("invalid query")
}

// runQuery filters, sorts and pages entries.
//
// Statistics.Total counts every record matching the category and search.
// ByCategory counts records matching the search in each category, so every
// category tab shows its size while one is selected.
func runQuery[T domain.Item, P any](schema Schema[T, P], entries []entry[T], q domain.Query) domain.Page[T] {
	matched := entries[:0:0]
	for _, e := range entries {
		if matchesSearch(q.Search, schema.SearchText(e.Value)) {
			matched = append(matched, e)
		}
	}

	stats := domain.Statistics{ByCategory: make(map[string]int, len(schema.Categories))}
	for _, c := range schema.Categories {
		stats.ByCategory[c] = 0
	}
	filtered := matched[:0:0]
	for _, e := range matched {
		cat := e.Value.GetCategory()
		stats.ByCategory[cat]++
		if q.Category == "" || cat == q.Category {
			filtered = append(filtered, e)
		}
	}
	stats.Total = len(filtered)

	sortEntries(schema, filtered, q.SortField, q.SortOrder)

	start := min((q.Page-1)*q.Limit, len(filtered))
	end := min(start+q.Limit, len(filtered))
	items := make([]T, 0, end-start)
	for _, e := range filtered[start:end] {
		items = append(items, e.Value)
	}

	return domain.Page[T]{
		Items:      items,
		Pagination: domain.NewPagination(q.Page, q.Limit, stats.Total),
		Statistics: stats,
	}
}

// statistics counts a whole collection, used for mutation responses.
func statistics[T domain.Item, P any](schema Schema[T, P], entries []entry[T]) domain.Statistics {
	return runQuery(schema, entries, domain.Query{Page: 1, Limit: 1}).Statistics
}

// matchesSearch reports whether every word of term fuzzily matches text.
func matchesSearch(term, text string) bool {
	for _, word := range strings.Fields(term) {
		if !fuzzy.MatchNormalizedFold(word, text) {
			return false
		}
	}
	return true
}

// sortEntries orders by field, newest insertion first when no field is given
// or keys tie.
func sortEntries[T domain.Item, P any](schema Schema[T, P], entries []entry[T], field string, order domain.SortOrder) {
	key := schema.SortKeys[field]
	slices.SortStableFunc(entries, func(a, b entry[T]) int {
		if key != nil {
			c := strings.Compare(key(a.Value), key(b.Value))
			if order == domain.SortDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		switch {
		case a.Seq > b.Seq:
			return -1
		case a.Seq < b.Seq:
			return 1
		}
		return 0
	})
}
