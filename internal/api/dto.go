package api

import (
	"encoding/json"
	"fmt"

	"github.com/mmcdole/campus/internal/domain"
)

// listEnvelope is the body of GET /api/{resource}
type listEnvelope[T domain.Item] struct {
	Data       *[]T               `json:"data"`
	Pagination *domain.Pagination `json:"pagination"`
	Statistics *domain.Statistics `json:"statistics"`
}

// itemEnvelope is the body of a create or update response
type itemEnvelope[T domain.Item] struct {
	Data       json.RawMessage    `json:"data"`
	Statistics *domain.Statistics `json:"statistics,omitempty"`
}

// deleteEnvelope is the optional body of a delete response
type deleteEnvelope struct {
	Statistics *domain.Statistics `json:"statistics,omitempty"`
}

// errorEnvelope is the body of a non-2xx response
type errorEnvelope struct {
	Error struct {
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// page checks the envelope shape and converts it to a domain.Page.
func (e listEnvelope[T]) page() (domain.Page[T], error) {
	switch {
	case e.Data == nil:
		return domain.Page[T]{}, malformed("missing data")
	case e.Pagination == nil:
		return domain.Page[T]{}, malformed("missing pagination")
	case e.Statistics == nil:
		return domain.Page[T]{}, malformed("missing statistics")
	}

	if err := e.Pagination.Validate(); err != nil {
		return domain.Page[T]{}, malformed(err.Error())
	}
	if len(*e.Data) > e.Pagination.Limit {
		return domain.Page[T]{}, malformed(fmt.Sprintf("page holds %d items, limit is %d", len(*e.Data), e.Pagination.Limit))
	}
	if e.Statistics.Total != e.Pagination.Total {
		return domain.Page[T]{}, malformed(fmt.Sprintf("statistics total %d != pagination total %d", e.Statistics.Total, e.Pagination.Total))
	}
	for _, it := range *e.Data {
		if it.GetID() == "" {
			return domain.Page[T]{}, malformed("item without id")
		}
	}

	stats := e.Statistics.Clone()
	return domain.Page[T]{
		Items:      *e.Data,
		Pagination: *e.Pagination,
		Statistics: stats,
	}, nil
}

// result decodes the item and checks it carries an id.
func (e itemEnvelope[T]) result() (domain.MutationResult[T], error) {
	var res domain.MutationResult[T]
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return res, malformed("missing data")
	}
	if err := json.Unmarshal(e.Data, &res.Item); err != nil {
		return res, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if res.Item.GetID() == "" {
		return res, malformed("item without id")
	}
	if e.Statistics != nil {
		stats := e.Statistics.Clone()
		res.Statistics = &stats
	}
	return res, nil
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedResponse, reason)
}
