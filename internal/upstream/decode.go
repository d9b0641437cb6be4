package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Pagination is the envelope metadata paginated list endpoints return.
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// Page holds a decoded list response. Pagination is nil when the endpoint
// returned a bare array.
type Page[T any] struct {
	Items      []T         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// DecodeList decodes a list endpoint body that is either a bare JSON array
// or a {data, pagination} envelope. Every list call site goes through this
// one decoder instead of sniffing shapes ad hoc.
func DecodeList[T any](data []byte) (Page[T], error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return Page[T]{}, fmt.Errorf("upstream: empty list body")
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, fmt.Errorf("upstream: decode bare list: %w", err)
		}
		return Page[T]{Items: items}, nil
	}

	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return Page[T]{}, fmt.Errorf("upstream: decode list envelope: %w", err)
	}
	return page, nil
}
