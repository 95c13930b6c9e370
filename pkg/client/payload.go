package client

import "github.com/thriftease/thriftease/pkg/domain"

// MutationPayload is the envelope returned by every create, update and delete
// mutation: either data or a list of business validation errors.
type MutationPayload[T any] struct {
	Data   *T               `json:"data"`
	Errors domain.ErrorList `json:"errors"`
}

// GetPayload is the envelope returned by single-record queries.
type GetPayload[T any] struct {
	Data *T `json:"data"`
}

// ListPayload is the envelope returned by list queries.
type ListPayload[T any] struct {
	Data      []T               `json:"data"`
	Paginator *domain.Paginator `json:"paginator"`
}
