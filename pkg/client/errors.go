package client

import (
	"errors"
	"fmt"
)

// ErrTransport matches every error produced by the request pipeline:
// network failures, non-2xx responses, undecodable bodies and top-level
// GraphQL errors.
var ErrTransport = errors.New("transport error")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// GraphQLError is one entry of a response's top-level "errors" array.
type GraphQLError struct {
	Message   string `json:"message"`
	Path      []any  `json:"path,omitempty"`
	Locations []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations,omitempty"`
}

// TransportError is the single error kind surfaced by Do. Business validation
// failures never produce one; they travel inside the payload.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true for any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// GraphQLErrors returns the GraphQL errors carried by err, if any.
func GraphQLErrors(err error) []GraphQLError {
	var gqlErr *graphQLErrors
	if errors.As(err, &gqlErr) {
		return gqlErr.list
	}
	return nil
}

type graphQLErrors struct {
	list []GraphQLError
}

func (e *graphQLErrors) Error() string {
	if len(e.list) == 0 {
		return "graphql: unknown error"
	}
	msg := e.list[0].Message
	if n := len(e.list) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return "graphql: " + msg
}
