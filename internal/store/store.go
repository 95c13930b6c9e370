// Package store wraps the GraphQL pipeline with one typed store per entity.
// Every call returns a Result that separates business validation errors
// reported by the server from transport failures.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

// Result is the outcome of a store call. Errors holds field errors from a
// mutation payload; Err holds a transport failure. At most one of the two is
// set.
type Result[T any] struct {
	Data   *T
	Errors domain.ErrorList
	Err    error
}

// OK reports whether the call succeeded with no field errors.
func (r Result[T]) OK() bool {
	return r.Err == nil && r.Errors.Empty()
}

// Page is one page of a list together with the server's paginator.
type Page[T any] struct {
	Items     []T
	Paginator *domain.Paginator
}

// ListParams are passed to list queries verbatim.
type ListParams[F, O any] struct {
	Filter    *F
	Order     []O
	Paginator *domain.PaginatorInput
	Policy    client.FetchPolicy
}

type listVars[F, O any] struct {
	Filter    *F                     `json:"filter,omitempty"`
	Order     []O                    `json:"order,omitempty"`
	Paginator *domain.PaginatorInput `json:"paginator,omitempty"`
}

type idInput struct {
	ClientMutationID string `json:"clientMutationId,omitempty"`
	ID               string `json:"id"`
}

// Stores bundles every entity store over one client.
type Stores struct {
	Accounts     *Accounts
	Currencies   *Currencies
	Tags         *Tags
	Transactions *Transactions
	Users        *Users
}

// New builds every store over c. rates may be nil, in which case currency
// conversion always returns its input.
func New(c *client.Client, rates *Rates, log logrus.FieldLogger) *Stores {
	return &Stores{
		Accounts:     NewAccounts(c, log),
		Currencies:   NewCurrencies(c, rates, log),
		Tags:         NewTags(c, log),
		Transactions: NewTransactions(c),
		Users:        NewUsers(c),
	}
}

func entityLog(log logrus.FieldLogger, entity string) *logrus.Entry {
	if log == nil {
		log = logging.Discard()
	}
	return logging.For(log, logging.ComponentStore).WithField("entity", entity)
}

// mutationID returns id, or a fresh one when id is empty.
func mutationID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// crud runs the five shared operations for entity T. variable is the name the
// create and update documents bind their input to.
type crud[T any] struct {
	c        *client.Client
	docs     client.EntityDocuments
	variable string
}

func (e crud[T]) create(ctx context.Context, input any) Result[T] {
	r := client.Mutate[client.MutationPayload[T]](ctx, e.c, e.docs.Create, map[string]any{e.variable: input})
	return fromMutation(r)
}

func (e crud[T]) update(ctx context.Context, input any) Result[T] {
	r := client.Mutate[client.MutationPayload[T]](ctx, e.c, e.docs.Update, map[string]any{e.variable: input})
	return fromMutation(r)
}

func (e crud[T]) delete(ctx context.Context, id string) Result[T] {
	in := idInput{ClientMutationID: mutationID(""), ID: id}
	r := client.Mutate[client.MutationPayload[T]](ctx, e.c, e.docs.Delete, map[string]any{"input": in})
	return fromMutation(r)
}

func (e crud[T]) get(ctx context.Context, id string) Result[T] {
	r := client.Query[client.GetPayload[T]](ctx, e.c, e.docs.Get, map[string]any{"input": idInput{ID: id}})
	if r.Err != nil {
		return Result[T]{Err: r.Err}
	}
	if r.Data == nil {
		return Result[T]{}
	}
	return Result[T]{Data: r.Data.Data}
}

func list[T, F, O any](ctx context.Context, e crud[T], p ListParams[F, O]) Result[Page[T]] {
	vars := listVars[F, O]{Filter: p.Filter, Order: p.Order, Paginator: p.Paginator}
	r := client.Query[client.ListPayload[T]](ctx, e.c, e.docs.List, vars, client.WithFetchPolicy(p.Policy))
	if r.Err != nil {
		return Result[Page[T]]{Err: r.Err}
	}
	if r.Data == nil {
		return Result[Page[T]]{}
	}
	return Result[Page[T]]{Data: &Page[T]{Items: r.Data.Data, Paginator: r.Data.Paginator}}
}

func fromMutation[T any](r client.Result[client.MutationPayload[T]]) Result[T] {
	if r.Err != nil {
		return Result[T]{Err: r.Err}
	}
	if r.Data == nil {
		return Result[T]{}
	}
	return Result[T]{Data: r.Data.Data, Errors: r.Data.Errors}
}
