package store

import (
	"context"

	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

// TransactionListParams selects a page of transactions.
type TransactionListParams = ListParams[domain.TransactionFilter, domain.TransactionOrder]

// Transactions reads and writes transactions across the user's accounts.
type Transactions struct {
	crud crud[domain.Transaction]
}

// NewTransactions builds the transaction store on top of c.
func NewTransactions(c *client.Client) *Transactions {
	return &Transactions{crud: crud[domain.Transaction]{c: c, docs: client.TransactionDocuments, variable: "transaction"}}
}

// Create sends the createTransaction mutation. A missing clientMutationId is filled in.
func (s *Transactions) Create(ctx context.Context, in domain.CreateTransactionInput) Result[domain.Transaction] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.create(ctx, in)
}

// List fetches one page. Filter, order and paginator are sent as given.
func (s *Transactions) List(ctx context.Context, p TransactionListParams) Result[Page[domain.Transaction]] {
	return list(ctx, s.crud, p)
}

// Get fetches a transaction by id. Data is nil when the server knows no such transaction.
func (s *Transactions) Get(ctx context.Context, id string) Result[domain.Transaction] {
	return s.crud.get(ctx, id)
}

// Update changes a transaction. Nil fields in the input are left as they are.
func (s *Transactions) Update(ctx context.Context, in domain.UpdateTransactionInput) Result[domain.Transaction] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.update(ctx, in)
}

// Delete removes a transaction by id and returns the removed record.
func (s *Transactions) Delete(ctx context.Context, id string) Result[domain.Transaction] {
	return s.crud.delete(ctx, id)
}
