package store

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

// AccountListParams selects a page of accounts.
type AccountListParams = ListParams[domain.AccountFilter, domain.AccountOrder]

// Accounts reads and writes the signed-in user's accounts.
type Accounts struct {
	crud  crud[domain.Account]
	probe *rate.Limiter
	log   *logrus.Entry
}

// NewAccounts builds the account store on top of c.
func NewAccounts(c *client.Client, log logrus.FieldLogger) *Accounts {
	return &Accounts{
		crud:  crud[domain.Account]{c: c, docs: client.AccountDocuments, variable: "account"},
		probe: newProbeLimiter(),
		log:   entityLog(log, "account"),
	}
}

// Create sends the createAccount mutation. A missing clientMutationId is filled in.
func (s *Accounts) Create(ctx context.Context, in domain.CreateAccountInput) Result[domain.Account] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.create(ctx, in)
}

// List fetches one page. Filter, order and paginator are sent as given.
func (s *Accounts) List(ctx context.Context, p AccountListParams) Result[Page[domain.Account]] {
	return list(ctx, s.crud, p)
}

// Get fetches an account by id. Data is nil when the server knows no such account.
func (s *Accounts) Get(ctx context.Context, id string) Result[domain.Account] {
	return s.crud.get(ctx, id)
}

// Update changes an account. Nil fields in the input are left as they are.
func (s *Accounts) Update(ctx context.Context, in domain.UpdateAccountInput) Result[domain.Account] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.update(ctx, in)
}

// Delete removes an account by id and returns the removed record.
func (s *Accounts) Delete(ctx context.Context, id string) Result[domain.Account] {
	return s.crud.delete(ctx, id)
}

// Existing reports whether an account named name already exists in currency.
// It returns false when the server cannot be asked.
func (s *Accounts) Existing(ctx context.Context, currencyID, name string) bool {
	return probe(ctx, s.crud.c, s.probe, s.log, client.AccountExisting,
		map[string]string{"currency": currencyID, "name": name})
}
