package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

// CurrencyListParams selects a page of currencies.
type CurrencyListParams = ListParams[domain.CurrencyFilter, domain.CurrencyOrder]

// Currencies reads and writes the signed-in user's currencies and converts
// amounts between them.
type Currencies struct {
	crud  crud[domain.Currency]
	rates *Rates
	log   *logrus.Entry
}

// NewCurrencies builds the currency store on top of c.
func NewCurrencies(c *client.Client, rates *Rates, log logrus.FieldLogger) *Currencies {
	return &Currencies{
		crud:  crud[domain.Currency]{c: c, docs: client.CurrencyDocuments, variable: "currency"},
		rates: rates,
		log:   entityLog(log, "currency"),
	}
}

// Create sends the createCurrency mutation. A missing clientMutationId is filled in.
func (s *Currencies) Create(ctx context.Context, in domain.CreateCurrencyInput) Result[domain.Currency] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.create(ctx, in)
}

// List fetches one page. Filter, order and paginator are sent as given.
func (s *Currencies) List(ctx context.Context, p CurrencyListParams) Result[Page[domain.Currency]] {
	return list(ctx, s.crud, p)
}

// Get fetches a currency by id. Data is nil when the server knows no such currency.
func (s *Currencies) Get(ctx context.Context, id string) Result[domain.Currency] {
	return s.crud.get(ctx, id)
}

// Update changes a currency. Nil fields in the input are left as they are.
func (s *Currencies) Update(ctx context.Context, in domain.UpdateCurrencyInput) Result[domain.Currency] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.update(ctx, in)
}

// Delete removes a currency by id and returns the removed record.
func (s *Currencies) Delete(ctx context.Context, id string) Result[domain.Currency] {
	return s.crud.delete(ctx, id)
}

// ListGiven returns the well-known currencies as ready-to-submit inputs. It
// returns an empty list when the rate service is unreachable.
func (s *Currencies) ListGiven(ctx context.Context) []domain.CreateCurrencyInput {
	if s.rates == nil {
		return []domain.CreateCurrencyInput{}
	}
	given, err := s.rates.Given(ctx)
	if err != nil {
		s.log.WithError(err).Warn("list given currencies")
		return []domain.CreateCurrencyInput{}
	}
	return given
}

// Rate returns the exchange rate from one abbreviation to another. ok is
// false when no rate is available.
func (s *Currencies) Rate(ctx context.Context, from, to string) (rate decimal.Decimal, ok bool) {
	if strings.EqualFold(from, to) {
		return decimal.NewFromInt(1), true
	}
	if s.rates == nil {
		return decimal.Decimal{}, false
	}
	rate, err := s.rates.Rate(ctx, from, to)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Warn("fetch rate")
		return decimal.Decimal{}, false
	}
	return rate, true
}

// Convert expresses value, denominated in from, in to. When no rate is
// available value is returned unchanged.
func (s *Currencies) Convert(ctx context.Context, value decimal.Decimal, from, to string) decimal.Decimal {
	rate, ok := s.Rate(ctx, from, to)
	if !ok {
		return value
	}
	return value.Mul(rate)
}
