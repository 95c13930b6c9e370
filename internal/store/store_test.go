package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

type gqlRequest struct {
	Query         string                     `json:"query"`
	Variables     map[string]json.RawMessage `json:"variables"`
	OperationName string                     `json:"operationName"`
}

// fakeAPI answers by operation name and records every request.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	requests  []gqlRequest
}

func newFakeAPI(t *testing.T, responses map[string]string) (*fakeAPI, *client.Client) {
	t.Helper()
	f := &fakeAPI{responses: responses}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		body, ok := f.responses[req.OperationName]
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"unexpected operation"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return f, client.New(srv.URL, client.WithCache(16, time.Minute))
}

func (f *fakeAPI) last(t *testing.T) gqlRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// unreachable returns a client pointed at a closed server.
func unreachable(t *testing.T) *client.Client {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return client.New(url, client.WithTimeout(2*time.Second))
}

func TestCreateReturnsData(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{
		"CreateCurrency": `{"data":{"result":{"data":{"id":"1","abbreviation":"USD","symbol":"$","name":"US Dollar"},"errors":[]}}}`,
	})
	s := NewCurrencies(c, nil, logging.Discard())

	res := s.Create(context.Background(), domain.CreateCurrencyInput{Abbreviation: "USD", Symbol: "$", Name: "US Dollar"})
	require.NoError(t, res.Err)
	require.True(t, res.OK())
	require.NotNil(t, res.Data)
	assert.Equal(t, "1", res.Data.ID)

	var sent domain.CreateCurrencyInput
	require.NoError(t, json.Unmarshal(api.last(t).Variables["currency"], &sent))
	assert.Equal(t, "USD", sent.Abbreviation)
	assert.NotEmpty(t, sent.ClientMutationID, "clientMutationId should be generated")
}

func TestCreateKeepsCallerMutationID(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{
		"CreateTag": `{"data":{"result":{"data":{"id":"3","name":"food"},"errors":[]}}}`,
	})
	s := NewTags(c, logging.Discard())

	res := s.Create(context.Background(), domain.CreateTagInput{ClientMutationID: "mine", Name: "food"})
	require.True(t, res.OK())

	var sent domain.CreateTagInput
	require.NoError(t, json.Unmarshal(api.last(t).Variables["tag"], &sent))
	assert.Equal(t, "mine", sent.ClientMutationID)
}

func TestFieldErrorsAreNotTransportErrors(t *testing.T) {
	_, c := newFakeAPI(t, map[string]string{
		"CreateCurrency": `{"data":{"result":{"data":null,"errors":[{"field":"abbreviation","messages":["Currency with this Abbreviation already exists."]}]}}}`,
	})
	s := NewCurrencies(c, nil, logging.Discard())

	res := s.Create(context.Background(), domain.CreateCurrencyInput{Abbreviation: "USD", Symbol: "$", Name: "US Dollar"})
	assert.NoError(t, res.Err)
	assert.False(t, res.OK())
	assert.Nil(t, res.Data)
	assert.Equal(t, []string{"Currency with this Abbreviation already exists."}, res.Errors.Field("abbreviation"))
}

func TestTransportFailureLandsInErr(t *testing.T) {
	s := NewAccounts(unreachable(t), logging.Discard())

	res := s.Get(context.Background(), "1")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, client.ErrTransport)
	assert.Nil(t, res.Data)
	assert.Empty(t, res.Errors)
}

func TestListPassesParamsVerbatim(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{
		"ListTransactions": `{"data":{"result":{
			"data":[{"id":"9","account":{"id":"1","currency":{"id":"1","abbreviation":"USD","symbol":"$","name":"US Dollar"},"name":"Cash","balance":"10.00","futureBalance":"10.00"},
			"amount":"-2.50","datetime":"2024-03-01T10:00:00Z","name":"Coffee","description":"","tagSet":[{"id":"3","name":"food"}],"resultingAccountBalance":"7.50"}],
			"paginator":{"perPage":10,"items":11,"pages":2,"page":{"previous":1,"current":2,"next":null}}}}}`,
	})
	s := NewTransactions(c)

	search := "coffee"
	res := s.List(context.Background(), TransactionListParams{
		Filter:    &domain.TransactionFilter{NameContains: &search},
		Order:     []domain.TransactionOrder{domain.TransactionDatetimeDesc},
		Paginator: domain.NewPaginatorInput(2, 10),
	})
	require.NoError(t, res.Err)
	require.NotNil(t, res.Data)

	req := api.last(t)
	assert.JSONEq(t, `{"page":2,"perPage":10}`, string(req.Variables["paginator"]))
	assert.JSONEq(t, `["DATETIME_DESC"]`, string(req.Variables["order"]))
	assert.JSONEq(t, `{"name_Icontains":"coffee"}`, string(req.Variables["filter"]))

	page := res.Data
	require.Len(t, page.Items, 1)
	tx := page.Items[0]
	assert.True(t, decimal.RequireFromString("-2.5").Equal(tx.Amount))
	assert.Equal(t, []string{"food"}, tx.TagNames())
	require.NotNil(t, page.Paginator)
	assert.Equal(t, domain.PageCount(11, 10), page.Paginator.Pages)
	assert.True(t, page.Paginator.Consistent())
	assert.False(t, page.Paginator.HasNext())
	assert.True(t, page.Paginator.HasPrevious())
}

func TestListOmitsUnsetParams(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{
		"ListTags": `{"data":{"result":{"data":[],"paginator":{"perPage":10,"items":0,"pages":0,"page":{"previous":null,"current":1,"next":null}}}}}`,
	})
	s := NewTags(c, logging.Discard())

	res := s.List(context.Background(), TagListParams{})
	require.NoError(t, res.Err)
	assert.Empty(t, res.Data.Items)
	assert.Empty(t, api.last(t).Variables)
}

func TestDeleteSendsIDInput(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{
		"DeleteAccount": `{"data":{"result":{"data":{"id":"4","currency":{"id":"1","abbreviation":"USD","symbol":"$","name":"US Dollar"},"name":"Cash","balance":null,"futureBalance":null},"errors":[]}}}`,
	})
	s := NewAccounts(c, logging.Discard())

	res := s.Delete(context.Background(), "4")
	require.True(t, res.OK())
	assert.False(t, res.Data.Balance.Valid)

	var in struct {
		ID               string `json:"id"`
		ClientMutationID string `json:"clientMutationId"`
	}
	require.NoError(t, json.Unmarshal(api.last(t).Variables["input"], &in))
	assert.Equal(t, "4", in.ID)
	assert.NotEmpty(t, in.ClientMutationID)
}

func TestExisting(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{
		"AccountExisting": `{"data":{"result":true}}`,
		"TagExisting":     `{"data":{"result":false}}`,
	})
	ctx := context.Background()

	assert.True(t, NewAccounts(c, logging.Discard()).Existing(ctx, "1", "Cash"))
	assert.JSONEq(t, `"Cash"`, string(api.last(t).Variables["name"]))
	assert.JSONEq(t, `"1"`, string(api.last(t).Variables["currency"]))
	assert.False(t, NewTags(c, logging.Discard()).Existing(ctx, "food"))
}

func TestExistingFailsOpen(t *testing.T) {
	ctx := context.Background()
	c := unreachable(t)
	assert.False(t, NewAccounts(c, logging.Discard()).Existing(ctx, "1", "Cash"))
	assert.False(t, NewTags(c, logging.Discard()).Existing(ctx, "food"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, NewTags(c, logging.Discard()).Existing(cancelled, "food"))
}

func TestExistingBypassesCache(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{"TagExisting": `{"data":{"result":true}}`})
	s := NewTags(c, logging.Discard())

	s.Existing(context.Background(), "food")
	s.Existing(context.Background(), "food")
	assert.Equal(t, 2, api.count())
}

const (
	currencyJSON    = `{"id":"1","abbreviation":"USD","symbol":"$","name":"US Dollar"}`
	accountJSON     = `{"id":"4","currency":` + currencyJSON + `,"name":"Cash","balance":"10.00","futureBalance":null}`
	tagJSON         = `{"id":"3","name":"food"}`
	transactionJSON = `{"id":"9","account":` + accountJSON + `,"amount":"-2.50","datetime":"2024-03-01T09:30:00Z","name":"Coffee","description":"","tagSet":[]}`
)

func TestUpdateAndGetPerEntity(t *testing.T) {
	name := "renamed"
	tests := []struct {
		entity   string
		variable string
		record   string
		update   func(*Stores) (string, bool)
		get      func(*Stores) (string, bool)
	}{
		{
			entity: "Currency", variable: "currency", record: currencyJSON,
			update: func(s *Stores) (string, bool) {
				r := s.Currencies.Update(context.Background(), domain.UpdateCurrencyInput{ID: "1", Name: &name})
				return r.Data.ID, r.OK()
			},
			get: func(s *Stores) (string, bool) {
				r := s.Currencies.Get(context.Background(), "1")
				return r.Data.Abbreviation, r.OK()
			},
		},
		{
			entity: "Account", variable: "account", record: accountJSON,
			update: func(s *Stores) (string, bool) {
				r := s.Accounts.Update(context.Background(), domain.UpdateAccountInput{ID: "4", Name: &name})
				return r.Data.ID, r.OK()
			},
			get: func(s *Stores) (string, bool) {
				r := s.Accounts.Get(context.Background(), "4")
				return r.Data.Name, r.OK()
			},
		},
		{
			entity: "Tag", variable: "tag", record: tagJSON,
			update: func(s *Stores) (string, bool) {
				r := s.Tags.Update(context.Background(), domain.UpdateTagInput{ID: "3", Name: &name})
				return r.Data.ID, r.OK()
			},
			get: func(s *Stores) (string, bool) {
				r := s.Tags.Get(context.Background(), "3")
				return r.Data.Name, r.OK()
			},
		},
		{
			entity: "Transaction", variable: "transaction", record: transactionJSON,
			update: func(s *Stores) (string, bool) {
				r := s.Transactions.Update(context.Background(), domain.UpdateTransactionInput{ID: "9", Name: &name})
				return r.Data.ID, r.OK()
			},
			get: func(s *Stores) (string, bool) {
				r := s.Transactions.Get(context.Background(), "9")
				return r.Data.Name, r.OK()
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			api, c := newFakeAPI(t, map[string]string{
				"Update" + tt.entity: `{"data":{"result":{"data":` + tt.record + `,"errors":[]}}}`,
				"Get" + tt.entity:    `{"data":{"result":{"data":` + tt.record + `}}}`,
			})
			s := New(c, nil, logging.Discard())

			id, ok := tt.update(s)
			require.True(t, ok)
			assert.NotEmpty(t, id)

			req := api.last(t)
			assert.Equal(t, "Update"+tt.entity, req.OperationName)
			assert.Contains(t, req.Query, "$"+tt.variable+": Update"+tt.entity+"MutationInput!")
			var sent struct {
				ClientMutationID string `json:"clientMutationId"`
				ID               string `json:"id"`
				Name             string `json:"name"`
			}
			require.NoError(t, json.Unmarshal(req.Variables[tt.variable], &sent), "variable %q", tt.variable)
			assert.NotEmpty(t, sent.ClientMutationID, "clientMutationId should be generated")
			assert.Equal(t, id, sent.ID)
			assert.Equal(t, "renamed", sent.Name)

			got, ok := tt.get(s)
			require.True(t, ok)
			assert.NotEmpty(t, got)
			assert.Equal(t, "Get"+tt.entity, api.last(t).OperationName)
			assert.Contains(t, string(api.last(t).Variables["input"]), `"id":"`+id+`"`)
		})
	}
}

func TestUsers(t *testing.T) {
	api, c := newFakeAPI(t, map[string]string{
		"GetUser":    `{"data":{"result":{"data":{"id":"1","email":"ada@example.com","givenName":"Ada","familyName":"Lovelace"}}}}`,
		"UpdateUser": `{"data":{"result":{"data":null,"errors":[{"field":"givenName","messages":["Too long."]}]}}}`,
	})
	s := NewUsers(c)
	ctx := context.Background()

	got := s.Get(ctx)
	require.NoError(t, got.Err)
	assert.Equal(t, "ada@example.com", got.Data.Email)

	name := "Augusta"
	upd := s.Update(ctx, domain.UpdateUserInput{GivenName: &name})
	assert.NoError(t, upd.Err)
	assert.Equal(t, []string{"Too long."}, upd.Errors.Field("givenName"))
	assert.Contains(t, string(api.last(t).Variables["user"]), `"givenName":"Augusta"`)
}

func TestNewBuildsEveryStore(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"data":{"result":{"data":[],"paginator":null}}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	s := New(client.New(srv.URL), nil, nil)
	require.NotNil(t, s.Accounts)
	require.NotNil(t, s.Currencies)
	require.NotNil(t, s.Tags)
	require.NotNil(t, s.Transactions)
	require.NotNil(t, s.Users)

	res := s.Accounts.List(context.Background(), AccountListParams{})
	require.NoError(t, res.Err)
	assert.Equal(t, int32(1), hits.Load())
}
