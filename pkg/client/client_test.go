package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thriftease/thriftease/pkg/domain"
)

type recordedRequest struct {
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables"`
	OperationName string          `json:"operationName"`
}

// graphQLServer answers every request with body and records what it received.
func graphQLServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest, *[]http.Header) {
	t.Helper()
	var reqs []recordedRequest
	var headers []http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req recordedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reqs = append(reqs, req)
		headers = append(headers, r.Header.Clone())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs, &headers
}

func TestQueryDecodesResult(t *testing.T) {
	srv, reqs, _ := graphQLServer(t, http.StatusOK,
		`{"data":{"result":{"data":{"id":"7","abbreviation":"USD","symbol":"$","name":"US Dollar"}}}}`)

	c := New(srv.URL)
	res := Query[GetPayload[domain.Currency]](context.Background(), c, CurrencyDocuments.Get,
		map[string]any{"input": map[string]string{"id": "7"}})
	if res.Err != nil {
		t.Fatalf("Query() error: %v", res.Err)
	}
	if res.Data == nil || res.Data.Data == nil {
		t.Fatal("expected currency data")
	}
	if got := res.Data.Data.Abbreviation; got != "USD" {
		t.Errorf("Abbreviation = %q, want %q", got, "USD")
	}
	if got := (*reqs)[0].OperationName; got != "GetCurrency" {
		t.Errorf("operationName = %q, want %q", got, "GetCurrency")
	}
	if !strings.Contains((*reqs)[0].Query, "fragment currencyFragment") {
		t.Errorf("query missing currencyFragment:\n%s", (*reqs)[0].Query)
	}
}

func TestLinksSetHeaders(t *testing.T) {
	srv, _, headers := graphQLServer(t, http.StatusOK, `{"data":{"result":true}}`)

	token := "abc.def.ghi"
	c := New(srv.URL, WithLinks(
		LocaleLink(func() string { return "pt_BR.UTF-8" }),
		AuthLink(func() string { return token }),
	))
	if res := Query[bool](context.Background(), c, TagExisting, map[string]string{"name": "food"}); res.Err != nil {
		t.Fatalf("Query() error: %v", res.Err)
	}
	h := (*headers)[0]
	if got := h.Get("Accept-Language"); got != "pt-BR" {
		t.Errorf("Accept-Language = %q, want %q", got, "pt-BR")
	}
	if got := h.Get("Authorization"); got != "JWT abc.def.ghi" {
		t.Errorf("Authorization = %q, want %q", got, "JWT abc.def.ghi")
	}

	token = ""
	Query[bool](context.Background(), c, TagExisting, map[string]string{"name": "rent"})
	h = (*headers)[1]
	if got := h.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want empty without a token", got)
	}
	if got := h.Get("Accept-Language"); got != "pt-BR" {
		t.Errorf("Accept-Language = %q after auth link, want %q", got, "pt-BR")
	}
}

func TestGraphQLErrorsBecomeTransportErrors(t *testing.T) {
	srv, _, _ := graphQLServer(t, http.StatusOK,
		`{"data":null,"errors":[{"message":"Signature has expired"},{"message":"other"}]}`)

	c := New(srv.URL)
	res := Mutate[verifyPayload](context.Background(), c, AuthVerify, map[string]string{"token": "x"})
	if res.Err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.Is(res.Err, ErrTransport) {
		t.Errorf("errors.Is(err, ErrTransport) = false for %v", res.Err)
	}
	if got := GraphQLErrors(res.Err); len(got) != 2 || got[0].Message != "Signature has expired" {
		t.Errorf("GraphQLErrors() = %+v", got)
	}
	if !strings.Contains(res.Err.Error(), "and 1 more") {
		t.Errorf("error = %q, want it to mention the extra error", res.Err)
	}
	if res.Data != nil {
		t.Error("expected no data alongside a transport error")
	}
}

type verifyPayload struct {
	User *domain.User `json:"user"`
}

func TestHTTPError(t *testing.T) {
	srv, _, _ := graphQLServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	c := New(srv.URL)
	res := Query[bool](context.Background(), c, AuthExisting, map[string]string{"email": "a@b.c"})
	if res.Err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !IsStatus(res.Err, http.StatusInternalServerError) {
		t.Errorf("IsStatus(err, 500) = false for %v", res.Err)
	}
	if got := res.Err.Error(); !strings.Contains(got, "boom") {
		t.Errorf("error = %q, want it to contain 'boom'", got)
	}
}

func TestUnreachableServerDoesNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithTimeout(time.Second))
	res := Query[bool](context.Background(), c, AuthExisting, map[string]string{"email": "a@b.c"})
	if res.Err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !errors.Is(res.Err, ErrTransport) {
		t.Errorf("expected a transport error, got %T", res.Err)
	}
}

func TestNullResult(t *testing.T) {
	srv, _, _ := graphQLServer(t, http.StatusOK, `{"data":{"result":null}}`)

	c := New(srv.URL)
	res := Query[GetPayload[domain.Tag]](context.Background(), c, TagDocuments.Get, nil)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Data != nil {
		t.Errorf("Data = %+v, want nil", res.Data)
	}
}

func TestQueryCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"data":{"result":{"data":[{"id":"1","name":"food"}],"paginator":null}}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, WithCache(8, time.Minute))
	ctx := context.Background()
	vars := map[string]any{"paginator": domain.NewPaginatorInput(1, 10)}

	Query[ListPayload[domain.Tag]](ctx, c, TagDocuments.List, vars)
	res := Query[ListPayload[domain.Tag]](ctx, c, TagDocuments.List, vars)
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d after cached query, want 1", got)
	}
	if res.Data == nil || len(res.Data.Data) != 1 {
		t.Fatalf("cached result = %+v", res.Data)
	}

	Query[ListPayload[domain.Tag]](ctx, c, TagDocuments.List, vars, WithFetchPolicy(NetworkOnly))
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d after NetworkOnly, want 2", got)
	}

	Mutate[MutationPayload[domain.Tag]](ctx, c, TagDocuments.Delete, map[string]any{"input": map[string]string{"id": "1"}})
	Query[ListPayload[domain.Tag]](ctx, c, TagDocuments.List, vars)
	if got := hits.Load(); got != 4 {
		t.Errorf("server hits = %d after mutation purge, want 4", got)
	}
}

func TestKeepCacheMutationLeavesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"data":{"result":{"data":[],"paginator":null}}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, WithCache(8, time.Minute))
	ctx := context.Background()

	Query[ListPayload[domain.Tag]](ctx, c, TagDocuments.List, nil)
	Mutate[json.RawMessage](ctx, c, AuthVerify, map[string]string{"token": "t"}, KeepCache())
	Query[ListPayload[domain.Tag]](ctx, c, TagDocuments.List, nil)
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (list, verify, cached list)", got)
	}
}

func TestCanonicalLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"en-us", "en-US"},
		{"pt_BR.UTF-8", "pt-BR"},
		{"fil", "fil"},
		{"", DefaultLocale},
		{"C", DefaultLocale},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CanonicalLocale(tt.in); got != tt.want {
				t.Errorf("CanonicalLocale(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEntityDocuments(t *testing.T) {
	list := AccountDocuments.List
	if list.Name != "ListAccounts" {
		t.Errorf("Name = %q, want ListAccounts", list.Name)
	}
	for _, want := range []string{"listAccounts(", "$order: [AccountOrderQueryInput!]", "fragment paginatorFragment", "fragment currencyFragment"} {
		if !strings.Contains(list.Body, want) {
			t.Errorf("ListAccounts body missing %q:\n%s", want, list.Body)
		}
	}
	create := TransactionDocuments.Create
	if !strings.Contains(create.Body, "createTransaction(input: $transaction)") {
		t.Errorf("CreateTransaction body:\n%s", create.Body)
	}
	if n := strings.Count(create.Body, "fragment currencyFragment"); n != 1 {
		t.Errorf("currencyFragment defined %d times, want 1", n)
	}
	if !strings.Contains(CurrencyDocuments.Delete.Body, "deleteCurrency(input: $input)") {
		t.Errorf("DeleteCurrency body:\n%s", CurrencyDocuments.Delete.Body)
	}
}
