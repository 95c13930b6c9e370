package store

import (
	"context"
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

func rateServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var catalogueHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/currencies.min.json", func(w http.ResponseWriter, r *http.Request) {
		catalogueHits.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(`{"usd":"US Dollar","EUR":"Euro","btc":"Bitcoin","xxx":""}`)) //nolint:errcheck
	})
	mux.HandleFunc("/currencies/usd/eur.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date":"2024-03-01","eur":0.92}`)) //nolint:errcheck
	})
	mux.HandleFunc("/currencies/usd/brl.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date":"2024-03-01"}`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &catalogueHits
}

func TestRate(t *testing.T) {
	srv, _ := rateServer(t)
	r := NewRates(srv.URL+"/", time.Second, logging.Discard())

	rate, err := r.Rate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.92").Equal(rate))

	_, err = r.Rate(context.Background(), "usd", "brl")
	assert.Error(t, err)

	_, err = r.Rate(context.Background(), "usd", "jpy")
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
}

func TestGivenSortedAndCached(t *testing.T) {
	srv, hits := rateServer(t)
	r := NewRates(srv.URL, time.Second, logging.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Given(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	given, err := r.Given(context.Background())
	require.NoError(t, err)
	require.Len(t, given, 4)
	var codes []string
	for _, g := range given {
		codes = append(codes, g.Abbreviation)
	}
	assert.Equal(t, []string{"btc", "EUR", "usd", "xxx"}, codes)
	assert.Equal(t, "USD", given[2].Symbol)
	assert.Equal(t, "xxx", given[3].Name, "empty names fall back to the code")
	assert.Equal(t, int32(1), hits.Load())
}

func TestGivenReturnsCopies(t *testing.T) {
	srv, _ := rateServer(t)
	r := NewRates(srv.URL, time.Second, logging.Discard())
	ctx := context.Background()

	first, err := r.Given(ctx)
	require.NoError(t, err)
	first[0].Name = "changed by caller"
	first[1] = domain.CreateCurrencyInput{}

	again, err := r.Given(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "changed by caller", again[0].Name)
	assert.Equal(t, "EUR", again[1].Abbreviation)
}

func TestConvert(t *testing.T) {
	srv, _ := rateServer(t)
	s := NewCurrencies(client.New("http://unused.invalid"), NewRates(srv.URL, time.Second, nil), nil)
	ctx := context.Background()

	got := s.Convert(ctx, decimal.NewFromInt(100), "USD", "EUR")
	assert.Equal(t, "92", got.String())

	same := s.Convert(ctx, decimal.RequireFromString("12.34"), "usd", "USD")
	assert.Equal(t, "12.34", same.String())
}

func TestConvertUnreachableReturnsValue(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	s := NewCurrencies(client.New(base), NewRates(base, time.Second, nil), nil)
	value := decimal.NewFromInt(100)

	got := s.Convert(context.Background(), value, "USD", "EUR")
	assert.True(t, value.Equal(got))

	_, ok := s.Rate(context.Background(), "USD", "EUR")
	assert.False(t, ok)
	assert.Empty(t, s.ListGiven(context.Background()))
	assert.NotNil(t, s.ListGiven(context.Background()))
}

func TestConvertWithoutRates(t *testing.T) {
	s := NewCurrencies(client.New("http://unused.invalid"), nil, nil)
	value := decimal.NewFromInt(7)
	assert.True(t, value.Equal(s.Convert(context.Background(), value, "USD", "EUR")))
	assert.Empty(t, s.ListGiven(context.Background()))
}
