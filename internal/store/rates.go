package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

// Rates talks to the public exchange-rate service. It needs no credentials.
type Rates struct {
	base       string
	httpClient *http.Client
	log        *logrus.Entry

	group singleflight.Group
	mu    sync.Mutex
	given []domain.CreateCurrencyInput
}

// NewRates returns a rate service client rooted at base.
func NewRates(base string, timeout time.Duration, log logrus.FieldLogger) *Rates {
	if log == nil {
		log = logging.Discard()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Rates{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.For(log, logging.ComponentRates),
	}
}

// Rate returns how many units of to one unit of from buys.
func (r *Rates) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from, to = strings.ToLower(from), strings.ToLower(to)
	body, err := r.get(ctx, "/currencies/"+from+"/"+to+".json")
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rates.Rate: %w", err)
	}
	v := gjson.GetBytes(body, to)
	if v.Type != gjson.Number {
		return decimal.Decimal{}, fmt.Errorf("rates.Rate: no %q rate in response", to)
	}
	rate, err := decimal.NewFromString(v.Raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rates.Rate: %w", err)
	}
	return rate, nil
}

// Given returns the catalogue of currencies the service knows, sorted by
// abbreviation ignoring case. A successful fetch is kept for the life of r;
// concurrent first callers share one request.
func (r *Rates) Given(ctx context.Context) ([]domain.CreateCurrencyInput, error) {
	r.mu.Lock()
	cached := r.given
	r.mu.Unlock()
	if cached != nil {
		return slices.Clone(cached), nil
	}

	v, err, _ := r.group.Do("given", func() (any, error) {
		r.mu.Lock()
		cached := r.given
		r.mu.Unlock()
		if cached != nil {
			return cached, nil
		}
		body, err := r.get(ctx, "/currencies.min.json")
		if err != nil {
			return nil, err
		}
		given, err := parseGiven(body)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.given = given
		r.mu.Unlock()
		return given, nil
	})
	if err != nil {
		return nil, fmt.Errorf("rates.Given: %w", err)
	}
	return slices.Clone(v.([]domain.CreateCurrencyInput)), nil
}

func parseGiven(body []byte) ([]domain.CreateCurrencyInput, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("expected an object, got %s", doc.Type)
	}
	given := []domain.CreateCurrencyInput{}
	doc.ForEach(func(k, v gjson.Result) bool {
		code := k.String()
		name := v.String()
		if name == "" {
			name = code
		}
		given = append(given, domain.CreateCurrencyInput{
			Abbreviation: code,
			Symbol:       strings.ToUpper(code),
			Name:         name,
		})
		return true
	})
	sort.SliceStable(given, func(i, j int) bool {
		return strings.ToLower(given[i].Abbreviation) < strings.ToLower(given[j].Abbreviation)
	})
	return given, nil
}

func (r *Rates) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.WithError(err).WithField("path", path).Warn("rate service unreachable")
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &client.HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return body, nil
}
