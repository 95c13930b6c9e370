package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Kind distinguishes read operations from writes. Only queries are cached.
type Kind int

const (
	KindQuery Kind = iota
	KindMutation
)

func (k Kind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

// Result is the uniform outcome of a dispatch. Err is always a *TransportError
// when set; Data is nil when the server returned null or the call failed.
type Result[T any] struct {
	Data *T
	Err  error
}

// OK reports whether the call completed without a transport error.
func (r Result[T]) OK() bool { return r.Err == nil }

// Client is the ThriftEase GraphQL API client.
type Client struct {
	endpoint   string
	httpClient *http.Client
	links      []Link
	cache      *queryCache
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLinks sets the header links applied, in order, before every dispatch.
func WithLinks(links ...Link) Option {
	return func(c *Client) { c.links = links }
}

// WithCache enables the query cache with the given capacity and entry lifetime.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) { c.cache = newQueryCache(size, ttl) }
}

// WithLogger routes pipeline logs to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client for the GraphQL endpoint.
func New(endpoint string, opts ...Option) *Client {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: quiet,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the GraphQL endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

// ResetCache drops every cached query result.
func (c *Client) ResetCache() {
	if c.cache != nil {
		c.cache.purge()
	}
}

// RequestOption tunes a single dispatch.
type RequestOption func(*requestConfig)

type requestConfig struct {
	policy    FetchPolicy
	keepCache bool
}

// WithFetchPolicy overrides the cache policy for one query.
func WithFetchPolicy(p FetchPolicy) RequestOption {
	return func(rc *requestConfig) { rc.policy = p }
}

// KeepCache stops a mutation from purging the query cache. Use it for
// mutations that change no server records, such as token verification.
func KeepCache() RequestOption {
	return func(rc *requestConfig) { rc.keepCache = true }
}

// Query runs a GraphQL query and decodes the aliased "result" field into T.
func Query[T any](ctx context.Context, c *Client, doc Document, vars any, opts ...RequestOption) Result[T] {
	return Do[T](ctx, c, KindQuery, doc, vars, opts...)
}

// Mutate runs a GraphQL mutation and decodes the aliased "result" field into T.
// A successful mutation purges the query cache unless KeepCache is given.
func Mutate[T any](ctx context.Context, c *Client, doc Document, vars any, opts ...RequestOption) Result[T] {
	return Do[T](ctx, c, KindMutation, doc, vars, opts...)
}

// Do is the single dispatch primitive. It never panics on remote failures and
// never returns a bare error: every failure lands in Result.Err.
func Do[T any](ctx context.Context, c *Client, kind Kind, doc Document, vars any, opts ...RequestOption) Result[T] {
	rc := requestConfig{policy: CacheFirst}
	for _, opt := range opts {
		opt(&rc)
	}
	op := "client." + doc.Name
	entry := c.log.WithFields(logrus.Fields{"operation": doc.Name, "kind": kind.String()})

	var key string
	useCache := kind == KindQuery && c.cache != nil && rc.policy != NoCache
	if useCache {
		k, err := cacheKey(doc, vars)
		if err == nil {
			key = k
			if rc.policy == CacheFirst {
				if raw, ok := c.cache.get(key); ok {
					entry.Debug("cache hit")
					return decodeResult[T](op, raw)
				}
			}
		} else {
			useCache = false
		}
	}

	start := time.Now()
	raw, err := c.doRequest(ctx, doc, vars)
	entry = entry.WithField("duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return Result[T]{Err: &TransportError{Op: op, Message: err.Error(), Err: err}}
	}
	entry.Debug("request completed")

	switch {
	case kind == KindMutation && c.cache != nil && !rc.keepCache:
		c.cache.purge()
	case useCache:
		c.cache.add(key, raw)
	}
	return decodeResult[T](op, raw)
}

func decodeResult[T any](op string, raw json.RawMessage) Result[T] {
	if len(raw) == 0 || string(raw) == "null" {
		return Result[T]{}
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		err = fmt.Errorf("decode result: %w", err)
		return Result[T]{Err: &TransportError{Op: op, Message: err.Error(), Err: err}}
	}
	return Result[T]{Data: &out}
}

type gqlRequest struct {
	Query         string `json:"query"`
	Variables     any    `json:"variables,omitempty"`
	OperationName string `json:"operationName,omitempty"`
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors"`
}

// doRequest posts the operation and returns the raw "result" field of data.
func (c *Client) doRequest(ctx context.Context, doc Document, vars any) (json.RawMessage, error) {
	data, err := json.Marshal(gqlRequest{Query: doc.Body, Variables: vars, OperationName: doc.Name})
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, link := range c.links {
		link(ctx, req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10 MB max response
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var envelope gqlResponse
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && len(envelope.Errors) > 0 {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: envelope.Errors[0].Message}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(envelope.Errors) > 0 {
		return nil, &graphQLErrors{list: envelope.Errors}
	}
	return envelope.Data["result"], nil
}
