package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/thriftease/thriftease/internal/logging"
	"github.com/thriftease/thriftease/pkg/client"
)

// Probes fire on form keystrokes, so they share a limiter per store.
const (
	probeInterval = 100 * time.Millisecond
	probeBurst    = 3
)

func newProbeLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(probeInterval), probeBurst)
}

// probe runs a boolean existence query. Any failure, including a cancelled
// wait on the limiter, reports false.
func probe(ctx context.Context, c *client.Client, lim *rate.Limiter, log logrus.FieldLogger, doc client.Document, vars any) bool {
	if err := lim.Wait(ctx); err != nil {
		log.WithError(err).WithField(logging.FieldOperation, doc.Name).Debug("probe throttled")
		return false
	}
	r := client.Query[bool](ctx, c, doc, vars, client.WithFetchPolicy(client.NoCache))
	if r.Err != nil {
		log.WithError(r.Err).WithField(logging.FieldOperation, doc.Name).Warn("probe failed, assuming absent")
		return false
	}
	return r.Data != nil && *r.Data
}
