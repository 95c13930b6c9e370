package store

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

// TagListParams selects a page of tags.
type TagListParams = ListParams[domain.TagFilter, domain.TagOrder]

// Tags reads and writes the signed-in user's tags.
type Tags struct {
	crud  crud[domain.Tag]
	probe *rate.Limiter
	log   *logrus.Entry
}

// NewTags builds the tag store on top of c.
func NewTags(c *client.Client, log logrus.FieldLogger) *Tags {
	return &Tags{
		crud:  crud[domain.Tag]{c: c, docs: client.TagDocuments, variable: "tag"},
		probe: newProbeLimiter(),
		log:   entityLog(log, "tag"),
	}
}

// Create sends the createTag mutation. A missing clientMutationId is filled in.
func (s *Tags) Create(ctx context.Context, in domain.CreateTagInput) Result[domain.Tag] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.create(ctx, in)
}

// List fetches one page. Filter, order and paginator are sent as given.
func (s *Tags) List(ctx context.Context, p TagListParams) Result[Page[domain.Tag]] {
	return list(ctx, s.crud, p)
}

// Get fetches a tag by id. Data is nil when the server knows no such tag.
func (s *Tags) Get(ctx context.Context, id string) Result[domain.Tag] {
	return s.crud.get(ctx, id)
}

// Update changes a tag. Nil fields in the input are left as they are.
func (s *Tags) Update(ctx context.Context, in domain.UpdateTagInput) Result[domain.Tag] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	return s.crud.update(ctx, in)
}

// Delete removes a tag by id and returns the removed record.
func (s *Tags) Delete(ctx context.Context, id string) Result[domain.Tag] {
	return s.crud.delete(ctx, id)
}

// Existing reports whether a tag named name already exists. It returns false
// when the server cannot be asked.
func (s *Tags) Existing(ctx context.Context, name string) bool {
	return probe(ctx, s.crud.c, s.probe, s.log, client.TagExisting, map[string]string{"name": name})
}
