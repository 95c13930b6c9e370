package store

import (
	"context"

	"github.com/thriftease/thriftease/pkg/client"
	"github.com/thriftease/thriftease/pkg/domain"
)

// Users manages the signed-in user's own record.
type Users struct {
	c *client.Client
}

// NewUsers builds the user store on top of c.
func NewUsers(c *client.Client) *Users {
	return &Users{c: c}
}

// Get returns the user the current token belongs to.
func (s *Users) Get(ctx context.Context) Result[domain.User] {
	r := client.Query[client.GetPayload[domain.User]](ctx, s.c, client.GetUser, nil,
		client.WithFetchPolicy(client.NetworkOnly))
	if r.Err != nil {
		return Result[domain.User]{Err: r.Err}
	}
	if r.Data == nil {
		return Result[domain.User]{}
	}
	return Result[domain.User]{Data: r.Data.Data}
}

// Update changes the signed-in user's profile. Nil fields are left as they are.
func (s *Users) Update(ctx context.Context, in domain.UpdateUserInput) Result[domain.User] {
	in.ClientMutationID = mutationID(in.ClientMutationID)
	r := client.Mutate[client.MutationPayload[domain.User]](ctx, s.c, client.UpdateUser, map[string]any{"user": in})
	return fromMutation(r)
}

// Delete removes the signed-in user's account on the server. The caller is
// responsible for signing out afterwards.
func (s *Users) Delete(ctx context.Context) Result[domain.User] {
	in := struct {
		ClientMutationID string `json:"clientMutationId"`
	}{mutationID("")}
	r := client.Mutate[client.MutationPayload[domain.User]](ctx, s.c, client.DeleteUser, map[string]any{"input": in})
	return fromMutation(r)
}
