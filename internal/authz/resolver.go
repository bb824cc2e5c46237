// Package authz decides access by walking an identity's parent-delegation
// chain: an admin role at any ancestor grants access regardless of depth.
package authz

import (
	"context"
	"fmt"

	"github.com/valuelab/fundpipe/internal/core"
	"go.uber.org/zap"
)

// Directory resolves identities by id. The production directory is an
// external collaborator; StaticDirectory stands in for it in-process.
type Directory interface {
	Lookup(ctx context.Context, id string) (*core.Identity, error)
}

// Resolver evaluates role requirements against a delegation chain.
type Resolver struct {
	directory Directory
	logger    *zap.Logger
}

// NewResolver creates a new permission resolver.
func NewResolver(directory Directory, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{directory: directory, logger: log}
}

// Authorize grants when the identity, or any ancestor reached through
// ParentID, holds the admin role or the required role. It fails closed:
// an exhausted chain, a failed ancestor lookup, or a revisited node all
// deny. Revisit detection guards against cyclic parent links.
func (r *Resolver) Authorize(ctx context.Context, identity *core.Identity, requiredRole string) error {
	if identity == nil {
		return core.ErrUnauthorized
	}
	if roleGrants(identity.Role, requiredRole) {
		return nil
	}

	visited := map[string]struct{}{identity.ID: {}}
	parentID := identity.ParentID
	for parentID != "" {
		if _, seen := visited[parentID]; seen {
			r.logger.Warn("delegation chain contains a cycle, denying",
				zap.String("identity", identity.ID),
				zap.String("revisited", parentID),
			)
			return core.ErrUnauthorized
		}
		visited[parentID] = struct{}{}

		ancestor, err := r.directory.Lookup(ctx, parentID)
		if err != nil {
			r.logger.Warn("ancestor lookup failed, denying",
				zap.String("identity", identity.ID),
				zap.String("ancestor", parentID),
				zap.Error(err),
			)
			return core.WrapError(core.ErrUnauthorized,
				core.WrapError(core.ErrLookupFailed, err))
		}

		if roleGrants(ancestor.Role, requiredRole) {
			return nil
		}
		parentID = ancestor.ParentID
	}

	return core.ErrUnauthorized
}

func roleGrants(role, required string) bool {
	return role == core.RoleAdmin || role == required
}

// StaticDirectory is a fixed in-memory directory loaded from config.
type StaticDirectory struct {
	users map[string]core.Identity
}

// NewStaticDirectory creates a directory from a fixed identity list.
func NewStaticDirectory(users []core.Identity) *StaticDirectory {
	m := make(map[string]core.Identity, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &StaticDirectory{users: m}
}

func (d *StaticDirectory) Lookup(ctx context.Context, id string) (*core.Identity, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, fmt.Errorf("unknown identity: %s", id)
	}
	return &u, nil
}
