// Package registry provides starlane's in-tree stand-in for the Registry
// contract spec.md §1 treats as an external collaborator ("consumed only
// via its lookup/assign contract"). sqlite.go is the reference/demo
// implementation used by the star CLI command and tests; production
// deployments supply their own Registry behind the same interface.
package registry

import (
	"context"
	"errors"

	"github.com/starlane-io/starlane/internal/identity"
)

// ErrNotFound is returned by Locate when no record exists for a point.
var ErrNotFound = errors.New("registry: particle not found")

// ParticleRecord is the Registry's lookup result (spec.md §3): a stub
// identifying the particle plus its resolved location.
type ParticleRecord struct {
	Stub       identity.Surface
	Kind       string
	Status     string
	Properties map[string]string
	Location   identity.Route
}

// Registry is the contract the messaging core consumes (spec.md §6):
// locate a particle's record, read its properties, and assign it to a
// star. Lookups are expected to be effectively pure for the core's
// purposes — callers cache what they read (see field.Field's bind cache).
type Registry interface {
	Locate(ctx context.Context, point identity.Point) (ParticleRecord, error)
	GetProperties(ctx context.Context, point identity.Point) (map[string]string, error)
	Assign(ctx context.Context, point identity.Point, star identity.StarKey) error
}
