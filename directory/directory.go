// Package directory resolves human-readable handles to stable repository
// DIDs through an external identity directory. Filters call it once at
// initialization and keep only the DIDs afterwards.
package directory

import "context"

type Resolver interface {
	// ResolveHandle returns the DID a handle currently points to. A
	// handle resolves to exactly one DID or fails (unknown, deleted, or
	// the directory is unreachable).
	ResolveHandle(ctx context.Context, handle string) (string, error)
}
