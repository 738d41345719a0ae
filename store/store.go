// Package store persists small pieces of watcher state, currently just
// the stream cursor, so a restart resumes where the last run stopped.
package store

import "context"

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	Delete(ctx context.Context, key string) error

	Close() error
}
