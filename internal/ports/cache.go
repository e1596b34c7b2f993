package ports

import (
	"context"
	"time"
)

// Cache is a small key-value cache used to expose read-mostly views (such as
// the station snapshot) to collaborators outside the scheduling core.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
