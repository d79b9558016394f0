package memento

import (
	"context"

	"github.com/kafkiansky/memento/protocol"
)

// Querier is the operation surface of the client: one method per memcache
// command. All methods are fallible and return a complete response or an
// error, never a partial result.
type Querier interface {
	Set(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error)
	Add(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error)
	Replace(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error)
	Append(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error)
	Prepend(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error)
	Cas(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error)
	Get(ctx context.Context, key protocol.Key) (*protocol.Response, error)
	Gets(ctx context.Context, keys ...protocol.Key) (*protocol.Response, error)
	Incr(ctx context.Context, key protocol.Key, delta uint64) (*protocol.Response, error)
	Decr(ctx context.Context, key protocol.Key, delta uint64) (*protocol.Response, error)
	Delete(ctx context.Context, key protocol.Key) (*protocol.Response, error)
	Version(ctx context.Context) (*protocol.Response, error)
	Stats(ctx context.Context) (*protocol.Response, error)
	Quit(ctx context.Context) (*protocol.Response, error)
}
