package storage

import "context"

// Pair is one key/value written by MultiSet
type Pair struct {
	Key   string
	Value string
}

// Storage is the durable local key/value store backing the session.
// Missing keys are simply absent from MultiGet results; they are not errors.
type Storage interface {
	MultiGet(ctx context.Context, keys ...string) (map[string]string, error)
	MultiSet(ctx context.Context, pairs ...Pair) error
	MultiRemove(ctx context.Context, keys ...string) error
}
