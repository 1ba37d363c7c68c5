package record

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists at the given key.
var ErrNotFound = errors.New("record not found")

// Store is a generic keyed-record store. Keys are slash-separated paths,
// e.g. users/<identity id>. Values are (de)serialized from/into v.
type Store interface {
	ReadRecord(ctx context.Context, key string, v interface{}) error
	WriteRecord(ctx context.Context, key string, v interface{}) error
}
