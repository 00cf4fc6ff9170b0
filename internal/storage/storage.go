// Package storage is the storefront's persistent key/value store.
//
// It plays the part a browser's localStorage plays for a web client: values
// survive restarts, and a Store reports writes made by other instances sharing
// the same backing store (but never its own writes) through Watch.
package storage

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyAuthUser      = "authUser"
	KeySimulatedDate = "simulatedDate"
)

var ErrClosed = errors.New("storage closed")

// Change describes a write observed from another instance.
// NewValue is nil when the key was removed.
type Change struct {
	Key      string
	NewValue *string
}

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Watch streams changes made by other instances until ctx is done.
	Watch(ctx context.Context) (<-chan Change, error)
	Close() error
}

func strPtr(s string) *string { return &s }
