package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is a source of untyped configuration values. Sources return either
// raw []byte values, which typed configs parse, or natively typed values.
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed is a config.Config with a typed value and a default.
type Typed[T any] interface {
	// Get returns the latest value, falling back to the last known value
	// when the source fails.
	Get(ctx context.Context) T

	// GetSafe is Get with the source error propagated.
	GetSafe(ctx context.Context) (T, error)

	Shutdown()
}

// Duration provides a time.Duration typed config.Config.
type Duration = Typed[time.Duration]

// Uint64 provides a uint64 typed config.Config.
type Uint64 = Typed[uint64]
