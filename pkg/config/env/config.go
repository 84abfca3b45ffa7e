package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/code-nft/pkg/config"
	"github.com/code-payments/code-nft/pkg/config/wrapper"
)

// conf reads an environment variable once, when it's constructed.
type conf struct {
	key string
	val string
}

// NewConfig returns a config sourced from the upper cased environment
// variable key.
func NewConfig(key string) config.Config {
	key = strings.ToUpper(key)
	return &conf{
		key: key,
		val: strings.TrimSpace(os.Getenv(key)),
	}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	if len(c.val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(c.val), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewUint64Config creates a env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

// NewDurationConfig creates a env-based duration config
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
