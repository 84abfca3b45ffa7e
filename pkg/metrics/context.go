package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewRelicContextKey is the context key under which the New Relic application
// is stored for custom metrics and events.
var NewRelicContextKey = newRelicContextKey{}

// NewContext returns a context carrying the New Relic application, so that
// RecordCount, RecordDuration and RecordEvent report to it.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}
