package wrapper

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/config"
	"github.com/code-payments/code-nft/pkg/config/memory"
)

type typedTestCase[T any] struct {
	defaultValue    T
	overridenValue  T
	rawValue        []byte
	rawParsed       T
	unsupportedType interface{}
}

func runTypedConfigTest[T any](t *testing.T, newConfig func(config.Config, T) config.Typed[T], tc typedTestCase[T]) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := newConfig(mock, tc.defaultValue)

	// The default value is returned when no override is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.defaultValue, val)
	assert.Equal(t, tc.defaultValue, wrapper.Get(ctx))

	mock.SetValue(tc.overridenValue)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.overridenValue, val)

	// The last observed value survives source errors
	mock.InduceErrors()
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.Equal(t, tc.overridenValue, val)
	assert.Equal(t, tc.overridenValue, wrapper.Get(ctx))
	mock.StopInducingErrors()

	mock.SetValue(tc.rawValue)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, tc.rawParsed, val)

	mock.SetValue([]byte("cannot convert"))
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.Equal(t, tc.rawParsed, val)

	mock.SetValue(tc.unsupportedType)
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)

	// Clearing the value falls back to the default
	mock.ClearValue()
	assert.Equal(t, tc.defaultValue, wrapper.Get(ctx))

	wrapper.Shutdown()
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestUint64Config(t *testing.T) {
	runTypedConfigTest(t, NewUint64Config, typedTestCase[uint64]{
		defaultValue:    math.MaxUint64,
		overridenValue:  0,
		rawValue:        []byte("248"),
		rawParsed:       248,
		unsupportedType: "not supported",
	})

	mock := memory.NewConfig(uint(7))
	assert.EqualValues(t, 7, NewUint64Config(mock, 1).Get(context.Background()))
}

func TestDurationConfig(t *testing.T) {
	runTypedConfigTest(t, NewDurationConfig, typedTestCase[time.Duration]{
		defaultValue:    time.Second,
		overridenValue:  time.Millisecond,
		rawValue:        []byte("1m30s"),
		rawParsed:       90 * time.Second,
		unsupportedType: 42,
	})
}
