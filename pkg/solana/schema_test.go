package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountSchema_BuildAndResolve(t *testing.T) {
	schema := NewAccountSchema(
		"test_instruction",
		1,
		AccountSpec{Name: "target", Writable: true},
		AccountSpec{Name: "authority", Signer: true},
		AccountSpec{Name: "program"},
	)

	assert.Equal(t, 3, schema.Len())
	for i, name := range []string{"target", "authority", "program"} {
		position, ok := schema.Position(name)
		require.True(t, ok)
		assert.Equal(t, i, position)
	}
	_, ok := schema.Position("unknown")
	assert.False(t, ok)

	keys := generatePublicKeys(t, 3)
	metas, err := schema.Build(map[string]ed25519.PublicKey{
		"program":   keys[2],
		"authority": keys[1],
		"target":    keys[0],
	})
	require.NoError(t, err)
	require.Len(t, metas, 3)

	assert.Equal(t, keys[0], metas[0].PublicKey)
	assert.True(t, metas[0].IsWritable)
	assert.False(t, metas[0].IsSigner)

	assert.Equal(t, keys[1], metas[1].PublicKey)
	assert.False(t, metas[1].IsWritable)
	assert.True(t, metas[1].IsSigner)

	assert.Equal(t, keys[2], metas[2].PublicKey)
	assert.False(t, metas[2].IsWritable)
	assert.False(t, metas[2].IsSigner)

	resolved, err := schema.Resolve(metas)
	require.NoError(t, err)
	assert.Equal(t, keys[0], resolved.Key("target"))
	assert.Equal(t, keys[1], resolved.Key("authority"))
	assert.Equal(t, keys[2], resolved.Key("program"))
	assert.Nil(t, resolved.Key("unknown"))

	// Extra privileges are fine
	metas[2].IsWritable = true
	_, err = schema.Resolve(metas)
	assert.NoError(t, err)

	// Trailing accounts are ignored
	_, err = schema.Resolve(append(metas, NewAccountMeta(keys[0], false)))
	assert.NoError(t, err)
}

func TestAccountSchema_Errors(t *testing.T) {
	schema := NewAccountSchema(
		"test_instruction",
		1,
		AccountSpec{Name: "target", Writable: true},
		AccountSpec{Name: "authority", Signer: true},
	)
	keys := generatePublicKeys(t, 2)

	_, err := schema.Build(map[string]ed25519.PublicKey{"target": keys[0]})
	assert.True(t, errors.Is(err, ErrMissingSchemaAccount))

	_, err = schema.Build(map[string]ed25519.PublicKey{"target": keys[0], "authority": nil})
	assert.True(t, errors.Is(err, ErrMissingSchemaAccount))

	_, err = schema.Build(map[string]ed25519.PublicKey{"target": keys[0], "authority": keys[1], "other": keys[1]})
	assert.Error(t, err)

	_, err = schema.Resolve([]AccountMeta{NewAccountMeta(keys[0], false)})
	assert.True(t, errors.Is(err, ErrNotEnoughAccountKeys))

	_, err = schema.Resolve([]AccountMeta{
		NewReadonlyAccountMeta(keys[0], false),
		NewAccountMeta(keys[1], true),
	})
	assert.True(t, errors.Is(err, ErrAccountPrivilegeError))

	_, err = schema.Resolve([]AccountMeta{
		NewAccountMeta(keys[0], false),
		NewAccountMeta(keys[1], false),
	})
	assert.True(t, errors.Is(err, ErrAccountPrivilegeError))

	assert.Panics(t, func() {
		NewAccountSchema("dupe", 1, AccountSpec{Name: "a"}, AccountSpec{Name: "a"})
	})
	assert.Panics(t, func() {
		NewAccountSchema("empty", 1, AccountSpec{})
	})
}

func generatePublicKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)
	for i, priv := range generateKeys(t, amount) {
		keys[i] = public(priv)
	}
	return keys
}
