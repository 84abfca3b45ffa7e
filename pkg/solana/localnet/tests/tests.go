package tests

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/localnet"
)

func RunTests(t *testing.T, s localnet.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s localnet.Store){
		testRoundTrip,
		testCommitOverwrites,
		testCommitCloses,
		testCommitIsolation,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s localnet.Store) {
	ctx := context.Background()
	address := newAddress(t)

	actual, err := s.Get(ctx, address)
	assert.Equal(t, localnet.ErrAccountNotFound, err)
	assert.Nil(t, actual)

	expected := &solana.AccountInfo{
		Data:       []byte{1, 2, 3},
		Owner:      newAddress(t),
		Lamports:   1_000_000,
		Executable: true,
	}
	require.NoError(t, s.Commit(ctx, map[string]*solana.AccountInfo{
		base58.Encode(address): expected,
	}))

	actual, err = s.Get(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, expected.Data, actual.Data)
	assert.EqualValues(t, expected.Owner, actual.Owner)
	assert.Equal(t, expected.Lamports, actual.Lamports)
	assert.True(t, actual.Executable)

	// Accounts without data round trip as empty
	require.NoError(t, s.Commit(ctx, map[string]*solana.AccountInfo{
		base58.Encode(address): {Owner: expected.Owner, Lamports: 5},
	}))
	actual, err = s.Get(ctx, address)
	require.NoError(t, err)
	assert.Empty(t, actual.Data)
	assert.EqualValues(t, 5, actual.Lamports)
	assert.False(t, actual.Executable)
}

func testCommitOverwrites(t *testing.T, s localnet.Store) {
	ctx := context.Background()

	addresses := []ed25519.PublicKey{newAddress(t), newAddress(t), newAddress(t)}
	owner := newAddress(t)

	updates := make(map[string]*solana.AccountInfo)
	for i, address := range addresses {
		updates[base58.Encode(address)] = &solana.AccountInfo{
			Owner:    owner,
			Lamports: uint64(i + 1),
			Data:     []byte{byte(i)},
		}
	}
	require.NoError(t, s.Commit(ctx, updates))

	require.NoError(t, s.Commit(ctx, map[string]*solana.AccountInfo{
		base58.Encode(addresses[1]): {Owner: owner, Lamports: 100, Data: []byte{42, 42}},
	}))

	for i, address := range addresses {
		actual, err := s.Get(ctx, address)
		require.NoError(t, err)

		if i == 1 {
			assert.EqualValues(t, 100, actual.Lamports)
			assert.Equal(t, []byte{42, 42}, actual.Data)
			continue
		}
		assert.EqualValues(t, i+1, actual.Lamports)
		assert.Equal(t, []byte{byte(i)}, actual.Data)
	}
}

func testCommitCloses(t *testing.T, s localnet.Store) {
	ctx := context.Background()

	closedByZero := newAddress(t)
	closedByNil := newAddress(t)
	kept := newAddress(t)
	owner := newAddress(t)

	require.NoError(t, s.Commit(ctx, map[string]*solana.AccountInfo{
		base58.Encode(closedByZero): {Owner: owner, Lamports: 10},
		base58.Encode(closedByNil):  {Owner: owner, Lamports: 10},
		base58.Encode(kept):         {Owner: owner, Lamports: 10},
	}))

	require.NoError(t, s.Commit(ctx, map[string]*solana.AccountInfo{
		base58.Encode(closedByZero): {Owner: owner, Data: []byte{1}},
		base58.Encode(closedByNil):  nil,
	}))

	_, err := s.Get(ctx, closedByZero)
	assert.Equal(t, localnet.ErrAccountNotFound, err)
	_, err = s.Get(ctx, closedByNil)
	assert.Equal(t, localnet.ErrAccountNotFound, err)

	actual, err := s.Get(ctx, kept)
	require.NoError(t, err)
	assert.EqualValues(t, 10, actual.Lamports)

	// Closing an account that never existed is a no-op
	require.NoError(t, s.Commit(ctx, map[string]*solana.AccountInfo{
		base58.Encode(newAddress(t)): nil,
	}))
}

func testCommitIsolation(t *testing.T, s localnet.Store) {
	ctx := context.Background()

	address := newAddress(t)
	committed := &solana.AccountInfo{
		Owner:    newAddress(t),
		Lamports: 10,
		Data:     []byte{1, 2, 3},
	}
	require.NoError(t, s.Commit(ctx, map[string]*solana.AccountInfo{
		base58.Encode(address): committed,
	}))

	// Mutating the committed value or a loaded copy must not leak into the
	// store.
	committed.Data[0] = 9
	committed.Lamports = 99

	loaded, err := s.Get(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, loaded.Data)
	assert.EqualValues(t, 10, loaded.Lamports)

	loaded.Data[1] = 9
	reloaded, err := s.Get(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, reloaded.Data)
}

func newAddress(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}
