package pebble

import (
	"crypto/ed25519"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/localnet/tests"
)

func TestLocalnetPebbleStore(t *testing.T) {
	testStore, err := New("ledger", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer testStore.Close()

	teardown := func() {
		require.NoError(t, testStore.(*store).reset())
	}

	tests.RunTests(t, testStore, teardown)
}

func TestLocalnetPebbleStore_Reopen(t *testing.T) {
	fs := vfs.NewMem()

	first, err := New("ledger", &pebble.Options{FS: fs})
	require.NoError(t, err)

	account := marshalAccount(testAccount())
	require.NoError(t, first.(*store).db.Set(accountKey("address"), account, pebble.Sync))
	require.NoError(t, first.Close())

	second, err := New("ledger", &pebble.Options{FS: fs})
	require.NoError(t, err)
	defer second.Close()

	value, closer, err := second.(*store).db.Get(accountKey("address"))
	require.NoError(t, err)
	defer closer.Close()

	decoded, err := unmarshalAccount(value)
	require.NoError(t, err)
	require.Equal(t, testAccount(), decoded)
}

func testAccount() *solana.AccountInfo {
	owner := make(ed25519.PublicKey, ed25519.PublicKeySize)
	owner[0] = 7

	return &solana.AccountInfo{
		Data:     []byte{1, 2, 3, 4},
		Owner:    owner,
		Lamports: 2039280,
	}
}
