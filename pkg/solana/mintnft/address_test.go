package mintnft

import (
	"crypto/ed25519"
	"crypto/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/token"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

func TestGetDelegateAddress(t *testing.T) {
	config := DefaultProgramConfig()

	signer := publicKey(newKey(t))
	address, bump, err := config.GetDelegateAddress(&GetDelegateAddressArgs{Signer: signer})
	require.NoError(t, err)

	again, againBump, err := config.GetDelegateAddress(&GetDelegateAddressArgs{Signer: signer})
	require.NoError(t, err)
	assert.EqualValues(t, address, again)
	assert.Equal(t, bump, againBump)

	expected, err := solana.CreateProgramAddress(PROGRAM_ID, []byte("delegate_nft"), signer, []byte{bump})
	require.NoError(t, err)
	assert.EqualValues(t, expected, address)
	assert.False(t, solana.IsOnCurve(address))

	other, _, err := config.GetDelegateAddress(&GetDelegateAddressArgs{Signer: publicKey(newKey(t))})
	require.NoError(t, err)
	assert.NotEqualValues(t, address, other)

	alternate := DefaultProgramConfig()
	alternate.Program = publicKey(newKey(t))
	moved, _, err := alternate.GetDelegateAddress(&GetDelegateAddressArgs{Signer: signer})
	require.NoError(t, err)
	assert.NotEqualValues(t, address, moved)
}

func TestGetAssociatedTokenAddress(t *testing.T) {
	config := DefaultProgramConfig()

	owner := publicKey(newKey(t))
	mint := publicKey(newKey(t))

	actual, err := config.GetAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	expected, err := token.GetAssociatedAccount(owner, mint)
	require.NoError(t, err)
	assert.EqualValues(t, expected, actual)
}

func TestGetEditionAddresses(t *testing.T) {
	config := DefaultProgramConfig()
	mint := publicKey(newKey(t))

	metadata, err := config.GetMetadataAddress(mint)
	require.NoError(t, err)
	expected, err := solana.FindProgramAddress(tokenmetadata.PROGRAM_ID, []byte("metadata"), tokenmetadata.PROGRAM_ID, mint)
	require.NoError(t, err)
	assert.EqualValues(t, expected, metadata)

	edition, err := config.GetEditionAddress(mint)
	require.NoError(t, err)
	expected, err = solana.FindProgramAddress(tokenmetadata.PROGRAM_ID, []byte("metadata"), tokenmetadata.PROGRAM_ID, mint, []byte("edition"))
	require.NoError(t, err)
	assert.EqualValues(t, expected, edition)

	for _, tc := range []struct {
		edition uint64
		index   uint64
	}{
		{1, 0},
		{247, 0},
		{248, 1},
		{495, 1},
		{496, 2},
	} {
		marker, err := config.GetEditionMarkerAddress(mint, tc.edition)
		require.NoError(t, err)

		expected, err := solana.FindProgramAddress(
			tokenmetadata.PROGRAM_ID,
			[]byte("metadata"),
			tokenmetadata.PROGRAM_ID,
			mint,
			[]byte("edition"),
			[]byte(strconv.FormatUint(tc.index, 10)),
		)
		require.NoError(t, err)
		assert.EqualValues(t, expected, marker, "edition %d", tc.edition)
	}

	first, err := config.GetEditionMarkerAddress(mint, 1)
	require.NoError(t, err)
	last, err := config.GetEditionMarkerAddress(mint, 247)
	require.NoError(t, err)
	next, err := config.GetEditionMarkerAddress(mint, 248)
	require.NoError(t, err)
	assert.EqualValues(t, first, last)
	assert.NotEqualValues(t, first, next)
}

func newKey(t *testing.T) ed25519.PrivateKey {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return key
}

func publicKey(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}
