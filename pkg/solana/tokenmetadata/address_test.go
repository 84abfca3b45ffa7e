package tokenmetadata

import (
	"crypto/ed25519"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
)

func TestGetMetadataAddress(t *testing.T) {
	mint := generateKeys(t, 1)[0]

	address, bump, err := GetMetadataAddress(&GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)

	expected, err := solana.CreateProgramAddress(PROGRAM_ID, MetadataPrefix, PROGRAM_ID, mint, []byte{bump})
	require.NoError(t, err)
	assert.Equal(t, expected, address)

	again, againBump, err := GetMetadataAddress(&GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)
	assert.Equal(t, address, again)
	assert.Equal(t, bump, againBump)

	// Injected program ids change the address
	program := generateKeys(t, 1)[0]
	injected, _, err := GetMetadataAddress(&GetMetadataAddressArgs{Program: program, Mint: mint})
	require.NoError(t, err)
	assert.NotEqual(t, address, injected)
}

func TestGetEditionAddress(t *testing.T) {
	mint := generateKeys(t, 1)[0]

	address, bump, err := GetEditionAddress(&GetEditionAddressArgs{Mint: mint})
	require.NoError(t, err)

	expected, err := solana.CreateProgramAddress(PROGRAM_ID, MetadataPrefix, PROGRAM_ID, mint, EditionPrefix, []byte{bump})
	require.NoError(t, err)
	assert.Equal(t, expected, address)

	metadata, _, err := GetMetadataAddress(&GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)
	assert.NotEqual(t, metadata, address)
}

func TestGetEditionMarkerAddress(t *testing.T) {
	mint := generateKeys(t, 1)[0]

	getMarker := func(edition uint64) ed25519.PublicKey {
		address, _, err := GetEditionMarkerAddress(&GetEditionMarkerAddressArgs{MasterMint: mint, Edition: edition})
		require.NoError(t, err)
		return address
	}

	// Editions 0 and 247 share marker 0, 248 uses marker 1
	assert.Equal(t, getMarker(0), getMarker(247))
	assert.Equal(t, getMarker(1), getMarker(247))
	assert.NotEqual(t, getMarker(247), getMarker(248))
	assert.Equal(t, getMarker(248), getMarker(495))
	assert.NotEqual(t, getMarker(495), getMarker(496))

	// The decimal marker index is the final seed
	address, bump, err := GetEditionMarkerAddress(&GetEditionMarkerAddressArgs{MasterMint: mint, Edition: 1000})
	require.NoError(t, err)
	expected, err := solana.CreateProgramAddress(
		PROGRAM_ID,
		MetadataPrefix,
		PROGRAM_ID,
		mint,
		EditionPrefix,
		[]byte(strconv.Itoa(1000/248)),
		[]byte{bump},
	)
	require.NoError(t, err)
	assert.Equal(t, expected, address)

	// A different master mint never shares markers
	other := generateKeys(t, 1)[0]
	otherMarker, _, err := GetEditionMarkerAddress(&GetEditionMarkerAddressArgs{MasterMint: other, Edition: 1})
	require.NoError(t, err)
	assert.NotEqual(t, getMarker(1), otherMarker)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
