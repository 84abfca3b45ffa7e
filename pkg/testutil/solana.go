package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
)

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		keys[i] = GenerateSolanaKeypair(t).Public().(ed25519.PublicKey)
	}
	return keys
}

// NewFundedKeypair generates a keypair and airdrops lamports to it, waiting
// for the airdrop to be finalized.
func NewFundedKeypair(t *testing.T, client solana.Client, lamports uint64) ed25519.PrivateKey {
	key := GenerateSolanaKeypair(t)

	_, err := client.RequestAirdrop(key.Public().(ed25519.PublicKey), lamports, solana.CommitmentFinalized)
	require.NoError(t, err)

	balance, err := client.GetBalance(key.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	require.Equal(t, lamports, balance)

	return key
}
