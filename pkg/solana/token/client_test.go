package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
)

type accountInfoClient struct {
	solana.Client
	accounts map[string]solana.AccountInfo
}

func (c *accountInfoClient) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	info, ok := c.accounts[base58.Encode(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func TestClient_GetMint(t *testing.T) {
	keys := generateKeys(t, 3)

	mint := Mint{
		MintAuthority: keys[1],
		Supply:        1,
		IsInitialized: true,
	}

	sc := &accountInfoClient{accounts: map[string]solana.AccountInfo{
		base58.Encode(keys[0]): {Owner: ProgramKey, Data: mint.Marshal()},
		base58.Encode(keys[1]): {Owner: keys[2], Data: mint.Marshal()},
		base58.Encode(keys[2]): {Owner: ProgramKey, Data: (&Mint{}).Marshal()},
	}}
	client := NewClient(sc)

	actual, err := client.GetMint(keys[0], solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, mint, *actual)

	_, err = client.GetMint(keys[1], solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidMint, err)

	_, err = client.GetMint(keys[2], solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidMint, err)

	_, err = client.GetMint(generateKeys(t, 1)[0], solana.CommitmentFinalized)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestClient_GetAccount(t *testing.T) {
	keys := generateKeys(t, 4)

	account := Account{
		Mint:   keys[1],
		Owner:  keys[2],
		Amount: 1,
		State:  AccountStateInitialized,
	}

	sc := &accountInfoClient{accounts: map[string]solana.AccountInfo{
		base58.Encode(keys[0]): {Owner: ProgramKey, Data: account.Marshal()},
		base58.Encode(keys[3]): {Owner: ProgramKey, Data: make([]byte, AccountSize)},
	}}
	client := NewClient(sc)

	actual, err := client.GetAccount(keys[0], keys[1], solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, account, *actual)

	_, err = client.GetAccount(keys[0], keys[2], solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = client.GetAccount(keys[3], keys[1], solana.CommitmentFinalized)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = client.GetAccount(keys[2], keys[1], solana.CommitmentFinalized)
	assert.Equal(t, ErrAccountNotFound, err)
}
