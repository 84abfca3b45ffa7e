package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference transaction from the Solana SDK test suite, re-signed with a
// keypair whose public key matches the seed.
//
// Source: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
const sdkReferenceTransaction = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_SDKReference(t *testing.T) {
	signer := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	program := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4, 2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		public(signer),
		NewInstruction(program, []byte{1, 2, 3}, NewAccountMeta(public(signer), true), NewAccountMeta(to, false)),
	)
	require.NoError(t, tx.Sign(signer))
	assert.Equal(t, sdkReferenceTransaction, base64.StdEncoding.EncodeToString(tx.Marshal()))

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(tx.Marshal()))
	assert.Equal(t, tx, decoded)
	assert.NoError(t, decoded.VerifySignatures())
}

func TestTransaction_RoundTrip(t *testing.T) {
	keys := sortedKeys(t, 6)
	payer, mint, masterMint, marker, program, otherProgram := keys[0], keys[1], keys[2], keys[3], keys[4], keys[5]

	tx := NewTransaction(
		public(payer),
		NewInstruction(public(program), []byte{11, 0, 0, 0, 0, 0, 0, 0, 1},
			NewAccountMeta(public(mint), true),
			NewAccountMeta(public(marker), false),
			NewReadonlyAccountMeta(public(masterMint), false),
		),
		NewInstruction(public(otherProgram), nil, NewAccountMeta(public(mint), true)),
	)
	tx.SetBlockhash(Blockhash{1, 2, 3})
	require.NoError(t, tx.Sign(payer, mint))

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(tx.Marshal()))
	assert.Equal(t, tx.Marshal(), decoded.Marshal())
	assert.Equal(t, Blockhash{1, 2, 3}, decoded.Message.RecentBlockhash)
	assert.Equal(t, tx.Signature(), decoded.Signature())
	assert.NoError(t, decoded.VerifySignatures())
}

func TestTransaction_EmptyAccountKey(t *testing.T) {
	keys := generateKeys(t, 2)

	tx := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), []byte{1}, NewAccountMeta(nil, false)))
	require.NoError(t, tx.Sign(keys[0]))

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(tx.Marshal()))
	assert.Contains(t, decoded.Message.Accounts, ed25519.PublicKey(make([]byte, ed25519.PublicKeySize)))
}

func TestTransaction_UnmarshalInvalid(t *testing.T) {
	keys := generateKeys(t, 2)
	newTx := func() Transaction {
		return NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), nil, NewAccountMeta(public(keys[0]), true)))
	}

	tx := newTx()
	tx.Message.Instructions[0].ProgramIndex = 2
	assert.Error(t, tx.Unmarshal(tx.Marshal()))

	tx = newTx()
	tx.Message.Instructions[0].Accounts = []byte{2}
	assert.Error(t, tx.Unmarshal(tx.Marshal()))

	tx = newTx()
	encoded := tx.Marshal()
	assert.Error(t, tx.Unmarshal(encoded[:len(encoded)-1]))

	var m Message
	assert.Error(t, m.Unmarshal(nil))
	assert.Error(t, m.Unmarshal([]byte{0x80, 1, 0, 0}))
}

func TestNewTransaction_AccountOrdering(t *testing.T) {
	keys := sortedKeys(t, 8)
	payer, program, program2 := keys[0], keys[1], keys[2]
	readonlySigner, readonly, writable, writableSigner, upgraded := keys[3], keys[4], keys[5], keys[6], keys[7]

	tx := NewTransaction(
		public(payer),
		NewInstruction(public(program2), []byte{1},
			NewReadonlyAccountMeta(public(readonlySigner), true),
			NewReadonlyAccountMeta(public(readonly), false),
			NewAccountMeta(public(writable), false),
			NewAccountMeta(public(writableSigner), true),
			NewReadonlyAccountMeta(public(upgraded), false),
		),
		NewInstruction(public(program), []byte{2},
			// Never downgraded
			NewReadonlyAccountMeta(public(writableSigner), false),
			NewReadonlyAccountMeta(public(writable), false),
			// Upgraded to a writable signer
			NewAccountMeta(public(upgraded), true),
		),
	)

	// Signing order doesn't matter
	require.NoError(t, tx.Sign(readonlySigner, upgraded, writableSigner, payer))
	assert.NoError(t, tx.VerifySignatures())

	expected := []ed25519.PublicKey{
		public(payer),
		public(writableSigner),
		public(upgraded),
		public(readonlySigner),
		public(writable),
		public(readonly),
		public(program),
		public(program2),
	}
	assert.Equal(t, expected, tx.Message.Accounts)

	assert.Equal(t, Header{NumSignatures: 4, NumReadonlySigned: 1, NumReadOnly: 3}, tx.Message.Header)
	for i := range tx.Message.Accounts {
		assert.Equal(t, i < 4, tx.Message.IsSigner(i), i)
		assert.Equal(t, i < 3 || i == 4, tx.Message.IsWritable(i), i)
	}

	first := tx.Message.Instructions[0]
	assert.EqualValues(t, indexOf(tx.Message.Accounts, public(program2)), first.ProgramIndex)
	assert.Equal(t, []byte{
		byte(indexOf(tx.Message.Accounts, public(readonlySigner))),
		byte(indexOf(tx.Message.Accounts, public(readonly))),
		byte(indexOf(tx.Message.Accounts, public(writable))),
		byte(indexOf(tx.Message.Accounts, public(writableSigner))),
		byte(indexOf(tx.Message.Accounts, public(upgraded))),
	}, first.Accounts)
}

func TestTransaction_VerifySignatures(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, program, other := keys[0], keys[1], keys[2]

	tx := NewTransaction(public(payer), NewInstruction(public(program), []byte{1}, NewAccountMeta(public(other), true)))
	assert.ErrorIs(t, tx.VerifySignatures(), ErrMissingSignature)

	require.NoError(t, tx.Sign(payer))
	assert.ErrorIs(t, tx.VerifySignatures(), ErrMissingSignature)

	require.NoError(t, tx.Sign(other))
	assert.NoError(t, tx.VerifySignatures())

	tx.Message.Instructions[0].Data = []byte{2}
	assert.ErrorIs(t, tx.VerifySignatures(), ErrInvalidSignature)

	// Not a signer of this transaction
	assert.Error(t, tx.Sign(program))
}

func TestMessage_DecompileInstruction(t *testing.T) {
	keys := generateKeys(t, 6)
	payer, program := keys[0], keys[1]

	accounts := []AccountMeta{
		NewReadonlyAccountMeta(public(keys[2]), true),
		NewReadonlyAccountMeta(public(keys[3]), false),
		NewAccountMeta(public(keys[4]), false),
		NewAccountMeta(public(keys[5]), true),
		NewAccountMeta(public(payer), true),
	}
	tx := NewTransaction(public(payer), NewInstruction(public(program), []byte{9, 8}, accounts...))

	ix, err := tx.Message.DecompileInstruction(0)
	require.NoError(t, err)
	assert.Equal(t, public(program), ix.Program)
	assert.Equal(t, []byte{9, 8}, ix.Data)
	assert.Equal(t, accounts, ix.Accounts)

	programIndex := indexOf(tx.Message.Accounts, public(program))
	assert.False(t, tx.Message.IsWritable(programIndex))
	assert.False(t, tx.Message.IsSigner(programIndex))

	_, err = tx.Message.DecompileInstruction(1)
	assert.Error(t, err)
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)
	for i := range keys {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}
	return keys
}

func sortedKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := generateKeys(t, amount)
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(public(keys[i]), public(keys[j])) < 0
	})
	return keys
}
