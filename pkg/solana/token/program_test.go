package token

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
)

func TestGetCommand(t *testing.T) {
	keys := generateKeys(t, 1)

	for _, tc := range []struct {
		name        string
		instruction solana.Instruction
		expected    Command
		err         string
	}{
		{"mint to", MintTo(keys[0], keys[0], keys[0], 1), CommandMintTo, ""},
		{"wrong program", solana.NewInstruction(keys[0], []byte{byte(CommandBurn)}), CommandUnknown, solana.ErrIncorrectProgram.Error()},
		{"no data", solana.NewInstruction(ProgramKey, nil), CommandUnknown, "missing data"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := GetCommand(tc.instruction)
			assert.Equal(t, tc.expected, cmd)
			if tc.err == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.err)
			}
		})
	}
}

func TestInitializeMint(t *testing.T) {
	keys := generateKeys(t, 3)
	mint, masterEdition := keys[0], keys[1]

	// Edition mints hand both authorities to the master edition account.
	instruction := InitializeMint(mint, masterEdition, masterEdition, 0)

	expected := append([]byte{byte(CommandInitializeMint), 0}, masterEdition...)
	expected = append(append(expected, 1), masterEdition...)
	assert.Equal(t, expected, instruction.Data)

	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.EqualValues(t, system.RentSysVar, instruction.Accounts[1].PublicKey)

	decompiled, err := DecompileInitializeMint(instruction)
	require.NoError(t, err)
	assert.Equal(t, mint, decompiled.Mint)
	assert.Equal(t, masterEdition, decompiled.MintAuthority)
	assert.Equal(t, masterEdition, decompiled.FreezeAuthority)
	assert.Zero(t, decompiled.Decimals)

	t.Run("without freeze authority", func(t *testing.T) {
		instruction := InitializeMint(mint, masterEdition, nil, 6)
		assert.Len(t, instruction.Data, 1+1+ed25519.PublicKeySize+1)

		decompiled, err := DecompileInitializeMint(instruction)
		require.NoError(t, err)
		assert.Nil(t, decompiled.FreezeAuthority)
		assert.EqualValues(t, 6, decompiled.Decimals)
	})

	t.Run("truncated freeze authority", func(t *testing.T) {
		instruction := InitializeMint(mint, masterEdition, keys[2], 0)
		instruction.Data = instruction.Data[:len(instruction.Data)-1]

		_, err := DecompileInitializeMint(instruction)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid freeze authority")
	})

	t.Run("wrong rent sysvar", func(t *testing.T) {
		instruction := InitializeMint(mint, masterEdition, nil, 0)
		instruction.Accounts[1].PublicKey = keys[2]

		_, err := DecompileInitializeMint(instruction)
		assert.EqualError(t, err, "invalid rent program")
	})
}

func TestInitializeAccount(t *testing.T) {
	keys := generateKeys(t, 4)
	account, mint, owner := keys[0], keys[1], keys[2]

	instruction := InitializeAccount(account, mint, owner)

	assert.Equal(t, []byte{byte(CommandInitializeAccount)}, instruction.Data)
	for i, meta := range instruction.Accounts {
		assert.Equal(t, i == 0, meta.IsSigner, i)
		assert.Equal(t, i == 0, meta.IsWritable, i)
	}

	decompiled, err := DecompileInitializeAccount(instruction)
	require.NoError(t, err)
	assert.Equal(t, account, decompiled.Account)
	assert.Equal(t, mint, decompiled.Mint)
	assert.Equal(t, owner, decompiled.Owner)

	// Each corruption below is applied on top of the previous ones, so the
	// checks are exercised from the innermost outwards.
	for _, tc := range []struct {
		corrupt func(*solana.Instruction)
		check   func(error)
	}{
		{
			func(ix *solana.Instruction) { ix.Accounts[3].PublicKey = keys[3] },
			func(err error) { assert.True(t, strings.Contains(err.Error(), "invalid rent program")) },
		},
		{
			func(ix *solana.Instruction) { ix.Accounts = ix.Accounts[:2] },
			func(err error) { assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts")) },
		},
		{
			func(ix *solana.Instruction) { ix.Data = []byte{byte(CommandTransfer)} },
			func(err error) { assert.Equal(t, solana.ErrIncorrectInstruction, err) },
		},
		{
			func(ix *solana.Instruction) { ix.Data = nil },
			func(err error) { assert.Equal(t, solana.ErrIncorrectInstruction, err) },
		},
		{
			func(ix *solana.Instruction) { ix.Program = keys[3] },
			func(err error) { assert.Equal(t, solana.ErrIncorrectProgram, err) },
		},
	} {
		tc.corrupt(&instruction)
		_, err := DecompileInitializeAccount(instruction)
		require.Error(t, err)
		tc.check(err)
	}
}

func TestSetAuthority(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := SetAuthority(keys[0], keys[1], keys[2], AuthorityTypeCloseAccount)

	assert.EqualValues(t, CommandSetAuthority, instruction.Data[0])
	assert.EqualValues(t, AuthorityTypeCloseAccount, instruction.Data[1])
	assert.EqualValues(t, 1, instruction.Data[2])
	assert.EqualValues(t, keys[2], instruction.Data[3:])

	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.True(t, instruction.Accounts[1].IsSigner)
	assert.False(t, instruction.Accounts[1].IsWritable)

	decompiled, err := DecompileSetAuthority(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Account)
	assert.Equal(t, keys[1], decompiled.CurrentAuthority)
	assert.Equal(t, keys[2], decompiled.NewAuthority)
	assert.Equal(t, AuthorityTypeCloseAccount, decompiled.Type)

	instruction.Data = instruction.Data[:len(instruction.Data)-1]
	_, err = DecompileSetAuthority(instruction)
	assert.Error(t, err)
}

func TestSetAuthority_NoNewAuthority(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := SetAuthority(keys[0], keys[1], nil, AuthorityTypeMintTokens)

	assert.Equal(t, []byte{byte(CommandSetAuthority), byte(AuthorityTypeMintTokens), 0}, instruction.Data)

	decompiled, err := DecompileSetAuthority(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Account)
	assert.Equal(t, keys[1], decompiled.CurrentAuthority)
	assert.Nil(t, decompiled.NewAuthority)
	assert.Equal(t, AuthorityTypeMintTokens, decompiled.Type)
}

func TestAmountInstructions(t *testing.T) {
	keys := generateKeys(t, 3)

	expectedAmount := make([]byte, 8)
	binary.LittleEndian.PutUint64(expectedAmount, 123456789)

	for _, tc := range []struct {
		cmd         Command
		instruction solana.Instruction
		writable    []bool
	}{
		{CommandTransfer, Transfer(keys[0], keys[1], keys[2], 123456789), []bool{true, true, false}},
		{CommandApprove, Approve(keys[0], keys[1], keys[2], 123456789), []bool{true, false, false}},
		{CommandMintTo, MintTo(keys[0], keys[1], keys[2], 123456789), []bool{true, true, false}},
		{CommandBurn, Burn(keys[0], keys[1], keys[2], 123456789), []bool{true, true, false}},
	} {
		assert.EqualValues(t, tc.cmd, tc.instruction.Data[0])
		assert.Equal(t, expectedAmount, tc.instruction.Data[1:])

		require.Len(t, tc.instruction.Accounts, 3)
		for i, writable := range tc.writable {
			assert.Equal(t, writable, tc.instruction.Accounts[i].IsWritable, "%d: %d", tc.cmd, i)
			assert.Equal(t, i == 2, tc.instruction.Accounts[i].IsSigner, "%d: %d", tc.cmd, i)
		}
	}

	transfer, err := DecompileTransfer(Transfer(keys[0], keys[1], keys[2], 10))
	require.NoError(t, err)
	assert.Equal(t, keys[0], transfer.Source)
	assert.Equal(t, keys[1], transfer.Destination)
	assert.Equal(t, keys[2], transfer.Owner)
	assert.EqualValues(t, 10, transfer.Amount)

	approve, err := DecompileApprove(Approve(keys[0], keys[1], keys[2], 1))
	require.NoError(t, err)
	assert.Equal(t, keys[0], approve.Source)
	assert.Equal(t, keys[1], approve.Delegate)
	assert.Equal(t, keys[2], approve.Owner)
	assert.EqualValues(t, 1, approve.Amount)

	mintTo, err := DecompileMintTo(MintTo(keys[0], keys[1], keys[2], 1))
	require.NoError(t, err)
	assert.Equal(t, keys[0], mintTo.Mint)
	assert.Equal(t, keys[1], mintTo.Destination)
	assert.Equal(t, keys[2], mintTo.Authority)
	assert.EqualValues(t, 1, mintTo.Amount)

	burn, err := DecompileBurn(Burn(keys[0], keys[1], keys[2], 1))
	require.NoError(t, err)
	assert.Equal(t, keys[0], burn.Account)
	assert.Equal(t, keys[1], burn.Mint)
	assert.Equal(t, keys[2], burn.Owner)
	assert.EqualValues(t, 1, burn.Amount)

	_, err = DecompileBurn(MintTo(keys[0], keys[1], keys[2], 1))
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	invalid := Transfer(keys[0], keys[1], keys[2], 10)
	invalid.Data = invalid.Data[:5]
	_, err = DecompileTransfer(invalid)
	assert.Error(t, err)
}

func TestRevoke(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := Revoke(keys[0], keys[1])
	assert.Equal(t, []byte{byte(CommandRevoke)}, instruction.Data)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.True(t, instruction.Accounts[1].IsSigner)

	decompiled, err := DecompileRevoke(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Source)
	assert.Equal(t, keys[1], decompiled.Owner)
}

func TestCloseAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := CloseAccount(keys[0], keys[1], keys[2])

	assert.Equal(t, []byte{byte(CommandCloseAccount)}, instruction.Data)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)
	assert.True(t, instruction.Accounts[2].IsSigner)
	assert.False(t, instruction.Accounts[2].IsWritable)

	decompiled, err := DecompileCloseAccount(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Account)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.Owner)

	instruction.Accounts = instruction.Accounts[:2]
	_, err = DecompileCloseAccount(instruction)
	assert.Error(t, err)
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
