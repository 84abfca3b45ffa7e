package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
)

// ProgramKey is the SPL token program.
var ProgramKey = solana.MustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

type Command byte

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs
const (
	CommandInitializeMint Command = iota
	CommandInitializeAccount
	CommandInitializeMultisig
	CommandTransfer
	CommandApprove
	CommandRevoke
	CommandSetAuthority
	CommandMintTo
	CommandBurn
	CommandCloseAccount
	CommandFreezeAccount
	CommandThawAccount

	CommandUnknown = Command(math.MaxUint8)
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/error.rs
const (
	ErrorNotRentExempt solana.CustomError = iota
	ErrorInsufficientFunds
	ErrorInvalidMint
	ErrorMintMismatch
	ErrorOwnerMismatch
	ErrorFixedSupply
	ErrorAlreadyInUse
	ErrorInvalidNumberOfProvidedSigners
	ErrorInvalidNumberOfRequiredSigners
	ErrorUninitializedState
	ErrorNativeNotSupported
	ErrorNonNativeHasBalance
	ErrorInvalidInstruction
	ErrorInvalidState
	ErrorOverflow
	ErrorAuthorityTypeNotSupported
	ErrorMintCannotFreeze
	ErrorAccountFrozen
	ErrorMintDecimalsMismatch
)

type AuthorityType byte

const (
	AuthorityTypeMintTokens AuthorityType = iota
	AuthorityTypeFreezeAccount
	AuthorityTypeAccountHolder
	AuthorityTypeCloseAccount
)

const (
	// tag, decimals, mint authority; followed by the optional freeze authority
	initializeMintPrefix = 1 + 1 + ed25519.PublicKeySize
	// tag, authority type; followed by the optional new authority
	setAuthorityPrefix = 1 + 1
	amountDataSize     = 1 + 8
)

func GetCommand(ix solana.Instruction) (Command, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}
	return Command(ix.Data[0]), nil
}

// expect validates the program and tag of ix, and that it carries at least
// minAccounts accounts. Extra accounts are multisig signers.
func expect(ix solana.Instruction, cmd Command, minAccounts int) error {
	actual, err := GetCommand(ix)
	switch {
	case err == solana.ErrIncorrectProgram:
		return err
	case err != nil, actual != cmd:
		return solana.ErrIncorrectInstruction
	case len(ix.Accounts) < minAccounts:
		return errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	return nil
}

// InitializeMint initializes a freshly created mint account. A nil
// freezeAuthority leaves the mint unfreezable.
//
// Accounts: [writable] mint, [] rent sysvar.
func InitializeMint(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) solana.Instruction {
	data := make([]byte, initializeMintPrefix, initializeMintPrefix+1+ed25519.PublicKeySize)
	data[0] = byte(CommandInitializeMint)
	data[1] = decimals
	copy(data[2:], mintAuthority)

	return solana.NewInstruction(
		ProgramKey,
		appendOptionalKey(data, freezeAuthority),
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeMint struct {
	Mint            ed25519.PublicKey
	Decimals        byte
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
}

func DecompileInitializeMint(ix solana.Instruction) (*DecompiledInitializeMint, error) {
	if err := expect(ix, CommandInitializeMint, 2); err != nil {
		return nil, err
	}
	if !bytes.Equal(system.RentSysVar, ix.Accounts[1].PublicKey) {
		return nil, errors.New("invalid rent program")
	}
	if len(ix.Data) <= initializeMintPrefix {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	freezeAuthority, err := parseOptionalKey(ix.Data[initializeMintPrefix:])
	if err != nil {
		return nil, errors.Wrap(err, "invalid freeze authority")
	}

	return &DecompiledInitializeMint{
		Mint:            ix.Accounts[0].PublicKey,
		Decimals:        ix.Data[1],
		MintAuthority:   ed25519.PublicKey(ix.Data[2:initializeMintPrefix]),
		FreezeAuthority: freezeAuthority,
	}, nil
}

// InitializeAccount initializes a freshly created token account for mint.
//
// Accounts: [writable, signer] account, [] mint, [] owner, [] rent sysvar.
func InitializeAccount(account, mint, owner ed25519.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandInitializeAccount)},
		solana.NewAccountMeta(account, true),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(owner, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeAccount struct {
	Account ed25519.PublicKey
	Mint    ed25519.PublicKey
	Owner   ed25519.PublicKey
}

func DecompileInitializeAccount(ix solana.Instruction) (*DecompiledInitializeAccount, error) {
	if err := expect(ix, CommandInitializeAccount, 4); err != nil {
		return nil, err
	}
	if len(ix.Data) != 1 {
		return nil, solana.ErrIncorrectInstruction
	}
	if !bytes.Equal(system.RentSysVar, ix.Accounts[3].PublicKey) {
		return nil, errors.New("invalid rent program")
	}

	return &DecompiledInitializeAccount{
		Account: ix.Accounts[0].PublicKey,
		Mint:    ix.Accounts[1].PublicKey,
		Owner:   ix.Accounts[2].PublicKey,
	}, nil
}

// Transfer moves amount tokens between two accounts of the same mint.
//
// Accounts: [writable] source, [writable] destination, [signer] owner or delegate.
func Transfer(source, dest, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return amountInstruction(CommandTransfer, amount, source, dest, owner, true)
}

type DecompiledTransfer struct {
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
	Amount      uint64
}

func DecompileTransfer(ix solana.Instruction) (*DecompiledTransfer, error) {
	args, err := decompileAmount(ix, CommandTransfer)
	if err != nil {
		return nil, err
	}
	return &DecompiledTransfer{
		Source:      args.accounts[0],
		Destination: args.accounts[1],
		Owner:       args.accounts[2],
		Amount:      args.amount,
	}, nil
}

// Approve gives delegate authority over amount tokens of source.
//
// Accounts: [writable] source, [] delegate, [signer] owner.
func Approve(source, delegate, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return amountInstruction(CommandApprove, amount, source, delegate, owner, false)
}

type DecompiledApprove struct {
	Source   ed25519.PublicKey
	Delegate ed25519.PublicKey
	Owner    ed25519.PublicKey
	Amount   uint64
}

func DecompileApprove(ix solana.Instruction) (*DecompiledApprove, error) {
	args, err := decompileAmount(ix, CommandApprove)
	if err != nil {
		return nil, err
	}
	return &DecompiledApprove{
		Source:   args.accounts[0],
		Delegate: args.accounts[1],
		Owner:    args.accounts[2],
		Amount:   args.amount,
	}, nil
}

// Revoke clears the delegate of source.
//
// Accounts: [writable] source, [signer] owner.
func Revoke(source, owner ed25519.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandRevoke)},
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledRevoke struct {
	Source ed25519.PublicKey
	Owner  ed25519.PublicKey
}

func DecompileRevoke(ix solana.Instruction) (*DecompiledRevoke, error) {
	if err := expect(ix, CommandRevoke, 2); err != nil {
		return nil, err
	}
	return &DecompiledRevoke{
		Source: ix.Accounts[0].PublicKey,
		Owner:  ix.Accounts[1].PublicKey,
	}, nil
}

// SetAuthority replaces an authority of a mint or token account. A nil
// newAuthority disables the authority entirely.
//
// Accounts: [writable] mint or account, [signer] current authority.
func SetAuthority(account, currentAuthority, newAuthority ed25519.PublicKey, authorityType AuthorityType) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		appendOptionalKey([]byte{byte(CommandSetAuthority), byte(authorityType)}, newAuthority),
		solana.NewAccountMeta(account, false),
		solana.NewReadonlyAccountMeta(currentAuthority, true),
	)
}

type DecompiledSetAuthority struct {
	Account          ed25519.PublicKey
	CurrentAuthority ed25519.PublicKey
	NewAuthority     ed25519.PublicKey
	Type             AuthorityType
}

func DecompileSetAuthority(ix solana.Instruction) (*DecompiledSetAuthority, error) {
	if err := expect(ix, CommandSetAuthority, 2); err != nil {
		return nil, err
	}
	if len(ix.Data) <= setAuthorityPrefix {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	newAuthority, err := parseOptionalKey(ix.Data[setAuthorityPrefix:])
	if err != nil {
		return nil, errors.Wrap(err, "invalid new authority")
	}

	return &DecompiledSetAuthority{
		Account:          ix.Accounts[0].PublicKey,
		CurrentAuthority: ix.Accounts[1].PublicKey,
		NewAuthority:     newAuthority,
		Type:             AuthorityType(ix.Data[1]),
	}, nil
}

// MintTo mints amount new tokens into dest.
//
// Accounts: [writable] mint, [writable] destination, [signer] mint authority.
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	return amountInstruction(CommandMintTo, amount, mint, dest, authority, true)
}

type DecompiledMintTo struct {
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	Amount      uint64
}

func DecompileMintTo(ix solana.Instruction) (*DecompiledMintTo, error) {
	args, err := decompileAmount(ix, CommandMintTo)
	if err != nil {
		return nil, err
	}
	return &DecompiledMintTo{
		Mint:        args.accounts[0],
		Destination: args.accounts[1],
		Authority:   args.accounts[2],
		Amount:      args.amount,
	}, nil
}

// Burn destroys amount tokens held by account.
//
// Accounts: [writable] account, [writable] mint, [signer] owner or delegate.
func Burn(account, mint, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return amountInstruction(CommandBurn, amount, account, mint, owner, true)
}

type DecompiledBurn struct {
	Account ed25519.PublicKey
	Mint    ed25519.PublicKey
	Owner   ed25519.PublicKey
	Amount  uint64
}

func DecompileBurn(ix solana.Instruction) (*DecompiledBurn, error) {
	args, err := decompileAmount(ix, CommandBurn)
	if err != nil {
		return nil, err
	}
	return &DecompiledBurn{
		Account: args.accounts[0],
		Mint:    args.accounts[1],
		Owner:   args.accounts[2],
		Amount:  args.amount,
	}, nil
}

// CloseAccount closes an empty token account, sending its lamports to dest.
//
// Accounts: [writable] account, [writable] destination, [signer] owner.
func CloseAccount(account, dest, owner ed25519.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandCloseAccount)},
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledCloseAccount struct {
	Account     ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
}

func DecompileCloseAccount(ix solana.Instruction) (*DecompiledCloseAccount, error) {
	if err := expect(ix, CommandCloseAccount, 3); err != nil {
		return nil, err
	}
	if len(ix.Data) != 1 {
		return nil, solana.ErrIncorrectInstruction
	}

	return &DecompiledCloseAccount{
		Account:     ix.Accounts[0].PublicKey,
		Destination: ix.Accounts[1].PublicKey,
		Owner:       ix.Accounts[2].PublicKey,
	}, nil
}

// amountInstruction builds the layout shared by Transfer, Approve, MintTo and
// Burn: a writable account, a second account, a signing authority, then the
// amount as a little endian u64.
func amountInstruction(cmd Command, amount uint64, first, second, authority ed25519.PublicKey, secondWritable bool) solana.Instruction {
	data := make([]byte, amountDataSize)
	data[0] = byte(cmd)
	binary.LittleEndian.PutUint64(data[1:], amount)

	secondMeta := solana.NewReadonlyAccountMeta(second, false)
	if secondWritable {
		secondMeta = solana.NewAccountMeta(second, false)
	}

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(first, false),
		secondMeta,
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

type amountArgs struct {
	accounts [3]ed25519.PublicKey
	amount   uint64
}

func decompileAmount(ix solana.Instruction, cmd Command) (*amountArgs, error) {
	if err := expect(ix, cmd, 3); err != nil {
		return nil, err
	}
	if len(ix.Data) != amountDataSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	args := &amountArgs{amount: binary.LittleEndian.Uint64(ix.Data[1:])}
	for i := range args.accounts {
		args.accounts[i] = ix.Accounts[i].PublicKey
	}
	return args, nil
}

// Instruction data tags optional keys with a single byte, unlike account state.
func appendOptionalKey(data []byte, key ed25519.PublicKey) []byte {
	if len(key) == 0 {
		return append(data, 0)
	}
	return append(append(data, 1), key...)
}

func parseOptionalKey(data []byte) (ed25519.PublicKey, error) {
	switch {
	case data[0] == 0 && len(data) == 1:
		return nil, nil
	case data[0] == 1 && len(data) == 1+ed25519.PublicKeySize:
		return ed25519.PublicKey(data[1:]), nil
	default:
		return nil, errors.Errorf("malformed optional key: tag %d, %d bytes", data[0], len(data)-1)
	}
}
