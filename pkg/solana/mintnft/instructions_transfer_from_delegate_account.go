package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var TransferFromDelegateAccountSchema = solana.NewAccountSchema(
	string(InstructionTypeTransferFromDelegateAccount),
	1,
	solana.AccountSpec{Name: "source", Writable: true},
	solana.AccountSpec{Name: "destination", Writable: true},
	solana.AccountSpec{Name: "delegate", Writable: true},
	solana.AccountSpec{Name: "token_program"},
)

type TransferFromDelegateAccountInstructionArgs struct {
	Amount uint64
	Bump   uint8
}

type TransferFromDelegateAccountInstructionAccounts struct {
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey
	Delegate    ed25519.PublicKey
}

func (c *ProgramConfig) validateTransferFromDelegateAccount(
	accounts *TransferFromDelegateAccountInstructionAccounts,
	args *TransferFromDelegateAccountInstructionArgs,
) error {
	if args.Amount == 0 {
		return validationErrorf("amount must be positive")
	}
	return requireDistinct("source and destination", accounts.Source, accounts.Destination)
}

// validateDelegateSeeds checks the delegate record against the owner of the
// source token account, which is read on chain.
func (c *ProgramConfig) validateDelegateSeeds(delegate, owner ed25519.PublicKey, bump uint8) error {
	expected, err := solana.CreateProgramAddress(c.Program, delegatePrefix, owner, []byte{bump})
	if err != nil {
		return newError(ErrorKindValidation, err)
	}
	return requireAddress("delegate", expected, delegate)
}

// NewTransferFromDelegateAccountInstruction moves args.Amount tokens out of the
// source account, signed by the delegate record of the source's owner. Bump
// is the bump returned by GetDelegateAddress for that owner.
func (c *ProgramConfig) NewTransferFromDelegateAccountInstruction(
	accounts *TransferFromDelegateAccountInstructionAccounts,
	args *TransferFromDelegateAccountInstructionArgs,
) (solana.Instruction, error) {
	if err := c.validateTransferFromDelegateAccount(accounts, args); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		TransferFromDelegateAccountSchema,
		InstructionTypeTransferFromDelegateAccount,
		map[string]ed25519.PublicKey{
			"source":        accounts.Source,
			"destination":   accounts.Destination,
			"delegate":      accounts.Delegate,
			"token_program": c.TokenProgram,
		},
		*args,
	)
}

func DecompileTransferFromDelegateAccountInstruction(ix solana.Instruction) (*TransferFromDelegateAccountInstructionAccounts, *TransferFromDelegateAccountInstructionArgs, error) {
	var args TransferFromDelegateAccountInstructionArgs
	resolved, err := decompileInstruction(ix, TransferFromDelegateAccountSchema, InstructionTypeTransferFromDelegateAccount, &args)
	if err != nil {
		return nil, nil, err
	}

	return &TransferFromDelegateAccountInstructionAccounts{
		Source:      resolved.Key("source"),
		Destination: resolved.Key("destination"),
		Delegate:    resolved.Key("delegate"),
	}, &args, nil
}
