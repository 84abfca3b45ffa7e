package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var DelegateNftSchema = solana.NewAccountSchema(
	string(InstructionTypeDelegateNft),
	1,
	solana.AccountSpec{Name: "source", Writable: true},
	solana.AccountSpec{Name: "delegate", Writable: true},
	solana.AccountSpec{Name: "signer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "token_program"},
)

type DelegateNftInstructionArgs struct {
	Amount uint64
}

type DelegateNftInstructionAccounts struct {
	Source   ed25519.PublicKey
	Delegate ed25519.PublicKey
	Signer   ed25519.PublicKey
}

func (c *ProgramConfig) validateDelegateNft(accounts *DelegateNftInstructionAccounts, args *DelegateNftInstructionArgs) error {
	if args.Amount == 0 {
		return validationErrorf("amount must be positive")
	}

	delegate, _, err := c.GetDelegateAddress(&GetDelegateAddressArgs{Signer: accounts.Signer})
	if err != nil {
		return newError(ErrorKindValidation, err)
	}
	return requireAddress("delegate", delegate, accounts.Delegate)
}

// NewDelegateNftInstruction approves the signer's delegate record to move up
// to args.Amount tokens out of the source token account.
func (c *ProgramConfig) NewDelegateNftInstruction(
	accounts *DelegateNftInstructionAccounts,
	args *DelegateNftInstructionArgs,
) (solana.Instruction, error) {
	if err := c.validateDelegateNft(accounts, args); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		DelegateNftSchema,
		InstructionTypeDelegateNft,
		map[string]ed25519.PublicKey{
			"source":        accounts.Source,
			"delegate":      accounts.Delegate,
			"signer":        accounts.Signer,
			"token_program": c.TokenProgram,
		},
		*args,
	)
}

func DecompileDelegateNftInstruction(ix solana.Instruction) (*DelegateNftInstructionAccounts, *DelegateNftInstructionArgs, error) {
	var args DelegateNftInstructionArgs
	resolved, err := decompileInstruction(ix, DelegateNftSchema, InstructionTypeDelegateNft, &args)
	if err != nil {
		return nil, nil, err
	}

	return &DelegateNftInstructionAccounts{
		Source:   resolved.Key("source"),
		Delegate: resolved.Key("delegate"),
		Signer:   resolved.Key("signer"),
	}, &args, nil
}
