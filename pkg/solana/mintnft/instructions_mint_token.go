package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var MintTokenSchema = solana.NewAccountSchema(
	string(InstructionTypeMintToken),
	1,
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "mint", Writable: true},
	solana.AccountSpec{Name: "token_account", Writable: true},
	solana.AccountSpec{Name: "authority", Signer: true},
	solana.AccountSpec{Name: "token_program"},
)

type MintTokenInstructionArgs struct {
	Amount uint64
}

type MintTokenInstructionAccounts struct {
	Payer        ed25519.PublicKey
	Mint         ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	Authority    ed25519.PublicKey
}

func (c *ProgramConfig) validateMintToken(args *MintTokenInstructionArgs) error {
	if args.Amount == 0 {
		return validationErrorf("amount must be positive")
	}
	return nil
}

func (c *ProgramConfig) NewMintTokenInstruction(
	accounts *MintTokenInstructionAccounts,
	args *MintTokenInstructionArgs,
) (solana.Instruction, error) {
	if err := c.validateMintToken(args); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		MintTokenSchema,
		InstructionTypeMintToken,
		map[string]ed25519.PublicKey{
			"payer":         accounts.Payer,
			"mint":          accounts.Mint,
			"token_account": accounts.TokenAccount,
			"authority":     accounts.Authority,
			"token_program": c.TokenProgram,
		},
		*args,
	)
}

func DecompileMintTokenInstruction(ix solana.Instruction) (*MintTokenInstructionAccounts, *MintTokenInstructionArgs, error) {
	var args MintTokenInstructionArgs
	resolved, err := decompileInstruction(ix, MintTokenSchema, InstructionTypeMintToken, &args)
	if err != nil {
		return nil, nil, err
	}

	return &MintTokenInstructionAccounts{
		Payer:        resolved.Key("payer"),
		Mint:         resolved.Key("mint"),
		TokenAccount: resolved.Key("token_account"),
		Authority:    resolved.Key("authority"),
	}, &args, nil
}
