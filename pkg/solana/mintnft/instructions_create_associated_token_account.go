package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var CreateAssociatedTokenAccountSchema = solana.NewAccountSchema(
	string(InstructionTypeCreateAssociatedTokenAccount),
	1,
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "associated_token", Writable: true},
	solana.AccountSpec{Name: "authority"},
	solana.AccountSpec{Name: "mint"},
	solana.AccountSpec{Name: "system_program"},
	solana.AccountSpec{Name: "associated_token_program"},
	solana.AccountSpec{Name: "token_program"},
)

type CreateAssociatedTokenAccountInstructionAccounts struct {
	Payer           ed25519.PublicKey
	AssociatedToken ed25519.PublicKey
	Authority       ed25519.PublicKey
	Mint            ed25519.PublicKey
}

func (c *ProgramConfig) validateCreateAssociatedTokenAccount(accounts *CreateAssociatedTokenAccountInstructionAccounts) error {
	expected, err := derived(c.GetAssociatedTokenAddress(accounts.Authority, accounts.Mint))
	if err != nil {
		return err
	}
	return requireAddress("associated token account", expected, accounts.AssociatedToken)
}

func (c *ProgramConfig) NewCreateAssociatedTokenAccountInstruction(accounts *CreateAssociatedTokenAccountInstructionAccounts) (solana.Instruction, error) {
	if err := c.validateCreateAssociatedTokenAccount(accounts); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		CreateAssociatedTokenAccountSchema,
		InstructionTypeCreateAssociatedTokenAccount,
		map[string]ed25519.PublicKey{
			"payer":                    accounts.Payer,
			"associated_token":         accounts.AssociatedToken,
			"authority":                accounts.Authority,
			"mint":                     accounts.Mint,
			"system_program":           c.SystemProgram,
			"associated_token_program": c.AssociatedTokenProgram,
			"token_program":            c.TokenProgram,
		},
		nil,
	)
}

func DecompileCreateAssociatedTokenAccountInstruction(ix solana.Instruction) (*CreateAssociatedTokenAccountInstructionAccounts, error) {
	resolved, err := decompileInstruction(ix, CreateAssociatedTokenAccountSchema, InstructionTypeCreateAssociatedTokenAccount, nil)
	if err != nil {
		return nil, err
	}

	return &CreateAssociatedTokenAccountInstructionAccounts{
		Payer:           resolved.Key("payer"),
		AssociatedToken: resolved.Key("associated_token"),
		Authority:       resolved.Key("authority"),
		Mint:            resolved.Key("mint"),
	}, nil
}
