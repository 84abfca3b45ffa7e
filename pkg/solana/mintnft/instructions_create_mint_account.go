package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var CreateMintAccountSchema = solana.NewAccountSchema(
	string(InstructionTypeCreateMintAccount),
	1,
	solana.AccountSpec{Name: "mint", Signer: true, Writable: true},
	solana.AccountSpec{Name: "mint_authority", Signer: true, Writable: true},
	solana.AccountSpec{Name: "token_program"},
	solana.AccountSpec{Name: "system_program"},
)

type CreateMintAccountInstructionAccounts struct {
	Mint          ed25519.PublicKey
	MintAuthority ed25519.PublicKey
}

func (c *ProgramConfig) validateCreateMintAccount(accounts *CreateMintAccountInstructionAccounts) error {
	return requireDistinct("mint and mint authority", accounts.Mint, accounts.MintAuthority)
}

// NewCreateMintAccountInstruction allocates a rent exempt, token program owned
// mint account funded by the mint authority.
func (c *ProgramConfig) NewCreateMintAccountInstruction(accounts *CreateMintAccountInstructionAccounts) (solana.Instruction, error) {
	if err := c.validateCreateMintAccount(accounts); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		CreateMintAccountSchema,
		InstructionTypeCreateMintAccount,
		map[string]ed25519.PublicKey{
			"mint":           accounts.Mint,
			"mint_authority": accounts.MintAuthority,
			"token_program":  c.TokenProgram,
			"system_program": c.SystemProgram,
		},
		nil,
	)
}

func DecompileCreateMintAccountInstruction(ix solana.Instruction) (*CreateMintAccountInstructionAccounts, error) {
	resolved, err := decompileInstruction(ix, CreateMintAccountSchema, InstructionTypeCreateMintAccount, nil)
	if err != nil {
		return nil, err
	}

	return &CreateMintAccountInstructionAccounts{
		Mint:          resolved.Key("mint"),
		MintAuthority: resolved.Key("mint_authority"),
	}, nil
}
