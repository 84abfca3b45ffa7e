package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var InitializeMintSchema = solana.NewAccountSchema(
	string(InstructionTypeInitializeMint),
	1,
	solana.AccountSpec{Name: "mint", Signer: true, Writable: true},
	solana.AccountSpec{Name: "mint_authority", Signer: true, Writable: true},
	solana.AccountSpec{Name: "rent"},
	solana.AccountSpec{Name: "token_program"},
)

type InitializeMintInstructionAccounts struct {
	Mint          ed25519.PublicKey
	MintAuthority ed25519.PublicKey
}

// NewInitializeMintInstruction initializes a zero decimal mint. The mint
// authority also becomes the freeze authority.
func (c *ProgramConfig) NewInitializeMintInstruction(accounts *InitializeMintInstructionAccounts) (solana.Instruction, error) {
	return c.newInstruction(
		InitializeMintSchema,
		InstructionTypeInitializeMint,
		map[string]ed25519.PublicKey{
			"mint":           accounts.Mint,
			"mint_authority": accounts.MintAuthority,
			"rent":           c.RentSysvar,
			"token_program":  c.TokenProgram,
		},
		nil,
	)
}

func DecompileInitializeMintInstruction(ix solana.Instruction) (*InitializeMintInstructionAccounts, error) {
	resolved, err := decompileInstruction(ix, InitializeMintSchema, InstructionTypeInitializeMint, nil)
	if err != nil {
		return nil, err
	}

	return &InitializeMintInstructionAccounts{
		Mint:          resolved.Key("mint"),
		MintAuthority: resolved.Key("mint_authority"),
	}, nil
}
