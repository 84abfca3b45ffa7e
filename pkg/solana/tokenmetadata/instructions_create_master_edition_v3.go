package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var CreateMasterEditionV3Schema = solana.NewAccountSchema(
	"create_master_edition_v3",
	1,
	solana.AccountSpec{Name: "edition", Writable: true},
	solana.AccountSpec{Name: "mint", Writable: true},
	solana.AccountSpec{Name: "update_authority", Signer: true},
	solana.AccountSpec{Name: "mint_authority", Signer: true},
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "metadata", Writable: true},
	solana.AccountSpec{Name: "token_program"},
	solana.AccountSpec{Name: "system_program"},
	solana.AccountSpec{Name: "rent"},
)

type CreateMasterEditionV3InstructionArgs struct {
	// Nil for an unlimited supply
	MaxSupply *uint64
}

type CreateMasterEditionV3InstructionAccounts struct {
	Edition         ed25519.PublicKey
	Mint            ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	Metadata        ed25519.PublicKey
}

func NewCreateMasterEditionV3Instruction(
	accounts *CreateMasterEditionV3InstructionAccounts,
	args *CreateMasterEditionV3InstructionArgs,
) (solana.Instruction, error) {
	return newInstruction(
		CreateMasterEditionV3Schema,
		InstructionTypeCreateMasterEditionV3,
		map[string]ed25519.PublicKey{
			"edition":          accounts.Edition,
			"mint":             accounts.Mint,
			"update_authority": accounts.UpdateAuthority,
			"mint_authority":   accounts.MintAuthority,
			"payer":            accounts.Payer,
			"metadata":         accounts.Metadata,
			"token_program":    SPL_TOKEN_PROGRAM_ID,
			"system_program":   SYSTEM_PROGRAM_ID,
			"rent":             SYSVAR_RENT_PUBKEY,
		},
		*args,
	)
}

func DecompileCreateMasterEditionV3Instruction(ix solana.Instruction) (*CreateMasterEditionV3InstructionAccounts, *CreateMasterEditionV3InstructionArgs, error) {
	var args CreateMasterEditionV3InstructionArgs
	resolved, err := decompileInstruction(ix, CreateMasterEditionV3Schema, InstructionTypeCreateMasterEditionV3, &args)
	if err != nil {
		return nil, nil, err
	}

	return &CreateMasterEditionV3InstructionAccounts{
		Edition:         resolved.Key("edition"),
		Mint:            resolved.Key("mint"),
		UpdateAuthority: resolved.Key("update_authority"),
		MintAuthority:   resolved.Key("mint_authority"),
		Payer:           resolved.Key("payer"),
		Metadata:        resolved.Key("metadata"),
	}, &args, nil
}
