package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var CreateMetadataAccountV3Schema = solana.NewAccountSchema(
	"create_metadata_account_v3",
	1,
	solana.AccountSpec{Name: "metadata", Writable: true},
	solana.AccountSpec{Name: "mint"},
	solana.AccountSpec{Name: "mint_authority", Signer: true},
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "update_authority", Signer: true},
	solana.AccountSpec{Name: "system_program"},
	solana.AccountSpec{Name: "rent"},
)

type CreateMetadataAccountV3InstructionArgs struct {
	Data              DataV2
	IsMutable         bool
	CollectionDetails *CollectionDetails
}

type CreateMetadataAccountV3InstructionAccounts struct {
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

func NewCreateMetadataAccountV3Instruction(
	accounts *CreateMetadataAccountV3InstructionAccounts,
	args *CreateMetadataAccountV3InstructionArgs,
) (solana.Instruction, error) {
	return newInstruction(
		CreateMetadataAccountV3Schema,
		InstructionTypeCreateMetadataAccountV3,
		map[string]ed25519.PublicKey{
			"metadata":         accounts.Metadata,
			"mint":             accounts.Mint,
			"mint_authority":   accounts.MintAuthority,
			"payer":            accounts.Payer,
			"update_authority": accounts.UpdateAuthority,
			"system_program":   SYSTEM_PROGRAM_ID,
			"rent":             SYSVAR_RENT_PUBKEY,
		},
		*args,
	)
}

func DecompileCreateMetadataAccountV3Instruction(ix solana.Instruction) (*CreateMetadataAccountV3InstructionAccounts, *CreateMetadataAccountV3InstructionArgs, error) {
	var args CreateMetadataAccountV3InstructionArgs
	resolved, err := decompileInstruction(ix, CreateMetadataAccountV3Schema, InstructionTypeCreateMetadataAccountV3, &args)
	if err != nil {
		return nil, nil, err
	}

	return &CreateMetadataAccountV3InstructionAccounts{
		Metadata:        resolved.Key("metadata"),
		Mint:            resolved.Key("mint"),
		MintAuthority:   resolved.Key("mint_authority"),
		Payer:           resolved.Key("payer"),
		UpdateAuthority: resolved.Key("update_authority"),
	}, &args, nil
}
