package mintnft

import (
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/binary"
)

var CreateMasterEditionAccountSchema = solana.NewAccountSchema(
	string(InstructionTypeCreateMasterEditionAccount),
	1,
	solana.AccountSpec{Name: "master_edition", Writable: true},
	solana.AccountSpec{Name: "metadata", Writable: true},
	solana.AccountSpec{Name: "mint", Writable: true},
	solana.AccountSpec{Name: "mint_authority", Signer: true},
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "update_authority", Signer: true},
	solana.AccountSpec{Name: "system_program"},
	solana.AccountSpec{Name: "rent"},
	solana.AccountSpec{Name: "token_metadata_program"},
	solana.AccountSpec{Name: "token_program"},
)

type CreateMasterEditionAccountInstructionArgs struct {
	// Nil for an unlimited supply
	MaxSupply *uint64
}

func (args CreateMasterEditionAccountInstructionArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	return binary.WriteOptionalUint64(enc, args.MaxSupply)
}

func (args *CreateMasterEditionAccountInstructionArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	args.MaxSupply, err = binary.ReadOptionalUint64(dec)
	return err
}

type CreateMasterEditionAccountInstructionAccounts struct {
	MasterEdition   ed25519.PublicKey
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

func (c *ProgramConfig) validateCreateMasterEditionAccount(accounts *CreateMasterEditionAccountInstructionAccounts) error {
	metadata, err := derived(c.GetMetadataAddress(accounts.Mint))
	if err != nil {
		return err
	}
	if err := requireAddress("metadata", metadata, accounts.Metadata); err != nil {
		return err
	}

	masterEdition, err := derived(c.GetEditionAddress(accounts.Mint))
	if err != nil {
		return err
	}
	return requireAddress("master edition", masterEdition, accounts.MasterEdition)
}

// NewCreateMasterEditionAccountInstruction turns a minted, single token mint
// into a master edition. Minting is disabled afterwards.
func (c *ProgramConfig) NewCreateMasterEditionAccountInstruction(
	accounts *CreateMasterEditionAccountInstructionAccounts,
	args *CreateMasterEditionAccountInstructionArgs,
) (solana.Instruction, error) {
	if err := c.validateCreateMasterEditionAccount(accounts); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		CreateMasterEditionAccountSchema,
		InstructionTypeCreateMasterEditionAccount,
		map[string]ed25519.PublicKey{
			"master_edition":         accounts.MasterEdition,
			"metadata":               accounts.Metadata,
			"mint":                   accounts.Mint,
			"mint_authority":         accounts.MintAuthority,
			"payer":                  accounts.Payer,
			"update_authority":       accounts.UpdateAuthority,
			"system_program":         c.SystemProgram,
			"rent":                   c.RentSysvar,
			"token_metadata_program": c.MetadataProgram,
			"token_program":          c.TokenProgram,
		},
		*args,
	)
}

func DecompileCreateMasterEditionAccountInstruction(ix solana.Instruction) (*CreateMasterEditionAccountInstructionAccounts, *CreateMasterEditionAccountInstructionArgs, error) {
	var args CreateMasterEditionAccountInstructionArgs
	resolved, err := decompileInstruction(ix, CreateMasterEditionAccountSchema, InstructionTypeCreateMasterEditionAccount, &args)
	if err != nil {
		return nil, nil, err
	}

	return &CreateMasterEditionAccountInstructionAccounts{
		MasterEdition:   resolved.Key("master_edition"),
		Metadata:        resolved.Key("metadata"),
		Mint:            resolved.Key("mint"),
		MintAuthority:   resolved.Key("mint_authority"),
		Payer:           resolved.Key("payer"),
		UpdateAuthority: resolved.Key("update_authority"),
	}, &args, nil
}
