package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

var CreateTokenMetadataAccountSchema = solana.NewAccountSchema(
	string(InstructionTypeCreateTokenMetadataAccount),
	1,
	solana.AccountSpec{Name: "metadata", Writable: true},
	solana.AccountSpec{Name: "mint"},
	solana.AccountSpec{Name: "mint_authority", Signer: true},
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "update_authority", Signer: true},
	solana.AccountSpec{Name: "system_program"},
	solana.AccountSpec{Name: "rent"},
	solana.AccountSpec{Name: "token_metadata_program"},
)

type CreateTokenMetadataAccountInstructionArgs struct {
	Creators             []tokenmetadata.Creator
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
}

// DataV2 returns the metadata program representation of the args. An empty
// creator list is omitted.
func (args *CreateTokenMetadataAccountInstructionArgs) DataV2() tokenmetadata.DataV2 {
	data := tokenmetadata.DataV2{
		Name:                 args.Name,
		Symbol:               args.Symbol,
		Uri:                  args.Uri,
		SellerFeeBasisPoints: args.SellerFeeBasisPoints,
	}
	if len(args.Creators) > 0 {
		creators := append([]tokenmetadata.Creator{}, args.Creators...)
		data.Creators = &creators
	}
	return data
}

type CreateTokenMetadataAccountInstructionAccounts struct {
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

func (c *ProgramConfig) validateCreateTokenMetadataAccount(
	accounts *CreateTokenMetadataAccountInstructionAccounts,
	args *CreateTokenMetadataAccountInstructionArgs,
) error {
	data := args.DataV2()
	if err := data.Validate(); err != nil {
		return newError(ErrorKindValidation, err)
	}

	expected, err := derived(c.GetMetadataAddress(accounts.Mint))
	if err != nil {
		return err
	}
	return requireAddress("metadata", expected, accounts.Metadata)
}

func (c *ProgramConfig) NewCreateTokenMetadataAccountInstruction(
	accounts *CreateTokenMetadataAccountInstructionAccounts,
	args *CreateTokenMetadataAccountInstructionArgs,
) (solana.Instruction, error) {
	if err := c.validateCreateTokenMetadataAccount(accounts, args); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		CreateTokenMetadataAccountSchema,
		InstructionTypeCreateTokenMetadataAccount,
		map[string]ed25519.PublicKey{
			"metadata":               accounts.Metadata,
			"mint":                   accounts.Mint,
			"mint_authority":         accounts.MintAuthority,
			"payer":                  accounts.Payer,
			"update_authority":       accounts.UpdateAuthority,
			"system_program":         c.SystemProgram,
			"rent":                   c.RentSysvar,
			"token_metadata_program": c.MetadataProgram,
		},
		*args,
	)
}

func DecompileCreateTokenMetadataAccountInstruction(ix solana.Instruction) (*CreateTokenMetadataAccountInstructionAccounts, *CreateTokenMetadataAccountInstructionArgs, error) {
	var args CreateTokenMetadataAccountInstructionArgs
	resolved, err := decompileInstruction(ix, CreateTokenMetadataAccountSchema, InstructionTypeCreateTokenMetadataAccount, &args)
	if err != nil {
		return nil, nil, err
	}

	return &CreateTokenMetadataAccountInstructionAccounts{
		Metadata:        resolved.Key("metadata"),
		Mint:            resolved.Key("mint"),
		MintAuthority:   resolved.Key("mint_authority"),
		Payer:           resolved.Key("payer"),
		UpdateAuthority: resolved.Key("update_authority"),
	}, &args, nil
}
