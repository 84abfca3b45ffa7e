package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var CreateEditionAccountSchema = solana.NewAccountSchema(
	string(InstructionTypeCreateEditionAccount),
	1,
	solana.AccountSpec{Name: "edition_metadata", Writable: true},
	solana.AccountSpec{Name: "edition", Writable: true},
	solana.AccountSpec{Name: "master_edition", Writable: true},
	solana.AccountSpec{Name: "edition_mint", Writable: true},
	solana.AccountSpec{Name: "edition_marker", Writable: true},
	solana.AccountSpec{Name: "edition_mint_authority", Signer: true},
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "token_account_owner", Signer: true},
	solana.AccountSpec{Name: "token_account"},
	solana.AccountSpec{Name: "edition_update_authority", Signer: true},
	solana.AccountSpec{Name: "metadata"},
	solana.AccountSpec{Name: "metadata_mint"},
	solana.AccountSpec{Name: "token_metadata_program"},
	solana.AccountSpec{Name: "token_program"},
	solana.AccountSpec{Name: "system_program"},
	solana.AccountSpec{Name: "rent"},
)

type CreateEditionAccountInstructionArgs struct {
	Edition uint64
}

type CreateEditionAccountInstructionAccounts struct {
	EditionMetadata        ed25519.PublicKey
	Edition                ed25519.PublicKey
	MasterEdition          ed25519.PublicKey
	EditionMint            ed25519.PublicKey
	EditionMarker          ed25519.PublicKey
	EditionMintAuthority   ed25519.PublicKey
	Payer                  ed25519.PublicKey
	TokenAccountOwner      ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	EditionUpdateAuthority ed25519.PublicKey
	Metadata               ed25519.PublicKey
	MetadataMint           ed25519.PublicKey
}

func (c *ProgramConfig) validateCreateEditionAccount(
	accounts *CreateEditionAccountInstructionAccounts,
	args *CreateEditionAccountInstructionArgs,
) error {
	if args.Edition == 0 {
		return validationErrorf("edition numbers start at 1")
	}
	if err := requireDistinct("edition mint and master mint", accounts.EditionMint, accounts.MetadataMint); err != nil {
		return err
	}

	checks := []struct {
		name     string
		provided ed25519.PublicKey
		derive   func() (ed25519.PublicKey, error)
	}{
		{"metadata", accounts.Metadata, func() (ed25519.PublicKey, error) { return c.GetMetadataAddress(accounts.MetadataMint) }},
		{"master edition", accounts.MasterEdition, func() (ed25519.PublicKey, error) { return c.GetEditionAddress(accounts.MetadataMint) }},
		{"edition metadata", accounts.EditionMetadata, func() (ed25519.PublicKey, error) { return c.GetMetadataAddress(accounts.EditionMint) }},
		{"edition", accounts.Edition, func() (ed25519.PublicKey, error) { return c.GetEditionAddress(accounts.EditionMint) }},
		{"edition marker", accounts.EditionMarker, func() (ed25519.PublicKey, error) {
			return c.GetEditionMarkerAddress(accounts.MetadataMint, args.Edition)
		}},
	}
	for _, check := range checks {
		expected, err := derived(check.derive())
		if err != nil {
			return err
		}
		if err := requireAddress(check.name, expected, check.provided); err != nil {
			return err
		}
	}

	return nil
}

// NewCreateEditionAccountInstruction prints edition number args.Edition of the
// master edition onto a freshly minted single token mint.
func (c *ProgramConfig) NewCreateEditionAccountInstruction(
	accounts *CreateEditionAccountInstructionAccounts,
	args *CreateEditionAccountInstructionArgs,
) (solana.Instruction, error) {
	if err := c.validateCreateEditionAccount(accounts, args); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		CreateEditionAccountSchema,
		InstructionTypeCreateEditionAccount,
		map[string]ed25519.PublicKey{
			"edition_metadata":         accounts.EditionMetadata,
			"edition":                  accounts.Edition,
			"master_edition":           accounts.MasterEdition,
			"edition_mint":             accounts.EditionMint,
			"edition_marker":           accounts.EditionMarker,
			"edition_mint_authority":   accounts.EditionMintAuthority,
			"payer":                    accounts.Payer,
			"token_account_owner":      accounts.TokenAccountOwner,
			"token_account":            accounts.TokenAccount,
			"edition_update_authority": accounts.EditionUpdateAuthority,
			"metadata":                 accounts.Metadata,
			"metadata_mint":            accounts.MetadataMint,
			"token_metadata_program":   c.MetadataProgram,
			"token_program":            c.TokenProgram,
			"system_program":           c.SystemProgram,
			"rent":                     c.RentSysvar,
		},
		*args,
	)
}

func DecompileCreateEditionAccountInstruction(ix solana.Instruction) (*CreateEditionAccountInstructionAccounts, *CreateEditionAccountInstructionArgs, error) {
	var args CreateEditionAccountInstructionArgs
	resolved, err := decompileInstruction(ix, CreateEditionAccountSchema, InstructionTypeCreateEditionAccount, &args)
	if err != nil {
		return nil, nil, err
	}

	return &CreateEditionAccountInstructionAccounts{
		EditionMetadata:        resolved.Key("edition_metadata"),
		Edition:                resolved.Key("edition"),
		MasterEdition:          resolved.Key("master_edition"),
		EditionMint:            resolved.Key("edition_mint"),
		EditionMarker:          resolved.Key("edition_marker"),
		EditionMintAuthority:   resolved.Key("edition_mint_authority"),
		Payer:                  resolved.Key("payer"),
		TokenAccountOwner:      resolved.Key("token_account_owner"),
		TokenAccount:           resolved.Key("token_account"),
		EditionUpdateAuthority: resolved.Key("edition_update_authority"),
		Metadata:               resolved.Key("metadata"),
		MetadataMint:           resolved.Key("metadata_mint"),
	}, &args, nil
}
