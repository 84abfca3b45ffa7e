package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var MintNewEditionFromMasterEditionViaTokenSchema = solana.NewAccountSchema(
	"mint_new_edition_from_master_edition_via_token",
	1,
	solana.AccountSpec{Name: "new_metadata", Writable: true},
	solana.AccountSpec{Name: "new_edition", Writable: true},
	solana.AccountSpec{Name: "master_edition", Writable: true},
	solana.AccountSpec{Name: "new_mint", Writable: true},
	solana.AccountSpec{Name: "edition_marker", Writable: true},
	solana.AccountSpec{Name: "new_mint_authority", Signer: true},
	solana.AccountSpec{Name: "payer", Signer: true, Writable: true},
	solana.AccountSpec{Name: "token_account_owner", Signer: true},
	solana.AccountSpec{Name: "token_account"},
	solana.AccountSpec{Name: "new_metadata_update_authority"},
	solana.AccountSpec{Name: "metadata"},
	solana.AccountSpec{Name: "token_program"},
	solana.AccountSpec{Name: "system_program"},
	solana.AccountSpec{Name: "rent"},
)

type MintNewEditionFromMasterEditionViaTokenInstructionArgs struct {
	Edition uint64
}

type MintNewEditionFromMasterEditionViaTokenInstructionAccounts struct {
	NewMetadata                ed25519.PublicKey
	NewEdition                 ed25519.PublicKey
	MasterEdition              ed25519.PublicKey
	NewMint                    ed25519.PublicKey
	EditionMarker              ed25519.PublicKey
	NewMintAuthority           ed25519.PublicKey
	Payer                      ed25519.PublicKey
	TokenAccountOwner          ed25519.PublicKey
	TokenAccount               ed25519.PublicKey
	NewMetadataUpdateAuthority ed25519.PublicKey
	Metadata                   ed25519.PublicKey
}

func NewMintNewEditionFromMasterEditionViaTokenInstruction(
	accounts *MintNewEditionFromMasterEditionViaTokenInstructionAccounts,
	args *MintNewEditionFromMasterEditionViaTokenInstructionArgs,
) (solana.Instruction, error) {
	return newInstruction(
		MintNewEditionFromMasterEditionViaTokenSchema,
		InstructionTypeMintNewEditionFromMasterEditionViaToken,
		map[string]ed25519.PublicKey{
			"new_metadata":                  accounts.NewMetadata,
			"new_edition":                   accounts.NewEdition,
			"master_edition":                accounts.MasterEdition,
			"new_mint":                      accounts.NewMint,
			"edition_marker":                accounts.EditionMarker,
			"new_mint_authority":            accounts.NewMintAuthority,
			"payer":                         accounts.Payer,
			"token_account_owner":           accounts.TokenAccountOwner,
			"token_account":                 accounts.TokenAccount,
			"new_metadata_update_authority": accounts.NewMetadataUpdateAuthority,
			"metadata":                      accounts.Metadata,
			"token_program":                 SPL_TOKEN_PROGRAM_ID,
			"system_program":                SYSTEM_PROGRAM_ID,
			"rent":                          SYSVAR_RENT_PUBKEY,
		},
		*args,
	)
}

func DecompileMintNewEditionFromMasterEditionViaTokenInstruction(ix solana.Instruction) (*MintNewEditionFromMasterEditionViaTokenInstructionAccounts, *MintNewEditionFromMasterEditionViaTokenInstructionArgs, error) {
	var args MintNewEditionFromMasterEditionViaTokenInstructionArgs
	resolved, err := decompileInstruction(ix, MintNewEditionFromMasterEditionViaTokenSchema, InstructionTypeMintNewEditionFromMasterEditionViaToken, &args)
	if err != nil {
		return nil, nil, err
	}

	return &MintNewEditionFromMasterEditionViaTokenInstructionAccounts{
		NewMetadata:                resolved.Key("new_metadata"),
		NewEdition:                 resolved.Key("new_edition"),
		MasterEdition:              resolved.Key("master_edition"),
		NewMint:                    resolved.Key("new_mint"),
		EditionMarker:              resolved.Key("edition_marker"),
		NewMintAuthority:           resolved.Key("new_mint_authority"),
		Payer:                      resolved.Key("payer"),
		TokenAccountOwner:          resolved.Key("token_account_owner"),
		TokenAccount:               resolved.Key("token_account"),
		NewMetadataUpdateAuthority: resolved.Key("new_metadata_update_authority"),
		Metadata:                   resolved.Key("metadata"),
	}, &args, nil
}
