package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var BurnEditionNftSchema = solana.NewAccountSchema(
	"burn_edition_nft",
	1,
	solana.AccountSpec{Name: "metadata", Writable: true},
	solana.AccountSpec{Name: "owner", Signer: true, Writable: true},
	solana.AccountSpec{Name: "print_edition_mint", Writable: true},
	solana.AccountSpec{Name: "master_edition_mint"},
	solana.AccountSpec{Name: "print_edition_token_account", Writable: true},
	solana.AccountSpec{Name: "master_edition_token_account"},
	solana.AccountSpec{Name: "master_edition", Writable: true},
	solana.AccountSpec{Name: "print_edition", Writable: true},
	solana.AccountSpec{Name: "edition_marker", Writable: true},
	solana.AccountSpec{Name: "token_program"},
)

type BurnEditionNftInstructionAccounts struct {
	Metadata                  ed25519.PublicKey
	Owner                     ed25519.PublicKey
	PrintEditionMint          ed25519.PublicKey
	MasterEditionMint         ed25519.PublicKey
	PrintEditionTokenAccount  ed25519.PublicKey
	MasterEditionTokenAccount ed25519.PublicKey
	MasterEdition             ed25519.PublicKey
	PrintEdition              ed25519.PublicKey
	EditionMarker             ed25519.PublicKey
}

func NewBurnEditionNftInstruction(accounts *BurnEditionNftInstructionAccounts) (solana.Instruction, error) {
	return newInstruction(
		BurnEditionNftSchema,
		InstructionTypeBurnEditionNft,
		map[string]ed25519.PublicKey{
			"metadata":                     accounts.Metadata,
			"owner":                        accounts.Owner,
			"print_edition_mint":           accounts.PrintEditionMint,
			"master_edition_mint":          accounts.MasterEditionMint,
			"print_edition_token_account":  accounts.PrintEditionTokenAccount,
			"master_edition_token_account": accounts.MasterEditionTokenAccount,
			"master_edition":               accounts.MasterEdition,
			"print_edition":                accounts.PrintEdition,
			"edition_marker":               accounts.EditionMarker,
			"token_program":                SPL_TOKEN_PROGRAM_ID,
		},
		nil,
	)
}

func DecompileBurnEditionNftInstruction(ix solana.Instruction) (*BurnEditionNftInstructionAccounts, error) {
	resolved, err := decompileInstruction(ix, BurnEditionNftSchema, InstructionTypeBurnEditionNft, nil)
	if err != nil {
		return nil, err
	}

	return &BurnEditionNftInstructionAccounts{
		Metadata:                  resolved.Key("metadata"),
		Owner:                     resolved.Key("owner"),
		PrintEditionMint:          resolved.Key("print_edition_mint"),
		MasterEditionMint:         resolved.Key("master_edition_mint"),
		PrintEditionTokenAccount:  resolved.Key("print_edition_token_account"),
		MasterEditionTokenAccount: resolved.Key("master_edition_token_account"),
		MasterEdition:             resolved.Key("master_edition"),
		PrintEdition:              resolved.Key("print_edition"),
		EditionMarker:             resolved.Key("edition_marker"),
	}, nil
}
