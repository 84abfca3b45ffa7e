package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var BurnEditionNftSchema = solana.NewAccountSchema(
	string(InstructionTypeBurnEditionNft),
	1,
	solana.AccountSpec{Name: "edition_metadata", Writable: true},
	solana.AccountSpec{Name: "nft_owner", Signer: true, Writable: true},
	solana.AccountSpec{Name: "edition_mint", Writable: true},
	solana.AccountSpec{Name: "master_edition_mint"},
	solana.AccountSpec{Name: "edition_token_account", Writable: true},
	solana.AccountSpec{Name: "master_edition_token_account"},
	solana.AccountSpec{Name: "master_edition", Writable: true},
	solana.AccountSpec{Name: "edition", Writable: true},
	solana.AccountSpec{Name: "edition_marker", Writable: true},
	solana.AccountSpec{Name: "token_program"},
	solana.AccountSpec{Name: "token_metadata_program"},
)

type BurnEditionNftInstructionAccounts struct {
	EditionMetadata           ed25519.PublicKey
	NftOwner                  ed25519.PublicKey
	EditionMint               ed25519.PublicKey
	MasterEditionMint         ed25519.PublicKey
	EditionTokenAccount       ed25519.PublicKey
	MasterEditionTokenAccount ed25519.PublicKey
	MasterEdition             ed25519.PublicKey
	Edition                   ed25519.PublicKey
	EditionMarker             ed25519.PublicKey
}

// The marker depends on the printed edition number, which is only known
// on chain, so it is checked by the metadata program.
func (c *ProgramConfig) validateBurnEditionNft(accounts *BurnEditionNftInstructionAccounts) error {
	if err := requireDistinct("edition mint and master mint", accounts.EditionMint, accounts.MasterEditionMint); err != nil {
		return err
	}

	metadata, err := derived(c.GetMetadataAddress(accounts.EditionMint))
	if err != nil {
		return err
	}
	if err := requireAddress("edition metadata", metadata, accounts.EditionMetadata); err != nil {
		return err
	}

	edition, err := derived(c.GetEditionAddress(accounts.EditionMint))
	if err != nil {
		return err
	}
	if err := requireAddress("edition", edition, accounts.Edition); err != nil {
		return err
	}

	masterEdition, err := derived(c.GetEditionAddress(accounts.MasterEditionMint))
	if err != nil {
		return err
	}
	return requireAddress("master edition", masterEdition, accounts.MasterEdition)
}

// NewBurnEditionNftInstruction burns a print edition and closes its token,
// metadata and edition accounts. The edition number stays marked as printed.
func (c *ProgramConfig) NewBurnEditionNftInstruction(accounts *BurnEditionNftInstructionAccounts) (solana.Instruction, error) {
	if err := c.validateBurnEditionNft(accounts); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		BurnEditionNftSchema,
		InstructionTypeBurnEditionNft,
		map[string]ed25519.PublicKey{
			"edition_metadata":             accounts.EditionMetadata,
			"nft_owner":                    accounts.NftOwner,
			"edition_mint":                 accounts.EditionMint,
			"master_edition_mint":          accounts.MasterEditionMint,
			"edition_token_account":        accounts.EditionTokenAccount,
			"master_edition_token_account": accounts.MasterEditionTokenAccount,
			"master_edition":               accounts.MasterEdition,
			"edition":                      accounts.Edition,
			"edition_marker":               accounts.EditionMarker,
			"token_program":                c.TokenProgram,
			"token_metadata_program":       c.MetadataProgram,
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
		EditionMetadata:           resolved.Key("edition_metadata"),
		NftOwner:                  resolved.Key("nft_owner"),
		EditionMint:               resolved.Key("edition_mint"),
		MasterEditionMint:         resolved.Key("master_edition_mint"),
		EditionTokenAccount:       resolved.Key("edition_token_account"),
		MasterEditionTokenAccount: resolved.Key("master_edition_token_account"),
		MasterEdition:             resolved.Key("master_edition"),
		Edition:                   resolved.Key("edition"),
		EditionMarker:             resolved.Key("edition_marker"),
	}, nil
}
