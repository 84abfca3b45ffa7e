package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var BurnMasterEditionNftSchema = solana.NewAccountSchema(
	string(InstructionTypeBurnMasterEditionNft),
	1,
	solana.AccountSpec{Name: "metadata", Writable: true},
	solana.AccountSpec{Name: "owner", Signer: true, Writable: true},
	solana.AccountSpec{Name: "mint", Writable: true},
	solana.AccountSpec{Name: "token_account", Writable: true},
	solana.AccountSpec{Name: "master_edition", Writable: true},
	solana.AccountSpec{Name: "token_program"},
	solana.AccountSpec{Name: "token_metadata_program"},
)

type BurnMasterEditionNftInstructionAccounts struct {
	Metadata      ed25519.PublicKey
	Owner         ed25519.PublicKey
	Mint          ed25519.PublicKey
	TokenAccount  ed25519.PublicKey
	MasterEdition ed25519.PublicKey
}

func (c *ProgramConfig) validateBurnMasterEditionNft(accounts *BurnMasterEditionNftInstructionAccounts) error {
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

// NewBurnMasterEditionNftInstruction burns the master token and closes its
// metadata and master edition. Printed editions are unaffected.
func (c *ProgramConfig) NewBurnMasterEditionNftInstruction(accounts *BurnMasterEditionNftInstructionAccounts) (solana.Instruction, error) {
	if err := c.validateBurnMasterEditionNft(accounts); err != nil {
		return solana.Instruction{}, err
	}

	return c.newInstruction(
		BurnMasterEditionNftSchema,
		InstructionTypeBurnMasterEditionNft,
		map[string]ed25519.PublicKey{
			"metadata":               accounts.Metadata,
			"owner":                  accounts.Owner,
			"mint":                   accounts.Mint,
			"token_account":          accounts.TokenAccount,
			"master_edition":         accounts.MasterEdition,
			"token_program":          c.TokenProgram,
			"token_metadata_program": c.MetadataProgram,
		},
		nil,
	)
}

func DecompileBurnMasterEditionNftInstruction(ix solana.Instruction) (*BurnMasterEditionNftInstructionAccounts, error) {
	resolved, err := decompileInstruction(ix, BurnMasterEditionNftSchema, InstructionTypeBurnMasterEditionNft, nil)
	if err != nil {
		return nil, err
	}

	return &BurnMasterEditionNftInstructionAccounts{
		Metadata:      resolved.Key("metadata"),
		Owner:         resolved.Key("owner"),
		Mint:          resolved.Key("mint"),
		TokenAccount:  resolved.Key("token_account"),
		MasterEdition: resolved.Key("master_edition"),
	}, nil
}
