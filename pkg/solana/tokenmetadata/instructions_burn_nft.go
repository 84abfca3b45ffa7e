package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
)

var BurnNftSchema = solana.NewAccountSchema(
	"burn_nft",
	1,
	solana.AccountSpec{Name: "metadata", Writable: true},
	solana.AccountSpec{Name: "owner", Signer: true, Writable: true},
	solana.AccountSpec{Name: "mint", Writable: true},
	solana.AccountSpec{Name: "token_account", Writable: true},
	solana.AccountSpec{Name: "master_edition", Writable: true},
	solana.AccountSpec{Name: "token_program"},
)

type BurnNftInstructionAccounts struct {
	Metadata      ed25519.PublicKey
	Owner         ed25519.PublicKey
	Mint          ed25519.PublicKey
	TokenAccount  ed25519.PublicKey
	MasterEdition ed25519.PublicKey
}

func NewBurnNftInstruction(accounts *BurnNftInstructionAccounts) (solana.Instruction, error) {
	return newInstruction(
		BurnNftSchema,
		InstructionTypeBurnNft,
		map[string]ed25519.PublicKey{
			"metadata":       accounts.Metadata,
			"owner":          accounts.Owner,
			"mint":           accounts.Mint,
			"token_account":  accounts.TokenAccount,
			"master_edition": accounts.MasterEdition,
			"token_program":  SPL_TOKEN_PROGRAM_ID,
		},
		nil,
	)
}

func DecompileBurnNftInstruction(ix solana.Instruction) (*BurnNftInstructionAccounts, error) {
	resolved, err := decompileInstruction(ix, BurnNftSchema, InstructionTypeBurnNft, nil)
	if err != nil {
		return nil, err
	}

	return &BurnNftInstructionAccounts{
		Metadata:      resolved.Key("metadata"),
		Owner:         resolved.Key("owner"),
		Mint:          resolved.Key("mint"),
		TokenAccount:  resolved.Key("token_account"),
		MasterEdition: resolved.Key("master_edition"),
	}, nil
}
