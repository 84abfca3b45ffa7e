package mintnft

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
	"github.com/code-payments/code-nft/pkg/solana/token"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = solana.MustBase58Decode("4jec8qCRTawG5e1nEc1eTMpXNvyF3j3K8eoD6jTzYeoH")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

// ProgramConfig holds the addresses of the mint-nft program and every
// program it calls into. Instructions are built and validated against a
// config, so alternate deployments can be targeted.
type ProgramConfig struct {
	Program                ed25519.PublicKey
	SystemProgram          ed25519.PublicKey
	TokenProgram           ed25519.PublicKey
	AssociatedTokenProgram ed25519.PublicKey
	MetadataProgram        ed25519.PublicKey
	RentSysvar             ed25519.PublicKey
}

// DefaultProgramConfig returns the mainnet program addresses.
func DefaultProgramConfig() *ProgramConfig {
	return &ProgramConfig{
		Program:                PROGRAM_ID,
		SystemProgram:          append(ed25519.PublicKey{}, system.ProgramKey[:]...),
		TokenProgram:           token.ProgramKey,
		AssociatedTokenProgram: token.AssociatedTokenAccountProgramKey,
		MetadataProgram:        tokenmetadata.PROGRAM_ID,
		RentSysvar:             system.RentSysVar,
	}
}

// InstructionType is the Anchor method name of a mint-nft entry point.
type InstructionType string

const (
	InstructionTypeCreateMintAccount            InstructionType = "create_mint_account"
	InstructionTypeInitializeMint               InstructionType = "initialize_mint"
	InstructionTypeCreateAssociatedTokenAccount InstructionType = "create_associated_token_account"
	InstructionTypeMintToken                    InstructionType = "mint_token"
	InstructionTypeCreateTokenMetadataAccount   InstructionType = "create_token_metadata_account"
	InstructionTypeCreateMasterEditionAccount   InstructionType = "create_master_edition_account"
	InstructionTypeCreateEditionAccount         InstructionType = "create_edition_account"
	InstructionTypeBurnEditionNft               InstructionType = "burn_edition_nft"
	InstructionTypeBurnMasterEditionNft         InstructionType = "burn_master_edition_nft"
	InstructionTypeDelegateNft                  InstructionType = "delegate_nft"
	InstructionTypeTransferFromDelegateAccount  InstructionType = "transfer_from_delegate_account"
)

var instructionTypes = []InstructionType{
	InstructionTypeCreateMintAccount,
	InstructionTypeInitializeMint,
	InstructionTypeCreateAssociatedTokenAccount,
	InstructionTypeMintToken,
	InstructionTypeCreateTokenMetadataAccount,
	InstructionTypeCreateMasterEditionAccount,
	InstructionTypeCreateEditionAccount,
	InstructionTypeBurnEditionNft,
	InstructionTypeBurnMasterEditionNft,
	InstructionTypeDelegateNft,
	InstructionTypeTransferFromDelegateAccount,
}

const discriminatorSize = 8

// Discriminator returns the 8 byte Anchor instruction discriminator,
// sha256("global:<name>")[:8].
func (t InstructionType) Discriminator() []byte {
	h := sha256.Sum256([]byte("global:" + string(t)))
	return h[:discriminatorSize]
}

// GetInstructionType returns the entry point targeted by the instruction.
func GetInstructionType(ix solana.Instruction, program ed25519.PublicKey) (InstructionType, error) {
	if !program.Equal(ix.Program) {
		return "", ErrInvalidProgram
	}
	if len(ix.Data) < discriminatorSize {
		return "", ErrInvalidInstructionData
	}

	for _, t := range instructionTypes {
		if bytes.Equal(ix.Data[:discriminatorSize], t.Discriminator()) {
			return t, nil
		}
	}
	return "", ErrInvalidInstructionData
}
