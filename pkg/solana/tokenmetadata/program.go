package tokenmetadata

import (
	"crypto/ed25519"
	"errors"

	"github.com/code-payments/code-nft/pkg/solana"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = solana.MustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID    = solana.MustBase58Decode("11111111111111111111111111111111")
	SPL_TOKEN_PROGRAM_ID = solana.MustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	SYSVAR_RENT_PUBKEY = solana.MustBase58Decode("SysvarRent111111111111111111111111111111111")
)

type InstructionType uint8

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/instruction/mod.rs
const (
	InstructionTypeMintNewEditionFromMasterEditionViaToken InstructionType = 11
	InstructionTypeCreateMasterEditionV3                   InstructionType = 17
	InstructionTypeBurnNft                                 InstructionType = 29
	InstructionTypeCreateMetadataAccountV3                 InstructionType = 33
	InstructionTypeBurnEditionNft                          InstructionType = 37
)

// GetInstructionType returns the instruction type of a token metadata program
// instruction.
func GetInstructionType(ix solana.Instruction, program ed25519.PublicKey) (InstructionType, error) {
	if !program.Equal(ix.Program) {
		return 0, ErrInvalidProgram
	}
	if len(ix.Data) == 0 {
		return 0, ErrInvalidInstructionData
	}
	return InstructionType(ix.Data[0]), nil
}
