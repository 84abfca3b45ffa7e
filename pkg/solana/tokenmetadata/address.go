package tokenmetadata

import (
	"crypto/ed25519"
	"strconv"

	"github.com/code-payments/code-nft/pkg/solana"
)

var (
	MetadataPrefix = []byte("metadata")
	EditionPrefix  = []byte("edition")
)

func programOrDefault(program ed25519.PublicKey) ed25519.PublicKey {
	if len(program) == 0 {
		return PROGRAM_ID
	}
	return program
}

type GetMetadataAddressArgs struct {
	// Program defaults to PROGRAM_ID
	Program ed25519.PublicKey
	Mint    ed25519.PublicKey
}

func GetMetadataAddress(args *GetMetadataAddressArgs) (ed25519.PublicKey, uint8, error) {
	program := programOrDefault(args.Program)
	return solana.FindProgramAddressAndBump(
		program,
		MetadataPrefix,
		program,
		args.Mint,
	)
}

type GetEditionAddressArgs struct {
	// Program defaults to PROGRAM_ID
	Program ed25519.PublicKey
	Mint    ed25519.PublicKey
}

// GetEditionAddress returns the master edition address of a master mint, or the
// edition address of a print mint. Both use the same seeds.
func GetEditionAddress(args *GetEditionAddressArgs) (ed25519.PublicKey, uint8, error) {
	program := programOrDefault(args.Program)
	return solana.FindProgramAddressAndBump(
		program,
		MetadataPrefix,
		program,
		args.Mint,
		EditionPrefix,
	)
}

type GetEditionMarkerAddressArgs struct {
	// Program defaults to PROGRAM_ID
	Program    ed25519.PublicKey
	MasterMint ed25519.PublicKey
	Edition    uint64
}

func GetEditionMarkerAddress(args *GetEditionMarkerAddressArgs) (ed25519.PublicKey, uint8, error) {
	program := programOrDefault(args.Program)
	return solana.FindProgramAddressAndBump(
		program,
		MetadataPrefix,
		program,
		args.MasterMint,
		EditionPrefix,
		[]byte(strconv.FormatUint(GetEditionMarkerIndex(args.Edition), 10)),
	)
}
