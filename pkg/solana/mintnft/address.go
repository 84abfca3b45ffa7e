package mintnft

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

var (
	delegatePrefix = []byte("delegate_nft")
)

type GetDelegateAddressArgs struct {
	Signer ed25519.PublicKey
}

// GetDelegateAddress returns the delegate record PDA for a signer. It is
// installed as the SPL delegate of the signer's token account.
func (c *ProgramConfig) GetDelegateAddress(args *GetDelegateAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		c.Program,
		delegatePrefix,
		args.Signer,
	)
}

// GetAssociatedTokenAddress returns the associated token account of owner for
// mint.
func (c *ProgramConfig) GetAssociatedTokenAddress(owner, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		c.AssociatedTokenProgram,
		owner,
		c.TokenProgram,
		mint,
	)
}

func (c *ProgramConfig) GetMetadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	address, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Program: c.MetadataProgram,
		Mint:    mint,
	})
	return address, err
}

// GetEditionAddress returns the master edition or print edition address of
// mint.
func (c *ProgramConfig) GetEditionAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	address, _, err := tokenmetadata.GetEditionAddress(&tokenmetadata.GetEditionAddressArgs{
		Program: c.MetadataProgram,
		Mint:    mint,
	})
	return address, err
}

// GetEditionMarkerAddress returns the marker account holding the bit for
// edition of masterMint.
func (c *ProgramConfig) GetEditionMarkerAddress(masterMint ed25519.PublicKey, edition uint64) (ed25519.PublicKey, error) {
	address, _, err := tokenmetadata.GetEditionMarkerAddress(&tokenmetadata.GetEditionMarkerAddressArgs{
		Program:    c.MetadataProgram,
		MasterMint: masterMint,
		Edition:    edition,
	})
	return address, err
}
