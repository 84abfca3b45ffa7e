package localnet

import (
	"bytes"
	"crypto/ed25519"
	"strconv"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
	"github.com/code-payments/code-nft/pkg/solana/token"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

func processTokenMetadataInstruction(ctx *InvokeContext) error {
	ix := ctx.Instruction()

	instructionType, err := tokenmetadata.GetInstructionType(ix, ctx.ProgramID())
	if err != nil {
		return ErrInvalidInstructionData
	}

	switch instructionType {
	case tokenmetadata.InstructionTypeCreateMetadataAccountV3:
		accounts, args, err := tokenmetadata.DecompileCreateMetadataAccountV3Instruction(ix)
		if err != nil {
			return unpackError(err)
		}
		return createMetadataAccount(ctx, accounts, args)
	case tokenmetadata.InstructionTypeCreateMasterEditionV3:
		accounts, args, err := tokenmetadata.DecompileCreateMasterEditionV3Instruction(ix)
		if err != nil {
			return unpackError(err)
		}
		return createMasterEdition(ctx, accounts, args)
	case tokenmetadata.InstructionTypeMintNewEditionFromMasterEditionViaToken:
		accounts, args, err := tokenmetadata.DecompileMintNewEditionFromMasterEditionViaTokenInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		return mintNewEdition(ctx, accounts, args)
	case tokenmetadata.InstructionTypeBurnNft:
		accounts, err := tokenmetadata.DecompileBurnNftInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		return burnNft(ctx, accounts)
	case tokenmetadata.InstructionTypeBurnEditionNft:
		accounts, err := tokenmetadata.DecompileBurnEditionNftInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		return burnEditionNft(ctx, accounts)
	default:
		return tokenmetadata.ErrorInstructionUnpackError
	}
}

func createMetadataAccount(
	ctx *InvokeContext,
	accounts *tokenmetadata.CreateMetadataAccountV3InstructionAccounts,
	args *tokenmetadata.CreateMetadataAccountV3InstructionArgs,
) error {
	if err := args.Data.Validate(); err != nil {
		return err
	}

	seeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.Mint}
	bump, err := assertDerivation(ctx, accounts.Metadata, seeds)
	if err != nil {
		return err
	}

	mint, err := loadMetadataMint(ctx, accounts.Mint)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || !bytes.Equal(mint.MintAuthority, accounts.MintAuthority) {
		return tokenmetadata.ErrorInvalidMintAuthority
	}

	if args.Data.Creators != nil {
		for _, creator := range *args.Data.Creators {
			if creator.Verified && !ctx.IsSigner(creator.Address.PublicKey()) {
				return tokenmetadata.ErrorCannotVerifyAnotherCreator
			}
		}
	}

	err = createProgramAccount(ctx, accounts.Payer, accounts.Metadata, tokenmetadata.MetadataAccountSize, append(seeds, []byte{bump}))
	if err != nil {
		return err
	}

	metadata := &tokenmetadata.MetadataAccount{
		UpdateAuthority:   tokenmetadata.NewPubkey(accounts.UpdateAuthority),
		Mint:              tokenmetadata.NewPubkey(accounts.Mint),
		Data:              args.Data.ToData(),
		IsMutable:         args.IsMutable,
		Collection:        args.Data.Collection,
		Uses:              args.Data.Uses,
		CollectionDetails: args.CollectionDetails,
	}
	return storeMetadata(ctx, accounts.Metadata, metadata)
}

func createMasterEdition(
	ctx *InvokeContext,
	accounts *tokenmetadata.CreateMasterEditionV3InstructionAccounts,
	args *tokenmetadata.CreateMasterEditionV3InstructionArgs,
) error {
	seeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.Mint, tokenmetadata.EditionPrefix}
	bump, err := assertDerivation(ctx, accounts.Edition, seeds)
	if err != nil {
		return err
	}

	metadata, err := loadMetadata(ctx, accounts.Metadata)
	if err != nil {
		return err
	}
	if !bytes.Equal(metadata.Mint.PublicKey(), accounts.Mint) {
		return tokenmetadata.ErrorMintMismatch
	}
	if !bytes.Equal(metadata.UpdateAuthority.PublicKey(), accounts.UpdateAuthority) {
		return tokenmetadata.ErrorUpdateAuthorityIncorrect
	}

	mint, err := loadEditionMint(ctx, accounts.Mint, accounts.MintAuthority)
	if err != nil {
		return err
	}

	err = createProgramAccount(ctx, accounts.Payer, accounts.Edition, tokenmetadata.MasterEditionAccountSize, append(seeds, []byte{bump}))
	if err != nil {
		return err
	}

	masterEdition := &tokenmetadata.MasterEditionAccount{
		MaxSupply: args.MaxSupply,
	}
	if err := storeMasterEdition(ctx, accounts.Edition, masterEdition); err != nil {
		return err
	}

	if err := lockEditionMint(ctx, accounts.Mint, mint, accounts.MintAuthority, accounts.Edition); err != nil {
		return err
	}

	standard := tokenmetadata.TokenStandardNonFungible
	metadata.TokenStandard = &standard
	return storeMetadata(ctx, accounts.Metadata, metadata)
}

func mintNewEdition(
	ctx *InvokeContext,
	accounts *tokenmetadata.MintNewEditionFromMasterEditionViaTokenInstructionAccounts,
	args *tokenmetadata.MintNewEditionFromMasterEditionViaTokenInstructionArgs,
) error {
	if args.Edition == 0 {
		return ErrInvalidArgument
	}

	masterMetadata, err := loadMetadata(ctx, accounts.Metadata)
	if err != nil {
		return err
	}
	masterMint := masterMetadata.Mint.PublicKey()

	masterEditionSeeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), masterMint, tokenmetadata.EditionPrefix}
	if _, err := assertDerivation(ctx, accounts.MasterEdition, masterEditionSeeds); err != nil {
		return err
	}
	masterEdition, err := loadMasterEdition(ctx, accounts.MasterEdition)
	if err != nil {
		return err
	}

	tokenAccount, err := loadMetadataTokenAccount(ctx, accounts.TokenAccount, masterMint)
	if err != nil {
		return err
	}
	if !bytes.Equal(tokenAccount.Owner, accounts.TokenAccountOwner) {
		return tokenmetadata.ErrorOwnerMismatch
	}
	if tokenAccount.Amount < 1 {
		return tokenmetadata.ErrorNotEnoughTokens
	}

	newMint, err := loadEditionMint(ctx, accounts.NewMint, accounts.NewMintAuthority)
	if err != nil {
		return err
	}

	metadataSeeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.NewMint}
	metadataBump, err := assertDerivation(ctx, accounts.NewMetadata, metadataSeeds)
	if err != nil {
		return err
	}
	editionSeeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.NewMint, tokenmetadata.EditionPrefix}
	editionBump, err := assertDerivation(ctx, accounts.NewEdition, editionSeeds)
	if err != nil {
		return err
	}
	markerSeeds := [][]byte{
		tokenmetadata.MetadataPrefix,
		ctx.ProgramID(),
		masterMint,
		tokenmetadata.EditionPrefix,
		[]byte(strconv.FormatUint(tokenmetadata.GetEditionMarkerIndex(args.Edition), 10)),
	}
	markerBump, err := assertDerivation(ctx, accounts.EditionMarker, markerSeeds)
	if err != nil {
		return err
	}

	marker, markerExists, err := loadEditionMarker(ctx, accounts.EditionMarker)
	if err != nil {
		return err
	}

	if err := tokenmetadata.PrintEdition(masterEdition, marker, args.Edition); err != nil {
		ctx.Log().WithError(err).WithField("edition", args.Edition).Debug("edition cannot be printed")
		return err
	}

	if !markerExists {
		err = createProgramAccount(ctx, accounts.Payer, accounts.EditionMarker, tokenmetadata.EditionMarkerAccountSize, append(markerSeeds, []byte{markerBump}))
		if err != nil {
			return err
		}
	}
	if err := storeEditionMarker(ctx, accounts.EditionMarker, marker); err != nil {
		return err
	}
	if err := storeMasterEdition(ctx, accounts.MasterEdition, masterEdition); err != nil {
		return err
	}

	err = createProgramAccount(ctx, accounts.Payer, accounts.NewMetadata, tokenmetadata.MetadataAccountSize, append(metadataSeeds, []byte{metadataBump}))
	if err != nil {
		return err
	}
	standard := tokenmetadata.TokenStandardNonFungibleEdition
	newMetadata := &tokenmetadata.MetadataAccount{
		UpdateAuthority:     tokenmetadata.NewPubkey(accounts.NewMetadataUpdateAuthority),
		Mint:                tokenmetadata.NewPubkey(accounts.NewMint),
		Data:                masterMetadata.Data,
		PrimarySaleHappened: masterMetadata.PrimarySaleHappened,
		IsMutable:           masterMetadata.IsMutable,
		TokenStandard:       &standard,
		Collection:          masterMetadata.Collection,
	}
	if err := storeMetadata(ctx, accounts.NewMetadata, newMetadata); err != nil {
		return err
	}

	err = createProgramAccount(ctx, accounts.Payer, accounts.NewEdition, tokenmetadata.EditionAccountSize, append(editionSeeds, []byte{editionBump}))
	if err != nil {
		return err
	}
	edition := &tokenmetadata.EditionAccount{
		Parent:  tokenmetadata.NewPubkey(accounts.MasterEdition),
		Edition: args.Edition,
	}
	if err := storeEdition(ctx, accounts.NewEdition, edition); err != nil {
		return err
	}

	return lockEditionMint(ctx, accounts.NewMint, newMint, accounts.NewMintAuthority, accounts.NewEdition)
}

func burnNft(ctx *InvokeContext, accounts *tokenmetadata.BurnNftInstructionAccounts) error {
	metadata, err := loadMetadata(ctx, accounts.Metadata)
	if err != nil {
		return err
	}
	if !bytes.Equal(metadata.Mint.PublicKey(), accounts.Mint) {
		return tokenmetadata.ErrorMintMismatch
	}
	if _, err := assertDerivation(ctx, accounts.Metadata, [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.Mint}); err != nil {
		return err
	}

	if err := assertBurnableTokenAccount(ctx, accounts.TokenAccount, accounts.Mint, accounts.Owner); err != nil {
		return err
	}

	editionSeeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.Mint, tokenmetadata.EditionPrefix}
	if _, err := assertDerivation(ctx, accounts.MasterEdition, editionSeeds); err != nil {
		return err
	}
	if _, err := loadMasterEdition(ctx, accounts.MasterEdition); err != nil {
		return err
	}

	if err := burnAndCloseTokenAccount(ctx, accounts.TokenAccount, accounts.Mint, accounts.Owner); err != nil {
		return err
	}

	if err := closeProgramAccount(ctx, accounts.Metadata, accounts.Owner); err != nil {
		return err
	}
	return closeProgramAccount(ctx, accounts.MasterEdition, accounts.Owner)
}

func burnEditionNft(ctx *InvokeContext, accounts *tokenmetadata.BurnEditionNftInstructionAccounts) error {
	metadata, err := loadMetadata(ctx, accounts.Metadata)
	if err != nil {
		return err
	}
	if !bytes.Equal(metadata.Mint.PublicKey(), accounts.PrintEditionMint) {
		return tokenmetadata.ErrorMintMismatch
	}
	if _, err := assertDerivation(ctx, accounts.Metadata, [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.PrintEditionMint}); err != nil {
		return err
	}

	if err := assertBurnableTokenAccount(ctx, accounts.PrintEditionTokenAccount, accounts.PrintEditionMint, accounts.Owner); err != nil {
		return err
	}
	if _, err := loadMetadataTokenAccount(ctx, accounts.MasterEditionTokenAccount, accounts.MasterEditionMint); err != nil {
		return err
	}

	masterEditionSeeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.MasterEditionMint, tokenmetadata.EditionPrefix}
	if _, err := assertDerivation(ctx, accounts.MasterEdition, masterEditionSeeds); err != nil {
		return err
	}
	if _, err := loadMasterEdition(ctx, accounts.MasterEdition); err != nil {
		return err
	}

	printEditionSeeds := [][]byte{tokenmetadata.MetadataPrefix, ctx.ProgramID(), accounts.PrintEditionMint, tokenmetadata.EditionPrefix}
	if _, err := assertDerivation(ctx, accounts.PrintEdition, printEditionSeeds); err != nil {
		return err
	}
	edition, err := loadEdition(ctx, accounts.PrintEdition)
	if err != nil {
		return err
	}
	if !bytes.Equal(edition.Parent.PublicKey(), accounts.MasterEdition) {
		return tokenmetadata.ErrorMasterRecordMismatch
	}

	markerSeeds := [][]byte{
		tokenmetadata.MetadataPrefix,
		ctx.ProgramID(),
		accounts.MasterEditionMint,
		tokenmetadata.EditionPrefix,
		[]byte(strconv.FormatUint(tokenmetadata.GetEditionMarkerIndex(edition.Edition), 10)),
	}
	if _, err := assertDerivation(ctx, accounts.EditionMarker, markerSeeds); err != nil {
		return err
	}
	marker, exists, err := loadEditionMarker(ctx, accounts.EditionMarker)
	if err != nil {
		return err
	}
	if !exists || !marker.IsEditionSet(edition.Edition) {
		return tokenmetadata.ErrorInvalidEditionKey
	}

	// The marker bit and the master edition supply are left untouched, so
	// the edition number can never be printed again.
	if err := burnAndCloseTokenAccount(ctx, accounts.PrintEditionTokenAccount, accounts.PrintEditionMint, accounts.Owner); err != nil {
		return err
	}

	if err := closeProgramAccount(ctx, accounts.Metadata, accounts.Owner); err != nil {
		return err
	}
	return closeProgramAccount(ctx, accounts.PrintEdition, accounts.Owner)
}

func unpackError(err error) error {
	if errors.Is(err, tokenmetadata.ErrInvalidInstructionData) || errors.Is(err, solana.ErrIncorrectInstruction) {
		return tokenmetadata.ErrorInstructionUnpackError
	}
	return err
}

// assertDerivation verifies the address is the program address of seeds and
// returns its bump.
func assertDerivation(ctx *InvokeContext, address ed25519.PublicKey, seeds [][]byte) (uint8, error) {
	expected, bump, err := solana.FindProgramAddressAndBump(ctx.ProgramID(), seeds...)
	if err != nil || !bytes.Equal(expected, address) {
		return 0, tokenmetadata.ErrorDerivedKeyInvalid
	}
	return bump, nil
}

func createProgramAccount(ctx *InvokeContext, payer, address ed25519.PublicKey, size int, seeds [][]byte) error {
	exists, err := ctx.Exists(address)
	if err != nil {
		return err
	}
	if exists {
		return tokenmetadata.ErrorAlreadyInitialized
	}

	create := system.CreateAccount(
		payer,
		address,
		ctx.ProgramID(),
		ctx.MinimumBalanceForRentExemption(uint64(size)),
		uint64(size),
	)
	return ctx.Invoke(create, seeds)
}

func closeProgramAccount(ctx *InvokeContext, address, destination ed25519.PublicKey) error {
	info, err := ctx.Load(address)
	if err != nil {
		return err
	}

	if err := ctx.Store(address, &solana.AccountInfo{Owner: info.Owner}); err != nil {
		return err
	}
	return credit(ctx, destination, info.Lamports)
}

// loadEditionMint loads a mint that is about to back an edition: it must hold
// exactly one indivisible token and be controlled by authority.
func loadEditionMint(ctx *InvokeContext, address, authority ed25519.PublicKey) (*token.Mint, error) {
	mint, err := loadMetadataMint(ctx, address)
	if err != nil {
		return nil, err
	}
	if mint.Decimals != 0 {
		return nil, tokenmetadata.ErrorEditionMintDecimalsShouldBeZero
	}
	if mint.Supply != 1 {
		return nil, tokenmetadata.ErrorEditionsMustHaveExactlyOneToken
	}
	if mint.MintAuthority == nil || !bytes.Equal(mint.MintAuthority, authority) {
		return nil, tokenmetadata.ErrorInvalidMintAuthority
	}
	if !ctx.IsSigner(authority) {
		return nil, tokenmetadata.ErrorNotMintAuthority
	}
	return mint, nil
}

// lockEditionMint disables minting and hands the freeze authority to the
// edition account.
func lockEditionMint(ctx *InvokeContext, address ed25519.PublicKey, mint *token.Mint, authority, edition ed25519.PublicKey) error {
	disable := token.SetAuthority(address, authority, nil, token.AuthorityTypeMintTokens)
	if err := ctx.Invoke(disable); err != nil {
		return err
	}

	if mint.FreezeAuthority == nil || !bytes.Equal(mint.FreezeAuthority, authority) {
		return nil
	}

	freeze := token.SetAuthority(address, authority, edition, token.AuthorityTypeFreezeAccount)
	return ctx.Invoke(freeze)
}

func assertBurnableTokenAccount(ctx *InvokeContext, address, mint, owner ed25519.PublicKey) error {
	account, err := loadMetadataTokenAccount(ctx, address, mint)
	if err != nil {
		return err
	}
	if !bytes.Equal(account.Owner, owner) {
		return tokenmetadata.ErrorOwnerMismatch
	}
	if account.Amount != 1 {
		return tokenmetadata.ErrorNotEnoughTokens
	}
	return nil
}

func burnAndCloseTokenAccount(ctx *InvokeContext, address, mint, owner ed25519.PublicKey) error {
	if err := ctx.Invoke(token.Burn(address, mint, owner, 1)); err != nil {
		return errors.Wrap(err, "error burning token")
	}
	if err := ctx.Invoke(token.CloseAccount(address, owner, owner)); err != nil {
		return errors.Wrap(err, "error closing token account")
	}
	return nil
}

func loadMetadataMint(ctx *InvokeContext, address ed25519.PublicKey) (*token.Mint, error) {
	_, mint, err := loadMint(ctx, address)
	switch err {
	case nil:
		return mint, nil
	case ErrIncorrectProgramID:
		return nil, tokenmetadata.ErrorIncorrectOwner
	case ErrUninitializedAccount, token.ErrorUninitializedState:
		return nil, tokenmetadata.ErrorUninitialized
	default:
		return nil, err
	}
}

func loadMetadataTokenAccount(ctx *InvokeContext, address, mint ed25519.PublicKey) (*token.Account, error) {
	_, account, err := loadTokenAccount(ctx, address)
	switch err {
	case nil:
	case ErrIncorrectProgramID:
		return nil, tokenmetadata.ErrorIncorrectOwner
	case ErrUninitializedAccount, token.ErrorUninitializedState:
		return nil, tokenmetadata.ErrorUninitialized
	default:
		return nil, err
	}

	if !bytes.Equal(account.Mint, mint) {
		return nil, tokenmetadata.ErrorTokenAccountMintMismatch
	}
	return account, nil
}

func loadProgramOwned(ctx *InvokeContext, address ed25519.PublicKey) (*solana.AccountInfo, error) {
	info, err := ctx.Load(address)
	if err == ErrAccountNotFound {
		return nil, tokenmetadata.ErrorUninitialized
	} else if err != nil {
		return nil, err
	}
	if !bytes.Equal(info.Owner, ctx.ProgramID()) {
		return nil, tokenmetadata.ErrorIncorrectOwner
	}
	return info, nil
}

func loadMetadata(ctx *InvokeContext, address ed25519.PublicKey) (*tokenmetadata.MetadataAccount, error) {
	info, err := loadProgramOwned(ctx, address)
	if err != nil {
		return nil, err
	}

	var metadata tokenmetadata.MetadataAccount
	if err := metadata.Unmarshal(info.Data); err != nil {
		return nil, tokenmetadata.ErrorInvalidMetadataKey
	}
	return &metadata, nil
}

func loadMasterEdition(ctx *InvokeContext, address ed25519.PublicKey) (*tokenmetadata.MasterEditionAccount, error) {
	info, err := loadProgramOwned(ctx, address)
	if err != nil {
		return nil, err
	}

	var masterEdition tokenmetadata.MasterEditionAccount
	if err := masterEdition.Unmarshal(info.Data); err != nil {
		return nil, tokenmetadata.ErrorInvalidEditionKey
	}
	return &masterEdition, nil
}

func loadEdition(ctx *InvokeContext, address ed25519.PublicKey) (*tokenmetadata.EditionAccount, error) {
	info, err := loadProgramOwned(ctx, address)
	if err != nil {
		return nil, err
	}

	var edition tokenmetadata.EditionAccount
	if err := edition.Unmarshal(info.Data); err != nil {
		return nil, tokenmetadata.ErrorInvalidEditionKey
	}
	return &edition, nil
}

// loadEditionMarker returns the marker, or an empty one if it has not been
// created yet.
func loadEditionMarker(ctx *InvokeContext, address ed25519.PublicKey) (*tokenmetadata.EditionMarkerAccount, bool, error) {
	info, err := loadProgramOwned(ctx, address)
	if err == tokenmetadata.ErrorUninitialized {
		return &tokenmetadata.EditionMarkerAccount{}, false, nil
	} else if err != nil {
		return nil, false, err
	}

	var marker tokenmetadata.EditionMarkerAccount
	if err := marker.Unmarshal(info.Data); err != nil {
		return nil, false, tokenmetadata.ErrorInvalidEditionKey
	}
	return &marker, true, nil
}

func storeProgramData(ctx *InvokeContext, address ed25519.PublicKey, data []byte) error {
	info, err := loadProgramOwned(ctx, address)
	if err != nil {
		return err
	}
	if len(info.Data) != len(data) {
		return ErrAccountDataTooSmall
	}

	info.Data = data
	return ctx.Store(address, info)
}

func storeMetadata(ctx *InvokeContext, address ed25519.PublicKey, metadata *tokenmetadata.MetadataAccount) error {
	data, err := metadata.Marshal()
	if err != nil {
		return tokenmetadata.ErrorInstructionPackError
	}
	return storeProgramData(ctx, address, data)
}

func storeMasterEdition(ctx *InvokeContext, address ed25519.PublicKey, masterEdition *tokenmetadata.MasterEditionAccount) error {
	data, err := masterEdition.Marshal()
	if err != nil {
		return tokenmetadata.ErrorInstructionPackError
	}
	return storeProgramData(ctx, address, data)
}

func storeEdition(ctx *InvokeContext, address ed25519.PublicKey, edition *tokenmetadata.EditionAccount) error {
	data, err := edition.Marshal()
	if err != nil {
		return tokenmetadata.ErrorInstructionPackError
	}
	return storeProgramData(ctx, address, data)
}

func storeEditionMarker(ctx *InvokeContext, address ed25519.PublicKey, marker *tokenmetadata.EditionMarkerAccount) error {
	return storeProgramData(ctx, address, marker.Marshal())
}
