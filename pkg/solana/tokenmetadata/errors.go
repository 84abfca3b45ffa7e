package tokenmetadata

import "github.com/code-payments/code-nft/pkg/solana"

// Custom errors returned by the token metadata program.
//
// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/error.rs
const (
	ErrorInstructionUnpackError solana.CustomError = iota
	ErrorInstructionPackError
	ErrorNotRentExempt
	ErrorAlreadyInitialized
	ErrorUninitialized
	ErrorInvalidMetadataKey
	ErrorInvalidEditionKey
	ErrorUpdateAuthorityIncorrect
	ErrorUpdateAuthorityIsNotSigner
	ErrorNotMintAuthority
	ErrorInvalidMintAuthority
	ErrorNameTooLong
	ErrorSymbolTooLong
	ErrorUriTooLong
	ErrorUpdateAuthorityMustBeEqualToMetadataAuthorityAndSigner
	ErrorMintMismatch
	ErrorEditionsMustHaveExactlyOneToken
	ErrorMaxEditionsMintedAlready
	ErrorTokenMintToFailed
	ErrorMasterRecordMismatch
	ErrorDestinationMintMismatch
	ErrorEditionAlreadyMinted
	ErrorPrintingMintDecimalsShouldBeZero
	ErrorOneTimePrintingAuthorizationMintDecimalsShouldBeZero
	ErrorEditionMintDecimalsShouldBeZero
	ErrorTokenBurnFailed
	ErrorTokenAccountOneTimeAuthMintMismatch
	ErrorDerivedKeyInvalid
	ErrorPrintingMintMismatch
	ErrorOneTimePrintingAuthMintMismatch
	ErrorTokenAccountMintMismatch
	ErrorTokenAccountMintMismatchV2
	ErrorNotEnoughTokens
	ErrorPrintingMintAuthorizationAccountMismatch
	ErrorAuthorizationTokenAccountOwnerMismatch
	ErrorDisabled
	ErrorCreatorsTooLong
	ErrorCreatorsMustBeAtleastOne
	ErrorMustBeOneOfCreators
	ErrorNoCreatorsPresentOnMetadata
	ErrorCreatorNotFound
	ErrorInvalidBasisPoints
	ErrorPrimarySaleCanOnlyBeFlippedToTrue
	ErrorOwnerMismatch
	ErrorNoBalanceInAccountForAuthorization
	ErrorShareTotalMustBe100
)

const (
	ErrorCannotVerifyAnotherCreator solana.CustomError = 54
	ErrorIncorrectOwner             solana.CustomError = 57
	ErrorDataIsImmutable            solana.CustomError = 59
	ErrorDuplicateCreatorAddress    solana.CustomError = 60
)
