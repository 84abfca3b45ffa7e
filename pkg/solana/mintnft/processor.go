package mintnft

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/localnet"
	"github.com/code-payments/code-nft/pkg/solana/system"
	"github.com/code-payments/code-nft/pkg/solana/token"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

// Processor executes mint-nft instructions on a localnet.Bank. Every entry
// point runs the same checks as its instruction builder before calling into
// the token, associated token account or metadata program.
type Processor struct {
	config *ProgramConfig
}

func NewProcessor(config *ProgramConfig) *Processor {
	return &Processor{
		config: config,
	}
}

// Register installs the processor at the configured program address.
func (p *Processor) Register(bank *localnet.Bank) {
	bank.RegisterProgram(p.config.Program, p)
}

// Process implements localnet.Program.Process
func (p *Processor) Process(ctx *localnet.InvokeContext) error {
	ix := ctx.Instruction()

	instructionType, err := GetInstructionType(ix, ctx.ProgramID())
	if err != nil {
		return localnet.ErrInvalidInstructionData
	}

	log := ctx.Log().WithField("instruction", instructionType)

	err = p.process(ctx, instructionType, ix)
	if err != nil {
		log.WithError(err).Debug("instruction failed")
	}
	return err
}

func (p *Processor) process(ctx *localnet.InvokeContext, instructionType InstructionType, ix solana.Instruction) error {
	c := p.config

	switch instructionType {
	case InstructionTypeCreateMintAccount:
		accounts, err := DecompileCreateMintAccountInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateCreateMintAccount(accounts); err != nil {
			return err
		}
		return p.createMintAccount(ctx, accounts)

	case InstructionTypeInitializeMint:
		accounts, err := DecompileInitializeMintInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		initialize := token.InitializeMint(accounts.Mint, accounts.MintAuthority, accounts.MintAuthority, 0)
		return p.invoke(ctx, c.TokenProgram, initialize)

	case InstructionTypeCreateAssociatedTokenAccount:
		accounts, err := DecompileCreateAssociatedTokenAccountInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateCreateAssociatedTokenAccount(accounts); err != nil {
			return err
		}
		create, _, err := token.CreateAssociatedTokenAccount(accounts.Payer, accounts.Authority, accounts.Mint)
		if err != nil {
			return newError(ErrorKindValidation, err)
		}
		return p.invoke(ctx, c.AssociatedTokenProgram, create)

	case InstructionTypeMintToken:
		accounts, args, err := DecompileMintTokenInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateMintToken(args); err != nil {
			return err
		}
		mintTo := token.MintTo(accounts.Mint, accounts.TokenAccount, accounts.Authority, args.Amount)
		return p.invoke(ctx, c.TokenProgram, mintTo)

	case InstructionTypeCreateTokenMetadataAccount:
		accounts, args, err := DecompileCreateTokenMetadataAccountInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateCreateTokenMetadataAccount(accounts, args); err != nil {
			return err
		}
		create, err := tokenmetadata.NewCreateMetadataAccountV3Instruction(
			&tokenmetadata.CreateMetadataAccountV3InstructionAccounts{
				Metadata:        accounts.Metadata,
				Mint:            accounts.Mint,
				MintAuthority:   accounts.MintAuthority,
				Payer:           accounts.Payer,
				UpdateAuthority: accounts.UpdateAuthority,
			},
			&tokenmetadata.CreateMetadataAccountV3InstructionArgs{
				Data:      args.DataV2(),
				IsMutable: true,
			},
		)
		if err != nil {
			return newError(ErrorKindValidation, err)
		}
		return p.invoke(ctx, c.MetadataProgram, create)

	case InstructionTypeCreateMasterEditionAccount:
		accounts, args, err := DecompileCreateMasterEditionAccountInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateCreateMasterEditionAccount(accounts); err != nil {
			return err
		}
		create, err := tokenmetadata.NewCreateMasterEditionV3Instruction(
			&tokenmetadata.CreateMasterEditionV3InstructionAccounts{
				Edition:         accounts.MasterEdition,
				Mint:            accounts.Mint,
				UpdateAuthority: accounts.UpdateAuthority,
				MintAuthority:   accounts.MintAuthority,
				Payer:           accounts.Payer,
				Metadata:        accounts.Metadata,
			},
			&tokenmetadata.CreateMasterEditionV3InstructionArgs{
				MaxSupply: args.MaxSupply,
			},
		)
		if err != nil {
			return newError(ErrorKindValidation, err)
		}
		return p.invoke(ctx, c.MetadataProgram, create)

	case InstructionTypeCreateEditionAccount:
		accounts, args, err := DecompileCreateEditionAccountInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateCreateEditionAccount(accounts, args); err != nil {
			return err
		}
		mintEdition, err := tokenmetadata.NewMintNewEditionFromMasterEditionViaTokenInstruction(
			&tokenmetadata.MintNewEditionFromMasterEditionViaTokenInstructionAccounts{
				NewMetadata:                accounts.EditionMetadata,
				NewEdition:                 accounts.Edition,
				MasterEdition:              accounts.MasterEdition,
				NewMint:                    accounts.EditionMint,
				EditionMarker:              accounts.EditionMarker,
				NewMintAuthority:           accounts.EditionMintAuthority,
				Payer:                      accounts.Payer,
				TokenAccountOwner:          accounts.TokenAccountOwner,
				TokenAccount:               accounts.TokenAccount,
				NewMetadataUpdateAuthority: accounts.EditionUpdateAuthority,
				Metadata:                   accounts.Metadata,
			},
			&tokenmetadata.MintNewEditionFromMasterEditionViaTokenInstructionArgs{
				Edition: args.Edition,
			},
		)
		if err != nil {
			return newError(ErrorKindValidation, err)
		}
		return p.invoke(ctx, c.MetadataProgram, mintEdition)

	case InstructionTypeBurnEditionNft:
		accounts, err := DecompileBurnEditionNftInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateBurnEditionNft(accounts); err != nil {
			return err
		}
		burn, err := tokenmetadata.NewBurnEditionNftInstruction(&tokenmetadata.BurnEditionNftInstructionAccounts{
			Metadata:                  accounts.EditionMetadata,
			Owner:                     accounts.NftOwner,
			PrintEditionMint:          accounts.EditionMint,
			MasterEditionMint:         accounts.MasterEditionMint,
			PrintEditionTokenAccount:  accounts.EditionTokenAccount,
			MasterEditionTokenAccount: accounts.MasterEditionTokenAccount,
			MasterEdition:             accounts.MasterEdition,
			PrintEdition:              accounts.Edition,
			EditionMarker:             accounts.EditionMarker,
		})
		if err != nil {
			return newError(ErrorKindValidation, err)
		}
		return p.invoke(ctx, c.MetadataProgram, burn)

	case InstructionTypeBurnMasterEditionNft:
		accounts, err := DecompileBurnMasterEditionNftInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateBurnMasterEditionNft(accounts); err != nil {
			return err
		}
		burn, err := tokenmetadata.NewBurnNftInstruction(&tokenmetadata.BurnNftInstructionAccounts{
			Metadata:      accounts.Metadata,
			Owner:         accounts.Owner,
			Mint:          accounts.Mint,
			TokenAccount:  accounts.TokenAccount,
			MasterEdition: accounts.MasterEdition,
		})
		if err != nil {
			return newError(ErrorKindValidation, err)
		}
		return p.invoke(ctx, c.MetadataProgram, burn)

	case InstructionTypeDelegateNft:
		accounts, args, err := DecompileDelegateNftInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateDelegateNft(accounts, args); err != nil {
			return err
		}
		approve := token.Approve(accounts.Source, accounts.Delegate, accounts.Signer, args.Amount)
		return p.invoke(ctx, c.TokenProgram, approve)

	case InstructionTypeTransferFromDelegateAccount:
		accounts, args, err := DecompileTransferFromDelegateAccountInstruction(ix)
		if err != nil {
			return unpackError(err)
		}
		if err := c.validateTransferFromDelegateAccount(accounts, args); err != nil {
			return err
		}
		return p.transferFromDelegateAccount(ctx, accounts, args)

	default:
		return localnet.ErrInvalidInstructionData
	}
}

func (p *Processor) createMintAccount(ctx *localnet.InvokeContext, accounts *CreateMintAccountInstructionAccounts) error {
	create := system.CreateAccount(
		accounts.MintAuthority,
		accounts.Mint,
		p.config.TokenProgram,
		ctx.MinimumBalanceForRentExemption(token.MintSize),
		token.MintSize,
	)
	return p.invoke(ctx, p.config.SystemProgram, create)
}

func (p *Processor) transferFromDelegateAccount(
	ctx *localnet.InvokeContext,
	accounts *TransferFromDelegateAccountInstructionAccounts,
	args *TransferFromDelegateAccountInstructionArgs,
) error {
	info, err := ctx.Load(accounts.Source)
	if err != nil {
		return newError(ErrorKindValidation, errors.Wrap(err, "error loading source token account"))
	}

	var source token.Account
	if !bytes.Equal(info.Owner, p.config.TokenProgram) || !source.Unmarshal(info.Data) {
		return validationErrorf("source is not a token account")
	}

	if err := p.config.validateDelegateSeeds(accounts.Delegate, source.Owner, args.Bump); err != nil {
		return err
	}

	transfer := token.Transfer(accounts.Source, accounts.Destination, accounts.Delegate, args.Amount)
	seeds := [][]byte{delegatePrefix, source.Owner, {args.Bump}}
	return p.invoke(ctx, p.config.TokenProgram, transfer, seeds)
}

// invoke calls program with ix, retargeted at the configured program address,
// and classifies any failure.
func (p *Processor) invoke(ctx *localnet.InvokeContext, program ed25519.PublicKey, ix solana.Instruction, signerSeeds ...[][]byte) error {
	ix.Program = program

	err := ctx.Invoke(ix, signerSeeds...)
	if err == nil {
		return nil
	}

	kind := p.config.classifyInvokeError(program, err)
	return newError(kind, errors.Wrapf(err, "error invoking %s", base58.Encode(program)))
}

// classifyInvokeError maps the error returned by a called program onto an
// ErrorKind. Custom error codes are only meaningful relative to the program
// that returned them.
func (c *ProgramConfig) classifyInvokeError(program ed25519.PublicKey, err error) ErrorKind {
	var custom solana.CustomError
	if errors.As(err, &custom) {
		switch {
		case program.Equal(c.MetadataProgram):
			switch custom {
			case tokenmetadata.ErrorAlreadyInitialized, tokenmetadata.ErrorEditionAlreadyMinted:
				return ErrorKindAlreadyExists
			case tokenmetadata.ErrorMaxEditionsMintedAlready:
				return ErrorKindSupplyExhausted
			case tokenmetadata.ErrorDerivedKeyInvalid,
				tokenmetadata.ErrorIncorrectOwner,
				tokenmetadata.ErrorInvalidMintAuthority,
				tokenmetadata.ErrorNotMintAuthority,
				tokenmetadata.ErrorUpdateAuthorityIncorrect,
				tokenmetadata.ErrorMintMismatch,
				tokenmetadata.ErrorOwnerMismatch,
				tokenmetadata.ErrorTokenAccountMintMismatch,
				tokenmetadata.ErrorMasterRecordMismatch,
				tokenmetadata.ErrorNotEnoughTokens:
				return ErrorKindValidation
			}
		case program.Equal(c.SystemProgram), program.Equal(c.AssociatedTokenProgram):
			if custom == system.ErrorAccountAlreadyInUse {
				return ErrorKindAlreadyExists
			}
		case program.Equal(c.TokenProgram):
			switch custom {
			case token.ErrorAlreadyInUse:
				return ErrorKindAlreadyExists
			case token.ErrorOwnerMismatch, token.ErrorMintMismatch:
				return ErrorKindValidation
			}
		}
		return ErrorKindCrossProgramCallFailed
	}

	for _, target := range []error{
		localnet.ErrMissingRequiredSignature,
		localnet.ErrPrivilegeEscalation,
		localnet.ErrInvalidSeeds,
		localnet.ErrMissingAccount,
		localnet.ErrNotEnoughAccountKeys,
	} {
		if errors.Is(err, target) {
			return ErrorKindValidation
		}
	}
	return ErrorKindCrossProgramCallFailed
}

// unpackError classifies a failure to decode an instruction.
func unpackError(err error) error {
	if errors.Is(err, solana.ErrIncorrectInstruction) || errors.Is(err, ErrInvalidInstructionData) {
		return localnet.ErrInvalidInstructionData
	}
	return newError(ErrorKindValidation, err)
}
