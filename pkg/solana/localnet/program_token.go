package localnet

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/token"
)

func processTokenInstruction(ctx *InvokeContext) error {
	ix := ctx.Instruction()

	cmd, err := token.GetCommand(ix)
	if err != nil {
		return ErrInvalidInstructionData
	}

	invalid := func(err error) error {
		return errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	switch cmd {
	case token.CommandInitializeMint:
		args, err := token.DecompileInitializeMint(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenInitializeMint(ctx, args)
	case token.CommandInitializeAccount:
		args, err := token.DecompileInitializeAccount(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenInitializeAccount(ctx, args)
	case token.CommandTransfer:
		args, err := token.DecompileTransfer(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenTransfer(ctx, args)
	case token.CommandApprove:
		args, err := token.DecompileApprove(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenApprove(ctx, args)
	case token.CommandRevoke:
		args, err := token.DecompileRevoke(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenRevoke(ctx, args)
	case token.CommandSetAuthority:
		args, err := token.DecompileSetAuthority(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenSetAuthority(ctx, args)
	case token.CommandMintTo:
		args, err := token.DecompileMintTo(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenMintTo(ctx, args)
	case token.CommandBurn:
		args, err := token.DecompileBurn(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenBurn(ctx, args)
	case token.CommandCloseAccount:
		args, err := token.DecompileCloseAccount(ix)
		if err != nil {
			return invalid(err)
		}
		return tokenCloseAccount(ctx, args)
	default:
		return token.ErrorInvalidInstruction
	}
}

func tokenInitializeMint(ctx *InvokeContext, args *token.DecompiledInitializeMint) error {
	info, err := loadTokenProgramAccount(ctx, args.Mint, token.MintSize)
	if err != nil {
		return err
	}

	var mint token.Mint
	mint.Unmarshal(info.Data)
	if mint.IsInitialized {
		return token.ErrorAlreadyInUse
	}
	if info.Lamports < ctx.MinimumBalanceForRentExemption(token.MintSize) {
		return token.ErrorNotRentExempt
	}

	mint = token.Mint{
		MintAuthority:   args.MintAuthority,
		Decimals:        args.Decimals,
		IsInitialized:   true,
		FreezeAuthority: args.FreezeAuthority,
	}
	info.Data = mint.Marshal()
	return ctx.Store(args.Mint, info)
}

func tokenInitializeAccount(ctx *InvokeContext, args *token.DecompiledInitializeAccount) error {
	info, err := loadTokenProgramAccount(ctx, args.Account, token.AccountSize)
	if err != nil {
		return err
	}

	var account token.Account
	account.Unmarshal(info.Data)
	if account.State != token.AccountStateUninitialized {
		return token.ErrorAlreadyInUse
	}
	if info.Lamports < ctx.MinimumBalanceForRentExemption(token.AccountSize) {
		return token.ErrorNotRentExempt
	}

	if _, _, err := loadMint(ctx, args.Mint); err != nil {
		return token.ErrorInvalidMint
	}

	account = token.Account{
		Mint:  args.Mint,
		Owner: args.Owner,
		State: token.AccountStateInitialized,
	}
	info.Data = account.Marshal()
	return ctx.Store(args.Account, info)
}

func tokenTransfer(ctx *InvokeContext, args *token.DecompiledTransfer) error {
	sourceInfo, source, err := loadTokenAccount(ctx, args.Source)
	if err != nil {
		return err
	}
	destInfo, dest, err := loadTokenAccount(ctx, args.Destination)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen || dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(source.Mint, dest.Mint) {
		return token.ErrorMintMismatch
	}
	if source.Amount < args.Amount {
		return token.ErrorInsufficientFunds
	}

	if err := spendAuthority(ctx, source, args.Owner, args.Amount); err != nil {
		return err
	}

	if bytes.Equal(args.Source, args.Destination) {
		sourceInfo.Data = source.Marshal()
		return ctx.Store(args.Source, sourceInfo)
	}

	source.Amount -= args.Amount
	dest.Amount += args.Amount

	sourceInfo.Data = source.Marshal()
	if err := ctx.Store(args.Source, sourceInfo); err != nil {
		return err
	}
	destInfo.Data = dest.Marshal()
	return ctx.Store(args.Destination, destInfo)
}

func tokenApprove(ctx *InvokeContext, args *token.DecompiledApprove) error {
	info, account, err := loadTokenAccount(ctx, args.Source)
	if err != nil {
		return err
	}
	if account.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if err := validateAuthority(ctx, account.Owner, args.Owner); err != nil {
		return err
	}

	account.Delegate = args.Delegate
	account.DelegatedAmount = args.Amount

	info.Data = account.Marshal()
	return ctx.Store(args.Source, info)
}

func tokenRevoke(ctx *InvokeContext, args *token.DecompiledRevoke) error {
	info, account, err := loadTokenAccount(ctx, args.Source)
	if err != nil {
		return err
	}
	if account.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if err := validateAuthority(ctx, account.Owner, args.Owner); err != nil {
		return err
	}

	account.Delegate = nil
	account.DelegatedAmount = 0

	info.Data = account.Marshal()
	return ctx.Store(args.Source, info)
}

func tokenSetAuthority(ctx *InvokeContext, args *token.DecompiledSetAuthority) error {
	info, err := ctx.Load(args.Account)
	if err == ErrAccountNotFound {
		return ErrUninitializedAccount
	} else if err != nil {
		return err
	}
	if !bytes.Equal(info.Owner, token.ProgramKey) {
		return ErrIncorrectProgramID
	}

	switch len(info.Data) {
	case token.MintSize:
		var mint token.Mint
		mint.Unmarshal(info.Data)
		if !mint.IsInitialized {
			return token.ErrorUninitializedState
		}

		switch args.Type {
		case token.AuthorityTypeMintTokens:
			if mint.MintAuthority == nil {
				return token.ErrorFixedSupply
			}
			if err := validateAuthority(ctx, mint.MintAuthority, args.CurrentAuthority); err != nil {
				return err
			}
			mint.MintAuthority = args.NewAuthority
		case token.AuthorityTypeFreezeAccount:
			if mint.FreezeAuthority == nil {
				return token.ErrorMintCannotFreeze
			}
			if err := validateAuthority(ctx, mint.FreezeAuthority, args.CurrentAuthority); err != nil {
				return err
			}
			mint.FreezeAuthority = args.NewAuthority
		default:
			return token.ErrorAuthorityTypeNotSupported
		}

		info.Data = mint.Marshal()
	case token.AccountSize:
		var account token.Account
		account.Unmarshal(info.Data)
		if account.State == token.AccountStateUninitialized {
			return token.ErrorUninitializedState
		}
		if account.State == token.AccountStateFrozen {
			return token.ErrorAccountFrozen
		}

		switch args.Type {
		case token.AuthorityTypeAccountHolder:
			if err := validateAuthority(ctx, account.Owner, args.CurrentAuthority); err != nil {
				return err
			}
			if args.NewAuthority == nil {
				return token.ErrorInvalidInstruction
			}
			account.Owner = args.NewAuthority
			account.Delegate = nil
			account.DelegatedAmount = 0
		case token.AuthorityTypeCloseAccount:
			current := account.CloseAuthority
			if current == nil {
				current = account.Owner
			}
			if err := validateAuthority(ctx, current, args.CurrentAuthority); err != nil {
				return err
			}
			account.CloseAuthority = args.NewAuthority
		default:
			return token.ErrorAuthorityTypeNotSupported
		}

		info.Data = account.Marshal()
	default:
		return ErrInvalidAccountData
	}

	return ctx.Store(args.Account, info)
}

func tokenMintTo(ctx *InvokeContext, args *token.DecompiledMintTo) error {
	mintInfo, mint, err := loadMint(ctx, args.Mint)
	if err != nil {
		return err
	}
	destInfo, dest, err := loadTokenAccount(ctx, args.Destination)
	if err != nil {
		return err
	}

	if dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(dest.Mint, args.Mint) {
		return token.ErrorMintMismatch
	}
	if mint.MintAuthority == nil {
		return token.ErrorFixedSupply
	}
	if err := validateAuthority(ctx, mint.MintAuthority, args.Authority); err != nil {
		return err
	}
	if math.MaxUint64-mint.Supply < args.Amount {
		return token.ErrorOverflow
	}

	mint.Supply += args.Amount
	dest.Amount += args.Amount

	mintInfo.Data = mint.Marshal()
	if err := ctx.Store(args.Mint, mintInfo); err != nil {
		return err
	}
	destInfo.Data = dest.Marshal()
	return ctx.Store(args.Destination, destInfo)
}

func tokenBurn(ctx *InvokeContext, args *token.DecompiledBurn) error {
	accountInfo, account, err := loadTokenAccount(ctx, args.Account)
	if err != nil {
		return err
	}
	mintInfo, mint, err := loadMint(ctx, args.Mint)
	if err != nil {
		return err
	}

	if account.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(account.Mint, args.Mint) {
		return token.ErrorMintMismatch
	}
	if account.Amount < args.Amount {
		return token.ErrorInsufficientFunds
	}

	if err := spendAuthority(ctx, account, args.Owner, args.Amount); err != nil {
		return err
	}

	account.Amount -= args.Amount
	mint.Supply -= args.Amount

	accountInfo.Data = account.Marshal()
	if err := ctx.Store(args.Account, accountInfo); err != nil {
		return err
	}
	mintInfo.Data = mint.Marshal()
	return ctx.Store(args.Mint, mintInfo)
}

func tokenCloseAccount(ctx *InvokeContext, args *token.DecompiledCloseAccount) error {
	if bytes.Equal(args.Account, args.Destination) {
		return ErrInvalidAccountData
	}

	info, account, err := loadTokenAccount(ctx, args.Account)
	if err != nil {
		return err
	}
	if account.Amount != 0 {
		return token.ErrorNonNativeHasBalance
	}

	authority := account.CloseAuthority
	if authority == nil {
		authority = account.Owner
	}
	if err := validateAuthority(ctx, authority, args.Owner); err != nil {
		return err
	}

	if err := credit(ctx, args.Destination, info.Lamports); err != nil {
		return err
	}

	return ctx.Store(args.Account, &solana.AccountInfo{
		Owner: info.Owner,
	})
}

// spendAuthority validates that authority may move amount out of the account,
// either as its owner or as its delegate. Delegated allowances are consumed.
func spendAuthority(ctx *InvokeContext, account *token.Account, authority ed25519.PublicKey, amount uint64) error {
	if bytes.Equal(account.Owner, authority) {
		return validateAuthority(ctx, account.Owner, authority)
	}

	if account.Delegate == nil || !bytes.Equal(account.Delegate, authority) {
		return token.ErrorOwnerMismatch
	}
	if !ctx.IsSigner(authority) {
		return ErrMissingRequiredSignature
	}
	if account.DelegatedAmount < amount {
		return token.ErrorInsufficientFunds
	}

	account.DelegatedAmount -= amount
	if account.DelegatedAmount == 0 {
		account.Delegate = nil
	}
	return nil
}

func validateAuthority(ctx *InvokeContext, expected, provided ed25519.PublicKey) error {
	if !bytes.Equal(expected, provided) {
		return token.ErrorOwnerMismatch
	}
	if !ctx.IsSigner(provided) {
		return ErrMissingRequiredSignature
	}
	return nil
}

func loadTokenProgramAccount(ctx *InvokeContext, address ed25519.PublicKey, size int) (*solana.AccountInfo, error) {
	info, err := ctx.Load(address)
	if err == ErrAccountNotFound {
		return nil, ErrUninitializedAccount
	} else if err != nil {
		return nil, err
	}

	if !bytes.Equal(info.Owner, token.ProgramKey) {
		return nil, ErrIncorrectProgramID
	}
	if len(info.Data) != size {
		return nil, ErrInvalidAccountData
	}
	return info, nil
}

func loadMint(ctx *InvokeContext, address ed25519.PublicKey) (*solana.AccountInfo, *token.Mint, error) {
	info, err := loadTokenProgramAccount(ctx, address, token.MintSize)
	if err != nil {
		return nil, nil, err
	}

	var mint token.Mint
	mint.Unmarshal(info.Data)
	if !mint.IsInitialized {
		return nil, nil, token.ErrorUninitializedState
	}
	return info, &mint, nil
}

func loadTokenAccount(ctx *InvokeContext, address ed25519.PublicKey) (*solana.AccountInfo, *token.Account, error) {
	info, err := loadTokenProgramAccount(ctx, address, token.AccountSize)
	if err != nil {
		return nil, nil, err
	}

	var account token.Account
	account.Unmarshal(info.Data)
	if account.State == token.AccountStateUninitialized {
		return nil, nil, token.ErrorUninitializedState
	}
	return info, &account, nil
}

// credit adds lamports to the account, creating a system owned account if
// needed.
func credit(ctx *InvokeContext, address ed25519.PublicKey, lamports uint64) error {
	info, err := ctx.Load(address)
	if err == ErrAccountNotFound {
		info = &solana.AccountInfo{
			Owner: systemProgramKey(),
		}
	} else if err != nil {
		return err
	}

	info.Lamports += lamports
	return ctx.Store(address, info)
}
