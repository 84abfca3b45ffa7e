package localnet

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
	"github.com/code-payments/code-nft/pkg/solana/token"
)

func processAssociatedTokenInstruction(ctx *InvokeContext) error {
	args, err := token.DecompileCreateAssociatedAccount(ctx.Instruction())
	if err != nil {
		return errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	expected, bump, err := solana.FindProgramAddressAndBump(
		ctx.ProgramID(),
		args.Owner,
		token.ProgramKey,
		args.Mint,
	)
	if err != nil {
		return errors.Wrap(ErrInvalidSeeds, err.Error())
	}
	if !bytes.Equal(expected, args.Address) {
		return ErrInvalidSeeds
	}

	if args.Idempotent {
		info, err := ctx.Load(args.Address)
		switch err {
		case nil:
			var account token.Account
			if !bytes.Equal(info.Owner, token.ProgramKey) || !account.Unmarshal(info.Data) {
				return ErrInvalidAccountData
			}
			if !bytes.Equal(account.Mint, args.Mint) || !bytes.Equal(account.Owner, args.Owner) {
				return ErrInvalidAccountData
			}
			return nil
		case ErrAccountNotFound:
		default:
			return err
		}
	}

	seeds := [][]byte{args.Owner, token.ProgramKey, args.Mint, {bump}}

	create := system.CreateAccount(
		args.Subsidizer,
		args.Address,
		token.ProgramKey,
		ctx.MinimumBalanceForRentExemption(token.AccountSize),
		token.AccountSize,
	)
	if err := ctx.Invoke(create, seeds); err != nil {
		return err
	}

	initialize := token.InitializeAccount(args.Address, args.Mint, args.Owner)
	return ctx.Invoke(initialize, seeds)
}
