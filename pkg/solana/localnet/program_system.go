package localnet

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
)

// maxAccountDataSize is the largest account the system program will allocate.
const maxAccountDataSize = 10 * 1024 * 1024

func processSystemInstruction(ctx *InvokeContext) error {
	ix := ctx.Instruction()

	cmd, err := system.GetCommand(ix)
	if err != nil {
		return ErrInvalidInstructionData
	}

	switch cmd {
	case system.CommandCreateAccount:
		decompiled, err := system.DecompileCreateAccount(ix)
		if err != nil {
			return errors.Wrap(ErrInvalidInstructionData, err.Error())
		}
		return systemCreateAccount(ctx, decompiled)
	case system.CommandTransfer:
		decompiled, err := system.DecompileTransfer(ix)
		if err != nil {
			return errors.Wrap(ErrInvalidInstructionData, err.Error())
		}
		return systemTransfer(ctx, decompiled)
	default:
		return ErrInvalidInstructionData
	}
}

func systemCreateAccount(ctx *InvokeContext, args *system.DecompiledCreateAccount) error {
	if !ctx.IsSigner(args.Funder) || !ctx.IsSigner(args.Address) {
		return ErrMissingRequiredSignature
	}
	if args.Size > maxAccountDataSize {
		return system.ErrorInvalidAccountDataLength
	}

	exists, err := ctx.Exists(args.Address)
	if err != nil {
		return err
	}
	if exists {
		ctx.Log().WithField("address", addressKey(args.Address)).Debug("create account: address already in use")
		return system.ErrorAccountAlreadyInUse
	}

	if err := debit(ctx, args.Funder, args.Lamports); err != nil {
		return err
	}

	return ctx.Store(args.Address, &solana.AccountInfo{
		Lamports: args.Lamports,
		Owner:    append(ed25519.PublicKey{}, args.Owner...),
		Data:     make([]byte, args.Size),
	})
}

func systemTransfer(ctx *InvokeContext, args *system.DecompiledTransfer) error {
	if !ctx.IsSigner(args.From) {
		return ErrMissingRequiredSignature
	}

	if err := debit(ctx, args.From, args.Lamports); err != nil {
		return err
	}

	to, err := ctx.Load(args.To)
	if err == ErrAccountNotFound {
		to = &solana.AccountInfo{
			Owner: systemProgramKey(),
		}
	} else if err != nil {
		return err
	}
	to.Lamports += args.Lamports

	return ctx.Store(args.To, to)
}

// debit removes lamports from a system owned account that carries no data.
func debit(ctx *InvokeContext, address ed25519.PublicKey, lamports uint64) error {
	from, err := ctx.Load(address)
	if err == ErrAccountNotFound {
		if lamports == 0 {
			return nil
		}
		return system.ErrorResultWithNegativeLamports
	} else if err != nil {
		return err
	}

	if !bytes.Equal(from.Owner, system.ProgramKey[:]) || len(from.Data) > 0 {
		return ErrInvalidArgument
	}
	if from.Lamports < lamports {
		return system.ErrorResultWithNegativeLamports
	}

	from.Lamports -= lamports
	return ctx.Store(address, from)
}

func systemProgramKey() ed25519.PublicKey {
	return append(ed25519.PublicKey{}, system.ProgramKey[:]...)
}
