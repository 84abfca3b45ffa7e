package mintnft

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/binary"
)

// newInstruction does not validate; callers run their entry point checks
// first. args must be a value, since reflection encodes pointers as options.
func (c *ProgramConfig) newInstruction(
	schema *solana.AccountSchema,
	instructionType InstructionType,
	keys map[string]ed25519.PublicKey,
	args interface{},
) (solana.Instruction, error) {
	accounts, err := schema.Build(keys)
	if err != nil {
		return solana.Instruction{}, newError(ErrorKindValidation, err)
	}

	data := instructionType.Discriminator()
	if args != nil {
		encoded, err := binary.MarshalBorsh(args)
		if err != nil {
			return solana.Instruction{}, errors.Wrapf(err, "failed to serialize %s args", schema.Instruction)
		}
		data = append(data, encoded...)
	}

	return solana.NewInstruction(c.Program, data, accounts...), nil
}

func decompileInstruction(
	ix solana.Instruction,
	schema *solana.AccountSchema,
	instructionType InstructionType,
	args interface{},
) (solana.ResolvedAccounts, error) {
	if len(ix.Data) < discriminatorSize || !bytes.Equal(ix.Data[:discriminatorSize], instructionType.Discriminator()) {
		return nil, solana.ErrIncorrectInstruction
	}

	accounts, err := schema.Resolve(ix.Accounts)
	if err != nil {
		return nil, err
	}

	if args == nil {
		return accounts, nil
	}
	if err := binary.UnmarshalBorsh(args, ix.Data[discriminatorSize:]); err != nil {
		return nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}
	return accounts, nil
}

// requireAddress fails with a validation error when provided is not the
// expected derived address.
func requireAddress(name string, expected, provided ed25519.PublicKey) error {
	if !bytes.Equal(expected, provided) {
		return validationErrorf("%s is not the expected program address", name)
	}
	return nil
}

func requireDistinct(name string, a, b ed25519.PublicKey) error {
	if bytes.Equal(a, b) {
		return validationErrorf("%s must be distinct", name)
	}
	return nil
}

// derived wraps a derivation failure as a validation error.
func derived(address ed25519.PublicKey, err error) (ed25519.PublicKey, error) {
	if err != nil {
		return nil, newError(ErrorKindValidation, err)
	}
	return address, nil
}
