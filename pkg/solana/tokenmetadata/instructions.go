package tokenmetadata

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/binary"
)

// newInstruction builds a token metadata instruction. args must be a value,
// not a pointer, since reflection encodes pointers as options.
func newInstruction(
	schema *solana.AccountSchema,
	instructionType InstructionType,
	keys map[string]ed25519.PublicKey,
	args interface{},
) (solana.Instruction, error) {
	accounts, err := schema.Build(keys)
	if err != nil {
		return solana.Instruction{}, err
	}

	data := []byte{byte(instructionType)}
	if args != nil {
		encoded, err := binary.MarshalBorsh(args)
		if err != nil {
			return solana.Instruction{}, errors.Wrapf(err, "failed to serialize %s args", schema.Instruction)
		}
		data = append(data, encoded...)
	}

	return solana.NewInstruction(PROGRAM_ID, data, accounts...), nil
}

// decompileInstruction verifies the instruction type, resolves the accounts
// against the schema and decodes the arguments into args, if provided. The
// program is not checked, so instructions targeting an injected program id
// can be decoded.
func decompileInstruction(
	ix solana.Instruction,
	schema *solana.AccountSchema,
	instructionType InstructionType,
	args interface{},
) (solana.ResolvedAccounts, error) {
	if len(ix.Data) == 0 || InstructionType(ix.Data[0]) != instructionType {
		return nil, solana.ErrIncorrectInstruction
	}

	accounts, err := schema.Resolve(ix.Accounts)
	if err != nil {
		return nil, err
	}

	if args == nil {
		return accounts, nil
	}
	if err := binary.UnmarshalBorsh(args, ix.Data[1:]); err != nil {
		return nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}
	return accounts, nil
}
