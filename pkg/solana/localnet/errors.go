package localnet

import (
	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
)

// Builtin instruction errors. Programs return these (optionally wrapped) or a
// solana.CustomError, which is surfaced as a Custom instruction error.
var (
	ErrGenericError                = newInstructionError(solana.InstructionErrorGenericError)
	ErrInvalidArgument             = newInstructionError(solana.InstructionErrorInvalidArgument)
	ErrInvalidInstructionData      = newInstructionError(solana.InstructionErrorInvalidInstructionData)
	ErrInvalidAccountData          = newInstructionError(solana.InstructionErrorInvalidAccountData)
	ErrAccountDataTooSmall         = newInstructionError(solana.InstructionErrorAccountDataTooSmall)
	ErrInsufficientFunds           = newInstructionError(solana.InstructionErrorInsufficientFunds)
	ErrIncorrectProgramID          = newInstructionError(solana.InstructionErrorIncorrectProgramID)
	ErrMissingRequiredSignature    = newInstructionError(solana.InstructionErrorMissingRequiredSignature)
	ErrAccountAlreadyInitialized   = newInstructionError(solana.InstructionErrorAccountAlreadyInitialized)
	ErrUninitializedAccount        = newInstructionError(solana.InstructionErrorUninitializedAccount)
	ErrUnbalancedInstruction       = newInstructionError(solana.InstructionErrorUnbalancedInstruction)
	ErrExternalAccountLamportSpend = newInstructionError(solana.InstructionErrorExternalAccountLamportSpend)
	ErrExternalAccountDataModified = newInstructionError(solana.InstructionErrorExternalAccountDataModified)
	ErrReadonlyLamportChange       = newInstructionError(solana.InstructionErrorReadonlyLamportChange)
	ErrReadonlyDataModified        = newInstructionError(solana.InstructionErrorReadonlyDataModified)
	ErrNotEnoughAccountKeys        = newInstructionError(solana.InstructionErrorNotEnoughAccountKeys)
	ErrUnsupportedProgramID        = newInstructionError(solana.InstructionErrorUnsupportedProgramID)
	ErrCallDepth                   = newInstructionError(solana.InstructionErrorCallDepth)
	ErrMissingAccount              = newInstructionError(solana.InstructionErrorMissingAccount)
	ErrReentrancyNotAllowed        = newInstructionError(solana.InstructionErrorReentrancyNotAllowed)
	ErrInvalidSeeds                = newInstructionError(solana.InstructionErrorInvalidSeeds)
	ErrPrivilegeEscalation         = newInstructionError(solana.InstructionErrorPrivilegeEscalation)
)

// instructionError is a builtin runtime error identified by its key.
type instructionError struct {
	key solana.InstructionErrorKey
}

func newInstructionError(key solana.InstructionErrorKey) error {
	return &instructionError{key: key}
}

func (e *instructionError) Error() string {
	return string(e.key)
}

// toInstructionError converts an error returned by a program into the
// InstructionError reported for the instruction at index. Errors that are
// neither custom program errors nor builtin errors become GenericError.
func toInstructionError(index int, err error) *solana.InstructionError {
	var custom solana.CustomError
	if errors.As(err, &custom) {
		return &solana.InstructionError{
			Index: index,
			Err:   custom,
		}
	}

	var builtin *instructionError
	if errors.As(err, &builtin) {
		return solana.NewInstructionError(index, builtin.key)
	}

	// Account schema failures are the runtime's view of a malformed account
	// list.
	switch errors.Cause(err) {
	case solana.ErrNotEnoughAccountKeys:
		return solana.NewInstructionError(index, solana.InstructionErrorNotEnoughAccountKeys)
	case solana.ErrAccountPrivilegeError:
		return solana.NewInstructionError(index, solana.InstructionErrorMissingRequiredSignature)
	}

	return solana.NewInstructionError(index, solana.InstructionErrorGenericError)
}

func transactionError(index int, err error) error {
	txErr, convErr := solana.TransactionErrorFromInstructionError(toInstructionError(index, err))
	if convErr != nil {
		return errors.Wrap(convErr, "failed to build transaction error")
	}
	return txErr
}
