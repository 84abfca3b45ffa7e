package mintnft

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/code-nft/pkg/solana"
)

// ErrorKind classifies why a mint-nft instruction failed. The first violated
// check determines the kind.
type ErrorKind uint8

const (
	ErrorKindUnknown ErrorKind = iota

	// ErrorKindValidation is a wrong signer, account owner, program id or
	// derived address, or an out of range argument.
	ErrorKindValidation

	// ErrorKindAlreadyExists is an attempt to re-create a mint, token account,
	// metadata account or an already issued edition number.
	ErrorKindAlreadyExists

	// ErrorKindSupplyExhausted means the master edition cannot print the
	// requested edition.
	ErrorKindSupplyExhausted

	// ErrorKindCrossProgramCallFailed is any other failure returned by a
	// called program.
	ErrorKindCrossProgramCallFailed
)

// Custom program error codes, in the Anchor user error range.
const (
	ErrorValidation             solana.CustomError = 6000
	ErrorAlreadyExists          solana.CustomError = 6001
	ErrorSupplyExhausted        solana.CustomError = 6002
	ErrorCrossProgramCallFailed solana.CustomError = 6003
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindValidation:
		return "validation"
	case ErrorKindAlreadyExists:
		return "already_exists"
	case ErrorKindSupplyExhausted:
		return "supply_exhausted"
	case ErrorKindCrossProgramCallFailed:
		return "cross_program_call_failed"
	default:
		return "unknown"
	}
}

// Code returns the custom program error reported on chain for the kind.
func (k ErrorKind) Code() solana.CustomError {
	switch k {
	case ErrorKindValidation:
		return ErrorValidation
	case ErrorKindAlreadyExists:
		return ErrorAlreadyExists
	case ErrorKindSupplyExhausted:
		return ErrorSupplyExhausted
	default:
		return ErrorCrossProgramCallFailed
	}
}

// Error is a classified mint-nft failure. It unwraps to the custom program
// error for its kind, so the runtime reports the kind's code.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{
		Kind:  kind,
		Cause: cause,
	}
}

func validationErrorf(format string, args ...interface{}) *Error {
	return newError(ErrorKindValidation, errors.Errorf(format, args...))
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("mint-nft: %s", e.Kind)
	}
	return fmt.Sprintf("mint-nft: %s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Kind.Code()
}

// Classify returns the kind of a failure, whether it is a local *Error
// returned by an instruction builder or a transaction error reported by the
// runtime or an RPC node.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	for _, target := range []error{
		solana.ErrMissingSchemaAccount,
		solana.ErrNotEnoughAccountKeys,
		solana.ErrAccountPrivilegeError,
		solana.ErrNoValidBump,
	} {
		if errors.Is(err, target) {
			return ErrorKindValidation
		}
	}

	var txErr *solana.TransactionError
	if !errors.As(err, &txErr) || txErr.InstructionError() == nil {
		return ErrorKindUnknown
	}
	ixErr := txErr.InstructionError()

	if custom := ixErr.CustomError(); custom != nil {
		switch *custom {
		case ErrorValidation:
			return ErrorKindValidation
		case ErrorAlreadyExists:
			return ErrorKindAlreadyExists
		case ErrorSupplyExhausted:
			return ErrorKindSupplyExhausted
		default:
			return ErrorKindCrossProgramCallFailed
		}
	}

	switch ixErr.ErrorKey() {
	case solana.InstructionErrorMissingRequiredSignature,
		solana.InstructionErrorNotEnoughAccountKeys,
		solana.InstructionErrorInvalidArgument,
		solana.InstructionErrorInvalidSeeds,
		solana.InstructionErrorPrivilegeEscalation,
		solana.InstructionErrorMissingAccount:
		return ErrorKindValidation
	default:
		return ErrorKindCrossProgramCallFailed
	}
}
