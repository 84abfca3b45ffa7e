package edition

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("edition record not found")
	ErrAlreadyExists = errors.New("edition record already exists")
)

type Store interface {
	// Put creates a new edition record
	//
	// Returns ErrAlreadyExists if a record exists for the mint, or for the
	// edition number of the master mint.
	Put(ctx context.Context, record *Record) error

	// Get gets an edition record by its mint
	//
	// Returns ErrNotFound if no record is found.
	Get(ctx context.Context, mint string) (*Record, error)

	// GetAllByMaster gets all edition records printed from a master mint,
	// ordered by edition number
	//
	// Returns ErrNotFound if no records are found.
	GetAllByMaster(ctx context.Context, masterMint string) ([]*Record, error)

	// MarkBurned transitions an edition record to the burned state. Burning
	// an already burned edition is a no-op.
	//
	// Returns ErrNotFound if no record is found.
	MarkBurned(ctx context.Context, mint string) error

	// CountByMaster counts all edition records printed from a master mint,
	// including burned editions.
	CountByMaster(ctx context.Context, masterMint string) (uint64, error)
}
