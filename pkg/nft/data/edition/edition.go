package edition

import (
	"time"

	"github.com/pkg/errors"
)

type State uint8

const (
	StateUnknown State = iota
	StateActive
	StateBurned
)

// Record is a print edition issued by the minter. Addresses are base58
// encoded.
type Record struct {
	Id uint64

	Mint       string
	MasterMint string
	Edition    uint64

	Owner     string
	Signature string

	State State

	CreatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Mint) == 0 {
		return errors.New("mint is required")
	}

	if len(r.MasterMint) == 0 {
		return errors.New("master mint is required")
	}

	if r.Mint == r.MasterMint {
		return errors.New("mint cannot be the master mint")
	}

	if r.Edition == 0 {
		return errors.New("edition must be positive")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	if len(r.Signature) == 0 {
		return errors.New("signature is required")
	}

	if r.State == StateUnknown {
		return errors.New("state is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		Mint:       r.Mint,
		MasterMint: r.MasterMint,
		Edition:    r.Edition,

		Owner:     r.Owner,
		Signature: r.Signature,

		State: r.State,

		CreatedAt: r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Mint = r.Mint
	dst.MasterMint = r.MasterMint
	dst.Edition = r.Edition

	dst.Owner = r.Owner
	dst.Signature = r.Signature

	dst.State = r.State

	dst.CreatedAt = r.CreatedAt
}

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateBurned:
		return "burned"
	}
	return "unknown"
}
