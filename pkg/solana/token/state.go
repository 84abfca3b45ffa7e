package token

import (
	"crypto/ed25519"

	"github.com/code-payments/code-nft/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L37
const MintSize = 82

// Account is an SPL token account. An edition NFT is held in one with
// Amount 1.
type Account struct {
	Mint   ed25519.PublicKey
	Owner  ed25519.PublicKey
	Amount uint64

	// Delegate may move up to DelegatedAmount tokens on behalf of Owner.
	Delegate        ed25519.PublicKey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	w := binary.NewWriter(AccountSize)
	w.Key(a.Mint)
	w.Key(a.Owner)
	w.Uint64(a.Amount)
	w.OptionalKey(a.Delegate)
	w.Uint8(byte(a.State))
	w.OptionalUint64(a.IsNative)
	w.Uint64(a.DelegatedAmount)
	w.OptionalKey(a.CloseAuthority)
	return w.Bytes()
}

func (a *Account) Unmarshal(b []byte) bool {
	if len(b) != AccountSize {
		return false
	}

	r := binary.NewReader(b)
	*a = Account{
		Mint:            r.Key(),
		Owner:           r.Key(),
		Amount:          r.Uint64(),
		Delegate:        r.OptionalKey(),
		State:           AccountState(r.Uint8()),
		IsNative:        r.OptionalUint64(),
		DelegatedAmount: r.Uint64(),
		CloseAuthority:  r.OptionalKey(),
	}
	return true
}

// Mint is an SPL mint. NFT mints have zero decimals and a supply of 1; the
// mint authority is handed to the edition account once an edition exists.
type Mint struct {
	// Nil once minting has been disabled.
	MintAuthority   ed25519.PublicKey
	Supply          uint64
	Decimals        byte
	IsInitialized   bool
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	w := binary.NewWriter(MintSize)
	w.OptionalKey(m.MintAuthority)
	w.Uint64(m.Supply)
	w.Uint8(m.Decimals)
	w.Bool(m.IsInitialized)
	w.OptionalKey(m.FreezeAuthority)
	return w.Bytes()
}

func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) != MintSize {
		return false
	}

	r := binary.NewReader(b)
	*m = Mint{
		MintAuthority:   r.OptionalKey(),
		Supply:          r.Uint64(),
		Decimals:        r.Uint8(),
		IsInitialized:   r.Bool(),
		FreezeAuthority: r.OptionalKey(),
	}
	return true
}
