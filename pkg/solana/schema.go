package solana

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

var (
	ErrMissingSchemaAccount  = errors.New("missing schema account")
	ErrNotEnoughAccountKeys  = errors.New("not enough account keys")
	ErrAccountPrivilegeError = errors.New("account privilege mismatch")
)

// AccountSpec describes a single positional account of a program instruction.
type AccountSpec struct {
	Name     string
	Signer   bool
	Writable bool
}

// AccountSchema is the explicit, ordered account ABI of a program instruction.
// Programs index accounts by position, so the order of Accounts is part of the
// wire contract. Version is bumped whenever the order or the required
// privileges change.
type AccountSchema struct {
	Instruction string
	Version     uint8
	Accounts    []AccountSpec

	positions map[string]int
}

// NewAccountSchema builds a schema, panicking on duplicate or empty account
// names. Schemas are package level values, so this fails at init time.
func NewAccountSchema(instruction string, version uint8, accounts ...AccountSpec) *AccountSchema {
	s := &AccountSchema{
		Instruction: instruction,
		Version:     version,
		Accounts:    accounts,
		positions:   make(map[string]int, len(accounts)),
	}

	for i, a := range accounts {
		if len(a.Name) == 0 {
			panic(fmt.Sprintf("%s: account %d has no name", instruction, i))
		}
		if _, ok := s.positions[a.Name]; ok {
			panic(fmt.Sprintf("%s: duplicate account %s", instruction, a.Name))
		}
		s.positions[a.Name] = i
	}

	return s
}

// Len returns the number of accounts in the schema.
func (s *AccountSchema) Len() int {
	return len(s.Accounts)
}

// Position returns the index of the named account.
func (s *AccountSchema) Position(name string) (int, bool) {
	i, ok := s.positions[name]
	return i, ok
}

// Build produces the ordered account metas for the provided keys. Every
// account in the schema must be provided.
func (s *AccountSchema) Build(keys map[string]ed25519.PublicKey) ([]AccountMeta, error) {
	for name := range keys {
		if _, ok := s.positions[name]; !ok {
			return nil, errors.Errorf("%s: unknown account %s", s.Instruction, name)
		}
	}

	metas := make([]AccountMeta, len(s.Accounts))
	for i, a := range s.Accounts {
		key, ok := keys[a.Name]
		if !ok || len(key) != ed25519.PublicKeySize {
			return nil, errors.Wrapf(ErrMissingSchemaAccount, "%s: %s", s.Instruction, a.Name)
		}

		metas[i] = AccountMeta{
			PublicKey:  key,
			IsSigner:   a.Signer,
			IsWritable: a.Writable,
		}
	}

	return metas, nil
}

// ResolvedAccounts maps schema account names to the metas supplied in an
// instruction.
type ResolvedAccounts map[string]AccountMeta

// Key returns the public key of the named account, or nil if it isn't present.
func (r ResolvedAccounts) Key(name string) ed25519.PublicKey {
	return r[name].PublicKey
}

// Resolve maps the accounts of an instruction back onto the schema, verifying
// that each account carries at least the privileges the schema requires.
// Additional trailing accounts are ignored.
func (s *AccountSchema) Resolve(accounts []AccountMeta) (ResolvedAccounts, error) {
	if len(accounts) < len(s.Accounts) {
		return nil, errors.Wrapf(ErrNotEnoughAccountKeys, "%s: expected %d, got %d", s.Instruction, len(s.Accounts), len(accounts))
	}

	resolved := make(ResolvedAccounts, len(s.Accounts))
	for i, a := range s.Accounts {
		meta := accounts[i]

		if a.Signer && !meta.IsSigner {
			return nil, errors.Wrapf(ErrAccountPrivilegeError, "%s: %s (%s) must sign", s.Instruction, a.Name, base58.Encode(meta.PublicKey))
		}
		if a.Writable && !meta.IsWritable {
			return nil, errors.Wrapf(ErrAccountPrivilegeError, "%s: %s (%s) must be writable", s.Instruction, a.Name, base58.Encode(meta.PublicKey))
		}

		resolved[a.Name] = meta
	}

	return resolved, nil
}
