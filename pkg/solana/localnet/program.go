package localnet

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
)

// MaxInvokeDepth is the maximum height of the program call stack, including
// the top level instruction.
const MaxInvokeDepth = 4

// Program is an on chain program executed natively by the Bank.
type Program interface {
	Process(ctx *InvokeContext) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx *InvokeContext) error

// Process implements Program.Process
func (f ProgramFunc) Process(ctx *InvokeContext) error {
	return f(ctx)
}

// InvokeContext is the view a program has of the transaction while it
// processes a single instruction. Account access is limited to the accounts
// referenced by the instruction, with the privileges they were passed with.
type InvokeContext struct {
	ctx       context.Context
	bank      *Bank
	ws        *workingSet
	ix        solana.Instruction
	programID ed25519.PublicKey
	stack     []string
	log       *logrus.Entry
}

func (c *InvokeContext) Context() context.Context {
	return c.ctx
}

func (c *InvokeContext) Instruction() solana.Instruction {
	return c.ix
}

func (c *InvokeContext) ProgramID() ed25519.PublicKey {
	return c.programID
}

// Depth is the height of the call stack, 1 for a top level instruction.
func (c *InvokeContext) Depth() int {
	return len(c.stack)
}

func (c *InvokeContext) Log() *logrus.Entry {
	return c.log
}

func (c *InvokeContext) MinimumBalanceForRentExemption(size uint64) uint64 {
	return minimumBalanceForRentExemption(size)
}

// meta returns the privileges the address was passed with, merged across
// every occurrence in the instruction.
func (c *InvokeContext) meta(address ed25519.PublicKey) (solana.AccountMeta, bool) {
	var merged solana.AccountMeta
	var found bool
	for _, a := range c.ix.Accounts {
		if !bytes.Equal(a.PublicKey, address) {
			continue
		}

		found = true
		merged.PublicKey = a.PublicKey
		merged.IsSigner = merged.IsSigner || a.IsSigner
		merged.IsWritable = merged.IsWritable || a.IsWritable
	}
	return merged, found
}

func (c *InvokeContext) IsSigner(address ed25519.PublicKey) bool {
	meta, ok := c.meta(address)
	return ok && meta.IsSigner
}

func (c *InvokeContext) IsWritable(address ed25519.PublicKey) bool {
	meta, ok := c.meta(address)
	return ok && meta.IsWritable
}

// Exists reports whether the account holds any lamports.
func (c *InvokeContext) Exists(address ed25519.PublicKey) (bool, error) {
	if _, ok := c.meta(address); !ok {
		return false, errors.Wrap(ErrMissingAccount, base58.Encode(address))
	}

	account, err := c.ws.get(address)
	if err != nil {
		return false, err
	}
	return account != nil, nil
}

// Load returns a copy of the account, or ErrAccountNotFound.
func (c *InvokeContext) Load(address ed25519.PublicKey) (*solana.AccountInfo, error) {
	if _, ok := c.meta(address); !ok {
		return nil, errors.Wrap(ErrMissingAccount, base58.Encode(address))
	}

	account, err := c.ws.get(address)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Store writes the account into the transaction's working set. Only the
// owning program may modify data or debit lamports, any program may credit
// lamports, and only the system program may create accounts with data.
// Storing zero lamports closes the account.
func (c *InvokeContext) Store(address ed25519.PublicKey, account *solana.AccountInfo) error {
	meta, ok := c.meta(address)
	if !ok {
		return errors.Wrap(ErrMissingAccount, base58.Encode(address))
	}

	current, err := c.ws.get(address)
	if err != nil {
		return err
	}

	if !meta.IsWritable {
		if current != nil && current.Lamports != account.Lamports {
			return ErrReadonlyLamportChange
		}
		return ErrReadonlyDataModified
	}

	isSystem := bytes.Equal(c.programID, system.ProgramKey[:])
	switch {
	case current == nil:
		if !isSystem && (len(account.Data) > 0 || !bytes.Equal(account.Owner, system.ProgramKey[:])) {
			return ErrExternalAccountDataModified
		}
	case !bytes.Equal(current.Owner, c.programID):
		if !bytes.Equal(current.Data, account.Data) || !bytes.Equal(current.Owner, account.Owner) {
			return ErrExternalAccountDataModified
		}
		if account.Lamports < current.Lamports {
			return ErrExternalAccountLamportSpend
		}
	}

	c.ws.put(address, account)
	return nil
}

// Invoke performs a cross program invocation. The callee only receives
// privileges held by the caller, plus signatures for the caller's program
// derived addresses created from signerSeeds.
func (c *InvokeContext) Invoke(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if len(c.stack) >= MaxInvokeDepth {
		return ErrCallDepth
	}

	if _, ok := c.meta(ix.Program); !ok {
		return errors.Wrapf(ErrMissingAccount, "program %s", base58.Encode(ix.Program))
	}

	callee := base58.Encode(ix.Program)
	current := c.stack[len(c.stack)-1]
	for _, frame := range c.stack {
		if frame == callee && callee != current {
			return ErrReentrancyNotAllowed
		}
	}

	var pdaSigners []ed25519.PublicKey
	for _, seeds := range signerSeeds {
		signer, err := solana.CreateProgramAddress(c.programID, seeds...)
		if err != nil {
			return errors.Wrap(ErrInvalidSeeds, err.Error())
		}
		pdaSigners = append(pdaSigners, signer)
	}

	for _, a := range ix.Accounts {
		if bytes.Equal(a.PublicKey, system.RentSysVar) {
			continue
		}

		meta, ok := c.meta(a.PublicKey)
		if !ok {
			return errors.Wrap(ErrMissingAccount, base58.Encode(a.PublicKey))
		}

		if a.IsSigner && !meta.IsSigner && !containsKey(pdaSigners, a.PublicKey) {
			return errors.Wrapf(ErrMissingRequiredSignature, "%s", base58.Encode(a.PublicKey))
		}
		if a.IsWritable && !meta.IsWritable {
			return errors.Wrapf(ErrPrivilegeEscalation, "%s is not writable", base58.Encode(a.PublicKey))
		}
	}

	program, ok := c.bank.getProgram(ix.Program)
	if !ok {
		return ErrUnsupportedProgramID
	}

	stack := make([]string, len(c.stack), len(c.stack)+1)
	copy(stack, c.stack)

	err := program.Process(&InvokeContext{
		ctx:       c.ctx,
		bank:      c.bank,
		ws:        c.ws,
		ix:        ix,
		programID: ix.Program,
		stack:     append(stack, callee),
		log:       c.bank.log.WithField("program", callee),
	})
	if err != nil {
		c.ws.fail(err)
		return err
	}
	return nil
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
