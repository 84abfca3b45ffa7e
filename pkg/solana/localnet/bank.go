package localnet

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/system"
	"github.com/code-payments/code-nft/pkg/solana/token"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

const (
	// LamportsPerSignature is the fee charged per transaction signature.
	LamportsPerSignature = 5000

	// MaxRecentBlockhashes is the number of blockhashes a transaction may
	// reference before it is rejected with BlockhashNotFound.
	MaxRecentBlockhashes = 150

	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	exemptionThreshold     = 2
)

var (
	// BPFLoaderProgramKey is reported as the owner of registered programs.
	BPFLoaderProgramKey = solana.MustBase58Decode("BPFLoaderUpgradeab1e11111111111111111111111")
)

func minimumBalanceForRentExemption(size uint64) uint64 {
	return (accountStorageOverhead + size) * lamportsPerByteYear * exemptionThreshold
}

// Bank is an in process Solana runtime. Transactions are executed natively by
// registered programs against a per transaction working set, which is only
// committed to the Store when every instruction succeeds.
//
// Bank implements solana.Client, so it can stand in for an RPC node.
type Bank struct {
	log   *logrus.Entry
	store Store
	locks *accountLocks

	programsMu sync.RWMutex
	programs   map[string]Program

	mu          sync.Mutex
	slot        uint64
	blockhashes []solana.Blockhash
	statuses    map[solana.Signature]*solana.SignatureStatus
	airdrops    uint64

	// Signatures being executed, not yet in statuses
	inflight map[solana.Signature]struct{}
}

// NewBank returns a Bank with the system, token, associated token account and
// token metadata programs registered.
func NewBank(store Store) *Bank {
	b := &Bank{
		log:      logrus.StandardLogger().WithField("type", "solana/localnet"),
		store:    store,
		locks:    newAccountLocks(),
		programs: make(map[string]Program),
		statuses: make(map[solana.Signature]*solana.SignatureStatus),
		inflight: make(map[solana.Signature]struct{}),
	}

	b.RegisterProgram(system.ProgramKey[:], ProgramFunc(processSystemInstruction))
	b.RegisterProgram(token.ProgramKey, ProgramFunc(processTokenInstruction))
	b.RegisterProgram(token.AssociatedTokenAccountProgramKey, ProgramFunc(processAssociatedTokenInstruction))
	b.RegisterProgram(tokenmetadata.PROGRAM_ID, ProgramFunc(processTokenMetadataInstruction))

	b.advance()

	return b
}

// RegisterProgram makes a program invokable at the address, replacing any
// program already registered there.
func (b *Bank) RegisterProgram(address ed25519.PublicKey, program Program) {
	b.programsMu.Lock()
	defer b.programsMu.Unlock()

	b.programs[addressKey(address)] = program
}

func (b *Bank) getProgram(address ed25519.PublicKey) (Program, bool) {
	b.programsMu.RLock()
	defer b.programsMu.RUnlock()

	program, ok := b.programs[addressKey(address)]
	return program, ok
}

// AdvanceSlots produces n empty slots, each with a new blockhash.
func (b *Bank) AdvanceSlots(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < n; i++ {
		b.advance()
	}
}

// advance must be called with mu held, or before the bank is shared.
func (b *Bank) advance() {
	var prev solana.Blockhash
	if len(b.blockhashes) > 0 {
		prev = b.blockhashes[len(b.blockhashes)-1]
	}

	b.slot++

	var slot [8]byte
	binary.LittleEndian.PutUint64(slot[:], b.slot)
	next := solana.Blockhash(sha256.Sum256(append(prev[:], slot[:]...)))

	b.blockhashes = append(b.blockhashes, next)
	if len(b.blockhashes) > MaxRecentBlockhashes {
		b.blockhashes = b.blockhashes[len(b.blockhashes)-MaxRecentBlockhashes:]
	}
}

func (b *Bank) isRecentBlockhash(hash solana.Blockhash) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, recent := range b.blockhashes {
		if recent == hash {
			return true
		}
	}
	return false
}

// GetLatestBlockhash implements solana.Client.GetLatestBlockhash
func (b *Bank) GetLatestBlockhash() (solana.Blockhash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.blockhashes[len(b.blockhashes)-1], nil
}

// GetSlot implements solana.Client.GetSlot
func (b *Bank) GetSlot(_ solana.Commitment) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.slot, nil
}

// GetMinimumBalanceForRentExemption implements solana.Client.GetMinimumBalanceForRentExemption
func (b *Bank) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	return minimumBalanceForRentExemption(size), nil
}

// GetAccountInfo implements solana.Client.GetAccountInfo
func (b *Bank) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	if _, ok := b.getProgram(address); ok {
		return solana.AccountInfo{
			Owner:      BPFLoaderProgramKey,
			Lamports:   1,
			Executable: true,
		}, nil
	}

	account, err := b.store.Get(context.Background(), address)
	if err == ErrAccountNotFound {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	} else if err != nil {
		return solana.AccountInfo{}, err
	}
	return *account, nil
}

// GetBalance implements solana.Client.GetBalance
func (b *Bank) GetBalance(address ed25519.PublicKey) (uint64, error) {
	account, err := b.store.Get(context.Background(), address)
	if err == ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return account.Lamports, nil
}

// RequestAirdrop implements solana.Client.RequestAirdrop
func (b *Bank) RequestAirdrop(address ed25519.PublicKey, lamports uint64, _ solana.Commitment) (solana.Signature, error) {
	key := addressKey(address)
	if !b.locks.tryLock([]string{key}, nil) {
		return solana.Signature{}, solana.NewTransactionError(solana.TransactionErrorAccountInUse)
	}
	defer b.locks.unlock([]string{key}, nil)

	ctx := context.Background()

	account, err := b.store.Get(ctx, address)
	if err == ErrAccountNotFound {
		account = &solana.AccountInfo{
			Owner: systemProgramKey(),
		}
	} else if err != nil {
		return solana.Signature{}, err
	}
	account.Lamports += lamports

	if err := b.store.Commit(ctx, map[string]*solana.AccountInfo{key: account}); err != nil {
		return solana.Signature{}, errors.Wrap(err, "error committing airdrop")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.airdrops++
	var counter [8]byte
	binary.LittleEndian.PutUint64(counter[:], b.airdrops)

	var sig solana.Signature
	h := sha256.Sum256(append(append([]byte("airdrop"), address...), counter[:]...))
	copy(sig[:], h[:])

	b.statuses[sig] = &solana.SignatureStatus{
		Slot:               b.slot,
		ConfirmationStatus: "finalized",
	}
	b.advance()

	return sig, nil
}

// GetSignatureStatus implements solana.Client.GetSignatureStatus
func (b *Bank) GetSignatureStatus(sig solana.Signature, _ solana.Commitment) (*solana.SignatureStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status, ok := b.statuses[sig]
	if !ok {
		return nil, solana.ErrSignatureNotFound
	}

	copied := *status
	return &copied, nil
}

// SubmitTransaction implements solana.Client.SubmitTransaction. Transactions
// are processed synchronously, so the returned signature is final once this
// returns. Failures are returned as a *solana.TransactionError.
func (b *Bank) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	if len(txn.Signatures) == 0 {
		return solana.Signature{}, solana.NewTransactionError(solana.TransactionErrorMissingSignatureForFee)
	}
	sig := txn.Signatures[0]

	log := b.log.WithField("signature", base58.Encode(sig[:]))

	if err := sanitize(txn); err != nil {
		log.WithError(err).Debug("transaction failed sanitization")
		return sig, err
	}

	if !b.isRecentBlockhash(txn.Message.RecentBlockhash) {
		return sig, solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	if err := txn.VerifySignatures(); err != nil {
		log.WithError(err).Debug("transaction failed signature verification")
		return sig, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	if !b.reserveSignature(sig) {
		return sig, solana.NewTransactionError(solana.TransactionErrorDuplicateSignature)
	}

	writable, readonly := lockKeys(txn.Message)
	if !b.locks.tryLock(writable, readonly) {
		b.releaseSignature(sig)
		return sig, solana.NewTransactionError(solana.TransactionErrorAccountInUse)
	}
	defer b.locks.unlock(writable, readonly)

	ctx := context.Background()

	executeErr, err := b.execute(ctx, log, txn)
	if err != nil {
		b.releaseSignature(sig)
		return sig, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.inflight, sig)

	status := &solana.SignatureStatus{
		Slot:               b.slot,
		ConfirmationStatus: "finalized",
	}
	if executeErr != nil {
		var txErr *solana.TransactionError
		if errors.As(executeErr, &txErr) {
			status.ErrorResult = txErr
		}
	}
	b.statuses[sig] = status
	b.advance()

	if executeErr != nil {
		return sig, executeErr
	}
	return sig, nil
}

// reserveSignature marks the signature as in flight. It returns false if the
// signature was already processed or is being processed.
func (b *Bank) reserveSignature(sig solana.Signature) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.statuses[sig]; ok {
		return false
	}
	if _, ok := b.inflight[sig]; ok {
		return false
	}
	b.inflight[sig] = struct{}{}
	return true
}

// releaseSignature drops a reservation for a transaction that never ran, so
// it may be resubmitted.
func (b *Bank) releaseSignature(sig solana.Signature) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.inflight, sig)
}

// execute runs the transaction. The first error is the transaction failure,
// which is recorded against the signature. The second is an unexpected error
// from the Store, in which case nothing is recorded.
func (b *Bank) execute(ctx context.Context, log *logrus.Entry, txn solana.Transaction) (txFailure error, err error) {
	feePayer := txn.Message.Accounts[0]
	fee := uint64(len(txn.Signatures)) * LamportsPerSignature

	payer, err := b.store.Get(ctx, feePayer)
	if err == ErrAccountNotFound {
		return solana.NewTransactionError(solana.TransactionErrorAccountNotFound), nil
	} else if err != nil {
		return nil, err
	}
	if payer.Lamports < fee {
		return solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee), nil
	}
	payer.Lamports -= fee

	ws := newWorkingSet(ctx, b.store)
	ws.put(feePayer, payer)

	txErr := b.executeInstructions(ctx, log, ws, txn.Message)
	if txErr == nil {
		txErr = b.checkRent(ws)
	}

	if txErr != nil {
		log.WithError(txErr).Debug("transaction failed")

		// The fee is charged even though no other state change is kept.
		if err := b.store.Commit(ctx, map[string]*solana.AccountInfo{addressKey(feePayer): payer}); err != nil {
			return nil, errors.Wrap(err, "error committing fee")
		}
		return txErr, nil
	}

	if err := b.store.Commit(ctx, ws.updates()); err != nil {
		return nil, errors.Wrap(err, "error committing transaction")
	}
	return nil, nil
}

func (b *Bank) executeInstructions(ctx context.Context, log *logrus.Entry, ws *workingSet, m solana.Message) error {
	for i := range m.Instructions {
		ix, err := m.DecompileInstruction(i)
		if err != nil {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		program, ok := b.getProgram(ix.Program)
		if !ok {
			return solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
		}

		before, err := sumLamports(ws, ix.Accounts)
		if err != nil {
			return err
		}

		programKey := addressKey(ix.Program)
		err = program.Process(&InvokeContext{
			ctx:       ctx,
			bank:      b,
			ws:        ws,
			ix:        ix,
			programID: ix.Program,
			stack:     []string{programKey},
			log:       log.WithField("program", programKey),
		})
		if err == nil && ws.failed != nil {
			err = ws.failed
		}
		if err != nil {
			log.WithError(err).WithField("instruction", i).Debug("instruction failed")
			return transactionError(i, err)
		}

		after, err := sumLamports(ws, ix.Accounts)
		if err != nil {
			return err
		}
		if before != after {
			return transactionError(i, ErrUnbalancedInstruction)
		}
	}

	return nil
}

// checkRent rejects transactions that leave a modified account holding data
// below the rent exempt minimum.
func (b *Bank) checkRent(ws *workingSet) error {
	for key, account := range ws.updates() {
		if IsClosed(account) || len(account.Data) == 0 {
			continue
		}
		if account.Lamports < minimumBalanceForRentExemption(uint64(len(account.Data))) {
			b.log.WithField("account", key).Debug("account is not rent exempt")
			return solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForRent)
		}
	}
	return nil
}

func sumLamports(ws *workingSet, accounts []solana.AccountMeta) (uint64, error) {
	seen := make(map[string]struct{})

	var total uint64
	for _, a := range accounts {
		key := addressKey(a.PublicKey)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		account, err := ws.get(a.PublicKey)
		if err != nil {
			return 0, err
		}
		if account != nil {
			total += account.Lamports
		}
	}
	return total, nil
}

// sanitize performs the structural checks done before any account is loaded.
func sanitize(txn solana.Transaction) error {
	if len(txn.Marshal()) > solana.MaxTransactionSize {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	m := txn.Message
	if int(m.Header.NumSignatures) == 0 || int(m.Header.NumSignatures) > len(m.Accounts) {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	if int(m.Header.NumReadonlySigned) >= int(m.Header.NumSignatures) {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	seen := make(map[string]struct{}, len(m.Accounts))
	for _, address := range m.Accounts {
		key := addressKey(address)
		if _, ok := seen[key]; ok {
			return solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
		}
		seen[key] = struct{}{}
	}

	for _, ix := range m.Instructions {
		if int(ix.ProgramIndex) >= len(m.Accounts) || ix.ProgramIndex == 0 {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
		for _, a := range ix.Accounts {
			if int(a) >= len(m.Accounts) {
				return solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
			}
		}
	}

	return nil
}

func lockKeys(m solana.Message) (writable, readonly []string) {
	for i, address := range m.Accounts {
		if m.IsWritable(i) {
			writable = append(writable, addressKey(address))
		} else {
			readonly = append(readonly, addressKey(address))
		}
	}
	return writable, readonly
}
