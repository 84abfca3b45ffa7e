package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/code-nft/pkg/retry"
	"github.com/code-payments/code-nft/pkg/retry/backoff"
)

const (
	slotDuration = 400 * time.Millisecond

	// PollRate is the interval between signature status polls, about twice
	// per slot.
	PollRate = slotDuration / 2

	// Roughly 32 slots, which is enough for a landed transaction to reach
	// the confirmed commitment.
	sigStatusPollLimit = 64

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005
	rpcInvalidParamsCode = -32602
	rpcRateLimitedCode   = 429

	blockhashCacheWindow = 2 * time.Second
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

var (
	ErrNoAccountInfo     = errors.New("no account info")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrNoBalance         = errors.New("no balance")
)

// AccountInfo is the raw ledger state of an account.
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations is nil once the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	switch {
	case s.Finalized():
		return true
	case s.ConfirmationStatus == confirmationStatusConfirmed:
		return true
	default:
		return *s.Confirmations > 0
	}
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// reached reports whether the status satisfies commitment. Failed
// transactions are final at any commitment.
func (s SignatureStatus) reached(commitment Commitment) bool {
	if s.ErrorResult != nil {
		return true
	}

	switch commitment {
	case CommitmentConfirmed:
		return s.Confirmed()
	case CommitmentFinalized:
		return s.Finalized()
	default:
		return true
	}
}

// Client is the subset of the Solana JSON RPC API needed to issue and manage
// NFT editions. The in-process runtime in pkg/solana/localnet serves the same
// interface.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	GetLatestBlockhash() (Blockhash, error)
	GetSignatureStatus(Signature, Commitment) (*SignatureStatus, error)
	GetSlot(Commitment) (uint64, error)
	RequestAirdrop(ed25519.PublicKey, uint64, Commitment) (Signature, error)
	SubmitTransaction(Transaction, Commitment) (Signature, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type client struct {
	log     *logrus.Entry
	rpc     jsonrpc.RPCClient
	retrier retry.Retrier

	// jittered so concurrent minters don't refresh in lockstep
	blockhashTTL func() time.Duration

	blockMu     sync.RWMutex
	blockhash   Blockhash
	blockhashAt time.Time
}

// New returns a Client talking to the RPC node at endpoint.
func New(endpoint string) Client {
	return NewWithRPCOptions(endpoint, nil)
}

// NewWithRPCOptions returns a Client talking to the RPC node at endpoint,
// using the provided HTTP options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Client {
	return &client{
		log: logrus.StandardLogger().WithField("type", "solana/client"),
		rpc: jsonrpc.NewClientWithOpts(endpoint, opts),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
		blockhashTTL: func() time.Duration {
			return time.Duration(float64(blockhashCacheWindow) * (0.8 + 0.4*rand.Float64()))
		},
	}
}

// call invokes method, retrying rate limits and node failures. Other RPC
// errors are returned as *jsonrpc.RPCError.
func (c *client) call(out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(func() error {
		err := c.rpc.CallFor(out, method, params...)

		var rpcErr *jsonrpc.RPCError
		if !errors.As(err, &rpcErr) {
			return err
		}

		switch {
		case rpcErr.Code == rpcRateLimitedCode:
			c.log.WithField("method", method).Warn("rate limited by rpc node")
			return errRateLimited
		case rpcErr.Code >= 500, rpcErr.Code == rpcNodeUnhealthyCode:
			c.log.WithField("method", method).WithError(rpcErr).Warn("rpc node failure")
			return errServiceError
		default:
			return rpcErr
		}
	})
	return err
}

func (c *client) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	var lamports uint64
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", size); err != nil {
		return 0, errors.Wrap(err, "getMinimumBalanceForRentExemption() failed")
	}
	return lamports, nil
}

func (c *client) GetSlot(commitment Commitment) (uint64, error) {
	// The commitment has to be sent as a positional array element, not as a
	// named param object.
	var slot uint64
	if err := c.call(&slot, "getSlot", []interface{}{commitment}); err != nil {
		return 0, errors.Wrap(err, "getSlot() failed")
	}
	return slot, nil
}

// GetLatestBlockhash returns a recent blockhash, served from a short lived
// cache so that bursts of submissions share one RPC call.
func (c *client) GetLatestBlockhash() (Blockhash, error) {
	c.blockMu.RLock()
	cached, at := c.blockhash, c.blockhashAt
	c.blockMu.RUnlock()

	if cached != (Blockhash{}) && time.Since(at) < c.blockhashTTL() {
		return cached, nil
	}

	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(&resp, "getLatestBlockhash"); err != nil {
		return Blockhash{}, errors.Wrap(err, "getLatestBlockhash() failed")
	}

	var hash Blockhash
	if err := decodeBase58Into(hash[:], resp.Value.Blockhash); err != nil {
		return Blockhash{}, errors.Wrap(err, "invalid blockhash in response")
	}

	c.blockMu.Lock()
	c.blockhash = hash
	c.blockhashAt = time.Now()
	c.blockMu.Unlock()

	return hash, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value *uint64 `json:"value"`
	}
	err := c.call(&resp, "getBalance", base58.Encode(account), CommitmentProcessed)

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == rpcInvalidParamsCode {
		return 0, ErrNoBalance
	} else if err != nil {
		return 0, errors.Wrap(err, "getBalance() failed")
	}

	if resp.Value == nil {
		return 0, errors.New("missing balance in response")
	}
	return *resp.Value, nil
}

// SubmitTransaction sends txn with preflight simulation enabled, so program
// failures come back as a *TransactionError instead of only being visible in
// the signature status.
func (c *client) SubmitTransaction(txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signatures[0]

	opts := struct {
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
		Encoding            string `json:"encoding"`
	}{
		PreflightCommitment: commitment.Commitment,
		Encoding:            "base64",
	}

	var returned string
	err := c.call(&returned, "sendTransaction", base64.StdEncoding.EncodeToString(txn.Marshal()), opts)
	if err == nil {
		return sig, nil
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return sig, errors.Wrap(err, "sendTransaction() failed")
	}

	txErr, parseErr := ParseRPCError(rpcErr)
	switch {
	case parseErr != nil:
		c.log.WithError(parseErr).Warn("failed to parse sendTransaction() error")
		return sig, rpcErr
	case txErr != nil:
		return sig, txErr
	default:
		return sig, rpcErr
	}
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	opts := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}
	if err := c.call(&resp, "getAccountInfo", base58.Encode(account), opts); err != nil {
		return AccountInfo{}, errors.Wrap(err, "getAccountInfo() failed")
	}
	if resp.Value == nil {
		return AccountInfo{}, ErrNoAccountInfo
	}

	info := AccountInfo{
		Owner:      make([]byte, ed25519.PublicKeySize),
		Lamports:   resp.Value.Lamports,
		Executable: resp.Value.Executable,
	}
	if err := decodeBase58Into(info.Owner, resp.Value.Owner); err != nil {
		return AccountInfo{}, errors.Wrap(err, "invalid owner in response")
	}

	// Data is returned as [payload, encoding]
	if len(resp.Value.Data) == 0 {
		return AccountInfo{}, errors.New("missing account data in response")
	}

	var err error
	if info.Data, err = base64.StdEncoding.DecodeString(resp.Value.Data[0]); err != nil {
		return AccountInfo{}, errors.Wrap(err, "invalid account data in response")
	}

	return info, nil
}

func (c *client) RequestAirdrop(account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error) {
	var encoded string
	if err := c.call(&encoded, "requestAirdrop", base58.Encode(account), lamports, commitment); err != nil {
		return Signature{}, errors.Wrap(err, "requestAirdrop() failed")
	}

	var sig Signature
	if err := decodeBase58Into(sig[:], encoded); err != nil {
		return Signature{}, errors.Wrap(err, "invalid signature in response")
	}
	return sig, nil
}

// GetSignatureStatus polls until the transaction reaches commitment or fails.
// ErrSignatureNotFound is returned if the node never sees it.
func (c *client) GetSignatureStatus(sig Signature, commitment Commitment) (*SignatureStatus, error) {
	errNotReached := errors.New("commitment not reached")

	var status *SignatureStatus
	_, err := retry.Retry(
		func() error {
			var err error
			status, err = c.getSignatureStatus(sig)
			switch {
			case err != nil:
				return err
			case status == nil:
				return ErrSignatureNotFound
			case !status.reached(commitment):
				return errNotReached
			default:
				return nil
			}
		},
		retry.RetriableErrors(ErrSignatureNotFound, errNotReached),
		retry.Limit(sigStatusPollLimit),
		retry.Backoff(backoff.Constant(PollRate), PollRate),
	)
	return status, err
}

func (c *client) getSignatureStatus(sig Signature) (*SignatureStatus, error) {
	opts := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	var resp struct {
		Value []*struct {
			Slot               uint64          `json:"slot"`
			Confirmations      *int            `json:"confirmations"`
			ConfirmationStatus string          `json:"confirmationStatus"`
			Err                json.RawMessage `json:"err"`
		} `json:"value"`
	}
	if err := c.call(&resp, "getSignatureStatuses", []string{sig.ToBase58()}, opts); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed")
	}
	if len(resp.Value) == 0 || resp.Value[0] == nil {
		return nil, nil
	}

	v := resp.Value[0]
	status := &SignatureStatus{
		Slot:               v.Slot,
		Confirmations:      v.Confirmations,
		ConfirmationStatus: v.ConfirmationStatus,
	}

	if len(v.Err) > 0 && string(v.Err) != "null" {
		raw, err := decodeJSONWithNumbers(v.Err)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode transaction error")
		}
		if status.ErrorResult, err = ParseTransactionError(raw); err != nil {
			return nil, errors.Wrap(err, "failed to parse transaction error")
		}
	}

	return status, nil
}

func decodeBase58Into(dst []byte, encoded string) error {
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return err
	}
	if len(decoded) != len(dst) {
		return errors.Errorf("expected %d bytes, got %d", len(dst), len(decoded))
	}
	copy(dst, decoded)
	return nil
}
