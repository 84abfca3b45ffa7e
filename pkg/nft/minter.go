package nft

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-nft/pkg/cache"
	"github.com/code-payments/code-nft/pkg/metrics"
	"github.com/code-payments/code-nft/pkg/nft/data/edition"
	"github.com/code-payments/code-nft/pkg/rate"
	"github.com/code-payments/code-nft/pkg/retry"
	"github.com/code-payments/code-nft/pkg/retry/backoff"
	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/mintnft"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
	sync_util "github.com/code-payments/code-nft/pkg/sync"
)

const (
	metricsStructName = "nft.minter"

	printLockStripes = 64

	// Each entry weighs 1, so this is the number of cached marker addresses
	markerAddressCacheBudget = 16_384

	editionPrintedEventName = "EditionPrinted"
	editionBurnedEventName  = "EditionBurned"

	submitDurationMetricName = "Minter.SubmitDuration"
	submitAttemptsMetricName = "Minter.SubmitAttempts"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrAlreadyExists         = errors.New("already exists")
	ErrSupplyExhausted       = errors.New("master edition supply exhausted")
	ErrMasterEditionNotFound = errors.New("master edition not found")
	ErrEditionNotFound       = errors.New("edition not found")
	ErrMarkerScanLimit       = errors.New("edition marker scan limit reached")
)

// Minter creates, prints and burns editions through the mint-nft program.
// A single authority pays for every transaction and acts as the mint,
// update and token authority of everything it creates.
type Minter struct {
	log       *logrus.Entry
	conf      *conf
	client    solana.Client
	program   *mintnft.ProgramConfig
	editions  edition.Store
	authority ed25519.PrivateKey

	// Serializes printing per master mint within this process
	printLocks      *sync_util.StripedLock
	submitLimiter   rate.Limiter
	markerAddresses cache.Cache[markerKey, ed25519.PublicKey]
}

type markerKey struct {
	masterMint string
	index      uint64
}

func NewMinter(
	client solana.Client,
	program *mintnft.ProgramConfig,
	editions edition.Store,
	authority ed25519.PrivateKey,
	configProvider ConfigProvider,
) *Minter {
	minterConf := configProvider()

	var submitLimiter rate.Limiter = &rate.NoLimiter{}
	if limit := minterConf.submitRateLimit.Get(context.Background()); limit > 0 {
		submitLimiter = rate.NewLocalRateLimiter(float64(limit), int(limit))
	}

	return &Minter{
		log:       logrus.StandardLogger().WithField("type", "nft/minter"),
		conf:      minterConf,
		client:    client,
		program:   program,
		editions:  editions,
		authority: authority,

		printLocks:      sync_util.NewStripedLock(printLockStripes),
		submitLimiter:   submitLimiter,
		markerAddresses: cache.New[markerKey, ed25519.PublicKey]("nft/marker_addresses", markerAddressCacheBudget),
	}
}

// Authority returns the public key of the minting authority.
func (m *Minter) Authority() ed25519.PublicKey {
	return m.authority.Public().(ed25519.PublicKey)
}

// submit builds, signs and submits a transaction paid for by the authority.
// Only an expired blockhash is retried, and every attempt is a freshly built
// and signed transaction.
func (m *Minter) submit(ctx context.Context, log *logrus.Entry, signers []ed25519.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	var sig solana.Signature

	start := time.Now()
	submitBackoff := m.conf.submitBackoff.Get(ctx)
	attempts, err := retry.Retry(
		func() error {
			if err := m.submitLimiter.Wait(ctx, base58.Encode(m.Authority())); err != nil {
				return errors.Wrap(err, "submission rate limited")
			}

			blockhash, err := m.client.GetLatestBlockhash()
			if err != nil {
				return errors.Wrap(err, "error getting latest blockhash")
			}

			txn := solana.NewTransaction(m.Authority(), instructions...)
			txn.SetBlockhash(blockhash)
			if err := txn.Sign(append([]ed25519.PrivateKey{m.authority}, signers...)...); err != nil {
				return errors.Wrap(err, "error signing transaction")
			}

			sig, err = m.client.SubmitTransaction(txn, solana.CommitmentFinalized)
			if isBlockhashNotFound(err) {
				log.WithField("signature", base58.Encode(sig[:])).Debug("blockhash expired before submission")
			}
			return err
		},
		retry.RetriableIf(isBlockhashNotFound),
		retry.Limit(uint(m.conf.submitAttempts.Get(ctx))),
		retry.Context(ctx),
		retry.Backoff(backoff.Constant(submitBackoff), submitBackoff),
	)
	metrics.RecordDuration(ctx, submitDurationMetricName, time.Since(start))
	metrics.RecordCount(ctx, submitAttemptsMetricName, uint64(attempts))
	if err != nil {
		return sig, toServiceError(err)
	}

	log.WithFields(logrus.Fields{
		"signature": base58.Encode(sig[:]),
		"attempts":  attempts,
	}).Debug("transaction submitted")
	return sig, nil
}

func (m *Minter) loadAccount(address ed25519.PublicKey) (*solana.AccountInfo, bool, error) {
	info, err := m.client.GetAccountInfo(address, solana.CommitmentFinalized)
	if err == solana.ErrNoAccountInfo {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrapf(err, "error loading account %s", base58.Encode(address))
	}

	// Closed accounts can linger without data or lamports.
	if len(info.Data) == 0 && info.Lamports == 0 {
		return nil, false, nil
	}
	return &info, true, nil
}

// getEditionMarkerAddress returns the address of the index-th edition marker
// of a master mint. Marker addresses never change, so they are cached.
func (m *Minter) getEditionMarkerAddress(masterMint ed25519.PublicKey, index uint64) (ed25519.PublicKey, error) {
	key := markerKey{masterMint: string(masterMint), index: index}
	if address, ok := m.markerAddresses.Retrieve(key); ok {
		return address, nil
	}

	address, err := m.derive(m.program.GetEditionMarkerAddress(masterMint, index*tokenmetadata.EditionMarkerBitSize))
	if err != nil {
		return nil, err
	}

	// Losing an insert race leaves the same address cached.
	_ = m.markerAddresses.Insert(key, address, 1)
	return address, nil
}

func (m *Minter) derive(address ed25519.PublicKey, err error) (ed25519.PublicKey, error) {
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	return address, nil
}

func newKey() (ed25519.PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error generating key")
	}
	return key, nil
}

func isBlockhashNotFound(err error) bool {
	return solana.IsTransactionErrorKey(err, solana.TransactionErrorBlockhashNotFound)
}

// toServiceError maps a mint-nft failure onto the minter's sentinel errors,
// preserving the original message.
func toServiceError(err error) error {
	if err == nil {
		return nil
	}

	switch mintnft.Classify(err) {
	case mintnft.ErrorKindValidation:
		return errors.Wrap(ErrInvalidRequest, err.Error())
	case mintnft.ErrorKindAlreadyExists:
		return errors.Wrap(ErrAlreadyExists, err.Error())
	case mintnft.ErrorKindSupplyExhausted:
		return errors.Wrap(ErrSupplyExhausted, err.Error())
	}
	return err
}
