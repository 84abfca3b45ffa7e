package nft

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-nft/pkg/metrics"
	"github.com/code-payments/code-nft/pkg/nft/data/edition"
	"github.com/code-payments/code-nft/pkg/retry"
	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/mintnft"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

// PrintedEdition is a numbered edition printed from a master edition.
type PrintedEdition struct {
	Edition uint64

	MasterMint     ed25519.PublicKey
	Mint           ed25519.PublicKey
	TokenAccount   ed25519.PublicKey
	Metadata       ed25519.PublicKey
	EditionAccount ed25519.PublicKey
	Marker         ed25519.PublicKey

	Signature solana.Signature
}

// PrintEdition prints the provided edition number of a master edition into
// the authority's wallet.
func (m *Minter) PrintEdition(ctx context.Context, masterMint ed25519.PublicKey, number uint64) (result *PrintedEdition, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "PrintEdition")
	tracer.AddAttribute("edition", number)
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	unlock := m.printLocks.Lock(masterMint)
	defer unlock()

	master, err := m.GetMasterEdition(ctx, masterMint)
	if err != nil {
		return nil, err
	}

	return m.printEdition(ctx, master, number)
}

// PrintNextEdition prints the lowest edition number that has not been printed
// yet. Losing a race for that number to another printer is retried with the
// next free number.
func (m *Minter) PrintNextEdition(ctx context.Context, masterMint ed25519.PublicKey) (result *PrintedEdition, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "PrintNextEdition")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	unlock := m.printLocks.Lock(masterMint)
	defer unlock()

	_, err = retry.Retry(
		func() error {
			master, err := m.GetMasterEdition(ctx, masterMint)
			if err != nil {
				return err
			}
			if master.IsExhausted() {
				return ErrSupplyExhausted
			}

			number, err := m.findUnprintedEdition(ctx, master)
			if err != nil {
				return err
			}

			result, err = m.printEdition(ctx, master, number)
			return err
		},
		retry.RetriableErrors(ErrAlreadyExists),
		retry.Limit(uint(m.conf.printNextAttempts.Get(ctx))),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Minter) printEdition(ctx context.Context, master *MasterEdition, number uint64) (*PrintedEdition, error) {
	if number == 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "edition numbers start at 1")
	}

	authority := m.Authority()

	mintKey, err := newKey()
	if err != nil {
		return nil, err
	}
	mint := mintKey.Public().(ed25519.PublicKey)

	log := m.log.WithFields(logrus.Fields{
		"method":      "printEdition",
		"master_mint": base58.Encode(master.Mint),
		"mint":        base58.Encode(mint),
		"edition":     number,
	})

	instructions, tokenAccount, err := m.newMintInstructions(mint)
	if err != nil {
		return nil, err
	}

	printed := &PrintedEdition{
		Edition:      number,
		MasterMint:   master.Mint,
		Mint:         mint,
		TokenAccount: tokenAccount,
	}
	if printed.Metadata, err = m.derive(m.program.GetMetadataAddress(mint)); err != nil {
		return nil, err
	}
	if printed.EditionAccount, err = m.derive(m.program.GetEditionAddress(mint)); err != nil {
		return nil, err
	}
	if printed.Marker, err = m.derive(m.program.GetEditionMarkerAddress(master.Mint, number)); err != nil {
		return nil, err
	}

	createEdition, err := m.program.NewCreateEditionAccountInstruction(
		&mintnft.CreateEditionAccountInstructionAccounts{
			EditionMetadata:        printed.Metadata,
			Edition:                printed.EditionAccount,
			MasterEdition:          master.MasterEdition,
			EditionMint:            mint,
			EditionMarker:          printed.Marker,
			EditionMintAuthority:   authority,
			Payer:                  authority,
			TokenAccountOwner:      authority,
			TokenAccount:           master.TokenAccount,
			EditionUpdateAuthority: authority,
			Metadata:               master.Metadata,
			MetadataMint:           master.Mint,
		},
		&mintnft.CreateEditionAccountInstructionArgs{Edition: number},
	)
	if err != nil {
		return nil, toServiceError(err)
	}

	instructions = append(instructions, createEdition)
	printed.Signature, err = m.submit(ctx, log, []ed25519.PrivateKey{mintKey}, instructions...)
	if err != nil {
		log.WithError(err).Info("failure printing edition")
		return nil, err
	}

	record := &edition.Record{
		Mint:       base58.Encode(mint),
		MasterMint: base58.Encode(master.Mint),
		Edition:    number,
		Owner:      base58.Encode(authority),
		Signature:  base58.Encode(printed.Signature[:]),
		State:      edition.StateActive,
		CreatedAt:  time.Now(),
	}
	if err := m.editions.Put(ctx, record); err != nil {
		log.WithError(err).Warn("failure saving printed edition record")
	}

	metrics.RecordEvent(ctx, editionPrintedEventName, map[string]interface{}{
		"master_mint": record.MasterMint,
		"mint":        record.Mint,
		"edition":     number,
	})

	log.Info("edition printed")
	return printed, nil
}

// BurnEdition burns a print edition held by the authority. The edition number
// stays marked as printed and cannot be printed again.
func (m *Minter) BurnEdition(ctx context.Context, masterMint, editionMint ed25519.PublicKey) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BurnEdition")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := m.log.WithFields(logrus.Fields{
		"method":      "BurnEdition",
		"master_mint": base58.Encode(masterMint),
		"mint":        base58.Encode(editionMint),
	})

	master, err := m.GetMasterEdition(ctx, masterMint)
	if err != nil {
		return err
	}

	editionAccount, err := m.derive(m.program.GetEditionAddress(editionMint))
	if err != nil {
		return err
	}
	info, ok, err := m.loadAccount(editionAccount)
	if err != nil {
		return err
	} else if !ok {
		return ErrEditionNotFound
	}

	var printed tokenmetadata.EditionAccount
	if err := printed.Unmarshal(info.Data); err != nil {
		return errors.Wrapf(ErrEditionNotFound, "invalid edition account %s", base58.Encode(editionAccount))
	}
	if printed.Parent != tokenmetadata.NewPubkey(master.MasterEdition) {
		return errors.Wrap(ErrInvalidRequest, "edition was not printed from the master edition")
	}
	log = log.WithField("edition", printed.Edition)

	metadata, err := m.derive(m.program.GetMetadataAddress(editionMint))
	if err != nil {
		return err
	}
	tokenAccount, err := m.derive(m.program.GetAssociatedTokenAddress(m.Authority(), editionMint))
	if err != nil {
		return err
	}
	marker, err := m.derive(m.program.GetEditionMarkerAddress(masterMint, printed.Edition))
	if err != nil {
		return err
	}

	burn, err := m.program.NewBurnEditionNftInstruction(&mintnft.BurnEditionNftInstructionAccounts{
		EditionMetadata:           metadata,
		NftOwner:                  m.Authority(),
		EditionMint:               editionMint,
		MasterEditionMint:         masterMint,
		EditionTokenAccount:       tokenAccount,
		MasterEditionTokenAccount: master.TokenAccount,
		MasterEdition:             master.MasterEdition,
		Edition:                   editionAccount,
		EditionMarker:             marker,
	})
	if err != nil {
		return toServiceError(err)
	}

	if _, err := m.submit(ctx, log, nil, burn); err != nil {
		log.WithError(err).Info("failure burning edition")
		return err
	}

	if err := m.editions.MarkBurned(ctx, base58.Encode(editionMint)); err != nil && err != edition.ErrNotFound {
		log.WithError(err).Warn("failure marking edition record as burned")
	}

	metrics.RecordEvent(ctx, editionBurnedEventName, map[string]interface{}{
		"master_mint": base58.Encode(masterMint),
		"mint":        base58.Encode(editionMint),
		"edition":     printed.Edition,
	})

	log.Info("edition burned")
	return nil
}

// ListPrintedEditions returns every printed edition number of a master
// edition in ascending order, burned editions included.
func (m *Minter) ListPrintedEditions(ctx context.Context, masterMint ed25519.PublicKey) ([]uint64, error) {
	master, err := m.GetMasterEdition(ctx, masterMint)
	if err != nil {
		return nil, err
	}

	var printed []uint64
	err = m.scanMarkers(ctx, master, func(index uint64, marker *tokenmetadata.EditionMarkerAccount) bool {
		printed = append(printed, marker.GetEditions(index)...)
		return uint64(len(printed)) < master.Supply
	})
	if err != nil {
		return nil, err
	}
	return printed, nil
}

// findUnprintedEdition returns the lowest edition number whose marker bit is
// unset. Unlimited masters are only searched up to the marker scan limit.
func (m *Minter) findUnprintedEdition(ctx context.Context, master *MasterEdition) (uint64, error) {
	var next uint64
	err := m.scanMarkers(ctx, master, func(index uint64, marker *tokenmetadata.EditionMarkerAccount) bool {
		for bit := uint64(0); bit < tokenmetadata.EditionMarkerBitSize; bit++ {
			number := index*tokenmetadata.EditionMarkerBitSize + bit
			if number == 0 {
				continue
			}
			if !marker.IsEditionSet(number) {
				next = number
				return false
			}
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	switch {
	case master.MaxSupply != nil && (next == 0 || next > *master.MaxSupply):
		return 0, ErrSupplyExhausted
	case next == 0:
		// Every scanned marker is full, but an unlimited supply has more
		return 0, ErrMarkerScanLimit
	}
	return next, nil
}

// scanMarkers visits edition marker accounts in order until fn returns false,
// the marker range covering the max supply ends, or the configured scan limit
// is reached. Markers that don't exist yet are visited as empty.
func (m *Minter) scanMarkers(ctx context.Context, master *MasterEdition, fn func(index uint64, marker *tokenmetadata.EditionMarkerAccount) bool) error {
	limit := m.conf.maxMarkerScan.Get(ctx)
	if master.MaxSupply != nil {
		limit = min(limit, tokenmetadata.GetEditionMarkerIndex(*master.MaxSupply)+1)
	}

	for index := uint64(0); index < limit; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		address, err := m.getEditionMarkerAddress(master.Mint, index)
		if err != nil {
			return err
		}

		var marker tokenmetadata.EditionMarkerAccount
		info, ok, err := m.loadAccount(address)
		if err != nil {
			return err
		} else if ok {
			if err := marker.Unmarshal(info.Data); err != nil {
				return errors.Wrapf(err, "invalid edition marker account %s", base58.Encode(address))
			}
		}

		if !fn(index, &marker) {
			return nil
		}
	}

	return nil
}
