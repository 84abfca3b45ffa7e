package nft

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-nft/pkg/metrics"
	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/mintnft"
	"github.com/code-payments/code-nft/pkg/solana/token"
)

// Delegation is the program owned delegate approved to move an edition out of
// the authority's token account.
type Delegation struct {
	Mint         ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	Delegate     ed25519.PublicKey
	Bump         uint8

	Signature solana.Signature
}

// Transfer is the result of moving an edition through its delegate.
type Transfer struct {
	Mint        ed25519.PublicKey
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey

	Signature solana.Signature
}

// Delegate approves the authority's delegate record to move the single token
// of an edition held by the authority.
func (m *Minter) Delegate(ctx context.Context, editionMint ed25519.PublicKey) (result *Delegation, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Delegate")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := m.log.WithFields(logrus.Fields{
		"method": "Delegate",
		"mint":   base58.Encode(editionMint),
	})

	source, err := m.getHeldTokenAccount(editionMint)
	if err != nil {
		return nil, err
	}

	delegate, bump, err := m.program.GetDelegateAddress(&mintnft.GetDelegateAddressArgs{Signer: m.Authority()})
	if err != nil {
		return nil, toServiceError(err)
	}

	approve, err := m.program.NewDelegateNftInstruction(
		&mintnft.DelegateNftInstructionAccounts{
			Source:   source,
			Delegate: delegate,
			Signer:   m.Authority(),
		},
		&mintnft.DelegateNftInstructionArgs{Amount: 1},
	)
	if err != nil {
		return nil, toServiceError(err)
	}

	sig, err := m.submit(ctx, log, nil, approve)
	if err != nil {
		log.WithError(err).Info("failure delegating edition")
		return nil, err
	}

	log.WithField("delegate", base58.Encode(delegate)).Info("edition delegated")

	return &Delegation{
		Mint:         editionMint,
		TokenAccount: source,
		Delegate:     delegate,
		Bump:         bump,
		Signature:    sig,
	}, nil
}

// TransferFromDelegate moves a delegated edition from the authority into the
// associated token account of the destination owner, creating it if needed.
func (m *Minter) TransferFromDelegate(ctx context.Context, editionMint, destinationOwner ed25519.PublicKey) (result *Transfer, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "TransferFromDelegate")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := m.log.WithFields(logrus.Fields{
		"method":      "TransferFromDelegate",
		"mint":        base58.Encode(editionMint),
		"destination": base58.Encode(destinationOwner),
	})

	source, err := m.getHeldTokenAccount(editionMint)
	if err != nil {
		return nil, err
	}

	destination, err := m.derive(m.program.GetAssociatedTokenAddress(destinationOwner, editionMint))
	if err != nil {
		return nil, err
	}

	var instructions []solana.Instruction

	_, exists, err := m.loadAccount(destination)
	if err != nil {
		return nil, err
	} else if !exists {
		createDestination, err := m.program.NewCreateAssociatedTokenAccountInstruction(&mintnft.CreateAssociatedTokenAccountInstructionAccounts{
			Payer:           m.Authority(),
			AssociatedToken: destination,
			Authority:       destinationOwner,
			Mint:            editionMint,
		})
		if err != nil {
			return nil, toServiceError(err)
		}
		instructions = append(instructions, createDestination)
	}

	delegate, bump, err := m.program.GetDelegateAddress(&mintnft.GetDelegateAddressArgs{Signer: m.Authority()})
	if err != nil {
		return nil, toServiceError(err)
	}

	transfer, err := m.program.NewTransferFromDelegateAccountInstruction(
		&mintnft.TransferFromDelegateAccountInstructionAccounts{
			Source:      source,
			Destination: destination,
			Delegate:    delegate,
		},
		&mintnft.TransferFromDelegateAccountInstructionArgs{Amount: 1, Bump: bump},
	)
	if err != nil {
		return nil, toServiceError(err)
	}
	instructions = append(instructions, transfer)

	sig, err := m.submit(ctx, log, nil, instructions...)
	if err != nil {
		log.WithError(err).Info("failure transferring edition from delegate")
		return nil, err
	}

	log.Info("edition transferred from delegate")

	return &Transfer{
		Mint:        editionMint,
		Source:      source,
		Destination: destination,
		Signature:   sig,
	}, nil
}

// getHeldTokenAccount returns the authority's token account for the mint,
// provided it still holds the token.
func (m *Minter) getHeldTokenAccount(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	address, err := m.derive(m.program.GetAssociatedTokenAddress(m.Authority(), mint))
	if err != nil {
		return nil, err
	}

	account, err := token.NewClient(m.client).GetAccount(address, mint, solana.CommitmentFinalized)
	switch err {
	case nil:
	case token.ErrAccountNotFound, token.ErrInvalidTokenAccount:
		return nil, ErrEditionNotFound
	default:
		return nil, err
	}

	if account.Amount == 0 {
		return nil, ErrEditionNotFound
	}
	return address, nil
}
