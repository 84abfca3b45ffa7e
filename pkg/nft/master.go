package nft

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-nft/pkg/metrics"
	"github.com/code-payments/code-nft/pkg/pointer"
	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/mintnft"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

// MasterEdition is the on chain state of a master edition.
type MasterEdition struct {
	Mint          ed25519.PublicKey
	TokenAccount  ed25519.PublicKey
	Metadata      ed25519.PublicKey
	MasterEdition ed25519.PublicKey

	Supply uint64
	// Nil for an unlimited supply
	MaxSupply *uint64
}

// IsExhausted reports whether no further editions can be printed.
func (e *MasterEdition) IsExhausted() bool {
	return e.MaxSupply != nil && e.Supply >= *e.MaxSupply
}

type CreateMasterEditionArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16

	// Defaults to the authority as the sole, verified creator
	Creators []tokenmetadata.Creator

	// Nil for an unlimited supply
	MaxSupply *uint64
}

// CreateMasterEdition creates a mint, mints its single token to the
// authority, and attaches metadata and a master edition in one transaction.
func (m *Minter) CreateMasterEdition(ctx context.Context, args *CreateMasterEditionArgs) (result *MasterEdition, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateMasterEdition")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	mintKey, err := newKey()
	if err != nil {
		return nil, err
	}
	mint := mintKey.Public().(ed25519.PublicKey)

	log := m.log.WithFields(logrus.Fields{
		"method": "CreateMasterEdition",
		"mint":   base58.Encode(mint),
	})

	instructions, tokenAccount, err := m.newMintInstructions(mint)
	if err != nil {
		return nil, err
	}

	metadata, err := m.derive(m.program.GetMetadataAddress(mint))
	if err != nil {
		return nil, err
	}
	masterEdition, err := m.derive(m.program.GetEditionAddress(mint))
	if err != nil {
		return nil, err
	}

	creators := args.Creators
	if len(creators) == 0 {
		creators = []tokenmetadata.Creator{
			{Address: tokenmetadata.NewPubkey(m.Authority()), Verified: true, Share: 100},
		}
	}

	createMetadata, err := m.program.NewCreateTokenMetadataAccountInstruction(
		&mintnft.CreateTokenMetadataAccountInstructionAccounts{
			Metadata:        metadata,
			Mint:            mint,
			MintAuthority:   m.Authority(),
			Payer:           m.Authority(),
			UpdateAuthority: m.Authority(),
		},
		&mintnft.CreateTokenMetadataAccountInstructionArgs{
			Creators:             creators,
			Name:                 args.Name,
			Symbol:               args.Symbol,
			Uri:                  args.Uri,
			SellerFeeBasisPoints: args.SellerFeeBasisPoints,
		},
	)
	if err != nil {
		return nil, toServiceError(err)
	}

	createMasterEdition, err := m.program.NewCreateMasterEditionAccountInstruction(
		&mintnft.CreateMasterEditionAccountInstructionAccounts{
			MasterEdition:   masterEdition,
			Metadata:        metadata,
			Mint:            mint,
			MintAuthority:   m.Authority(),
			Payer:           m.Authority(),
			UpdateAuthority: m.Authority(),
		},
		&mintnft.CreateMasterEditionAccountInstructionArgs{
			MaxSupply: args.MaxSupply,
		},
	)
	if err != nil {
		return nil, toServiceError(err)
	}

	instructions = append(instructions, createMetadata, createMasterEdition)
	if _, err := m.submit(ctx, log, []ed25519.PrivateKey{mintKey}, instructions...); err != nil {
		log.WithError(err).Warn("failure creating master edition")
		return nil, err
	}

	log.Info("master edition created")

	return &MasterEdition{
		Mint:          mint,
		TokenAccount:  tokenAccount,
		Metadata:      metadata,
		MasterEdition: masterEdition,
		MaxSupply:     pointer.Uint64Copy(args.MaxSupply),
	}, nil
}

// GetMasterEdition loads the current state of a master edition.
func (m *Minter) GetMasterEdition(ctx context.Context, mint ed25519.PublicKey) (*MasterEdition, error) {
	address, err := m.derive(m.program.GetEditionAddress(mint))
	if err != nil {
		return nil, err
	}

	info, ok, err := m.loadAccount(address)
	if err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrMasterEditionNotFound
	}

	var account tokenmetadata.MasterEditionAccount
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(ErrMasterEditionNotFound, "invalid master edition account %s", base58.Encode(address))
	}

	metadata, err := m.derive(m.program.GetMetadataAddress(mint))
	if err != nil {
		return nil, err
	}
	tokenAccount, err := m.derive(m.program.GetAssociatedTokenAddress(m.Authority(), mint))
	if err != nil {
		return nil, err
	}

	return &MasterEdition{
		Mint:          mint,
		TokenAccount:  tokenAccount,
		Metadata:      metadata,
		MasterEdition: address,
		Supply:        account.Supply,
		MaxSupply:     account.MaxSupply,
	}, nil
}

// BurnMasterEdition burns the authority's master edition token and closes its
// metadata and master edition accounts. Editions printed from it are left as
// they are.
func (m *Minter) BurnMasterEdition(ctx context.Context, mint ed25519.PublicKey) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BurnMasterEdition")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := m.log.WithFields(logrus.Fields{
		"method": "BurnMasterEdition",
		"mint":   base58.Encode(mint),
	})

	master, err := m.GetMasterEdition(ctx, mint)
	if err != nil {
		return err
	}

	burn, err := m.program.NewBurnMasterEditionNftInstruction(&mintnft.BurnMasterEditionNftInstructionAccounts{
		Metadata:      master.Metadata,
		Owner:         m.Authority(),
		Mint:          mint,
		TokenAccount:  master.TokenAccount,
		MasterEdition: master.MasterEdition,
	})
	if err != nil {
		return toServiceError(err)
	}

	if _, err := m.submit(ctx, log, nil, burn); err != nil {
		log.WithError(err).Warn("failure burning master edition")
		return err
	}

	log.Info("master edition burned")
	return nil
}

// newMintInstructions creates a zero decimal mint controlled by the authority
// and mints its single token into the authority's associated token account.
func (m *Minter) newMintInstructions(mint ed25519.PublicKey) ([]solana.Instruction, ed25519.PublicKey, error) {
	authority := m.Authority()

	tokenAccount, err := m.derive(m.program.GetAssociatedTokenAddress(authority, mint))
	if err != nil {
		return nil, nil, err
	}

	createMint, err := m.program.NewCreateMintAccountInstruction(&mintnft.CreateMintAccountInstructionAccounts{
		Mint:          mint,
		MintAuthority: authority,
	})
	if err != nil {
		return nil, nil, toServiceError(err)
	}

	initializeMint, err := m.program.NewInitializeMintInstruction(&mintnft.InitializeMintInstructionAccounts{
		Mint:          mint,
		MintAuthority: authority,
	})
	if err != nil {
		return nil, nil, toServiceError(err)
	}

	createTokenAccount, err := m.program.NewCreateAssociatedTokenAccountInstruction(&mintnft.CreateAssociatedTokenAccountInstructionAccounts{
		Payer:           authority,
		AssociatedToken: tokenAccount,
		Authority:       authority,
		Mint:            mint,
	})
	if err != nil {
		return nil, nil, toServiceError(err)
	}

	mintToken, err := m.program.NewMintTokenInstruction(
		&mintnft.MintTokenInstructionAccounts{
			Payer:        authority,
			Mint:         mint,
			TokenAccount: tokenAccount,
			Authority:    authority,
		},
		&mintnft.MintTokenInstructionArgs{Amount: 1},
	)
	if err != nil {
		return nil, nil, toServiceError(err)
	}

	return []solana.Instruction{createMint, initializeMint, createTokenAccount, mintToken}, tokenAccount, nil
}
