package mintnft

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-nft/pkg/solana"
	"github.com/code-payments/code-nft/pkg/solana/localnet"
	"github.com/code-payments/code-nft/pkg/solana/localnet/memory"
	"github.com/code-payments/code-nft/pkg/solana/token"
	"github.com/code-payments/code-nft/pkg/solana/tokenmetadata"
)

const testAirdropAmount = 100_000_000_000

type testEnv struct {
	config *ProgramConfig
	bank   *localnet.Bank
	payer  ed25519.PrivateKey
}

type testMasterEdition struct {
	mint          ed25519.PublicKey
	tokenAccount  ed25519.PublicKey
	metadata      ed25519.PublicKey
	masterEdition ed25519.PublicKey
}

type testPrintEdition struct {
	number       uint64
	mint         ed25519.PublicKey
	tokenAccount ed25519.PublicKey
	metadata     ed25519.PublicKey
	edition      ed25519.PublicKey
	marker       ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		config: DefaultProgramConfig(),
		bank:   localnet.NewBank(memory.New()),
		payer:  newKey(t),
	}
	NewProcessor(env.config).Register(env.bank)

	_, err := env.bank.RequestAirdrop(publicKey(env.payer), testAirdropAmount, solana.CommitmentFinalized)
	require.NoError(t, err)

	return env
}

// submit sends the instructions in a single transaction paid for and signed
// by the test payer.
func (e *testEnv) submit(t *testing.T, extraSigners []ed25519.PrivateKey, instructions ...solana.Instruction) error {
	txn := solana.NewTransaction(publicKey(e.payer), instructions...)

	blockhash, err := e.bank.GetLatestBlockhash()
	require.NoError(t, err)
	txn.SetBlockhash(blockhash)

	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{e.payer}, extraSigners...)...))

	_, err = e.bank.SubmitTransaction(txn, solana.CommitmentFinalized)
	return err
}

// requireDerived unwraps an address derivation, failing the test on error.
func requireDerived(t *testing.T) func(ed25519.PublicKey, error) ed25519.PublicKey {
	return func(address ed25519.PublicKey, err error) ed25519.PublicKey {
		require.NoError(t, err)
		return address
	}
}

// newMintInstructions creates a zero decimal mint controlled by the payer and
// mints a single token into the payer's associated token account.
func (e *testEnv) newMintInstructions(t *testing.T, mint ed25519.PublicKey) ([]solana.Instruction, ed25519.PublicKey) {
	payer := publicKey(e.payer)
	ata := requireDerived(t)(e.config.GetAssociatedTokenAddress(payer, mint))

	createMint, err := e.config.NewCreateMintAccountInstruction(&CreateMintAccountInstructionAccounts{
		Mint:          mint,
		MintAuthority: payer,
	})
	require.NoError(t, err)

	initializeMint, err := e.config.NewInitializeMintInstruction(&InitializeMintInstructionAccounts{
		Mint:          mint,
		MintAuthority: payer,
	})
	require.NoError(t, err)

	createATA, err := e.config.NewCreateAssociatedTokenAccountInstruction(&CreateAssociatedTokenAccountInstructionAccounts{
		Payer:           payer,
		AssociatedToken: ata,
		Authority:       payer,
		Mint:            mint,
	})
	require.NoError(t, err)

	mintToken, err := e.config.NewMintTokenInstruction(
		&MintTokenInstructionAccounts{
			Payer:        payer,
			Mint:         mint,
			TokenAccount: ata,
			Authority:    payer,
		},
		&MintTokenInstructionArgs{Amount: 1},
	)
	require.NoError(t, err)

	return []solana.Instruction{createMint, initializeMint, createATA, mintToken}, ata
}

func (e *testEnv) newCreateMetadataInstruction(t *testing.T, mint ed25519.PublicKey) solana.Instruction {
	payer := publicKey(e.payer)

	ix, err := e.config.NewCreateTokenMetadataAccountInstruction(
		&CreateTokenMetadataAccountInstructionAccounts{
			Metadata:        requireDerived(t)(e.config.GetMetadataAddress(mint)),
			Mint:            mint,
			MintAuthority:   payer,
			Payer:           payer,
			UpdateAuthority: payer,
		},
		&CreateTokenMetadataAccountInstructionArgs{
			Creators: []tokenmetadata.Creator{
				{Address: tokenmetadata.NewPubkey(payer), Verified: true, Share: 100},
			},
			Name:                 "Harbor Lights",
			Symbol:               "HRBR",
			Uri:                  "https://example.com/harbor.json",
			SellerFeeBasisPoints: 250,
		},
	)
	require.NoError(t, err)
	return ix
}

func (e *testEnv) createMasterEdition(t *testing.T, maxSupply *uint64) *testMasterEdition {
	payer := publicKey(e.payer)
	mint := newKey(t)

	instructions, ata := e.newMintInstructions(t, publicKey(mint))

	master := &testMasterEdition{
		mint:          publicKey(mint),
		tokenAccount:  ata,
		metadata:      requireDerived(t)(e.config.GetMetadataAddress(publicKey(mint))),
		masterEdition: requireDerived(t)(e.config.GetEditionAddress(publicKey(mint))),
	}

	createMasterEdition, err := e.config.NewCreateMasterEditionAccountInstruction(
		&CreateMasterEditionAccountInstructionAccounts{
			MasterEdition:   master.masterEdition,
			Metadata:        master.metadata,
			Mint:            master.mint,
			MintAuthority:   payer,
			Payer:           payer,
			UpdateAuthority: payer,
		},
		&CreateMasterEditionAccountInstructionArgs{MaxSupply: maxSupply},
	)
	require.NoError(t, err)

	instructions = append(instructions, e.newCreateMetadataInstruction(t, master.mint), createMasterEdition)
	require.NoError(t, e.submit(t, []ed25519.PrivateKey{mint}, instructions...))

	return master
}

func (e *testEnv) newPrintEditionInstructions(t *testing.T, master *testMasterEdition, edition uint64) ([]solana.Instruction, ed25519.PrivateKey, *testPrintEdition) {
	payer := publicKey(e.payer)
	mint := newKey(t)

	instructions, ata := e.newMintInstructions(t, publicKey(mint))

	printed := &testPrintEdition{
		number:       edition,
		mint:         publicKey(mint),
		tokenAccount: ata,
		metadata:     requireDerived(t)(e.config.GetMetadataAddress(publicKey(mint))),
		edition:      requireDerived(t)(e.config.GetEditionAddress(publicKey(mint))),
		marker:       requireDerived(t)(e.config.GetEditionMarkerAddress(master.mint, edition)),
	}

	createEdition, err := e.config.NewCreateEditionAccountInstruction(
		&CreateEditionAccountInstructionAccounts{
			EditionMetadata:        printed.metadata,
			Edition:                printed.edition,
			MasterEdition:          master.masterEdition,
			EditionMint:            printed.mint,
			EditionMarker:          printed.marker,
			EditionMintAuthority:   payer,
			Payer:                  payer,
			TokenAccountOwner:      payer,
			TokenAccount:           master.tokenAccount,
			EditionUpdateAuthority: payer,
			Metadata:               master.metadata,
			MetadataMint:           master.mint,
		},
		&CreateEditionAccountInstructionArgs{Edition: edition},
	)
	require.NoError(t, err)

	return append(instructions, createEdition), mint, printed
}

func (e *testEnv) printEdition(t *testing.T, master *testMasterEdition, edition uint64) (*testPrintEdition, error) {
	instructions, mint, printed := e.newPrintEditionInstructions(t, master, edition)
	return printed, e.submit(t, []ed25519.PrivateKey{mint}, instructions...)
}

func (e *testEnv) burnEdition(t *testing.T, master *testMasterEdition, printed *testPrintEdition) error {
	burn, err := e.config.NewBurnEditionNftInstruction(&BurnEditionNftInstructionAccounts{
		EditionMetadata:           printed.metadata,
		NftOwner:                  publicKey(e.payer),
		EditionMint:               printed.mint,
		MasterEditionMint:         master.mint,
		EditionTokenAccount:       printed.tokenAccount,
		MasterEditionTokenAccount: master.tokenAccount,
		MasterEdition:             master.masterEdition,
		Edition:                   printed.edition,
		EditionMarker:             printed.marker,
	})
	require.NoError(t, err)
	return e.submit(t, nil, burn)
}

func (e *testEnv) accountExists(t *testing.T, address ed25519.PublicKey) bool {
	info, err := e.bank.GetAccountInfo(address, solana.CommitmentFinalized)
	if err == solana.ErrNoAccountInfo {
		return false
	}
	require.NoError(t, err)
	return len(info.Data) > 0 || info.Lamports > 0
}

func (e *testEnv) masterEditionState(t *testing.T, master *testMasterEdition) *tokenmetadata.MasterEditionAccount {
	info, err := e.bank.GetAccountInfo(master.masterEdition, solana.CommitmentFinalized)
	require.NoError(t, err)

	var account tokenmetadata.MasterEditionAccount
	require.NoError(t, account.Unmarshal(info.Data))
	return &account
}

func (e *testEnv) editionMarker(t *testing.T, address ed25519.PublicKey) *tokenmetadata.EditionMarkerAccount {
	info, err := e.bank.GetAccountInfo(address, solana.CommitmentFinalized)
	require.NoError(t, err)

	var marker tokenmetadata.EditionMarkerAccount
	require.NoError(t, marker.Unmarshal(info.Data))
	return &marker
}

func (e *testEnv) tokenAccount(t *testing.T, address ed25519.PublicKey) *token.Account {
	info, err := e.bank.GetAccountInfo(address, solana.CommitmentFinalized)
	require.NoError(t, err)

	var account token.Account
	require.True(t, account.Unmarshal(info.Data))
	return &account
}

func (e *testEnv) mint(t *testing.T, address ed25519.PublicKey) *token.Mint {
	info, err := e.bank.GetAccountInfo(address, solana.CommitmentFinalized)
	require.NoError(t, err)

	var mint token.Mint
	require.True(t, mint.Unmarshal(info.Data))
	return &mint
}

func assertErrorKind(t *testing.T, err error, expected ErrorKind) {
	require.Error(t, err)
	assert.Equal(t, expected, Classify(err), "unexpected error: %v", err)
}

func requireCustomCode(t *testing.T, err error) solana.CustomError {
	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr), "unexpected error: %v", err)
	require.NotNil(t, txErr.InstructionError())

	custom := txErr.InstructionError().CustomError()
	require.NotNil(t, custom, "expected custom error, got %v", err)
	return *custom
}

func TestProcessor_CreateMasterEdition(t *testing.T) {
	env := setup(t)

	maxSupply := uint64(3)
	master := env.createMasterEdition(t, &maxSupply)

	state := env.masterEditionState(t, master)
	assert.EqualValues(t, 0, state.Supply)
	require.NotNil(t, state.MaxSupply)
	assert.EqualValues(t, 3, *state.MaxSupply)

	mint := env.mint(t, master.mint)
	assert.Nil(t, mint.MintAuthority)
	assert.EqualValues(t, master.masterEdition, mint.FreezeAuthority)
	assert.EqualValues(t, 1, mint.Supply)
	assert.EqualValues(t, 0, mint.Decimals)

	info, err := env.bank.GetAccountInfo(master.metadata, solana.CommitmentFinalized)
	require.NoError(t, err)
	var metadata tokenmetadata.MetadataAccount
	require.NoError(t, metadata.Unmarshal(info.Data))
	assert.EqualValues(t, master.mint, metadata.Mint.PublicKey())
	assert.EqualValues(t, publicKey(env.payer), metadata.UpdateAuthority.PublicKey())
	assert.True(t, metadata.IsMutable)
	assert.EqualValues(t, 250, metadata.Data.SellerFeeBasisPoints)

	assert.EqualValues(t, 1, env.tokenAccount(t, master.tokenAccount).Amount)
}

func TestProcessor_LimitedSupply(t *testing.T) {
	env := setup(t)

	maxSupply := uint64(3)
	master := env.createMasterEdition(t, &maxSupply)

	var printed []*testPrintEdition
	for edition := uint64(1); edition <= 3; edition++ {
		result, err := env.printEdition(t, master, edition)
		require.NoError(t, err)
		printed = append(printed, result)
	}

	_, err := env.printEdition(t, master, 4)
	assertErrorKind(t, err, ErrorKindSupplyExhausted)
	assert.Equal(t, ErrorSupplyExhausted, requireCustomCode(t, err))

	_, err = env.printEdition(t, master, 2)
	assertErrorKind(t, err, ErrorKindAlreadyExists)
	assert.Equal(t, ErrorAlreadyExists, requireCustomCode(t, err))

	assert.EqualValues(t, 3, env.masterEditionState(t, master).Supply)
	assert.Equal(t, []uint64{1, 2, 3}, env.editionMarker(t, printed[0].marker).GetEditions(0))

	for _, p := range printed {
		info, err := env.bank.GetAccountInfo(p.edition, solana.CommitmentFinalized)
		require.NoError(t, err)

		var edition tokenmetadata.EditionAccount
		require.NoError(t, edition.Unmarshal(info.Data))
		assert.Equal(t, p.number, edition.Edition)
		assert.EqualValues(t, master.masterEdition, edition.Parent.PublicKey())

		mint := env.mint(t, p.mint)
		assert.Nil(t, mint.MintAuthority)
		assert.EqualValues(t, 1, mint.Supply)
		assert.EqualValues(t, 1, env.tokenAccount(t, p.tokenAccount).Amount)
	}
}

func TestProcessor_FailedPrintIsAtomic(t *testing.T) {
	env := setup(t)

	maxSupply := uint64(1)
	master := env.createMasterEdition(t, &maxSupply)

	_, err := env.printEdition(t, master, 1)
	require.NoError(t, err)

	printed, err := env.printEdition(t, master, 1)
	assertErrorKind(t, err, ErrorKindAlreadyExists)

	assert.False(t, env.accountExists(t, printed.mint))
	assert.False(t, env.accountExists(t, printed.tokenAccount))
	assert.False(t, env.accountExists(t, printed.metadata))
	assert.False(t, env.accountExists(t, printed.edition))
	assert.EqualValues(t, 1, env.masterEditionState(t, master).Supply)
}

func TestProcessor_UnlimitedSupply(t *testing.T) {
	env := setup(t)

	master := env.createMasterEdition(t, nil)
	assert.Nil(t, env.masterEditionState(t, master).MaxSupply)

	var printed []*testPrintEdition
	for _, edition := range []uint64{247, 248, 1} {
		result, err := env.printEdition(t, master, edition)
		require.NoError(t, err, "edition %d", edition)
		printed = append(printed, result)
	}

	assert.EqualValues(t, printed[0].marker, printed[2].marker)
	assert.NotEqualValues(t, printed[0].marker, printed[1].marker)

	assert.Equal(t, []uint64{1, 247}, env.editionMarker(t, printed[0].marker).GetEditions(0))
	assert.Equal(t, []uint64{248}, env.editionMarker(t, printed[1].marker).GetEditions(1))
	assert.EqualValues(t, 3, env.masterEditionState(t, master).Supply)
}

func TestProcessor_ZeroEdition(t *testing.T) {
	env := setup(t)
	master := env.createMasterEdition(t, nil)

	_, err := env.config.NewCreateEditionAccountInstruction(
		&CreateEditionAccountInstructionAccounts{},
		&CreateEditionAccountInstructionArgs{Edition: 0},
	)
	assertErrorKind(t, err, ErrorKindValidation)

	// Bypass the builder to exercise the on chain check.
	instructions, mint, _ := env.newPrintEditionInstructions(t, master, 1)
	last := &instructions[len(instructions)-1]
	last.Data = append(InstructionTypeCreateEditionAccount.Discriminator(), 0, 0, 0, 0, 0, 0, 0, 0)

	err = env.submit(t, []ed25519.PrivateKey{mint}, instructions...)
	assertErrorKind(t, err, ErrorKindValidation)
	assert.Equal(t, ErrorValidation, requireCustomCode(t, err))
}

func TestProcessor_BurnEdition(t *testing.T) {
	env := setup(t)

	maxSupply := uint64(5)
	master := env.createMasterEdition(t, &maxSupply)

	printed, err := env.printEdition(t, master, 2)
	require.NoError(t, err)

	before, err := env.bank.GetBalance(publicKey(env.payer))
	require.NoError(t, err)

	require.NoError(t, env.burnEdition(t, master, printed))

	assert.False(t, env.accountExists(t, printed.tokenAccount))
	assert.False(t, env.accountExists(t, printed.metadata))
	assert.False(t, env.accountExists(t, printed.edition))
	assert.EqualValues(t, 0, env.mint(t, printed.mint).Supply)

	// Rent from the closed accounts is returned to the owner.
	after, err := env.bank.GetBalance(publicKey(env.payer))
	require.NoError(t, err)
	assert.Greater(t, after, before)

	// The edition number stays consumed.
	assert.EqualValues(t, 1, env.masterEditionState(t, master).Supply)
	assert.True(t, env.editionMarker(t, printed.marker).IsEditionSet(2))

	_, err = env.printEdition(t, master, 2)
	assertErrorKind(t, err, ErrorKindAlreadyExists)
	assert.EqualValues(t, 1, env.masterEditionState(t, master).Supply)

	// A second burn has nothing left to burn.
	err = env.burnEdition(t, master, printed)
	require.Error(t, err)
}

func TestProcessor_BurnMasterEdition(t *testing.T) {
	env := setup(t)

	master := env.createMasterEdition(t, nil)
	printed, err := env.printEdition(t, master, 1)
	require.NoError(t, err)

	burn, err := env.config.NewBurnMasterEditionNftInstruction(&BurnMasterEditionNftInstructionAccounts{
		Metadata:      master.metadata,
		Owner:         publicKey(env.payer),
		Mint:          master.mint,
		TokenAccount:  master.tokenAccount,
		MasterEdition: master.masterEdition,
	})
	require.NoError(t, err)
	require.NoError(t, env.submit(t, nil, burn))

	assert.False(t, env.accountExists(t, master.metadata))
	assert.False(t, env.accountExists(t, master.masterEdition))
	assert.False(t, env.accountExists(t, master.tokenAccount))

	// Prints made before the burn are unaffected.
	assert.True(t, env.accountExists(t, printed.edition))
	assert.EqualValues(t, 1, env.tokenAccount(t, printed.tokenAccount).Amount)

	_, err = env.printEdition(t, master, 2)
	require.Error(t, err)
}

func TestProcessor_DelegateTransfer(t *testing.T) {
	env := setup(t)
	payer := publicKey(env.payer)

	master := env.createMasterEdition(t, nil)
	printed, err := env.printEdition(t, master, 1)
	require.NoError(t, err)

	delegate, bump, err := env.config.GetDelegateAddress(&GetDelegateAddressArgs{Signer: payer})
	require.NoError(t, err)

	recipient := publicKey(newKey(t))
	destination := requireDerived(t)(env.config.GetAssociatedTokenAddress(recipient, printed.mint))
	createDestination, err := env.config.NewCreateAssociatedTokenAccountInstruction(&CreateAssociatedTokenAccountInstructionAccounts{
		Payer:           payer,
		AssociatedToken: destination,
		Authority:       recipient,
		Mint:            printed.mint,
	})
	require.NoError(t, err)
	require.NoError(t, env.submit(t, nil, createDestination))

	newTransfer := func(bump uint8) solana.Instruction {
		transfer, err := env.config.NewTransferFromDelegateAccountInstruction(
			&TransferFromDelegateAccountInstructionAccounts{
				Source:      printed.tokenAccount,
				Destination: destination,
				Delegate:    delegate,
			},
			&TransferFromDelegateAccountInstructionArgs{Amount: 1, Bump: bump},
		)
		require.NoError(t, err)
		return transfer
	}

	// Nothing has been delegated yet.
	err = env.submit(t, nil, newTransfer(bump))
	assertErrorKind(t, err, ErrorKindValidation)

	approve, err := env.config.NewDelegateNftInstruction(
		&DelegateNftInstructionAccounts{Source: printed.tokenAccount, Delegate: delegate, Signer: payer},
		&DelegateNftInstructionArgs{Amount: 1},
	)
	require.NoError(t, err)
	require.NoError(t, env.submit(t, nil, approve))

	source := env.tokenAccount(t, printed.tokenAccount)
	assert.EqualValues(t, delegate, source.Delegate)
	assert.EqualValues(t, 1, source.DelegatedAmount)

	err = env.submit(t, nil, newTransfer(bump-1))
	assertErrorKind(t, err, ErrorKindValidation)

	require.NoError(t, env.submit(t, nil, newTransfer(bump)))

	source = env.tokenAccount(t, printed.tokenAccount)
	assert.EqualValues(t, 0, source.Amount)
	assert.Nil(t, source.Delegate)
	assert.EqualValues(t, 0, source.DelegatedAmount)

	received := env.tokenAccount(t, destination)
	assert.EqualValues(t, 1, received.Amount)
	assert.EqualValues(t, recipient, received.Owner)

	err = env.submit(t, nil, newTransfer(bump))
	assertErrorKind(t, err, ErrorKindCrossProgramCallFailed)
}

func TestProcessor_TamperedAccounts(t *testing.T) {
	env := setup(t)

	master := env.createMasterEdition(t, nil)

	instructions, mint, _ := env.newPrintEditionInstructions(t, master, 1)
	createEdition := &instructions[len(instructions)-1]

	// Swap in the marker for a different block.
	createEdition.Accounts[4].PublicKey = requireDerived(t)(env.config.GetEditionMarkerAddress(master.mint, 300))

	err := env.submit(t, []ed25519.PrivateKey{mint}, instructions...)
	assertErrorKind(t, err, ErrorKindValidation)
	assert.Equal(t, ErrorValidation, requireCustomCode(t, err))

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, len(instructions)-1, txErr.InstructionError().Index)

	_, err = env.printEdition(t, master, 1)
	require.NoError(t, err)
}

func TestProcessor_MissingSignature(t *testing.T) {
	env := setup(t)
	payer := publicKey(env.payer)

	mint := newKey(t)
	instructions, _ := env.newMintInstructions(t, publicKey(mint))

	updateAuthority := publicKey(newKey(t))
	createMetadata, err := env.config.NewCreateTokenMetadataAccountInstruction(
		&CreateTokenMetadataAccountInstructionAccounts{
			Metadata:        requireDerived(t)(env.config.GetMetadataAddress(publicKey(mint))),
			Mint:            publicKey(mint),
			MintAuthority:   payer,
			Payer:           payer,
			UpdateAuthority: updateAuthority,
		},
		&CreateTokenMetadataAccountInstructionArgs{Name: "Unsigned", Symbol: "UNS", Uri: "https://example.com/unsigned.json"},
	)
	require.NoError(t, err)
	createMetadata.Accounts[4].IsSigner = false

	err = env.submit(t, []ed25519.PrivateKey{mint}, append(instructions, createMetadata)...)
	assertErrorKind(t, err, ErrorKindValidation)
	assert.False(t, env.accountExists(t, publicKey(mint)))
}

func TestProcessor_DuplicateCreation(t *testing.T) {
	env := setup(t)

	mint := newKey(t)
	instructions, _ := env.newMintInstructions(t, publicKey(mint))
	createMetadata := env.newCreateMetadataInstruction(t, publicKey(mint))
	require.NoError(t, env.submit(t, []ed25519.PrivateKey{mint}, append(instructions, createMetadata)...))

	err := env.submit(t, nil, env.newCreateMetadataInstruction(t, publicKey(mint)))
	assertErrorKind(t, err, ErrorKindAlreadyExists)
	assert.Equal(t, ErrorAlreadyExists, requireCustomCode(t, err))

	err = env.submit(t, []ed25519.PrivateKey{mint}, instructions[0])
	assertErrorKind(t, err, ErrorKindAlreadyExists)

	err = env.submit(t, nil, instructions[2])
	assertErrorKind(t, err, ErrorKindAlreadyExists)
}

func TestProcessor_UnknownInstruction(t *testing.T) {
	env := setup(t)

	ix := solana.NewInstruction(env.config.Program, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	err := env.submit(t, nil, ix)
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, solana.InstructionErrorInvalidInstructionData, txErr.InstructionError().ErrorKey())
	assert.Equal(t, ErrorKindCrossProgramCallFailed, Classify(err))
}
