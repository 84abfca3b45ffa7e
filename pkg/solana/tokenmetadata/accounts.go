package tokenmetadata

import (
	"strings"

	"github.com/code-payments/code-nft/pkg/solana/binary"
)

// Key is the account discriminator used by the token metadata program.
type Key uint8

const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
	KeyEditionMarker
)

const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxUriLength    = 200
	MaxCreatorLimit = 5

	maxCreatorLength = 32 + 1 + 1
	maxDataSize      = 4 + MaxNameLength + 4 + MaxSymbolLength + 4 + MaxUriLength + 2 + 1 + 4 + MaxCreatorLimit*maxCreatorLength

	MetadataAccountSize      = 1 + 32 + 32 + maxDataSize + 1 + 1 + 9 + 172
	MasterEditionAccountSize = 1 + 9 + 8 + 264
	EditionAccountSize       = 1 + 32 + 8 + 200
	EditionMarkerAccountSize = 1 + editionMarkerLedgerSize
)

// getKey reads the discriminator of a token metadata account.
func getKey(data []byte) Key {
	if len(data) == 0 {
		return KeyUninitialized
	}
	return Key(data[0])
}

func marshalPadded(v interface{}, size int) ([]byte, error) {
	encoded, err := binary.MarshalBorsh(v)
	if err != nil {
		return nil, err
	}
	if len(encoded) > size {
		return nil, ErrInvalidAccountData
	}

	padded := make([]byte, size)
	copy(padded, encoded)
	return padded, nil
}

// puffString pads a metadata string with NUL bytes up to its maximum length,
// the way the metadata program stores them on chain.
func puffString(value string, length int) string {
	if len(value) >= length {
		return value
	}
	return value + strings.Repeat("\x00", length-len(value))
}

func unpuffString(value string) string {
	return strings.TrimRight(value, "\x00")
}
