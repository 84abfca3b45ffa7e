package tokenmetadata

import (
	"github.com/pkg/errors"
)

const (
	// EditionMarkerBitSize is the number of editions tracked by a single
	// edition marker account.
	EditionMarkerBitSize = 248

	editionMarkerLedgerSize = EditionMarkerBitSize / 8
)

var ErrInvalidEditionNumber = errors.New("edition numbers start at 1")

// EditionMarkerAccount is a bitmap recording which edition numbers in a block
// of EditionMarkerBitSize have been printed.
type EditionMarkerAccount struct {
	Ledger [editionMarkerLedgerSize]byte
}

// GetEditionMarkerIndex returns the index of the marker account tracking the
// edition. The raw edition number is used, so editions 1..247 live in marker 0
// and edition 248 starts marker 1.
func GetEditionMarkerIndex(edition uint64) uint64 {
	return edition / EditionMarkerBitSize
}

// GetEditionMarkerBit returns the bit position of the edition within its
// marker account.
func GetEditionMarkerBit(edition uint64) uint64 {
	return edition % EditionMarkerBitSize
}

// getEditionMarkerOffset returns the ledger byte holding the edition and the
// mask selecting it. Bits are ordered most significant first.
func getEditionMarkerOffset(edition uint64) (int, byte) {
	bit := GetEditionMarkerBit(edition)
	return int(bit / 8), byte(1) << (7 - bit%8)
}

func (obj *EditionMarkerAccount) IsEditionSet(edition uint64) bool {
	offset, mask := getEditionMarkerOffset(edition)
	return obj.Ledger[offset]&mask != 0
}

func (obj *EditionMarkerAccount) SetEdition(edition uint64) {
	offset, mask := getEditionMarkerOffset(edition)
	obj.Ledger[offset] |= mask
}

// GetEditions returns the printed edition numbers tracked by the marker at
// the provided index, in ascending order.
func (obj *EditionMarkerAccount) GetEditions(index uint64) []uint64 {
	var editions []uint64
	for bit := uint64(0); bit < EditionMarkerBitSize; bit++ {
		edition := index*EditionMarkerBitSize + bit
		if obj.IsEditionSet(edition) {
			editions = append(editions, edition)
		}
	}
	return editions
}

func (obj *EditionMarkerAccount) Marshal() []byte {
	data := make([]byte, EditionMarkerAccountSize)
	data[0] = byte(KeyEditionMarker)
	copy(data[1:], obj.Ledger[:])
	return data
}

func (obj *EditionMarkerAccount) Unmarshal(data []byte) error {
	if len(data) != EditionMarkerAccountSize || getKey(data) != KeyEditionMarker {
		return ErrInvalidAccountData
	}
	copy(obj.Ledger[:], data[1:])
	return nil
}

// PrintEdition records edition as printed against the master edition and its
// marker. A set bit wins over an exhausted supply, and nothing is modified
// when an error is returned.
func PrintEdition(master *MasterEditionAccount, marker *EditionMarkerAccount, edition uint64) error {
	if edition == 0 {
		return ErrInvalidEditionNumber
	}

	if marker.IsEditionSet(edition) {
		return ErrorEditionAlreadyMinted
	}

	if master.IsExhausted() {
		return ErrorMaxEditionsMintedAlready
	}
	if master.MaxSupply != nil && edition > *master.MaxSupply {
		return ErrorMaxEditionsMintedAlready
	}

	marker.SetEdition(edition)
	master.Supply++

	return nil
}
