package tokenmetadata

import (
	"fmt"

	"github.com/code-payments/code-nft/pkg/solana/binary"
)

type EditionAccount struct {
	Key Key
	// Address of the master edition this edition was printed from
	Parent  Pubkey
	Edition uint64
}

func (obj *EditionAccount) Marshal() ([]byte, error) {
	encoded := *obj
	encoded.Key = KeyEditionV1
	return marshalPadded(encoded, EditionAccountSize)
}

func (obj *EditionAccount) Unmarshal(data []byte) error {
	if len(data) != EditionAccountSize || getKey(data) != KeyEditionV1 {
		return ErrInvalidAccountData
	}

	var decoded EditionAccount
	if err := binary.UnmarshalBorsh(&decoded, data); err != nil {
		return ErrInvalidAccountData
	}

	*obj = decoded
	return nil
}

func (obj *EditionAccount) String() string {
	return fmt.Sprintf("Edition{parent=%s,edition=%d}", obj.Parent, obj.Edition)
}
