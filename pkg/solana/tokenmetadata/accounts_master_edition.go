package tokenmetadata

import (
	"fmt"

	"github.com/code-payments/code-nft/pkg/solana/binary"
)

type MasterEditionAccount struct {
	Key    Key
	Supply uint64
	// Nil for an unlimited supply
	MaxSupply *uint64
}

func (obj *MasterEditionAccount) Marshal() ([]byte, error) {
	encoded := *obj
	encoded.Key = KeyMasterEditionV2
	return marshalPadded(encoded, MasterEditionAccountSize)
}

func (obj *MasterEditionAccount) Unmarshal(data []byte) error {
	if len(data) != MasterEditionAccountSize || getKey(data) != KeyMasterEditionV2 {
		return ErrInvalidAccountData
	}

	var decoded MasterEditionAccount
	if err := binary.UnmarshalBorsh(&decoded, data); err != nil {
		return ErrInvalidAccountData
	}

	*obj = decoded
	return nil
}

// IsExhausted reports whether no further editions can be printed.
func (obj *MasterEditionAccount) IsExhausted() bool {
	return obj.MaxSupply != nil && obj.Supply >= *obj.MaxSupply
}

func (obj *MasterEditionAccount) String() string {
	maxSupply := "unlimited"
	if obj.MaxSupply != nil {
		maxSupply = fmt.Sprintf("%d", *obj.MaxSupply)
	}
	return fmt.Sprintf("MasterEdition{supply=%d,max_supply=%s}", obj.Supply, maxSupply)
}
