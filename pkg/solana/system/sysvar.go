package system

import (
	"github.com/code-payments/code-nft/pkg/solana"
)

// RentSysVar is the address of the rent sysvar, which SPL token and
// associated token account instructions still take as an account.
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar = solana.MustBase58Decode("SysvarRent111111111111111111111111111111111")
