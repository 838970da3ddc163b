package model

import "github.com/shopspring/decimal"

// Token captures ERC20 identity plus the derived native-asset price.
//
// DerivedNative is zero until the first successful derivation. A zero value
// is ambiguous between "never priced" and "prices to zero"; callers must not
// read it as a hard fact about the token's worth.
type Token struct {
	Address       string          `json:"address"`
	Symbol        string          `json:"symbol"`
	Decimals      uint8           `json:"decimals"`
	DerivedNative decimal.Decimal `json:"derived_native"`
}
