package common

import (
	"fmt"
	"math/big"
)

// Unit is a display denomination of the chain's native asset. Wei is the
// integer base unit; Gwei and Ether scale by fixed powers of ten.
type Unit int

const (
	Wei Unit = iota
	Gwei
	Ether
)

var unitScale = map[Unit]*big.Int{
	Wei:   big.NewInt(1),
	Gwei:  new(big.Int).Exp(big.NewInt(10), big.NewInt(9), nil),
	Ether: new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
}

func (u Unit) String() string {
	switch u {
	case Wei:
		return "wei"
	case Gwei:
		return "gwei"
	case Ether:
		return "ether"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// FromWei converts a base-unit amount into the given unit. The result is an
// exact rational; amounts can exceed 64-bit range so no float arithmetic is
// involved.
func FromWei(amount *big.Int, unit Unit) *big.Rat {
	scale, ok := unitScale[unit]
	if !ok {
		scale = unitScale[Wei]
	}
	return new(big.Rat).SetFrac(new(big.Int).Set(amount), scale)
}

// Valuer is implemented by entities that carry a base-unit monetary amount,
// currently transactions and internal transactions.
type Valuer interface {
	WeiValue() *big.Int
}

// Value converts an entity's amount into the given unit.
func Value(v Valuer, unit Unit) *big.Rat {
	return FromWei(v.WeiValue(), unit)
}
