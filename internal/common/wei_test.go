package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWei(t *testing.T) {
	twoEther, ok := new(big.Int).SetString("2000000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "2000000000000000000", FromWei(twoEther, Wei).RatString())
	assert.Equal(t, "2000000000", FromWei(twoEther, Gwei).RatString())
	assert.Equal(t, "2", FromWei(twoEther, Ether).RatString())
}

func TestFromWeiIsExact(t *testing.T) {
	// 1 wei in ether has no finite binary representation; the conversion
	// must stay rational.
	one := big.NewInt(1)
	assert.Equal(t, "1/1000000000000000000", FromWei(one, Ether).RatString())

	// amounts above 64-bit range survive intact
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	got := FromWei(huge, Gwei)
	assert.Equal(t, "12345678901234567890123456789/1000000000", got.RatString())
}

func TestFromWeiDoesNotMutateInput(t *testing.T) {
	amount := big.NewInt(5)
	_ = FromWei(amount, Ether)
	assert.Equal(t, "5", amount.String())
}

func TestValuerConversion(t *testing.T) {
	tx := Transaction{Value: big.NewInt(1500000000000000000), GasPrice: big.NewInt(0)}
	assert.Equal(t, "3/2", Value(&tx, Ether).RatString())

	itx := InternalTransaction{Value: big.NewInt(7)}
	assert.Equal(t, "7", Value(&itx, Wei).RatString())
}

func TestUnitString(t *testing.T) {
	assert.Equal(t, "wei", Wei.String())
	assert.Equal(t, "gwei", Gwei.String())
	assert.Equal(t, "ether", Ether.String())
}
