package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddressHash(t *testing.T) {
	h, err := ParseAddressHash("0x8bf38d4764929064f2d4d3a56520a76ab3df415b")
	require.NoError(t, err)
	assert.Equal(t, AddressHashLength, h.Length())
	assert.Equal(t, "0x8bf38d4764929064f2d4d3a56520a76ab3df415b", h.Hex())

	// casing is normalized away
	upper, err := ParseAddressHash("0x8BF38D4764929064F2D4D3A56520A76AB3DF415B")
	require.NoError(t, err)
	assert.True(t, h.Equal(upper))
	assert.Equal(t, "0x8bf38d4764929064f2d4d3a56520a76ab3df415b", upper.Hex())
}

func TestParseFullHash(t *testing.T) {
	h, err := ParseFullHash("0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b")
	require.NoError(t, err)
	assert.Equal(t, FullHashLength, h.Length())
	assert.Equal(t, "0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b", h.Hex())
}

func TestParseHashRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing prefix", "8bf38d4764929064f2d4d3a56520a76ab3df415b"},
		{"too short", "0x8bf38d4764929064f2d4d3a56520a76ab3df415"},
		{"too long", "0x8bf38d4764929064f2d4d3a56520a76ab3df415b00"},
		{"non-hex digits", "0x8bf38d4764929064f2d4d3a56520a76ab3df415g"},
		{"empty", ""},
		{"prefix only", "0x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAddressHash(tc.input)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// a full hash parser must not accept an address-width string
	_, err := ParseFullHash("0x8bf38d4764929064f2d4d3a56520a76ab3df415b")
	assert.Error(t, err)
}

func TestHashZeroValue(t *testing.T) {
	var h Hash
	assert.True(t, h.IsZero())
	assert.Equal(t, 0, h.Length())

	v, err := h.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestHashSQLRoundTrip(t *testing.T) {
	h, err := ParseFullHash("0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b")
	require.NoError(t, err)

	v, err := h.Value()
	require.NoError(t, err)
	raw, ok := v.([]byte)
	require.True(t, ok)
	assert.Len(t, raw, FullHashLength)

	var scanned Hash
	require.NoError(t, scanned.Scan(raw))
	assert.True(t, h.Equal(scanned))

	// NULL scans back to the zero value
	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())
}

func TestHashScanRejectsBadWidth(t *testing.T) {
	var h Hash
	err := h.Scan(make([]byte, 16))
	assert.Error(t, err)
}

func TestHashJSON(t *testing.T) {
	h, err := ParseAddressHash("0x8bf38d4764929064f2d4d3a56520a76ab3df415b")
	require.NoError(t, err)
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `"0x8bf38d4764929064f2d4d3a56520a76ab3df415b"`, string(data))
}

func TestBytesToHash(t *testing.T) {
	h, err := BytesToHash(make([]byte, AddressHashLength))
	require.NoError(t, err)
	assert.Equal(t, AddressHashLength, h.Length())

	_, err = BytesToHash(make([]byte, 31))
	assert.Error(t, err)
}
