package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTxHash(t *testing.T) {
	assert.True(t, IsValidTxHash("0x"+strings.Repeat("ab", 32)))
	assert.False(t, IsValidTxHash(strings.Repeat("ab", 32)))
	assert.False(t, IsValidTxHash("0xabc"))
	assert.False(t, IsValidTxHash("0x"+strings.Repeat("zz", 32)))
}

func TestIsValidContractAddress(t *testing.T) {
	assert.True(t, IsValidContractAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	assert.False(t, IsValidContractAddress("0x5FbDB2315678"))
	assert.False(t, IsValidContractAddress(""))
}

func TestParseCandidateID(t *testing.T) {
	id, ok := ParseCandidateID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id.Int64())

	maxUint256 := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	assert.True(t, IsValidCandidateID(maxUint256))
	assert.True(t, IsValidCandidateID("0"))

	assert.False(t, IsValidCandidateID("-1"))
	assert.False(t, IsValidCandidateID("abc"))
	assert.False(t, IsValidCandidateID(""))
	assert.False(t, IsValidCandidateID(maxUint256+"0"))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]string{"a", "b"}, "c"))
	assert.False(t, Contains(nil, 1))
}
