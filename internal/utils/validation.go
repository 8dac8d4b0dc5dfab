package utils

import (
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

var txHashRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// IsValidTxHash checks if the given string is a 0x prefixed 32 bytes transaction hash
// Note: it does not check whether the transaction exists.
func IsValidTxHash(txHash string) bool {
	return txHashRegex.MatchString(txHash)
}

// IsValidContractAddress checks if the given string is a hex encoded ledger address
func IsValidContractAddress(address string) bool {
	return common.IsHexAddress(address)
}

// ParseCandidateID parses the candidate id into the uint256 the voting contract expects
func ParseCandidateID(candidateID string) (*big.Int, bool) {
	id, ok := new(big.Int).SetString(candidateID, 10)
	if !ok || id.Sign() < 0 || id.BitLen() > 256 {
		return nil, false
	}
	return id, true
}

// IsValidCandidateID checks if the candidate id can be sent to the voting contract
func IsValidCandidateID(candidateID string) bool {
	_, ok := ParseCandidateID(candidateID)
	return ok
}
