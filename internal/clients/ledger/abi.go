package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const electionABIJSON = `[
	{"type":"function","name":"registerVoter","stateMutability":"nonpayable",
	 "inputs":[{"name":"voter","type":"address"}],"outputs":[]},
	{"type":"function","name":"vote","stateMutability":"nonpayable",
	 "inputs":[{"name":"candidateId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"voters","stateMutability":"view",
	 "inputs":[{"name":"voter","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"hasVoted","stateMutability":"view",
	 "inputs":[{"name":"voter","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getElectionInfo","stateMutability":"view","inputs":[],
	 "outputs":[
		{"name":"title","type":"string"},
		{"name":"startTime","type":"uint256"},
		{"name":"endTime","type":"uint256"},
		{"name":"isActive","type":"bool"},
		{"name":"isFinalized","type":"bool"}
	 ]}
]`

const (
	methodRegisterVoter   = "registerVoter"
	methodVote            = "vote"
	methodVoters          = "voters"
	methodHasVoted        = "hasVoted"
	methodGetElectionInfo = "getElectionInfo"
)

func ElectionABI() abi.ABI {
	return electionABI
}

var electionABI = mustParseABI(electionABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
