package utils

import (
	"testing"

	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to types.SubmissionStatus
		want     bool
	}{
		{types.Pending, types.Processing, true},
		{types.Processing, types.Pending, true},
		{types.Processing, types.Confirmed, true},
		{types.Processing, types.Failed, true},
		{types.Pending, types.Failed, true},
		{types.Pending, types.Rejected, true},

		{types.Pending, types.Confirmed, false},
		{types.Processing, types.Rejected, false},
		{types.Processing, types.Processing, false},
		{types.Confirmed, types.Failed, false},
		{types.Confirmed, types.Pending, false},
		{types.Failed, types.Processing, false},
		{types.Rejected, types.Pending, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.ToString()+"->"+tt.to.ToString(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	all := []types.SubmissionStatus{types.Pending, types.Processing, types.Confirmed, types.Failed, types.Rejected}
	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestQualifiedStatesToUnknownTarget(t *testing.T) {
	assert.Nil(t, QualifiedStatesTo(types.SubmissionStatus("unknown")))
}
