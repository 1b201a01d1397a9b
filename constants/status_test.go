package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to JobStatus }{
		{JobStatusPending, JobStatusProcessing},
		{JobStatusPending, JobStatusFailed},
		{JobStatusProcessing, JobStatusCompleted},
		{JobStatusProcessing, JobStatusFailed},
		{JobStatusCompleted, JobStatusRendered},
		{JobStatusCompleted, JobStatusProcessing},
		{JobStatusRendered, JobStatusRendered},
		{JobStatusRendered, JobStatusProcessing},
		{JobStatusFailed, JobStatusProcessing},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct{ from, to JobStatus }{
		{JobStatusPending, JobStatusCompleted},
		{JobStatusPending, JobStatusRendered},
		{JobStatusCompleted, JobStatusFailed},
		{JobStatusRendered, JobStatusFailed},
		{JobStatusFailed, JobStatusCompleted},
		{JobStatusFailed, JobStatusRendered},
		{JobStatusCompleted, JobStatusPending},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTerminalAndResult(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusProcessing.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusRendered.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())

	assert.True(t, JobStatusCompleted.HasResult())
	assert.True(t, JobStatusRendered.HasResult())
	assert.False(t, JobStatusFailed.HasResult())
	assert.False(t, JobStatusPending.HasResult())
}

func TestParseJobStatus(t *testing.T) {
	s, ok := ParseJobStatus("processing")
	assert.True(t, ok)
	assert.Equal(t, JobStatusProcessing, s)

	_, ok = ParseJobStatus("PROCESSING")
	assert.False(t, ok)
	_, ok = ParseJobStatus("done")
	assert.False(t, ok)
	_, ok = ParseJobStatus("")
	assert.False(t, ok)
}
