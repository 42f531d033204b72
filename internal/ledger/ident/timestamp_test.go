package ident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTrip(t *testing.T) {
	cases := []string{
		"20120801040000",
		"20240115000000",
		"19991231235959",
		"20000229120000",
	}
	for _, in := range cases {
		ts, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, ts.String())
	}
}

func TestParseTimestampStrict(t *testing.T) {
	cases := []string{
		"",
		"2024-01-15",
		"20240115",
		"202401150000000",
		"2024011500000x",
		"20241315000000", // month 13
		"20240230000000", // Feb 30
	}
	for _, in := range cases {
		_, err := ParseTimestamp(in)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %q must not parse", in)
	}
}

func TestTimestampOfTruncatesToSeconds(t *testing.T) {
	base := time.Date(2024, 1, 15, 13, 45, 30, 999_000_000, time.Local)
	ts := TimestampOf(base)
	assert.Equal(t, "20240115134530", ts.String())
}

func TestTimestampOrdering(t *testing.T) {
	early, err := ParseTimestamp("20240101000000")
	require.NoError(t, err)
	late, err := ParseTimestamp("20240131235959")
	require.NoError(t, err)

	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))
	// The 14-digit form sorts like the dates it encodes.
	assert.Less(t, early.String(), late.String())
}
