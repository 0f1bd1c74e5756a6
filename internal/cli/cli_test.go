package cli

import (
	"io"
	"testing"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(args ...string) (*Args, error) {
	return ParseArgs("engagement", args, io.Discard)
}

func TestParseArgs_Flags(t *testing.T) {
	a, err := parse("-report", "top_advocates", "-limit", "3", "-window", "7d",
		"-threshold_set", "loyalty", "-weights", "3,1,2", "-strict", "-log_level", "DEBUG")
	require.NoError(t, err)

	assert.Equal(t, "top_advocates", a.Report)
	assert.Equal(t, 3, a.Options.Limit)
	assert.Equal(t, 7*24*time.Hour, a.Options.Window)
	assert.Equal(t, "loyalty", a.Options.ThresholdSet)
	assert.Equal(t, analytics.AdvocateWeights, *a.Options.Weights)
	assert.True(t, a.Options.Strict)
	assert.Equal(t, "DEBUG", a.LogLevel)
}

func TestParseArgs_ConfigThenFlags(t *testing.T) {
	a, err := parse("-report", "top_tags", "-config", "../config/testdata/reports.yaml", "-limit", "20")
	require.NoError(t, err)

	assert.Equal(t, 20, a.Options.Limit)
	assert.Equal(t, 7*24*time.Hour, a.Options.Window)
	assert.Equal(t, "loyalty", a.Options.ThresholdSet)
	assert.True(t, a.Options.Strict)
}

func TestParseArgs_Defaults(t *testing.T) {
	a, err := parse("-report", "follow_backs")
	require.NoError(t, err)
	assert.Zero(t, a.Options.Limit)
	assert.Nil(t, a.Options.Weights)
	assert.Equal(t, "INFO", a.LogLevel)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing report", nil},
		{"unknown report", []string{"-report", "most_liked_cats"}},
		{"bad window", []string{"-report", "top_tags", "-window", "soon"}},
		{"zero window", []string{"-report", "top_advocates", "-window", "0d"}},
		{"bad weights", []string{"-report", "top_tags", "-weights", "1,2"}},
		{"unknown flag", []string{"-query", "x"}},
		{"missing config", []string{"-report", "top_tags", "-config", "nope.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestParseArgs_Modes(t *testing.T) {
	a, err := parse("-list")
	require.NoError(t, err)
	assert.True(t, a.List)

	a, err = parse("-seed", "fixture.yaml")
	require.NoError(t, err)
	assert.Equal(t, "fixture.yaml", a.Seed)
}
