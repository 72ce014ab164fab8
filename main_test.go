package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"solve", "abcd"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), " 1  ABCD  BBBB")
	assert.Contains(t, out.String(), "solved ABCD in 1 rounds")
}

func TestEvaluateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"evaluate", "--pool", "1", "--seed", "3", "--workers", "1"})
	require.NoError(t, rootCmd.Execute())
	assert.Regexp(t, `^\d+\.\d{4}\n$`, out.String())
}
