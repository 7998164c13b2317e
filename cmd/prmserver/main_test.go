package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prm-planner/internal/cli"
)

func TestParseArgs(t *testing.T) {
	var out bytes.Buffer

	opts, exit, err := parseArgs([]string{"-addr", ":9000", "-snapshot", "", "-log-format", "json"}, &out)
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, ":9000", opts.addr)
	assert.Empty(t, opts.snapshot)
	assert.Equal(t, "json", opts.logFormat)
	assert.Equal(t, "info", opts.logLevel)

	_, exit, err = parseArgs([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)

	_, _, err = parseArgs([]string{"-bogus"}, &out)
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
}
