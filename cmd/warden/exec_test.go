package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	args, err := parseArgs([]string{
		"path=main.go",
		"recursive=true",
		"verbose=false",
		"timeout_seconds=2.5",
		"content=a=b",
	})
	require.NoError(t, err)

	assert.Equal(t, "main.go", args["path"])
	assert.Equal(t, true, args["recursive"])
	assert.Equal(t, false, args["verbose"])
	assert.Equal(t, 2.5, args["timeout_seconds"])
	assert.Equal(t, "a=b", args["content"], "only the first '=' splits key from value")
}

func TestParseArgs_Invalid(t *testing.T) {
	_, err := parseArgs([]string{"noequals"})
	assert.Error(t, err)

	_, err = parseArgs([]string{"=value"})
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, true, coerce("true"))
	assert.Equal(t, false, coerce("false"))
	assert.Equal(t, 42.0, coerce("42"))
	assert.Equal(t, "hello", coerce("hello"))
	assert.Equal(t, "10s", coerce("10s"))
}
