package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(in, "Name?", &out)
	require.Error(t, err)
}

func TestGetOptionalText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("\nnew\n"))
	var out bytes.Buffer

	got, err := GetOptionalText(in, "Title", "old", &out)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Contains(t, out.String(), "Title [old]")

	got, err = GetOptionalText(in, "Title", "old", &out)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", *got)
}

func TestGetTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	in := bufio.NewReader(strings.NewReader("2024-03-01 09:00\nyesterday\n"))
	var out bytes.Buffer

	got, err := GetTimestamp(in, "When", loc, &out)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)))

	_, err = GetTimestamp(in, "When", loc, &out)
	require.Error(t, err)
}

func TestGetYesNo(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("Yes\nno\n"))
	var out bytes.Buffer

	yes, err := GetYesNo(in, "Sure?", &out)
	require.NoError(t, err)
	assert.True(t, yes)

	yes, err = GetYesNo(in, "Sure?", &out)
	require.NoError(t, err)
	assert.False(t, yes)
}

func TestInteractive_UsesSeam(t *testing.T) {
	old := isTerminal
	t.Cleanup(func() { isTerminal = old })

	isTerminal = func(int) bool { return true }
	assert.True(t, interactive())

	isTerminal = func(int) bool { return false }
	assert.False(t, interactive())
}
