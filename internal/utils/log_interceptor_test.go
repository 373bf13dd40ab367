package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogInterceptorNumbersLines(t *testing.T) {
	var out bytes.Buffer
	li := NewLogInterceptor(&out)

	_, err := li.Write([]byte("first\nsecond\n"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "line=1 time="))
	assert.True(t, strings.HasSuffix(lines[0], " first"))
	assert.True(t, strings.HasPrefix(lines[1], "line=2 time="))
	assert.True(t, strings.HasSuffix(lines[1], " second"))
}

func TestLogInterceptorBuffersPartialLines(t *testing.T) {
	var out bytes.Buffer
	li := NewLogInterceptor(&out)

	_, err := li.Write([]byte("hel"))
	require.NoError(t, err)
	assert.Empty(t, out.String())

	_, err = li.Write([]byte("lo\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimRight(out.String(), "\n"), " hello"))
}

func TestLogInterceptorCloseFlushes(t *testing.T) {
	var out bytes.Buffer
	li := NewLogInterceptor(&out)

	_, err := li.Write([]byte("dangling"))
	require.NoError(t, err)
	assert.Empty(t, out.String())

	require.NoError(t, li.Close())
	assert.Contains(t, out.String(), " dangling\n")

	// nothing left, closing again writes nothing
	before := out.Len()
	require.NoError(t, li.Close())
	assert.Equal(t, before, out.Len())
}
