package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithFilter(&buf, DebugLevel, true, "debug:engineer.* info:*")
	require.NoError(t, err)

	l.Named("engineer").Named("hysteresis").Debug("raised")
	l.Named("processor").Debug("hidden")
	l.Named("processor").Info("lap completed")
	out := buf.String()

	assert.Contains(t, out, `"msg":"raised"`)
	assert.Contains(t, out, `"msg":"lap completed"`)
	assert.NotContains(t, out, "hidden")
}

func TestNewWithFilterInvalidRules(t *testing.T) {
	_, err := NewWithFilter(&bytes.Buffer{}, DebugLevel, false, "nolevel:")
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	l.Debug("first")
	assert.False(t, l.Enabled(DebugLevel))

	l.SetLevel(DebugLevel)
	l.Named("child").Debug("second")
	assert.Equal(t, DebugLevel, l.Level())
	assert.NotContains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "second")
}

func TestContext(t *testing.T) {
	assert.Same(t, Default(), GetFromContext(context.Background()))

	var buf bytes.Buffer
	l := DevLogger(&buf, InfoLevel).With(String("session", "abc"))
	ctx := AddToContext(context.Background(), l)
	GetFromContext(ctx).Info("stored")
	assert.True(t, strings.Contains(buf.String(), "abc"))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, lvl)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
