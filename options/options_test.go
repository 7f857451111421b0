package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(changed *[]string) *Registry {
	record := func(o *Option) { *changed = append(*changed, o.Name+"="+o.Value()) }
	r := New()
	r.Add(Spin("Hash", 16, 1, 1024, record))
	r.Add(Check("UCI_Chess960", false, nil))
	r.Add(Combo("Style", "Normal", []string{"Solid", "Normal", "Risky"}, nil))
	r.Add(Button("Clear Hash", record))
	r.Add(String("Debug Log File", "<empty>", nil))
	return r
}

func TestDefaults(t *testing.T) {
	var changed []string
	r := newRegistry(&changed)
	assert.Equal(t, 16, r.Int("Hash"))
	assert.False(t, r.Bool("UCI_Chess960"))
	assert.Equal(t, "Normal", r.Value("style"))
	assert.Equal(t, "", r.Value("missing"))
	assert.Empty(t, changed, "adding an option must not fire its hook")
}

func TestSetCaseInsensitive(t *testing.T) {
	var changed []string
	r := newRegistry(&changed)
	require.NoError(t, r.Set("uci_chess960", "true"))
	assert.Equal(t, "true", r.Value("UCI_Chess960"))
	assert.True(t, r.Bool("UCI_Chess960"))

	require.NoError(t, r.Set("HASH", "64"))
	assert.Equal(t, 64, r.Int("Hash"))
	assert.Equal(t, []string{"Hash=64"}, changed)
}

func TestSetUnknown(t *testing.T) {
	var changed []string
	r := newRegistry(&changed)
	before := r.String()
	err := r.Set("DoesNotExist", "5")
	assert.True(t, errors.Is(err, ErrUnknownOption))
	assert.Equal(t, before, r.String())
	assert.False(t, r.Has("DoesNotExist"))
}

func TestSetInvalid(t *testing.T) {
	var changed []string
	r := newRegistry(&changed)
	tests := []struct{ name, value string }{
		{"Hash", "0"},
		{"Hash", "2048"},
		{"Hash", "lots"},
		{"UCI_Chess960", "yes"},
		{"Style", "Wild"},
		{"Debug Log File", ""},
	}
	for _, tt := range tests {
		before := r.Value(tt.name)
		err := r.Set(tt.name, tt.value)
		assert.True(t, errors.Is(err, ErrInvalidValue), "%s=%q", tt.name, tt.value)
		assert.Equal(t, before, r.Value(tt.name))
	}
	assert.Empty(t, changed)
}

func TestButtonFiresHook(t *testing.T) {
	var changed []string
	r := newRegistry(&changed)
	require.NoError(t, r.Set("Clear Hash", ""))
	require.NoError(t, r.Set("clear hash", "ignored"))
	assert.Equal(t, []string{"Clear Hash=", "Clear Hash="}, changed)
}

func TestDumpInRegistrationOrder(t *testing.T) {
	var changed []string
	r := newRegistry(&changed)
	want := "\noption name Hash type spin default 16 min 1 max 1024" +
		"\noption name UCI_Chess960 type check default false" +
		"\noption name Style type combo default Normal var Solid var Normal var Risky" +
		"\noption name Clear Hash type button" +
		"\noption name Debug Log File type string default <empty>"
	assert.Equal(t, want, r.String())
}

func TestDuplicatePanics(t *testing.T) {
	r := New()
	r.Add(Check("Ponder", false, nil))
	assert.Panics(t, func() { r.Add(Check("ponder", true, nil)) })
}
