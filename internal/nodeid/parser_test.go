package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		rawID        string
		expectErr    bool
		expectedAddr Address
	}{
		{
			name:         "kind without variant",
			rawID:        "foo.minify-style",
			expectedAddr: Address{Scope: "foo", Kind: "minify-style"},
		},
		{
			name:         "kind with variant",
			rawID:        "foo.concatenate.script",
			expectedAddr: Address{Scope: "foo", Kind: "concatenate", Variant: "script"},
		},
		{
			name:         "project scope",
			rawID:        "project.shell.cache_clear",
			expectedAddr: Address{Scope: ProjectScope, Kind: "shell", Variant: "cache_clear"},
		},
		{
			name:      "error - empty string",
			rawID:     "",
			expectErr: true,
		},
		{
			name:      "error - single segment",
			rawID:     "foo",
			expectErr: true,
		},
		{
			name:      "error - empty segment",
			rawID:     "foo..script",
			expectErr: true,
		},
		{
			name:      "error - trailing dot",
			rawID:     "foo.copy.",
			expectErr: true,
		},
		{
			name:      "error - too many segments",
			rawID:     "a.b.c.d",
			expectErr: true,
		},
		{
			name:      "error - invalid characters",
			rawID:     "foo.concatenate.sc ript",
			expectErr: true,
		},
		{
			name:      "error - lone hyphen",
			rawID:     "foo.-",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.rawID)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedAddr, addr)
		})
	}
}

func TestNew_RoundTrip(t *testing.T) {
	addr, err := New("foo", "concatenate", "style")
	require.NoError(t, err)
	assert.Equal(t, "foo.concatenate.style", addr.String())

	parsed, err := Parse(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	noVariant := MustNew("foo", "copy", "")
	assert.Equal(t, "foo.copy", noVariant.String())
	assert.False(t, noVariant.IsProject())
	assert.True(t, MustNew(ProjectScope, "shell", "x").IsProject())
	assert.True(t, Address{}.IsZero())
}

func TestMustNew_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustNew("foo bar", "copy", "") })
}

func TestAddress_TextMarshalling(t *testing.T) {
	addr := MustNew("foo", "lint", "script")
	text, err := addr.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "foo.lint.script", string(text))

	var decoded Address
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, addr, decoded)

	assert.Error(t, decoded.UnmarshalText([]byte("broken")))
}
