package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeepsMappingOrder(t *testing.T) {
	v, err := Load(`
formatVersion: 1
resources:
  Zeta:
    type: Cloud.Machine
  Alpha:
    type: Cloud.Network
  Mid:
    type: Cloud.Volume
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"formatVersion", "resources"}, v.Keys())
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, v.Get("resources").Keys())

	version, ok := v.Get("formatVersion").IntValue()
	require.True(t, ok)
	assert.Equal(t, int64(1), version)
}

func TestLoadScalars(t *testing.T) {
	v, err := Load(`
s: hello
quoted: '${resource.Net.id}'
i: 42
f: 1.5
b: true
n: null
list: [a, 2]
`)
	require.NoError(t, err)

	s, ok := v.Get("s").Str()
	require.True(t, ok)
	assert.Equal(t, "hello", s)
	assert.Equal(t, "${resource.Net.id}", GetStr(v, "quoted"))
	assert.Equal(t, KindInt, v.Get("i").Kind())
	assert.Equal(t, KindFloat, v.Get("f").Kind())
	assert.Equal(t, KindBool, v.Get("b").Kind())
	assert.True(t, v.Get("n").IsNull())
	assert.True(t, v.Has("n"))
	require.Equal(t, KindSequence, v.Get("list").Kind())
	assert.Len(t, v.Get("list").Items(), 2)
}

func TestLoadInvalidDocument(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "comment only", text: "# nothing here\n"},
		{name: "bare scalar", text: "just a string"},
		{name: "sequence", text: "- a\n- b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument), "got %v", err)

			var pe *ParseError
			assert.False(t, errors.As(err, &pe))
		})
	}
}

func TestLoadParseError(t *testing.T) {
	_, err := Load("resources:\n  VM:\n    type: [unterminated\n")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
	assert.NotEmpty(t, pe.Message)
	assert.False(t, errors.Is(err, ErrInvalidDocument))
}

func TestParseErrorFormatting(t *testing.T) {
	pe := &ParseError{Message: "unexpected token", Line: 3, Column: 7}
	assert.Equal(t, "line 3, column 7: unexpected token", pe.Error())

	pe = &ParseError{Message: "bad"}
	assert.Equal(t, "bad", pe.Error())
}

func TestLoadDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		text string
		key  string
	}{
		{
			name: "resource",
			text: "resources:\n  VM:\n    type: A\n  VM:\n    type: B\n",
			key:  "VM",
		},
		{
			name: "nested property",
			text: "resources:\n  VM:\n    properties:\n      image: a\n      image: b\n",
			key:  "image",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.text)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
			assert.Contains(t, pe.Message, tt.key)
			assert.False(t, errors.Is(err, ErrInvalidDocument))
		})
	}
}
