package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueprint-graph/compiler/internal/blueprint"
	"github.com/blueprint-graph/compiler/internal/document"
)

func resource(t *testing.T, text string) *blueprint.Resource {
	t.Helper()
	doc, err := document.Load(text)
	require.NoError(t, err)
	bp := blueprint.Extract(doc)
	require.NotEmpty(t, bp.Resources)
	return &bp.Resources[0]
}

func TestExpressions(t *testing.T) {
	r := resource(t, `
resources:
  Web:
    type: Cloud.Machine
    count: '${input.count}'
    properties:
      image: ubuntu
      flavor: '${input.size == "large" ? "large" : "small"}'
      networks:
        - network: '${resource.Net.id}'
      name: 'web-${env.deploymentName}'
`)

	exprs := Expressions(r)
	require.Len(t, exprs, 4)

	assert.Equal(t, "properties.flavor", exprs[0].Path)
	assert.Equal(t, []Ref{{Root: "input", Name: "size"}}, exprs[0].Refs)

	assert.Equal(t, "properties.networks[0].network", exprs[1].Path)
	assert.Equal(t, []Ref{{Root: "resource", Name: "Net"}}, exprs[1].Refs)

	assert.Equal(t, "properties.name", exprs[2].Path)
	assert.Equal(t, "count", exprs[3].Path)

	for _, e := range exprs {
		assert.False(t, e.Malformed(), e.Path)
	}
	assert.Equal(t, []string{"size", "count"}, InputNames(exprs))
}

func TestExpressionsMalformed(t *testing.T) {
	r := resource(t, `
resources:
  Web:
    type: Cloud.Machine
    properties:
      broken: '${input.count +}'
      plain: no placeholders here
`)

	exprs := Expressions(r)
	require.Len(t, exprs, 1)
	assert.True(t, exprs[0].Malformed())
	assert.Equal(t, "properties.broken", exprs[0].Path)
	assert.Empty(t, exprs[0].Refs)
}

func TestExpressionsIndexKey(t *testing.T) {
	r := resource(t, `
resources:
  Web:
    type: Cloud.Machine
    properties:
      size: '${input["flavor"]}'
`)
	exprs := Expressions(r)
	require.Len(t, exprs, 1)
	assert.Equal(t, []Ref{{Root: "input", Name: "flavor"}}, exprs[0].Refs)
}

func TestExpressionsSingleQuotes(t *testing.T) {
	r := resource(t, `
resources:
  Web:
    type: Cloud.Machine
    properties:
      flavor: '${input.env == ''prod'' ? ''large'' : ''small''}'
      name: '${input.env == ''it\''s'' ? "a" : ''say "hi"''}'
`)
	exprs := Expressions(r)
	require.Len(t, exprs, 2)
	for _, e := range exprs {
		assert.False(t, e.Malformed(), "%s: %s", e.Path, e.Problem)
		assert.Equal(t, []Ref{{Root: "input", Name: "env"}}, e.Refs)
	}
	assert.Equal(t, "${input.env == 'prod' ? 'large' : 'small'}", exprs[0].Source)
}

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "no quotes ${input.a}", want: "no quotes ${input.a}"},
		{in: "${a == 'b'}", want: `${a == "b"}`},
		{in: `${a == 'say "hi"'}`, want: `${a == "say \"hi\""}`},
		{in: `${a == 'it\'s'}`, want: `${a == "it's"}`},
		{in: `${a == "it's"}`, want: `${a == "it's"}`},
		{in: "it's ${x ? 'y' : 'z'} o'clock", want: `it's ${x ? "y" : "z"} o'clock`},
		{in: "${m['k']}", want: `${m["k"]}`},
		{in: "$${'raw'}", want: "$${'raw'}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeQuotes(tt.in), tt.in)
	}
}
