package validate

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueprint-graph/compiler/internal/blueprint"
	"github.com/blueprint-graph/compiler/internal/document"
	"github.com/blueprint-graph/compiler/internal/registry"
	"github.com/blueprint-graph/compiler/internal/result"
)

const testSchema = `{
  "Test.Machine": {
    "properties": {
      "image": {},
      "flavor": {"enum": ["small", "medium"]},
      "count": {}
    },
    "required": ["image", "flavor"]
  },
  "Test.Choice": {
    "properties": {"image": {}, "imageRef": {}, "flavor": {}},
    "oneOf": [{"required": ["image", "flavor"]}, {"required": ["imageRef"]}]
  },
  "Test.Open": {"properties": {"name": {}}}
}`

func run(t *testing.T, text string) []result.Diagnostic {
	t.Helper()
	doc, err := document.Load(text)
	require.NoError(t, err)
	return Validate(blueprint.Extract(doc), registry.MustLoad([]byte(testSchema)))
}

func messages(ds []result.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

func TestMissingReferenceWarning(t *testing.T) {
	ds := run(t, `
resources:
  A:
    type: Test.Open
    properties:
      name: ${resource.Ghost.id}
`)
	require.Len(t, ds, 1)
	assert.Equal(t, result.TypeReference, ds[0].Type)
	assert.Equal(t, result.SeverityWarning, ds[0].Severity)
	assert.Equal(t, "A", ds[0].Resource)
	assert.Contains(t, ds[0].Message, "Ghost")
	assert.False(t, result.HasErrors(ds))
}

func TestMissingReferenceDeduplicated(t *testing.T) {
	ds := run(t, `
resources:
  A:
    type: Test.Open
    dependsOn: [Ghost]
    properties:
      name: ${resource.Ghost.id}-${resource.Ghost.name}
`)
	require.Len(t, ds, 1)
	assert.Equal(t, "references missing resource Ghost", ds[0].Message)
}

func TestRequiredProperty(t *testing.T) {
	ds := run(t, `
resources:
  VM:
    type: Test.Machine
    properties:
      image: ubuntu
`)
	require.Len(t, ds, 1)
	assert.Equal(t, result.TypeSchema, ds[0].Type)
	assert.True(t, ds[0].IsError())
	assert.Contains(t, ds[0].Message, "flavor")
	assert.NotContains(t, ds[0].Message, "image")
}

func TestOneOf(t *testing.T) {
	tests := []struct {
		name  string
		props string
		want  int
	}{
		{"first group", "{image: a, flavor: b}", 0},
		{"second group", "{imageRef: r}", 0},
		{"partial group", "{image: a}", 1},
		{"empty", "{}", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := run(t, "resources:\n  VM:\n    type: Test.Choice\n    properties: "+tt.props+"\n")
			require.Len(t, ds, tt.want)
			if tt.want > 0 {
				assert.Equal(t, "type Test.Choice requires one of: image & flavor OR imageRef", ds[0].Message)
				assert.True(t, ds[0].IsError())
			}
		})
	}
}

func TestUnknownTypeSkipsSchemaChecks(t *testing.T) {
	ds := run(t, `
resources:
  X:
    type: Vendor.Thing
    properties:
      anything: 1
  Y:
    properties: {}
`)
	want := []string{"unknown resource type Vendor.Thing", "resource has no type"}
	if diff := cmp.Diff(want, messages(ds)); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, result.HasErrors(ds))
}

func TestUnknownPropertyAndEnum(t *testing.T) {
	ds := run(t, `
resources:
  VM:
    type: Test.Machine
    properties:
      image: ubuntu
      flavor: huge
      colour: red
`)
	want := []string{
		"unknown property colour for type Test.Machine",
		"invalid value huge for property flavor",
	}
	if diff := cmp.Diff(want, messages(ds)); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, result.Count(ds, result.SeverityError))
	assert.Equal(t, "Use one of: small, medium", ds[1].Suggestion)
}

func TestEnumSkipsExpressions(t *testing.T) {
	ds := run(t, `
inputs:
  size:
    type: string
resources:
  VM:
    type: Test.Machine
    properties:
      image: ubuntu
      flavor: ${input.size}
`)
	assert.Empty(t, ds)
}

func TestExpressions(t *testing.T) {
	ds := run(t, `
resources:
  VM:
    type: Test.Open
    properties:
      name: ${input.missing}
    count: ${(}
`)
	require.Len(t, ds, 2)
	assert.Equal(t, result.TypeExpression, ds[0].Type)
	assert.Contains(t, ds[0].Message, "malformed expression in count")
	assert.Equal(t, result.TypeInput, ds[1].Type)
	assert.Equal(t, "references undeclared input missing", ds[1].Message)
}

func TestSingleQuotedExpression(t *testing.T) {
	ds := run(t, `
inputs:
  env:
    type: string
resources:
  VM:
    type: Test.Machine
    properties:
      image: ubuntu
      flavor: '${input.env == ''prod'' ? ''large'' : ''small''}'
`)
	assert.Empty(t, ds, "%v", messages(ds))
}

func TestDependsOnShape(t *testing.T) {
	ds := run(t, `
resources:
  A:
    type: Test.Open
    dependsOn: {B: true}
  B:
    type: Test.Open
`)
	require.Len(t, ds, 1)
	assert.Equal(t, result.TypeSchemaWarn, ds[0].Type)
	assert.Contains(t, ds[0].Message, "dependsOn")
}

func TestStructureErrors(t *testing.T) {
	ds := run(t, `
resources:
  A: 5
  B:
    type: Test.Open
    properties: [1, 2]
`)
	require.Len(t, ds, 3)
	assert.Equal(t, "resource definition must be a mapping, got int", ds[0].Message)
	assert.Equal(t, "A", ds[0].Resource)
	assert.Equal(t, "resource has no type", ds[1].Message)
	assert.Equal(t, "properties must be a mapping, got sequence", ds[2].Message)
	assert.Equal(t, result.TypeStructure, ds[2].Type)

	ds = run(t, "resources: [1, 2]\n")
	require.Len(t, ds, 1)
	assert.Equal(t, result.TypeStructure, ds[0].Type)
	assert.Empty(t, ds[0].Resource)
}

func TestCycleWarning(t *testing.T) {
	ds := run(t, `
resources:
  A:
    type: Test.Open
    dependsOn: [B]
  B:
    type: Test.Open
    properties:
      name: ${resource.A.id}
  C:
    type: Test.Open
`)
	require.Len(t, ds, 1)
	assert.Equal(t, result.TypeDependency, ds[0].Type)
	assert.Equal(t, "dependency cycle between A, B", ds[0].Message)
	assert.Empty(t, ds[0].Resource)
}

func TestInputs(t *testing.T) {
	ds := run(t, `
inputs:
  good:
    type: integer
    default: 3
  frac:
    type: integer
    default: 2.5
  word:
    type: number
    default: many
  flag:
    type: boolean
    default: "true"
  list:
    type: array
    default: {a: 1}
  weird:
    type: matrix
  size:
    type: string
    enum: [small, large]
    default: medium
  loose: 7
`)
	want := []string{
		"default of input frac is not a whole number",
		"default of input list is not an array",
		"input weird has unknown type matrix",
		"default of input size is not one of its enum values",
		"input loose must be a mapping, got int",
	}
	got := messages(ds)
	require.Len(t, got, 6)
	assert.Contains(t, got[1], "default of input word cannot be used as number")
	got = append(got[:1], got[2:]...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	for _, d := range ds {
		assert.Equal(t, result.TypeInput, d.Type)
		assert.Empty(t, d.Resource)
	}
}

func TestOrder(t *testing.T) {
	ds := run(t, `
inputs:
  n:
    type: nope
resources:
  B:
    type: Test.Machine
    dependsOn: A
  A:
    type: Test.Open
    dependsOn: B
`)
	var types []string
	for _, d := range ds {
		types = append(types, d.Type)
	}
	want := []string{
		result.TypeInput,
		result.TypeSchema, result.TypeSchema,
		result.TypeDependency,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRegistry(t *testing.T) {
	doc, err := document.Load(`
resources:
  Net:
    type: Cloud.Network
    properties:
      networkType: existing
  VM:
    type: Cloud.Machine
    properties:
      image: ubuntu
      flavor: small
      networks:
        - network: ${resource.Net.id}
`)
	require.NoError(t, err)
	assert.Empty(t, Validate(blueprint.Extract(doc), nil))
}

func TestConcurrentValidation(t *testing.T) {
	reg := registry.MustLoad([]byte(testSchema))
	doc, err := document.Load(`
resources:
  VM:
    type: Test.Machine
    properties:
      image: ubuntu
      extra: ${resource.Ghost.id}
`)
	require.NoError(t, err)
	bp := blueprint.Extract(doc)
	want := Validate(bp, reg)
	require.Len(t, want, 3)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Validate(bp, reg))
		}()
	}
	wg.Wait()
}
