package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueprint-graph/compiler/internal/document"
)

const testSchema = `{
  "Test.Machine": {
    "properties": {
      "image": {"type": "string"},
      "flavor": {"type": "string", "enum": ["small", "medium"]},
      "cpuCount": {"type": "integer", "enum": [1, 2, 4]}
    },
    "required": ["image", "flavor"]
  },
  "Test.Choice": {
    "properties": {"a": {}, "b": {}, "c": {}},
    "oneOf": [{"required": ["a", "b"]}, {"required": ["c"]}]
  }
}`

func TestLoad(t *testing.T) {
	r, err := Load([]byte(testSchema))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"Test.Choice", "Test.Machine"}, r.ListSupportedTypes())

	def, ok := r.Get("Test.Machine")
	require.True(t, ok)
	assert.Equal(t, "Test.Machine", def.Name)
	assert.Equal(t, []string{"image", "flavor"}, def.Required)
	assert.True(t, def.HasProperty("cpuCount"))
	assert.False(t, def.HasProperty("networks"))

	_, ok = r.Get("Test.Missing")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load([]byte(`{not json`))
	assert.ErrorContains(t, err, "failed to parse type schema")

	_, err = Load([]byte(`{"T": {"oneOf": [{"required": []}]}}`))
	assert.ErrorContains(t, err, "oneOf group 0")

	_, err = Load([]byte(`{"T": null}`))
	assert.ErrorContains(t, err, "definition is null")
}

func TestOneOf(t *testing.T) {
	r := MustLoad([]byte(testSchema))
	def, _ := r.Get("Test.Choice")

	props := func(keys ...string) document.Value {
		fields := make([]document.Field, len(keys))
		for i, k := range keys {
			fields[i] = document.Field{Key: k, Value: document.String("x")}
		}
		return document.Mapping(fields...)
	}

	assert.True(t, def.OneOfSatisfied(props("a", "b")))
	assert.True(t, def.OneOfSatisfied(props("c")))
	assert.False(t, def.OneOfSatisfied(props("a")))
	assert.False(t, def.OneOfSatisfied(document.Null()))
	assert.Equal(t, "a & b OR c", def.OneOfText())

	plain, _ := r.Get("Test.Machine")
	assert.True(t, plain.OneOfSatisfied(document.Null()))
}

func TestEnum(t *testing.T) {
	r := MustLoad([]byte(testSchema))
	def, _ := r.Get("Test.Machine")

	flavor, ok := def.Property("flavor")
	require.True(t, ok)
	assert.True(t, flavor.Allows(document.String("small")))
	assert.False(t, flavor.Allows(document.String("huge")))
	assert.False(t, flavor.Allows(document.Int(1)))
	assert.Equal(t, "small, medium", flavor.EnumText())

	cpu, _ := def.Property("cpuCount")
	assert.True(t, cpu.Allows(document.Int(2)))
	assert.True(t, cpu.Allows(document.Float(4)))
	assert.False(t, cpu.Allows(document.Int(3)))
	assert.False(t, cpu.Allows(document.String("2")))

	image, _ := def.Property("image")
	assert.True(t, image.Allows(document.String("anything")))
}

func TestDefaultRegistry(t *testing.T) {
	for _, typ := range []string{"Cloud.Machine", "Cloud.Network", "Cloud.LoadBalancer", "Cloud.Volume", "Cloud.SecurityGroup"} {
		_, ok := Default.Get(typ)
		assert.True(t, ok, typ)
	}
}

func TestConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, ok := Default.Get("Cloud.Machine")
				assert.True(t, ok)
				_ = Default.ListSupportedTypes()
			}
		}()
	}
	wg.Wait()
}
