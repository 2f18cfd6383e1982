package blueprint

import (
	"fmt"

	"github.com/blueprint-graph/compiler/internal/document"
)

// UnknownType is assigned to resources that declare no type.
const UnknownType = "Unknown"

// Blueprint is the extracted form of a cloud template document.
type Blueprint struct {
	FormatVersion document.Value
	Inputs        []Input
	Resources     []Resource
	// Issues holds structural problems found while extracting; they are
	// reported by the validator, never returned as errors.
	Issues []Issue

	index map[string]int
}

// Resource is a single named entry of the resources section.
type Resource struct {
	Name       string
	Type       string
	HasType    bool
	Properties document.Value
	// Flags holds every other key of the resource body (dependsOn, count,
	// preventDelete, condition, ...) unchanged and in declaration order.
	Flags document.Value
}

// Input is a single entry of the inputs section.
type Input struct {
	Name       string
	Type       string
	Default    document.Value
	HasDefault bool
	Enum       []document.Value
	Body       document.Value
}

// Issue is a structural problem in the document shape.
type Issue struct {
	Resource string
	Message  string
}

// Extract walks the resources and inputs sections of a loaded document.
// A missing resources section yields an empty blueprint.
func Extract(doc document.Value) *Blueprint {
	bp := &Blueprint{
		FormatVersion: doc.Get("formatVersion"),
		index:         make(map[string]int),
	}

	resources, ok := doc.Lookup("resources")
	switch {
	case !ok || resources.IsNull():
	case !resources.IsMapping():
		bp.Issues = append(bp.Issues, Issue{
			Message: fmt.Sprintf("resources must be a mapping of resource name to definition, got %s", resources.Kind()),
		})
	default:
		for _, f := range resources.Fields() {
			bp.addResource(f.Key, f.Value)
		}
	}

	inputs, ok := doc.Lookup("inputs")
	switch {
	case !ok || inputs.IsNull():
	case !inputs.IsMapping():
		bp.Issues = append(bp.Issues, Issue{
			Message: fmt.Sprintf("inputs must be a mapping of input name to definition, got %s", inputs.Kind()),
		})
	default:
		for _, f := range inputs.Fields() {
			bp.Inputs = append(bp.Inputs, extractInput(f.Key, f.Value))
		}
	}

	return bp
}

func (bp *Blueprint) addResource(name string, body document.Value) {
	r := Resource{
		Name:       name,
		Type:       UnknownType,
		Properties: document.Null(),
		Flags:      document.Mapping(),
	}

	if !body.IsMapping() && !body.IsNull() {
		bp.Issues = append(bp.Issues, Issue{
			Resource: name,
			Message:  fmt.Sprintf("resource definition must be a mapping, got %s", body.Kind()),
		})
	}

	var flags []document.Field
	for _, f := range body.Fields() {
		switch f.Key {
		case "type":
			t, ok := f.Value.Str()
			if !ok && !f.Value.IsNull() {
				bp.Issues = append(bp.Issues, Issue{
					Resource: name,
					Message:  fmt.Sprintf("type must be a string, got %s", f.Value.Kind()),
				})
			}
			if t != "" {
				r.Type = t
				r.HasType = true
			}
		case "properties":
			r.Properties = f.Value
			if !f.Value.IsMapping() && !f.Value.IsNull() {
				bp.Issues = append(bp.Issues, Issue{
					Resource: name,
					Message:  fmt.Sprintf("properties must be a mapping, got %s", f.Value.Kind()),
				})
			}
		default:
			flags = append(flags, f)
		}
	}
	r.Flags = document.Mapping(flags...)

	bp.index[name] = len(bp.Resources)
	bp.Resources = append(bp.Resources, r)
}

func extractInput(name string, body document.Value) Input {
	in := Input{Name: name, Body: body}
	in.Type = document.GetStr(body, "type")
	if def, ok := body.Lookup("default"); ok {
		in.Default = def
		in.HasDefault = true
	}
	in.Enum = body.Get("enum").Items()
	return in
}

// Resource returns the resource with the given name, or nil.
func (bp *Blueprint) Resource(name string) *Resource {
	i, ok := bp.index[name]
	if !ok {
		return nil
	}
	return &bp.Resources[i]
}

// Has reports whether a resource with the given name is declared.
func (bp *Blueprint) Has(name string) bool {
	_, ok := bp.index[name]
	return ok
}

// Names returns resource names in declaration order.
func (bp *Blueprint) Names() []string {
	names := make([]string, len(bp.Resources))
	for i := range bp.Resources {
		names[i] = bp.Resources[i].Name
	}
	return names
}

// Input returns the input with the given name, or nil.
func (bp *Blueprint) Input(name string) *Input {
	for i := range bp.Inputs {
		if bp.Inputs[i].Name == name {
			return &bp.Inputs[i]
		}
	}
	return nil
}

// DependsOn returns the explicit dependency names of r. ok is false when the
// flag is present with a shape other than a string or a list of strings.
func (r *Resource) DependsOn() (names []string, ok bool) {
	return document.GetStrList(r.Flags, "dependsOn")
}
