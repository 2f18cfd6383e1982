package registry

import (
	"fmt"
	"strings"

	"github.com/blueprint-graph/compiler/internal/document"
)

// TypeDefinition describes the properties a resource type accepts.
type TypeDefinition struct {
	Name       string                    `json:"-"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
	OneOf      []RequiredGroup           `json:"oneOf,omitempty"`
}

// PropertySchema describes one property. Only Enum takes part in validation.
type PropertySchema struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// RequiredGroup is one alternative of a oneOf: all names must be present.
type RequiredGroup struct {
	Required []string `json:"required"`
}

func (d *TypeDefinition) check() error {
	for i, g := range d.OneOf {
		if len(g.Required) == 0 {
			return fmt.Errorf("oneOf group %d has no required properties", i)
		}
	}
	return nil
}

// HasProperty reports whether name is a declared property.
func (d *TypeDefinition) HasProperty(name string) bool {
	_, ok := d.Properties[name]
	return ok
}

// Property returns the schema of a declared property.
func (d *TypeDefinition) Property(name string) (PropertySchema, bool) {
	p, ok := d.Properties[name]
	return p, ok
}

// Satisfied reports whether every name of the group is present in props.
func (g RequiredGroup) Satisfied(props document.Value) bool {
	for _, name := range g.Required {
		if !props.Has(name) {
			return false
		}
	}
	return true
}

// String renders the group as "a & b".
func (g RequiredGroup) String() string {
	return strings.Join(g.Required, " & ")
}

// OneOfSatisfied reports whether props satisfies at least one group. A type
// without groups is always satisfied.
func (d *TypeDefinition) OneOfSatisfied(props document.Value) bool {
	if len(d.OneOf) == 0 {
		return true
	}
	for _, g := range d.OneOf {
		if g.Satisfied(props) {
			return true
		}
	}
	return false
}

// OneOfText renders all groups as "a & b OR c".
func (d *TypeDefinition) OneOfText() string {
	parts := make([]string, len(d.OneOf))
	for i, g := range d.OneOf {
		parts[i] = g.String()
	}
	return strings.Join(parts, " OR ")
}

// Allows reports whether v is one of the enumerated values. Properties
// without an enum allow anything.
func (p PropertySchema) Allows(v document.Value) bool {
	if len(p.Enum) == 0 {
		return true
	}
	for _, e := range p.Enum {
		if enumEqual(e, v) {
			return true
		}
	}
	return false
}

// EnumText renders the enumerated values for messages.
func (p PropertySchema) EnumText() string {
	parts := make([]string, len(p.Enum))
	for i, e := range p.Enum {
		parts[i] = enumValue(e).Text()
	}
	return strings.Join(parts, ", ")
}

func enumEqual(e any, v document.Value) bool {
	ev := enumValue(e)
	if ef, ok := ev.FloatValue(); ok {
		vf, ok := v.FloatValue()
		return ok && vf == ef
	}
	if ev.Kind() != v.Kind() {
		return false
	}
	return ev.Text() == v.Text()
}

func enumValue(e any) document.Value {
	switch x := e.(type) {
	case nil:
		return document.Null()
	case string:
		return document.String(x)
	case bool:
		return document.Bool(x)
	case float64:
		return document.Float(x)
	case int64:
		return document.Int(x)
	case int:
		return document.Int(int64(x))
	default:
		return document.String(fmt.Sprint(x))
	}
}
