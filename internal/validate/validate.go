package validate

import (
	"fmt"
	"strings"

	"github.com/blueprint-graph/compiler/internal/blueprint"
	"github.com/blueprint-graph/compiler/internal/dependency"
	"github.com/blueprint-graph/compiler/internal/document"
	"github.com/blueprint-graph/compiler/internal/reference"
	"github.com/blueprint-graph/compiler/internal/registry"
	"github.com/blueprint-graph/compiler/internal/result"
)

// Validate checks an extracted blueprint against the type registry and
// returns every finding, never stopping at the first. Order is stable:
// document-level shape and input checks, then each resource in declaration
// order, then dependency cycles. A nil registry means registry.Default.
func Validate(bp *blueprint.Blueprint, reg *registry.Registry) []result.Diagnostic {
	if reg == nil {
		reg = registry.Default
	}
	var diags []result.Diagnostic

	for _, issue := range bp.Issues {
		if issue.Resource == "" {
			diags = append(diags, structureError(issue))
		}
	}
	diags = append(diags, checkInputs(bp)...)

	for i := range bp.Resources {
		diags = append(diags, checkResource(bp, &bp.Resources[i], reg)...)
	}

	for _, cycle := range dependency.Cycles(bp.Names(), dependency.Build(bp)) {
		diags = append(diags, result.Diagnostic{
			Type: result.TypeDependency, Severity: result.SeverityWarning,
			Message:    "dependency cycle between " + strings.Join(cycle, ", "),
			Suggestion: "Remove a dependsOn entry or resource reference to break the cycle",
		})
	}
	return diags
}

func structureError(issue blueprint.Issue) result.Diagnostic {
	return result.Diagnostic{
		Type: result.TypeStructure, Severity: result.SeverityError, Resource: issue.Resource,
		Message: issue.Message,
	}
}

func checkResource(bp *blueprint.Blueprint, r *blueprint.Resource, reg *registry.Registry) []result.Diagnostic {
	var diags []result.Diagnostic

	for _, issue := range bp.Issues {
		if issue.Resource == r.Name {
			diags = append(diags, structureError(issue))
		}
	}

	// 1. references to undeclared resources
	for _, name := range missingReferences(bp, r) {
		diags = append(diags, result.Diagnostic{
			Type: result.TypeReference, Severity: result.SeverityWarning, Resource: r.Name,
			Message:    "references missing resource " + name,
			Suggestion: "Declare resource " + name + " or fix the reference",
		})
	}

	// 2. expressions
	exprs := reference.Expressions(r)
	for _, e := range exprs {
		if e.Malformed() {
			diags = append(diags, result.Diagnostic{
				Type: result.TypeExpression, Severity: result.SeverityWarning, Resource: r.Name,
				Message: fmt.Sprintf("malformed expression in %s: %s", e.Path, e.Problem),
			})
		}
	}
	for _, name := range reference.InputNames(exprs) {
		if bp.Input(name) == nil {
			diags = append(diags, result.Diagnostic{
				Type: result.TypeInput, Severity: result.SeverityWarning, Resource: r.Name,
				Message:    "references undeclared input " + name,
				Suggestion: "Declare " + name + " under inputs",
			})
		}
	}

	// 3. dependsOn shape
	if _, ok := r.DependsOn(); !ok {
		diags = append(diags, result.Diagnostic{
			Type: result.TypeSchemaWarn, Severity: result.SeverityWarning, Resource: r.Name,
			Message:    "dependsOn must be a resource name or a list of resource names",
			Suggestion: "Use dependsOn: [OtherResource]",
		})
	}

	// 4. type lookup
	def, ok := reg.Get(r.Type)
	if !ok {
		msg := "unknown resource type " + r.Type
		if !r.HasType {
			msg = "resource has no type"
		}
		return append(diags, result.Diagnostic{
			Type: result.TypeSchemaWarn, Severity: result.SeverityWarning, Resource: r.Name,
			Message: msg, Suggestion: "Set type to a registered resource type (e.g. Cloud.Machine)",
		})
	}
	props := r.Properties

	// 5. required properties
	for _, name := range def.Required {
		if !props.Has(name) {
			diags = append(diags, result.Diagnostic{
				Type: result.TypeSchema, Severity: result.SeverityError, Resource: r.Name,
				Message:    fmt.Sprintf("missing required property %s for type %s", name, def.Name),
				Suggestion: "Set properties." + name,
			})
		}
	}

	// 6. one-of groups
	if !def.OneOfSatisfied(props) {
		diags = append(diags, result.Diagnostic{
			Type: result.TypeSchema, Severity: result.SeverityError, Resource: r.Name,
			Message:    fmt.Sprintf("type %s requires one of: %s", def.Name, def.OneOfText()),
			Suggestion: "Set every property of one of the groups",
		})
	}

	// 7. unknown properties
	for _, key := range props.Keys() {
		if !def.HasProperty(key) {
			diags = append(diags, result.Diagnostic{
				Type: result.TypeSchemaWarn, Severity: result.SeverityWarning, Resource: r.Name,
				Message: fmt.Sprintf("unknown property %s for type %s", key, def.Name),
			})
		}
	}

	// 8. enumerated values
	for _, f := range props.Fields() {
		schema, ok := def.Property(f.Key)
		if !ok || len(schema.Enum) == 0 || !literal(f.Value) || schema.Allows(f.Value) {
			continue
		}
		diags = append(diags, result.Diagnostic{
			Type: result.TypeSchema, Severity: result.SeverityError, Resource: r.Name,
			Message:    fmt.Sprintf("invalid value %s for property %s", f.Value.Text(), f.Key),
			Suggestion: "Use one of: " + schema.EnumText(),
		})
	}

	return diags
}

// missingReferences returns undeclared names used by r through placeholders
// or dependsOn, each once, placeholders first.
func missingReferences(bp *blueprint.Blueprint, r *blueprint.Resource) []string {
	var missing []string
	seen := make(map[string]bool)
	add := func(name string) {
		if bp.Has(name) || seen[name] {
			return
		}
		seen[name] = true
		missing = append(missing, name)
	}
	for _, name := range reference.Names(r) {
		add(name)
	}
	deps, _ := r.DependsOn()
	for _, name := range deps {
		add(name)
	}
	return missing
}

// literal reports whether v is a scalar known before deployment.
func literal(v document.Value) bool {
	switch v.Kind() {
	case document.KindSequence, document.KindMapping, document.KindNull:
		return false
	case document.KindString:
		s, _ := v.Str()
		return !strings.Contains(s, "${")
	default:
		return true
	}
}
