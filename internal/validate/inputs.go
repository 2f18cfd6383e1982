package validate

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/blueprint-graph/compiler/internal/blueprint"
	"github.com/blueprint-graph/compiler/internal/document"
	"github.com/blueprint-graph/compiler/internal/result"
)

// inputTypes maps declared input types to the cty type a default must
// convert to. Collections only need the right shape.
var inputTypes = map[string]cty.Type{
	"string":  cty.String,
	"integer": cty.Number,
	"number":  cty.Number,
	"boolean": cty.Bool,
	"object":  cty.DynamicPseudoType,
	"array":   cty.DynamicPseudoType,
}

func checkInputs(bp *blueprint.Blueprint) []result.Diagnostic {
	var diags []result.Diagnostic
	warn := func(msg, suggestion string) {
		diags = append(diags, result.Diagnostic{
			Type: result.TypeInput, Severity: result.SeverityWarning,
			Message: msg, Suggestion: suggestion,
		})
	}

	for _, in := range bp.Inputs {
		if !in.Body.IsMapping() && !in.Body.IsNull() {
			warn(fmt.Sprintf("input %s must be a mapping, got %s", in.Name, in.Body.Kind()), "")
			continue
		}
		want, known := inputTypes[in.Type]
		if in.Type != "" && !known {
			warn(fmt.Sprintf("input %s has unknown type %s", in.Name, in.Type),
				"Use string, integer, number, boolean, object or array")
		}
		if !in.HasDefault || in.Default.IsNull() {
			continue
		}
		if known {
			if problem := defaultProblem(in.Type, want, in.Default); problem != "" {
				warn(fmt.Sprintf("default of input %s %s", in.Name, problem), "")
			}
		}
		if len(in.Enum) > 0 && !inEnum(in.Default, in.Enum) {
			warn(fmt.Sprintf("default of input %s is not one of its enum values", in.Name), "")
		}
	}
	return diags
}

// defaultProblem describes why def does not fit the declared input type, or
// returns "" when it does.
func defaultProblem(typeName string, want cty.Type, def document.Value) string {
	switch typeName {
	case "object":
		if !def.IsMapping() {
			return "is not an object"
		}
		return ""
	case "array":
		if !def.IsSequence() {
			return "is not an array"
		}
		return ""
	}

	got, err := convert.Convert(ctyValue(def), want)
	if err != nil {
		return "cannot be used as " + typeName + ": " + err.Error()
	}
	if typeName == "integer" && got.IsKnown() && !got.AsBigFloat().IsInt() {
		return "is not a whole number"
	}
	return ""
}

func inEnum(v document.Value, enum []document.Value) bool {
	for _, e := range enum {
		if e.Kind() == v.Kind() && e.Text() == v.Text() {
			return true
		}
		ef, ok1 := e.FloatValue()
		vf, ok2 := v.FloatValue()
		if ok1 && ok2 && ef == vf {
			return true
		}
	}
	return false
}

// ctyValue converts a document value to cty. NaN has no cty form and
// becomes an unknown number.
func ctyValue(v document.Value) cty.Value {
	switch v.Kind() {
	case document.KindBool:
		b, _ := v.BoolValue()
		return cty.BoolVal(b)
	case document.KindInt:
		i, _ := v.IntValue()
		return cty.NumberIntVal(i)
	case document.KindFloat:
		f, _ := v.FloatValue()
		if math.IsNaN(f) {
			return cty.UnknownVal(cty.Number)
		}
		return cty.NumberFloatVal(f)
	case document.KindString:
		s, _ := v.Str()
		return cty.StringVal(s)
	case document.KindSequence:
		items := v.Items()
		if len(items) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, len(items))
		for i, item := range items {
			vals[i] = ctyValue(item)
		}
		return cty.TupleVal(vals)
	case document.KindMapping:
		fields := v.Fields()
		if len(fields) == 0 {
			return cty.EmptyObjectVal
		}
		attrs := make(map[string]cty.Value, len(fields))
		for _, f := range fields {
			attrs[f.Key] = ctyValue(f.Value)
		}
		return cty.ObjectVal(attrs)
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}
