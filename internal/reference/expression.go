package reference

import (
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/blueprint-graph/compiler/internal/blueprint"
	"github.com/blueprint-graph/compiler/internal/document"
)

// Expression is a string value holding at least one ${...} placeholder.
type Expression struct {
	Path   string
	Source string
	// Problem is the parser's complaint when the template is malformed.
	Problem string
	Refs    []Ref
}

// Ref is the root of a variable traversal, e.g. input.count -> {input, count}.
type Ref struct {
	Root string
	Name string
}

// Malformed reports whether the template failed to parse.
func (e Expression) Malformed() bool { return e.Problem != "" }

// Expressions walks the properties and flags of r and parses every string
// that contains a placeholder as a template.
func Expressions(r *blueprint.Resource) []Expression {
	var out []Expression
	walk(r.Properties, "properties", &out)
	for _, f := range r.Flags.Fields() {
		walk(f.Value, f.Key, &out)
	}
	return out
}

func walk(v document.Value, path string, out *[]Expression) {
	switch v.Kind() {
	case document.KindString:
		s, _ := v.Str()
		if strings.Contains(s, "${") {
			*out = append(*out, parseExpression(path, s))
		}
	case document.KindSequence:
		for i, item := range v.Items() {
			walk(item, path+"["+strconv.Itoa(i)+"]", out)
		}
	case document.KindMapping:
		for _, f := range v.Fields() {
			walk(f.Value, path+"."+f.Key, out)
		}
	}
}

func parseExpression(path, src string) Expression {
	e := Expression{Path: path, Source: src}
	expr, diags := hclsyntax.ParseTemplate([]byte(normalizeQuotes(src)), path, hcl.InitialPos)
	if diags.HasErrors() {
		e.Problem = firstError(diags)
		return e
	}
	seen := make(map[Ref]bool)
	for _, tr := range expr.Variables() {
		ref := Ref{Root: tr.RootName(), Name: stepName(tr)}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		e.Refs = append(e.Refs, ref)
	}
	return e
}

// normalizeQuotes rewrites single-quoted string literals inside ${...}
// placeholders as double-quoted ones. Text outside placeholders and
// double-quoted literals are copied unchanged.
func normalizeQuotes(src string) string {
	if !strings.Contains(src, "'") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src) + 8)
	depth := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		if depth == 0 {
			switch {
			case strings.HasPrefix(src[i:], "$${"):
				b.WriteString("$${")
				i += 2
			case strings.HasPrefix(src[i:], "${"):
				b.WriteString("${")
				depth = 1
				i++
			default:
				b.WriteByte(c)
			}
			continue
		}
		switch c {
		case '{':
			depth++
			b.WriteByte(c)
		case '}':
			depth--
			b.WriteByte(c)
		case '"':
			i = copyQuoted(&b, src, i)
		case '\'':
			i = rewriteQuoted(&b, src, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// copyQuoted copies the double-quoted literal starting at src[i] and returns
// the index of its closing quote.
func copyQuoted(b *strings.Builder, src string, i int) int {
	b.WriteByte('"')
	for i++; i < len(src); i++ {
		c := src[i]
		b.WriteByte(c)
		switch c {
		case '\\':
			if i+1 < len(src) {
				i++
				b.WriteByte(src[i])
			}
		case '"':
			return i
		}
	}
	return i
}

// rewriteQuoted writes the single-quoted literal starting at src[i] as a
// double-quoted one and returns the index of its closing quote.
func rewriteQuoted(b *strings.Builder, src string, i int) int {
	b.WriteByte('"')
	for i++; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\'':
			b.WriteByte('"')
			return i
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\' && i+1 < len(src) && src[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(src):
			b.WriteByte(c)
			i++
			b.WriteByte(src[i])
		case strings.HasPrefix(src[i:], "${"):
			b.WriteString("$${")
			i++
		default:
			b.WriteByte(c)
		}
	}
	return i
}

// stepName returns the first step after the root: an attribute name or a
// string index key.
func stepName(tr hcl.Traversal) string {
	if len(tr) < 2 {
		return ""
	}
	switch step := tr[1].(type) {
	case hcl.TraverseAttr:
		return step.Name
	case hcl.TraverseIndex:
		if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
			return step.Key.AsString()
		}
	}
	return ""
}

func firstError(diags hcl.Diagnostics) string {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if d.Detail != "" {
			return d.Summary + ": " + d.Detail
		}
		return d.Summary
	}
	return diags.Error()
}

// InputNames returns the distinct input names read by the expressions, in order.
func InputNames(exprs []Expression) []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range exprs {
		for _, ref := range e.Refs {
			if ref.Root != "input" || ref.Name == "" || seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	return names
}
