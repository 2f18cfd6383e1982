package result

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic type codes.
const (
	TypeParse      = "parse_error"
	TypeStructure  = "structure_error"
	TypeReference  = "reference_warning"
	TypeExpression = "expression_warning"
	TypeInput      = "input_warning"
	TypeSchema     = "schema_error"
	TypeSchemaWarn = "schema_warning"
	TypeDependency = "dependency_warning"
)

// Diagnostic is a single finding about a document. Resource is empty for
// document-level findings.
type Diagnostic struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Resource   string   `json:"resource,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// IsError reports whether d has error severity.
func (d Diagnostic) IsError() bool { return d.Severity == SeverityError }

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given severity.
func Count(ds []Diagnostic, sev Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// ForResource returns the diagnostics attached to the named resource.
func ForResource(ds []Diagnostic, name string) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		if d.Resource == name {
			out = append(out, d)
		}
	}
	return out
}
