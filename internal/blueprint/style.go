package blueprint

import (
	"strings"

	"github.com/blueprint-graph/compiler/internal/document"
)

// Category groups resource types into visual bands.
type Category string

const (
	CategoryNetwork  Category = "network"
	CategorySecurity Category = "security"
	CategoryMachine  Category = "machine"
	CategoryStorage  Category = "storage"
	CategoryOther    Category = "other"
)

var typeLabels = map[string]string{
	"Cloud.Machine":          "Machine",
	"Cloud.Network":          "Network",
	"Cloud.LoadBalancer":     "Load Balancer",
	"Cloud.vSphere.Machine":  "vSphere Machine",
	"Cloud.NSX.Network":      "NSX Network",
	"Cloud.AWS.EC2.Instance": "AWS EC2",
	"Cloud.Azure.Machine":    "Azure VM",
	"Cloud.GCP.Machine":      "GCP VM",
}

// categoryRules are checked in order; the first rule with a matching
// substring wins.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryNetwork, []string{"network"}},
	{CategorySecurity, []string{"security"}},
	{CategoryMachine, []string{"machine", "compute", "instance", "vm"}},
	{CategoryStorage, []string{"storage", "disk", "volume"}},
}

// Label returns the display label for a resource type.
func Label(resourceType string) string {
	if l, ok := typeLabels[resourceType]; ok {
		return l
	}
	return resourceType
}

// CategoryOf classifies a resource type by case-insensitive keyword match.
func CategoryOf(resourceType string) Category {
	t := strings.ToLower(resourceType)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}

// Label returns the display label of r.
func (r *Resource) Label() string { return Label(r.Type) }

// Category returns the visual category of r.
func (r *Resource) Category() Category { return CategoryOf(r.Type) }

// Constraints returns the tag strings of properties.constraints.
// Accepts a single string, or a list of strings and {tag: ...} mappings.
func (r *Resource) Constraints() []string {
	c, ok := r.Properties.Lookup("constraints")
	if !ok {
		return nil
	}
	if s, ok := c.Str(); ok {
		return []string{strings.TrimSpace(s)}
	}
	var tags []string
	for _, item := range c.Items() {
		if s, ok := item.Str(); ok {
			tags = append(tags, strings.TrimSpace(s))
			continue
		}
		if tag := document.GetStr(item, "tag"); tag != "" {
			tags = append(tags, strings.TrimSpace(tag))
		}
	}
	return tags
}
