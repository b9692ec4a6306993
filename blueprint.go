package fixtures

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AttributeDescriptor describes one declared attribute path and its
// inferred value form.
type AttributeDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Blueprint is a serialisable summary of what a factory declares: the target
// kind, the statically declared attributes, whether lazy producers
// contribute further attributes at create time, and the defined states.
type Blueprint struct {
	Kind       string                `json:"kind"`
	Attributes []AttributeDescriptor `json:"attributes"`
	Dynamic    bool                  `json:"dynamic,omitempty"`
	States     []string              `json:"states,omitempty"`
}

// Blueprint derives the factory's blueprint from its static declarations.
// Producer declarations are not invoked; their contribution is reported via
// the Dynamic flag.
func (f *Factory[T]) Blueprint() Blueprint {
	bp := Blueprint{
		Kind:       f.Kind(),
		Attributes: []AttributeDescriptor{},
		States:     f.States(),
	}
	merged := Attributes{}
	for _, entry := range f.decls {
		switch decl := entry.decl.(type) {
		case Attributes:
			for key, value := range decl {
				canonical, _ := splitDirectives(key)
				merged[canonical] = value
			}
		case Producer:
			bp.Dynamic = true
		}
	}
	bp.Attributes = deriveAttributeDescriptors(merged, "")
	if bp.Attributes == nil {
		bp.Attributes = []AttributeDescriptor{}
	}
	return bp
}

// ToJSON renders the blueprint as indented JSON.
func (bp Blueprint) ToJSON() ([]byte, error) {
	return json.MarshalIndent(bp, "", "  ")
}

func deriveAttributeDescriptors(value any, prefix string) []AttributeDescriptor {
	switch typed := value.(type) {
	case Attributes:
		return deriveAttributeDescriptors(map[string]any(typed), prefix)
	case map[string]any:
		if len(typed) == 0 {
			if prefix == "" {
				return nil
			}
			return []AttributeDescriptor{{Path: prefix, Type: "map[string]any"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var descriptors []AttributeDescriptor
		for _, key := range keys {
			descriptors = append(descriptors, deriveAttributeDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return descriptors
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = attributeTypeName(typed[0])
		}
		return []AttributeDescriptor{{Path: prefix, Type: "[]" + elementType}}
	default:
		if prefix == "" {
			return nil
		}
		return []AttributeDescriptor{{Path: prefix, Type: attributeTypeName(typed)}}
	}
}

// attributeTypeName names the declared value form rather than the concrete
// value it will resolve to.
func attributeTypeName(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case Value:
		return "value"
	case Expression:
		return "expression"
	case anyFactory:
		return "factory"
	case anyProxy:
		return "proxy"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
