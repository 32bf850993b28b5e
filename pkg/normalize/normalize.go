// Package normalize extracts a canonical schema string from the variant
// payload shapes different registry implementations return. Payloads are
// never mutated; extraction is a pure function over the decoded value.
package normalize

import "sort"

// Shape tags which known payload layout produced the extracted string.
type Shape int

const (
	// Unrecognized means no known layout matched.
	Unrecognized Shape = iota
	// DirectString is a bare schema string payload.
	DirectString
	// SchemaField is an object with a string "schema" field.
	SchemaField
	// SchemaStringField is an object with a string "schemaString" field.
	SchemaStringField
	// NestedSchemaField is an object whose "schema" field is itself an
	// object carrying a string "schema" field.
	NestedSchemaField
	// AltKeyField is an object with a string "definition" or "value" field.
	AltKeyField
	// RecursiveField means the string was found one level down inside an
	// object-valued property.
	RecursiveField
)

func (s Shape) String() string {
	switch s {
	case DirectString:
		return "direct"
	case SchemaField:
		return "schema"
	case SchemaStringField:
		return "schemaString"
	case NestedSchemaField:
		return "schema.schema"
	case AltKeyField:
		return "altKey"
	case RecursiveField:
		return "recursive"
	default:
		return "unrecognized"
	}
}

// Extract returns the canonical schema string found in payload, the shape
// that matched, and whether any shape matched at all. Callers treat a false
// return as skip-this-item, not as a fatal error.
//
// Shapes are tried in a fixed priority order; recursive descent into
// object-valued properties is capped at one level so cyclic or deeply
// nested payloads stay cheap.
func Extract(payload any) (string, Shape, bool) {
	if s, ok := payload.(string); ok {
		return s, DirectString, true
	}
	m, ok := payload.(map[string]any)
	if !ok {
		return "", Unrecognized, false
	}
	if s, shape, ok := extractFlat(m); ok {
		return s, shape, ok
	}
	// One level of descent through the remaining object-valued fields.
	// Keys are walked in sorted order so ties resolve deterministically.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		child, ok := m[k].(map[string]any)
		if !ok {
			continue
		}
		if s, _, ok := extractFlat(child); ok {
			return s, RecursiveField, true
		}
	}
	return "", Unrecognized, false
}

func extractFlat(m map[string]any) (string, Shape, bool) {
	if s, ok := m["schema"].(string); ok {
		return s, SchemaField, true
	}
	if s, ok := m["schemaString"].(string); ok {
		return s, SchemaStringField, true
	}
	if nested, ok := m["schema"].(map[string]any); ok {
		if s, ok := nested["schema"].(string); ok {
			return s, NestedSchemaField, true
		}
	}
	if s, ok := m["definition"].(string); ok {
		return s, AltKeyField, true
	}
	if s, ok := m["value"].(string); ok {
		return s, AltKeyField, true
	}
	return "", Unrecognized, false
}
