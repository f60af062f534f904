package schema

// -----------------------------------------------------------------------------
// Builders
// -----------------------------------------------------------------------------

// Object builds an object schema. Trailing names mark required properties.
//
// Example:
//
//	schema.Object(map[string]*schema.Property{
//	    "city":  schema.String("City name"),
//	    "units": schema.String("Unit system").Enum("metric", "imperial"),
//	}, "city")
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, p := range properties {
		props[name] = p.Map()
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// Property is a single property of an object schema, built fluently.
type Property struct {
	fields map[string]any
}

func newProperty(typ, description string) *Property {
	p := &Property{fields: map[string]any{"type": typ}}
	if description != "" {
		p.fields["description"] = description
	}
	return p
}

// Map returns the property as a schema map.
func (p *Property) Map() map[string]any {
	out := make(map[string]any, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

func (p *Property) set(key string, v any) *Property {
	p.fields[key] = v
	return p
}

// String creates a string property.
func String(description string) *Property { return newProperty("string", description) }

// Integer creates an integer property.
func Integer(description string) *Property { return newProperty("integer", description) }

// Number creates a floating point property.
func Number(description string) *Property { return newProperty("number", description) }

// Boolean creates a boolean property.
func Boolean(description string) *Property { return newProperty("boolean", description) }

// Array creates an array property whose elements match items.
//
// Example:
//
//	schema.Array("Tags", schema.String("").Map())
func Array(description string, items map[string]any) *Property {
	return newProperty("array", description).set("items", items)
}

// Enum restricts the property to the given values.
func (p *Property) Enum(values ...any) *Property { return p.set("enum", values) }

// Min sets the inclusive minimum of a numeric property.
func (p *Property) Min(v float64) *Property { return p.set("minimum", v) }

// Max sets the inclusive maximum of a numeric property.
func (p *Property) Max(v float64) *Property { return p.set("maximum", v) }

// MinLength sets the minimum length of a string property.
func (p *Property) MinLength(n int) *Property { return p.set("minLength", n) }

// MaxLength sets the maximum length of a string property.
func (p *Property) MaxLength(n int) *Property { return p.set("maxLength", n) }

// Pattern sets a regular expression a string property must match.
func (p *Property) Pattern(re string) *Property { return p.set("pattern", re) }

// Default documents the value assumed when the property is omitted. It is not
// applied during validation.
func (p *Property) Default(v any) *Property { return p.set("default", v) }
