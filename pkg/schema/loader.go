package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a schema document from disk. Both JSON Schema
// "definitions" documents and native ontology documents (YAML or JSON)
// are accepted; the format is detected from the document's top-level
// keys, not the file extension.
//
// Documents are decoded through yaml.v3 nodes so that entity and field
// iteration order matches the document. JSON is parsed by the same path
// (every JSON document is a valid YAML document).
func Load(path string) (*Schema, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, loadErrf(path, "unsupported schema file format %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "cannot read schema document", Cause: err}
	}

	s, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	s.sourcePath = path
	return s, nil
}

// Parse parses schema document bytes. The path is used for error
// reporting and as the fallback schema name; it may be empty.
func Parse(data []byte, path string) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Reason: "malformed schema document", Cause: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, loadErrf(path, "empty schema document")
	}

	root := doc.Content[0]
	entries, err := mappingEntries(root)
	if err != nil {
		return nil, loadErrf(path, "top-level document must be an object: %v", err)
	}

	byKey := make(map[string]*yaml.Node, len(entries))
	for _, e := range entries {
		byKey[e.key] = e.value
	}

	switch {
	case byKey["definitions"] != nil:
		return parseDefinitionsDoc(path, byKey)
	case byKey["entities"] != nil:
		return parseOntologyDoc(path, byKey)
	default:
		return nil, loadErrf(path, `document has neither "definitions" nor "entities"`)
	}
}

// mapEntry is one ordered key/value pair of a YAML mapping node.
type mapEntry struct {
	key   string
	value *yaml.Node
}

// mappingEntries returns the entries of a mapping node in document order.
func mappingEntries(n *yaml.Node) ([]mapEntry, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping, got %s at line %d", kindName(n.Kind), n.Line)
	}
	entries := make([]mapEntry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var key string
		if err := n.Content[i].Decode(&key); err != nil {
			return nil, fmt.Errorf("non-scalar mapping key at line %d", n.Content[i].Line)
		}
		entries = append(entries, mapEntry{key: key, value: n.Content[i+1]})
	}
	return entries, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// parseDefinitionsDoc parses a JSON Schema document of the shape the
// toolchain's schema emitter produces: a "definitions" object mapping
// entity names to object schemas with "properties", "required" and
// "additionalProperties": false.
func parseDefinitionsDoc(path string, byKey map[string]*yaml.Node) (*Schema, error) {
	name := docName(path, byKey, "title")

	defEntries, err := mappingEntries(byKey["definitions"])
	if err != nil {
		return nil, loadErrf(path, `"definitions" must be an object: %v`, err)
	}

	entities := make([]*EntitySpec, 0, len(defEntries))
	for _, def := range defEntries {
		ent, err := parseDefinitionEntity(path, def.key, def.value)
		if err != nil {
			return nil, err
		}
		entities = append(entities, ent)
	}

	constraints, err := parseConstraints(path, byKey["constraints"])
	if err != nil {
		return nil, err
	}

	s, err := New(name, entities, constraints)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: err.Error(), Cause: err}
	}
	return s, nil
}

// parseDefinitionEntity parses one entity definition.
func parseDefinitionEntity(path, name string, node *yaml.Node) (*EntitySpec, error) {
	entries, err := mappingEntries(node)
	if err != nil {
		return nil, loadErrf(path, "definition %q must be an object: %v", name, err)
	}

	var propsNode *yaml.Node
	required := make(map[string]bool)
	for _, e := range entries {
		switch e.key {
		case "properties":
			propsNode = e.value
		case "required":
			var names []string
			if err := e.value.Decode(&names); err != nil {
				return nil, loadErrf(path, "definition %q: invalid required list: %v", name, err)
			}
			for _, n := range names {
				required[n] = true
			}
		}
	}

	propEntries, err := mappingEntries(propsNode)
	if err != nil {
		return nil, loadErrf(path, "definition %q: properties must be an object: %v", name, err)
	}

	order := make([]string, 0, len(propEntries))
	fields := make(map[string]FieldSpec, len(propEntries))
	for _, prop := range propEntries {
		spec, err := parseJSONSchemaField(path, name, prop.key, prop.value)
		if err != nil {
			return nil, err
		}
		spec.Required = required[prop.key]
		order = append(order, prop.key)
		fields[prop.key] = spec
	}

	ent, err := NewEntitySpec(name, order, fields)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: err.Error(), Cause: err}
	}
	return ent, nil
}

// parseJSONSchemaField maps a JSON Schema fragment onto a FieldSpec.
// The recognized field-level vocabulary is type, enum, minLength,
// maxLength, minimum and maximum.
func parseJSONSchemaField(path, entity, field string, node *yaml.Node) (FieldSpec, error) {
	entries, err := mappingEntries(node)
	if err != nil {
		return FieldSpec{}, loadErrf(path, "entity %q field %q must be an object: %v", entity, field, err)
	}

	var spec FieldSpec
	var typeName string
	var itemsNode *yaml.Node

	for _, e := range entries {
		switch e.key {
		case "type":
			if err := e.value.Decode(&typeName); err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid type: %v", entity, field, err)
			}
		case "enum":
			if err := e.value.Decode(&spec.Enum); err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid enum: %v", entity, field, err)
			}
		case "minimum":
			v, err := decodeFloat(e.value)
			if err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid minimum: %v", entity, field, err)
			}
			if spec.Range == nil {
				spec.Range = &Range{}
			}
			spec.Range.Min = &v
		case "maximum":
			v, err := decodeFloat(e.value)
			if err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid maximum: %v", entity, field, err)
			}
			if spec.Range == nil {
				spec.Range = &Range{}
			}
			spec.Range.Max = &v
		case "minLength":
			v, err := decodeInt(e.value)
			if err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid minLength: %v", entity, field, err)
			}
			spec.MinLength = &v
		case "maxLength":
			v, err := decodeInt(e.value)
			if err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid maxLength: %v", entity, field, err)
			}
			spec.MaxLength = &v
		case "items":
			itemsNode = e.value
		case "default":
			var def any
			if err := e.value.Decode(&def); err == nil {
				spec.Default = def
			}
		}
	}

	// Enum fields are always strings; the emitter drops the explicit
	// type on enum fields.
	if len(spec.Enum) > 0 && typeName == "" {
		typeName = "string"
	}

	switch typeName {
	case "string":
		spec.Type = TypeString
	case "integer":
		spec.Type = TypeInt
	case "number":
		spec.Type = TypeFloat
	case "boolean":
		spec.Type = TypeBool
	case "array":
		spec.Type = TypeList
		elem, err := parseArrayItems(path, entity, field, itemsNode)
		if err != nil {
			return FieldSpec{}, err
		}
		spec.Elem = elem
	default:
		return FieldSpec{}, loadErrf(path, "entity %q field %q: unsupported type %q", entity, field, typeName)
	}

	return spec, nil
}

// parseArrayItems resolves the element type of an array field.
func parseArrayItems(path, entity, field string, items *yaml.Node) (PrimitiveType, error) {
	if items == nil {
		return "", loadErrf(path, "entity %q field %q: array field missing items", entity, field)
	}
	entries, err := mappingEntries(items)
	if err != nil {
		return "", loadErrf(path, "entity %q field %q: invalid items: %v", entity, field, err)
	}
	for _, e := range entries {
		if e.key != "type" {
			continue
		}
		var typeName string
		if err := e.value.Decode(&typeName); err != nil {
			return "", loadErrf(path, "entity %q field %q: invalid items type: %v", entity, field, err)
		}
		switch typeName {
		case "string":
			return TypeString, nil
		case "integer":
			return TypeInt, nil
		case "number":
			return TypeFloat, nil
		case "boolean":
			return TypeBool, nil
		default:
			return "", loadErrf(path, "entity %q field %q: unsupported items type %q", entity, field, typeName)
		}
	}
	return "", loadErrf(path, "entity %q field %q: array items missing type", entity, field)
}

// parseOntologyDoc parses the native ontology document format:
// entities mapping field names to specs, plus optional expression
// constraints.
func parseOntologyDoc(path string, byKey map[string]*yaml.Node) (*Schema, error) {
	name := docName(path, byKey, "name")

	entEntries, err := mappingEntries(byKey["entities"])
	if err != nil {
		return nil, loadErrf(path, `"entities" must be an object: %v`, err)
	}

	entities := make([]*EntitySpec, 0, len(entEntries))
	for _, ent := range entEntries {
		parsed, err := parseOntologyEntity(path, ent.key, ent.value)
		if err != nil {
			return nil, err
		}
		entities = append(entities, parsed)
	}

	constraints, err := parseConstraints(path, byKey["constraints"])
	if err != nil {
		return nil, err
	}

	s, err := New(name, entities, constraints)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: err.Error(), Cause: err}
	}
	return s, nil
}

// parseOntologyEntity parses one entity from the native format.
func parseOntologyEntity(path, name string, node *yaml.Node) (*EntitySpec, error) {
	entries, err := mappingEntries(node)
	if err != nil {
		return nil, loadErrf(path, "entity %q must be an object: %v", name, err)
	}

	var fieldsNode *yaml.Node
	for _, e := range entries {
		if e.key == "fields" {
			fieldsNode = e.value
		}
	}

	fieldEntries, err := mappingEntries(fieldsNode)
	if err != nil {
		return nil, loadErrf(path, "entity %q: fields must be an object: %v", name, err)
	}

	order := make([]string, 0, len(fieldEntries))
	fields := make(map[string]FieldSpec, len(fieldEntries))
	for _, fe := range fieldEntries {
		spec, err := parseOntologyField(path, name, fe.key, fe.value)
		if err != nil {
			return nil, err
		}
		order = append(order, fe.key)
		fields[fe.key] = spec
	}

	ent, err := NewEntitySpec(name, order, fields)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: err.Error(), Cause: err}
	}
	return ent, nil
}

// parseOntologyField parses a native field spec. The value is either a
// bare type string ("age: int") or a mapping with type, enum, range,
// required and default keys. Fields are required unless the document
// says otherwise.
func parseOntologyField(path, entity, field string, node *yaml.Node) (FieldSpec, error) {
	spec := FieldSpec{Required: true}

	if node.Kind == yaml.ScalarNode {
		var typeName string
		if err := node.Decode(&typeName); err != nil {
			return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid type: %v", entity, field, err)
		}
		t, elem, err := parsePrimitive(typeName)
		if err != nil {
			return FieldSpec{}, loadErrf(path, "entity %q field %q: %v", entity, field, err)
		}
		spec.Type, spec.Elem = t, elem
		return spec, nil
	}

	entries, err := mappingEntries(node)
	if err != nil {
		return FieldSpec{}, loadErrf(path, "entity %q field %q must be a type or an object: %v", entity, field, err)
	}

	var typeName string
	for _, e := range entries {
		switch e.key {
		case "type":
			if err := e.value.Decode(&typeName); err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid type: %v", entity, field, err)
			}
		case "enum":
			if err := e.value.Decode(&spec.Enum); err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid enum: %v", entity, field, err)
			}
		case "range":
			var bounds []float64
			if err := e.value.Decode(&bounds); err != nil || len(bounds) != 2 {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: range must be [min, max]", entity, field)
			}
			lo, hi := bounds[0], bounds[1]
			spec.Range = &Range{Min: &lo, Max: &hi}
		case "minLength":
			v, err := decodeInt(e.value)
			if err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid minLength: %v", entity, field, err)
			}
			spec.MinLength = &v
		case "maxLength":
			v, err := decodeInt(e.value)
			if err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid maxLength: %v", entity, field, err)
			}
			spec.MaxLength = &v
		case "required":
			if err := e.value.Decode(&spec.Required); err != nil {
				return FieldSpec{}, loadErrf(path, "entity %q field %q: invalid required flag: %v", entity, field, err)
			}
		case "default":
			var def any
			if err := e.value.Decode(&def); err == nil {
				spec.Default = def
			}
		}
	}

	t, elem, err := parsePrimitive(typeName)
	if err != nil {
		return FieldSpec{}, loadErrf(path, "entity %q field %q: %v", entity, field, err)
	}
	spec.Type, spec.Elem = t, elem
	return spec, nil
}

// parsePrimitive resolves a native type name against the fixed
// primitive set, including the list[T] spelling.
func parsePrimitive(name string) (PrimitiveType, PrimitiveType, error) {
	switch name {
	case "string":
		return TypeString, "", nil
	case "int":
		return TypeInt, "", nil
	case "float":
		return TypeFloat, "", nil
	case "bool":
		return TypeBool, "", nil
	}
	if strings.HasPrefix(name, "list[") && strings.HasSuffix(name, "]") {
		inner := name[len("list[") : len(name)-1]
		switch inner {
		case "string":
			return TypeList, TypeString, nil
		case "int":
			return TypeList, TypeInt, nil
		case "float":
			return TypeList, TypeFloat, nil
		case "bool":
			return TypeList, TypeBool, nil
		}
		return "", "", fmt.Errorf("unsupported list element type %q", inner)
	}
	return "", "", fmt.Errorf("unsupported type %q", name)
}

// parseConstraints parses the optional constraints list. Both "expr"
// (native) and "expression" spellings are accepted.
func parseConstraints(path string, node *yaml.Node) ([]Constraint, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, loadErrf(path, `"constraints" must be a list`)
	}

	out := make([]Constraint, 0, len(node.Content))
	for i, item := range node.Content {
		entries, err := mappingEntries(item)
		if err != nil {
			return nil, loadErrf(path, "constraint %d must be an object: %v", i, err)
		}
		var c Constraint
		for _, e := range entries {
			switch e.key {
			case "expr", "expression":
				if err := e.value.Decode(&c.Expression); err != nil {
					return nil, loadErrf(path, "constraint %d: invalid expression: %v", i, err)
				}
			case "message":
				if err := e.value.Decode(&c.Message); err != nil {
					return nil, loadErrf(path, "constraint %d: invalid message: %v", i, err)
				}
			case "severity":
				var sev string
				if err := e.value.Decode(&sev); err != nil {
					return nil, loadErrf(path, "constraint %d: invalid severity: %v", i, err)
				}
				switch Severity(sev) {
				case SeverityError, SeverityWarning, SeverityInfo:
					c.Severity = Severity(sev)
				default:
					return nil, loadErrf(path, "constraint %d: unknown severity %q", i, sev)
				}
			}
		}
		if strings.TrimSpace(c.Expression) == "" {
			return nil, loadErrf(path, "constraint %d: empty expression", i)
		}
		if c.Severity == "" {
			c.Severity = SeverityError
		}
		out = append(out, c)
	}
	return out, nil
}

// docName resolves the schema name from the named key, the "name" key,
// or the file stem.
func docName(path string, byKey map[string]*yaml.Node, preferred string) string {
	for _, key := range []string{preferred, "name"} {
		if n := byKey[key]; n != nil {
			var name string
			if err := n.Decode(&name); err == nil && name != "" {
				return name
			}
		}
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, ".schema")
	if base == "" || base == "." {
		return "schema"
	}
	return base
}

func decodeFloat(n *yaml.Node) (float64, error) {
	var v float64
	if err := n.Decode(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func decodeInt(n *yaml.Node) (int, error) {
	var v int
	if err := n.Decode(&v); err != nil {
		return 0, err
	}
	return v, nil
}
