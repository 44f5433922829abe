// Package schema provides the immutable in-memory representation of a
// domain schema: named entities with typed fields plus an ordered list
// of expression constraints.
//
// # Overview
//
// A Schema is loaded once and shared by reference with the validator,
// the rejection sampler and the runtime gateway. It is never mutated
// after load; an "edit" is a reload producing a new Schema value.
// Entity and field iteration order is the insertion order of the source
// document, which deterministic downstream codegen consumers rely on.
//
// Two document formats are accepted:
//
//   - JSON Schema "definitions" documents, the format the toolchain's
//     schema emitter produces. The field-level vocabulary is type,
//     enum, minLength/maxLength and minimum/maximum.
//   - Native ontology documents (YAML or JSON) with entities, fields
//     and expression constraints.
//
// # Usage
//
//	s, err := schema.Load("person.schema.json")
//	if err != nil {
//	    var loadErr *schema.LoadError
//	    if errors.As(err, &loadErr) {
//	        log.Fatal(loadErr)
//	    }
//	}
//	for _, ent := range s.Entities() {
//	    fmt.Println(ent.Name(), ent.FieldNames())
//	}
//
// # Thread Safety
//
// A loaded Schema is read-only and safe for unrestricted concurrent
// access. The Watcher delivers replacement Schema values; swapping them
// into a consumer is the consumer's concern (the gateway uses an atomic
// pointer).
package schema
