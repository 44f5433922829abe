// Ontoguard is a schema-constrained generation and validation engine.
//
// It validates structured records against a declarative schema, drives
// a rejection sampling loop around an external generator, and serves as
// a runtime validation gateway in front of generation traffic.
//
// Usage:
//
//	# Start the gateway server
//	ontoguard serve --config config.yaml
//
//	# Validate a record against a schema
//	ontoguard validate --schema person.schema.json --record record.json
//
//	# Sample conforming records into a dataset
//	ontoguard sample --schema person.schema.json --prompt "Generate a person" --count 100
//
//	# Lint a schema document
//	ontoguard lint --file person.schema.json
//
//	# Show version information
//	ontoguard version
package main

func main() {
	Execute()
}
