// Package config defines the YAML configuration surface and its
// loading pipeline: defaults, file, environment overrides, validation.
//
// Environment variables use the ONTOGUARD_SECTION_FIELD convention and
// always win over the file. Documents are unmarshalled over a fully
// defaulted value, so a key left out of the file keeps its default even
// when that default is true.
package config
