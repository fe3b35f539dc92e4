// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema.
//
// DecodeMap runs the usual three steps: compile the schema, compile and
// unify the user document with a schema definition, then validate and decode.
// Validation failures come back as *SchemaError values whose problems are
// prefixed with a JSON-style path such as "endpoints.nugetorg.auth".
//
//	//go:embed config_schema.cue
//	var schema string
//
//	values, err := cueutil.DecodeMap(schema, "#Config", data, "config.cue", cueutil.DefaultMaxFileSize)
package cueutil
