// Package schemas embeds the JSON Schemas for result and dataset files.
package schemas

import _ "embed"

// OutcomeSchemaJSON describes a single evaluation outcome.
//
//go:embed outcome.schema.json
var OutcomeSchemaJSON string

// RunFileSchemaJSON describes a {"run", "results"} result file.
//
//go:embed runfile.schema.json
var RunFileSchemaJSON string

// DatasetSchemaJSON describes a YAML or JSON dataset file.
//
//go:embed dataset.schema.json
var DatasetSchemaJSON string

// ConfigSchemaJSON describes the .promptlab.yaml project file.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
