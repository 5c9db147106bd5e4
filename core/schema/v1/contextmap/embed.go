package contextmap

import _ "embed"

// SchemaJSON is the bundled JSON Schema for the v1 context map wire format.
//
//go:embed contextmap.schema.json
var SchemaJSON []byte
