// Package docs embeds the OpenAPI description of the HTTP API.
package docs

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 document served at /api/swagger.json.
//
//go:embed swagger.json
var SwaggerJSON []byte
