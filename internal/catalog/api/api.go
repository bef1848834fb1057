// Package api embeds the catalog OpenAPI document.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
