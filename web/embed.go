// Package web embeds the built frontend assets.
package web

import "embed"

//go:embed dist
var DistFS embed.FS
