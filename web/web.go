// Package web embeds the storefront page, its static assets and the default
// catalog document.
package web

import (
	"embed"
	"io/fs"
)

//go:embed products.json
var Catalog []byte

//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var static embed.FS

// Static returns the static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
