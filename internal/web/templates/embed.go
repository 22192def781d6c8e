// Package templates provides the embedded HTML pages of the wedding site.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
