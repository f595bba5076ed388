// Package assets embeds the static files of the web interface.
package assets

import _ "embed"

// IndexTemplate is the HTML page template; it receives CSS, JS and Attribution.
//
//go:embed index.html.tpl
var IndexTemplate string

// Style is the page stylesheet.
//
//go:embed style.css
var Style string

// Script is the page script.
//
//go:embed script.js
var Script string
