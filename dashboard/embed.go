// Package dashboard provides the embedded status page template for HostPulse.
//
// The page is an html/template rendered by the server package at "/". Embedding
// it enables single-binary deployment without external asset files.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the status page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - html/template for the status page and task board
//
//go:embed assets/*
var Assets embed.FS
