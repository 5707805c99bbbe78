package web

import "embed"

// staticFiles carries the admin and scanner pages so the binary is
// self-contained.
//
//go:embed static
var staticFiles embed.FS
