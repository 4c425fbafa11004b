package http

import _ "embed"

// Minimal client served at /app: login/signup/notes screens backed by the
// JSON API. Deliberately a single static page.
//
//go:embed web/index.html
var appPage []byte
