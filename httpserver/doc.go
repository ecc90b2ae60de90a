// Package httpserver exposes the product registry over HTTP.
//
// The server authenticates callers through the X-Registry-Caller header,
// optionally backed by a secp256k1 signature over the request body, maps
// registry errors to HTTP statuses and wire codes, and provides the usual
// operational endpoints (livez, readyz, drain, undrain, pprof) alongside a
// separate Prometheus metrics listener.
package httpserver
