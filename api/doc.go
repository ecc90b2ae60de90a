// Package api defines the wire types and header conventions shared by the
// registry HTTP server and its clients.
package api
