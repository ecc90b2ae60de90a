// Package common holds project-wide constants and the logger setup shared by
// all binaries.
package common

// PackageName tags logs and metrics emitted by this project.
const PackageName = "authentieats-registry"

// Version is set at build time via -ldflags.
var Version = "dev"
