// Package interfaces defines the core types, errors, and component contracts
// for the AuthentiEats product registry. It provides the vocabulary shared by
// the registry engine, the HTTP layer, and the snapshot storage backends
// without depending on any implementation.
package interfaces
