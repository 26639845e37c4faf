// Package client is the schema-validated gateway to the remote graph store.
//
// Every outbound payload is checked against the registry before it leaves
// the process, and every response is checked on the way back. Failures are
// reported with the domain error taxonomy: *domain.SchemaError for shape
// problems, *domain.RemoteError for anything the store (or the network)
// refused, *domain.PolicyError for mutations of system entities.
//
// The client is stateless apart from its configuration and is safe for
// concurrent use.
package client
