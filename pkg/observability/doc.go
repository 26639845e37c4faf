/*
Package observability exports Prometheus metrics for the content domain layer.

Metrics plugs into the components through domain.LifecycleHooks: remote request
counts and latencies come from the HTTP transport, workflow transitions from the
workflow engine, block saves and revisions from their stores.
*/
package observability
