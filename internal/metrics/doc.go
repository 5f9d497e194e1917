// Package metrics records build pass observations.
//
// Components receive a Recorder; NoopRecorder is the default so callers never
// check for nil. PrometheusRecorder backs the interface with client_golang
// collectors on a private registry, and WriteTextfile exports the registry in
// the node_exporter textfile format after a pass.
package metrics
