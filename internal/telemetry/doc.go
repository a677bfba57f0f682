// Package telemetry owns the Prometheus collectors and the OpenTelemetry
// tracer provider shared by the HTTP server and the job worker.
package telemetry
