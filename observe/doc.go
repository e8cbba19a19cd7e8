// Package observe provides the telemetry primitives for todogate: a JSON
// structured logger with field redaction, OpenTelemetry tracing and metrics,
// and a Middleware that instruments an operation with all three.
//
// The package performs no I/O beyond exporter setup and log writes. Exporter
// construction lives in observe/exporters.
package observe
