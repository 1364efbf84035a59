// Package infra contains the technical adapters around the simulator: the
// zerolog logger, the MQTT run publisher and the Prometheus and InfluxDB
// sinks. These packages depend only on interfaces defined in core.
package infra
