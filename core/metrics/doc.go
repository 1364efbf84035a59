// Package metrics defines the sinks that observe charging simulations. Every
// run produces a RunEvent; sinks that also implement TrajectoryRecorder
// receive the per-second samples. Concrete sinks (Prometheus, InfluxDB,
// MQTT) live in infra and register themselves by type name so they can be
// selected from configuration through NewMetricsSink.
package metrics
