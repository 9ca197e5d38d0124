// Package server wires the sensorwatch components together and serves the
// dashboard API.
//
// The Server owns the shared store and the three background actors: the
// producer appending one reading per tick, the resetter replacing the dataset
// on its interval, and the validator classifying unlabeled readings. Run
// starts all of them plus the HTTP listener and blocks until the context is
// canceled; shutdown stops scheduling further ticks and lets in-flight cycles
// finish.
//
// The HTTP surface is read-only: GET /api/dashboard-data returns aggregate
// counts and the latest flagged anomalies, with /health and /health/ready for
// probes and an optional Prometheus /metrics endpoint. CORS is restricted to
// the configured dashboard origins.
package server
