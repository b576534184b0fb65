// Package metrics exposes Prometheus instrumentation for the service:
// HTTP request counters and latency histograms, a device command
// counter, and a scrape-time collector reporting equipment counts by
// status straight from the database.
package metrics
