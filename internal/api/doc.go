// Package api hosts the read-only HTTP server behind the serve command.
// Notable routes:
//   - GET /healthz / readyz for Kubernetes probes. readyz fails until a
//     dataset has been published to the configured output store.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/awards with optional year, category, rank and q filters.
//   - GET /v1/years and /v1/categories for navigation.
package api
