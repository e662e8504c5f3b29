// Package server exposes the HTTP trigger and health endpoints.
//
// The summarizer is normally driven by a scheduler hitting /run; /healthz
// and the Prometheus metrics endpoint exist for the machinery around it.
package server
