// Package app contains the core application logic. It wires configuration
// loading, bundle discovery, classification, version stamping and planning
// into a single run, decoupled from any specific entrypoint like a CLI.
package app
