// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags and environment defaults into an app.Config and prints
// the outcome of a planning run.
package cli
