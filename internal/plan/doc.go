// Package plan assembles the build plan: the dependency-ordered list of steps
// an external executor runs to turn bundle sources into deployable assets.
//
// # Assembly
//
// Each bundle is planned in isolation from its file manifest. Steps are only
// created for asset classes that have files, so a disabled or empty class
// drops every step derived from it. Only the copy step is emitted for every
// bundle. A bundle whose sub-plan turns out inconsistent is dropped with an
// *InconsistencyError and the remaining bundles are still planned.
//
// Accepted steps are registered in a topologystore.Store, which yields the
// final order and rejects cycles.
//
// # Serialization
//
// A Plan is written as a JSON Document. Steps appear in topological order;
// per-bundle errors are listed as messages.
package plan
