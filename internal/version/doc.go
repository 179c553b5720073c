// Package version persists the cache-busting version token.
//
// The token is a plain integer kept in a small state file. Every planning run
// reads it, adds one and writes it back before any output references it, so
// consecutive runs always produce distinct asset URLs. A missing file stands
// for -1, which makes the first issued token 0.
package version
