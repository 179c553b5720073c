// Package bundle discovers the self-contained modules ("bundles") of a host
// project by walking its module root and recognizing directory segments that
// carry the module suffix convention, e.g. src/Acme/FooBundle.
package bundle
