// Package intent classifies chat messages into payment actions. A language
// model is consulted when configured; every failure on that path degrades to
// the deterministic keyword parser, so Resolve never returns an error.
package intent
