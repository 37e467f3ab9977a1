// Package llm defines the text-completion contract used by the intent
// resolver. Provider adapters live in sub-packages and only translate the
// contract to a concrete HTTP API.
package llm
