// Package config loads the relay's runtime configuration once at process
// start. Values come from built-in defaults, an optional YAML/JSON file and
// well-known deployment environment variables, in that order of
// precedence. Components receive the resulting Config explicitly and never
// consult the environment themselves.
package config
