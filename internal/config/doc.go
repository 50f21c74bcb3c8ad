// Package config loads application configuration from environment
// variables (prefix CARDS_) with an optional YAML file overlay.
//
// The remote favorites backend is configured through the Remote section;
// its absence (no token or repository) is a detected, valid state that
// makes the favorites store fall back to a local file, not an error.
package config
