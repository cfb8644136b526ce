// Package cli handles command-line argument parsing and translation into an
// app configuration.
package cli
