// Package script loads sequencer scripts from YAML or JSON files and
// provides the built-in default script.
package script
