// Package report renders chain search results as text, JSON or YAML and
// reads the machine-readable forms back for re-validation.
package report
