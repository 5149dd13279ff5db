// Package output renders command results as a table, JSON or YAML.
//
// Values that know how to lay themselves out implement Tabular; anything
// else is rendered by reflection (structs as FIELD/VALUE rows, slices of
// structs as one row per element).
package output
