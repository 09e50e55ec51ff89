// Package ident generates the globally-unique identifiers embedded in
// configuration artifacts.
package ident

import "github.com/google/uuid"

// Generator produces a fresh identifier on every call.
//
// Values must be unique for the lifetime of a run; callers never reuse or
// compare them beyond equality.
type Generator interface {
	Next() string
}

// UUID is the production Generator. Every call returns a random (version 4)
// UUID in canonical lowercase form, the format the configuration loader
// expects.
type UUID struct{}

// Next returns a freshly generated UUID string.
func (UUID) Next() string {
	return uuid.NewString()
}
