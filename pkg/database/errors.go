package database

import "errors"

// ErrOverrideNotFound is returned when no active override exists for an agent.
// Callers should treat it as "use the default prompt", not as a failure.
var ErrOverrideNotFound = errors.New("prompt override not found")

// ErrNoInteractions is returned when a metrics window contains no records
var ErrNoInteractions = errors.New("no interactions recorded in window")
