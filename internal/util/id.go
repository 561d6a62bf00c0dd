package util

import "github.com/google/uuid"

// NewID returns a fresh unique identifier used for run correlation in logs.
func NewID() string { return uuid.NewString() }
