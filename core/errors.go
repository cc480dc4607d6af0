package core

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrConsistency         = errors.New("list consistency violation")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
