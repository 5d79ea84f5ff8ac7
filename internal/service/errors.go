package service

import "errors"

var (
	ErrTextEmpty       = errors.New("text is required")
	ErrMemoryNotFound  = errors.New("memory not found")
	ErrThreadIDMissing = errors.New("thread_id is required")
	ErrInvalidTrust    = errors.New("trust must be between 0 and 1")
	ErrInvalidMode     = errors.New("mode must be strict or permissive")
	ErrInvalidSource   = errors.New("invalid memory source")
)
