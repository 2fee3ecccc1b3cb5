package repository

import "errors"

var (
	ErrRunNotFound = errors.New("match run not found")
)

// ListOptions contains pagination options
type ListOptions struct {
	Limit  int
	Offset int
}

const createBatchSize = 500
