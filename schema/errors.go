package schema

import "errors"

// ErrInvalidBucketSize is returned by both engines when a fixed bucket size is not positive.
var ErrInvalidBucketSize = errors.New("bucket size must be positive")
