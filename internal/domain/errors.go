package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoSourceImages  = errors.New("no source images")
	ErrTaskActive      = errors.New("task already running for product")
	ErrProviderFailure = errors.New("provider failure")
)
