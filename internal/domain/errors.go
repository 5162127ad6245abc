package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrSettingsNotFound = errors.New("user settings not configured")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidListing   = errors.New("invalid listing")
	ErrRateLimited      = errors.New("rate limited")
	ErrDemoConflict     = errors.New("real data present, refusing to mix demo data")
)
