package serving

import "errors"

var (
	ErrGroupNotFound    = errors.New("serving group not found")
	ErrItemNotFound     = errors.New("serving item not found")
	ErrSauceNotFound    = errors.New("prep list entry not found")
	ErrInvalidGroup     = errors.New("invalid serving group")
	ErrInvalidItem      = errors.New("invalid serving item")
	ErrAlreadyCompleted = errors.New("serving group already completed")
	ErrGroupCompleted   = errors.New("serving group is completed")
)
