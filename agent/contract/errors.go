package contract

import "errors"

var (
	ErrModelInvoke   = errors.New("model invoke failed")
	ErrValidation    = errors.New("validation failed")
	ErrTopicNotFound = errors.New("no policy information found")
	ErrStoreLocked   = errors.New("database locked after retries")
)
