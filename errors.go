package authsession

import "errors"

var (
	// ErrInvalidConfig is wrapped by every [Config.Validate] failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrBuilderUsed is returned by a second [Builder.Build].
	ErrBuilderUsed = errors.New("builder already used")
	// ErrRedisRequired is returned when the redis backend has no client and no address.
	ErrRedisRequired = errors.New("redis backend requires an address or a client")
)
