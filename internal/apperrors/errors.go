package apperrors

import "errors"

// ErrNetwork indicates the remote rate service could not be reached or answered badly.
var ErrNetwork = errors.New("network error")

// ErrCache indicates the local rate cache is unreadable or corrupt.
var ErrCache = errors.New("cache error")

// ErrCacheEmpty indicates the cache was read fine but holds no rates yet.
var ErrCacheEmpty = errors.New("cache is empty")

// ErrNotFound indicates a currency code is not part of the working set.
var ErrNotFound = errors.New("currency not found")

// ErrInvariant indicates incoming data broke a list invariant (duplicate code, bad rate).
var ErrInvariant = errors.New("invariant violation")
