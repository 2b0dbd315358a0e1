package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidArgument indicates that a nil or otherwise unusable argument was
// passed to an operation. It signals programmer error, not bad user data.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrEmptyInput indicates that the journal parser was given empty or blank text.
var ErrEmptyInput = errors.New("journal content is empty")

// ErrMalformedAmount indicates that a decimal token could not be parsed.
var ErrMalformedAmount = errors.New("malformed amount")

// ErrCommodityMismatch indicates arithmetic between amounts of different commodities.
var ErrCommodityMismatch = errors.New("commodity mismatch")
