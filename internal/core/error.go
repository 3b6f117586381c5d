// FILE: internal/core/error.go
package core

import "errors"

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidValue  = errors.New("invalid option value")
	ErrSearchActive  = errors.New("search already active")
	ErrNoSearch      = errors.New("no active search")
	ErrInvalidFEN    = errors.New("invalid FEN")
	ErrIllegalMove   = errors.New("illegal move")
)
