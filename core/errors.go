package core

import "errors"

var (
	ErrInvalidPin  = errors.New("core: invalid GPIO pin")
	ErrInvalidMode = errors.New("core: invalid GPIO function mode")
	ErrInvalidPull = errors.New("core: invalid GPIO pull setting")
	ErrInvalidBaud = errors.New("core: baud rate not representable by mini UART divisor")
)
