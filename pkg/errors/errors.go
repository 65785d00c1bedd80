package errors

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Code is the type representing a ledger result code.
type Code struct {
	Code uint16
	Name string
}

// New creates a new error with the given code and the message
func (c Code) New(msg string, args ...any) Error {
	return &errorImpl{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code) Wrap(cause error) Error {
	return &errorImpl{
		code:  c,
		cause: cause,
	}
}

func (c Code) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	Unwrap() error
}

type errorImpl struct {
	code  Code
	cause error
}

func (e *errorImpl) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code)
}

func (e *errorImpl) Code() uint16 {
	return e.code.Code
}

func (e *errorImpl) CodeName() string {
	return e.code.Name
}

func (e *errorImpl) Unwrap() error {
	return e.cause
}

// Error() implements the error interface.
func (e *errorImpl) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

// HasCode reports whether err or any error it wraps carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if typed, ok := err.(Error); ok {
			return typed.Code() == code.Code
		}
		unwrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapped.Unwrap()
	}
	return false
}

var INTERNAL = Code{0, "INTERNAL"}
var UNAUTHORIZED = Code{100, "UNAUTHORIZED"}
var INVALID_PARAMETERS = Code{101, "INVALID_PARAMETERS"}
var NOT_FOUND = Code{102, "NOT_FOUND"}
var INSUFFICIENT_FUNDS = Code{103, "INSUFFICIENT_FUNDS"}
var LISTING_EXISTS = Code{104, "LISTING_EXISTS"}
var LISTING_NOT_FOUND = Code{105, "LISTING_NOT_FOUND"}
var TRANSFER_FAILED = Code{106, "TRANSFER_FAILED"}
var ALREADY_STAKED = Code{107, "ALREADY_STAKED"}
var NOT_STAKED = Code{108, "NOT_STAKED"}
