package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups failures by how the caller should surface them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTransfer   Kind = "transfer"
	KindDecode     Kind = "decode"
	KindBroadcast  Kind = "broadcast"
)

const CodeFileTooLarge = "file_too_large"

type Error struct {
	Status int
	Code   string
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(code string, err error) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: code, Kind: KindValidation, Err: err}
}

func Transfer(status int, code string, err error) *Error {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &Error{Status: status, Code: code, Kind: KindTransfer, Err: err}
}

func TooLarge(err error) *Error {
	if err == nil {
		err = errors.New("file too large")
	}
	return &Error{Status: http.StatusRequestEntityTooLarge, Code: CodeFileTooLarge, Kind: KindTransfer, Err: err}
}

func Decode(code string, err error) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: code, Kind: KindDecode, Err: err}
}

func Broadcast(code string, err error) *Error {
	return &Error{Status: http.StatusBadGateway, Code: code, Kind: KindBroadcast, Err: err}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return ""
}

func IsTooLarge(err error) bool {
	ae, ok := As(err)
	return ok && ae.Code == CodeFileTooLarge
}
