package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg        string
	parent     error
	causes     []error
	statusCode int
	expand     bool
	prefix     string
	suffix     string
}

// New returns a root template.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	var b strings.Builder
	if e.prefix != "" {
		b.WriteString(e.prefix)
		b.WriteString(": ")
	}
	b.WriteString(e.msg)
	if e.suffix != "" {
		b.WriteString(": ")
		b.WriteString(e.suffix)
	}
	return b.String()
}

// ErrorAll expands attached causes only when the error was marked expandable.
func (e *appError) ErrorAll() string {
	if !e.expand || len(e.causes) == 0 {
		return e.Error()
	}
	parts := make([]string, 0, len(e.causes)+1)
	parts = append(parts, e.Error())
	for _, c := range e.causes {
		if c == nil {
			continue
		}
		parts = append(parts, c.Error())
	}
	return strings.Join(parts, "; ")
}

func (e *appError) Unwrap() error {
	return e.parent
}

func (e *appError) UnwrapAll() []error {
	return e.causes
}

// derive builds a child that inherits the status code and expansion flag.
func (e *appError) derive(msg string, causes []error) *appError {
	return &appError{
		msg:        msg,
		parent:     e,
		causes:     causes,
		statusCode: e.statusCode,
		expand:     e.expand,
	}
}

func (e *appError) New(msg string) Error {
	return e.derive(msg, nil)
}

func (e *appError) Msg(msg string) Error {
	causes := make([]error, 0, len(e.causes)+1)
	causes = append(causes, e)
	causes = append(causes, e.causes...)
	return e.derive(msg, causes)
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	causes := make([]error, 0, len(errs)+1)
	causes = append(causes, e)
	causes = append(causes, errs...)
	return e.derive(msg, causes)
}

func (e *appError) Err(errs ...error) Error {
	return e.MsgErr(e.msg, errs...)
}

func (e *appError) clone() *appError {
	cp := *e
	return &cp
}

func (e *appError) Prefix(p string) Error {
	cp := e.clone()
	cp.prefix = p
	return cp
}

func (e *appError) Suffix(s string) Error {
	cp := e.clone()
	cp.suffix = s
	return cp
}

func (e *appError) SetExpandError(flag bool) Error {
	cp := e.clone()
	cp.expand = flag
	return cp
}

func (e *appError) SetStatusCode(code int) Error {
	cp := e.clone()
	cp.statusCode = code
	return cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

// Is matches the parent chain and every attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if e.parent != nil && errors.Is(e.parent, target) {
		return true
	}
	for _, c := range e.causes {
		if c != nil && errors.Is(c, target) {
			return true
		}
	}
	return false
}

// As returns the first apperrors.Error found in err's chain, if any.
func As(err error) (Error, bool) {
	var ae Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
