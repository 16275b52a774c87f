// Package apperrors implements template errors that carry an HTTP status code.
//
// A package declares its error taxonomy once as a tree of templates and derives
// concrete errors from them with New, Msg, MsgErr and Err. Every derived error
// matches its ancestors with errors.Is, so callers can test for a category
// (for example "not found") without caring which layer produced it.
package apperrors

// Error is an error with a status code and a chain of template ancestors.
// Every method returns a new value; templates are never mutated.
type Error interface {
	error
	Unwrap() error

	New(msg string) Error                  // child template with a fresh message
	Msg(msg string) Error                  // same category, caller supplied message
	MsgErr(msg string, err ...error) Error // Msg plus attached causes
	Err(err ...error) Error                // attach causes, keep the message
	SetExpandError(bool) Error             // include causes in ErrorAll
	SetStatusCode(int) Error
	StatusCode() int
	Prefix(string) Error
	Suffix(string) Error
	ErrorAll() string
	UnwrapAll() []error
}
