// Package diag defines the compiler's error taxonomy.
//
// Every failure in the pipeline is reported as a *Error carrying a Code and,
// where one exists, the source position of the offending word. Stages return
// these values; only the command line boundary turns them into an exit status.
package diag

import (
	"errors"
	"fmt"

	"github.com/agenthands/stackc/pkg/compiler/lexer"
)

// Code classifies a compilation failure.
type Code string

const (
	CodeInvalidToken      Code = "INVALID_TOKEN"
	CodeUnexpectedDo      Code = "UNEXPECTED_DO"
	CodeUnexpectedEnd     Code = "UNEXPECTED_END"
	CodeUnmatchedElse     Code = "UNMATCHED_ELSE"
	CodeUnterminatedBlock Code = "UNTERMINATED_BLOCK"
	CodeSourceReadFailure Code = "SOURCE_READ_FAILURE"

	// CodeMalformedStream is raised by the generators when handed a token
	// stream the parser could never have produced.
	CodeMalformedStream Code = "MALFORMED_STREAM"
)

func (c Code) String() string {
	return string(c)
}

var messages = map[Code]string{
	CodeInvalidToken:      "invalid token",
	CodeUnexpectedDo:      "unexpected do",
	CodeUnexpectedEnd:     "unexpected end",
	CodeUnmatchedElse:     "unmatched else",
	CodeUnterminatedBlock: "unterminated block",
	CodeSourceReadFailure: "cannot read source",
	CodeMalformedStream:   "malformed token stream",
}

// Error is a positioned compiler diagnostic.
type Error struct {
	Code   Code
	Pos    lexer.Pos
	HasPos bool
	Text   string // offending word or construct name
	Detail string
	cause  error
}

// New creates a diagnostic anchored at w.
func New(code Code, w lexer.Word, detail string) *Error {
	return &Error{Code: code, Pos: w.Pos, HasPos: true, Text: w.Text, Detail: detail}
}

// Wrap creates an unpositioned diagnostic around cause.
func Wrap(code Code, subject string, cause error) *Error {
	return &Error{Code: code, Text: subject, cause: cause}
}

// Message is the diagnostic text without the position prefix.
func (e *Error) Message() string {
	msg := messages[e.Code]
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Text != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Text)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Error() string {
	if e.HasPos {
		return e.Pos.String() + ": " + e.Message()
	}
	return e.Message()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var d *Error
	if errors.As(err, &d) {
		return d.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
