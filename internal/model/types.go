// Package model — types.go defines the parsed value types (BindTarget,
// AppRef) together with their Parse constructors, plus the exit code and
// error types used by the CLI layer. Parsing happens at the CLI boundary,
// before any side effect has been performed.
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BindKind discriminates the two variants of a BindTarget.
type BindKind string

const (
	// BindTCP indicates a network endpoint (host + port).
	BindTCP BindKind = "tcp"

	// BindUnix indicates a filesystem socket path.
	BindUnix BindKind = "unix"
)

// String returns the string representation of BindKind.
func (k BindKind) String() string {
	return string(k)
}

// BindTarget is the listen target of the server: either a network endpoint
// or a unix socket path. Exactly one variant is populated, discriminated
// by Kind.
type BindTarget struct {
	// Kind selects the populated variant.
	Kind BindKind `json:"kind"`

	// Host is the interface or hostname to listen on. Set only for BindTCP.
	Host string `json:"host,omitempty"`

	// Port is the TCP port (0-65535). Set only for BindTCP. Port 0 asks
	// the OS for an ephemeral port.
	Port int `json:"port,omitempty"`

	// SocketPath is the filesystem socket path. Set only for BindUnix.
	SocketPath string `json:"socketPath,omitempty"`
}

// IsSocket reports whether the target is a unix socket path.
func (t BindTarget) IsSocket() bool {
	return t.Kind == BindUnix
}

// String returns the target in the form it would be passed to net.Listen.
func (t BindTarget) String() string {
	if t.IsSocket() {
		return t.SocketPath
	}
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// reAddress matches "<host>:<port>" bind strings: a run of non-whitespace
// characters, a colon, and one or more decimal digits anchored at the end.
// (\S+) is greedy, so in "[::1]:8080" only the final colon separates the
// port.
var reAddress = regexp.MustCompile(`^(\S+):([0-9]+)$`)

// validate is the shared validator instance for range checks on parsed
// values. A single instance is used because validator caches tag metadata
// internally.
var validate = validator.New()

// ParseBindTarget converts a bind address string into a BindTarget.
//
// Strings of the form "<host>:<digits>" become a network endpoint. Any
// other string — including the empty string — is accepted verbatim as a
// unix socket path. That fallback is deliberately permissive: socket path
// syntax is the engine's concern, and the two-way dispatch mirrors how the
// string is ultimately handed to net.Listen.
//
// The only rejected inputs are host:port matches whose digits overflow an
// int or exceed 65535.
func ParseBindTarget(s string) (BindTarget, error) {
	m := reAddress.FindStringSubmatch(s)
	if m == nil {
		return BindTarget{Kind: BindUnix, SocketPath: s}, nil
	}

	port, err := strconv.Atoi(m[2])
	if err != nil {
		return BindTarget{}, fmt.Errorf("invalid bind address %q: port %q does not fit an integer", s, m[2])
	}
	if err := validate.Var(port, "gte=0,lte=65535"); err != nil {
		return BindTarget{}, fmt.Errorf("invalid bind address %q: port %d out of range (0-65535)", s, port)
	}

	return BindTarget{Kind: BindTCP, Host: m[1], Port: port}, nil
}

// DefaultAttr is the attribute resolved when an application locator names
// only a module.
const DefaultAttr = "application"

// AppRef is a parsed application locator: a module path plus the attribute
// path of the callable within it.
type AppRef struct {
	// Module is the dotted module path (e.g. "myapp.wsgi").
	Module string `json:"module"`

	// Attr is the attribute path within the module. Defaults to
	// DefaultAttr when the locator contains no colon. Colons after the
	// first are preserved verbatim as part of the attribute path.
	Attr string `json:"attr"`
}

// String returns the locator in its CLI form.
func (r AppRef) String() string {
	return r.Module + ":" + r.Attr
}

// ParseAppRef converts an application locator string ("module[:attr]")
// into an AppRef. Only the first colon separates module from attribute;
// everything after it, colons included, is the attribute path. A locator
// with no colon gets the DefaultAttr attribute.
func ParseAppRef(s string) (AppRef, error) {
	if s == "" {
		return AppRef{}, fmt.Errorf("application locator must not be empty")
	}

	if module, attr, ok := strings.Cut(s, ":"); ok {
		return AppRef{Module: module, Attr: attr}, nil
	}
	return AppRef{Module: s, Attr: DefaultAttr}, nil
}

// ExitCode defines the CLI exit codes. These codes allow scripts and
// process supervisors to programmatically determine why the server did
// not run.
type ExitCode int

const (
	// ExitSuccess indicates a clean run, including interrupt-driven
	// shutdown.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUsage indicates malformed or missing CLI input.
	ExitUsage ExitCode = 2

	// ExitImportFailed indicates the application module could not be
	// loaded.
	ExitImportFailed ExitCode = 3

	// ExitLocatorFailed indicates the module loaded but the attribute
	// path did not yield a callable application.
	ExitLocatorFailed ExitCode = 4

	// ExitBindUnavailable indicates the bind target is already in use or
	// otherwise cannot be bound.
	ExitBindUnavailable ExitCode = 5

	// ExitServerFailed indicates the server constructor or its run loop
	// failed.
	ExitServerFailed ExitCode = 6
)

// CLIError is a custom error type that carries an exit code. It allows the
// CLI layer to translate component errors into process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
