package appmanifest

import (
	"errors"
	"fmt"
)

var (
	// errDottedKey is returned when an object key contains a dot,
	// which would make flattened paths ambiguous.
	errDottedKey = errors.New("object key contains a dot")
	// errTrailingContent is returned when bytes follow the root value.
	errTrailingContent = errors.New("trailing content after document")
	// errUnexpectedToken is returned for tokens that cannot start a value.
	errUnexpectedToken = errors.New("unexpected token")
	// errRootNotObject is returned when the document root is not an object.
	errRootNotObject = errors.New("root is not an object")
)

// ParseError reports a manifest document that could not be decoded.
type ParseError struct {
	// Path is the source file, empty for in-memory data.
	Path string
	// Err is the underlying decode failure.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse manifest: %v", e.Err)
	}

	return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decode failure.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldNotFoundError reports an absent manifest field the caller required.
type FieldNotFoundError struct {
	// FieldPath is the flattened path of the missing field.
	FieldPath string
}

// Error implements the error interface.
func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("manifest field %s not found", e.FieldPath)
}

// FieldTypeError reports a manifest field whose JSON shape is not the expected one.
// Absence falls back to defaults, a wrong shape never does.
type FieldTypeError struct {
	// FieldPath is the flattened path of the offending field.
	FieldPath string
	// Expected is the shape the caller required.
	Expected Kind
	// Actual is the shape found in the document.
	Actual Kind
}

// Error implements the error interface.
func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("manifest field %s: expected %s, found %s", e.FieldPath, e.Expected, e.Actual)
}

// ArchitectureError reports a manifest architecture conflicting with the build target.
type ArchitectureError struct {
	// Declared is the architecture named by the manifest.
	Declared string
	// Target is the canonical name of the build target.
	Target string
}

// Error implements the error interface.
func (e *ArchitectureError) Error() string {
	return fmt.Sprintf("manifest architecture %q does not match build target %q", e.Declared, e.Target)
}
