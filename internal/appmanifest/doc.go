// Package appmanifest models the application manifest document.
//
// The manifest is semi-structured JSON, so the package keeps it as a tagged
// value tree that preserves object member order and number literals exactly
// as read. Typed accessors distinguish an absent field (callers fall back to
// defaults) from a malformed one (callers abort), and the pretty printer
// reproduces the byte layout downstream tooling compares against.
package appmanifest
