package conf

import "fmt"

// VersionFormatError reports a manifest version that is not a plain
// MAJOR.MINOR.PATCH triplet.
type VersionFormatError struct {
	Value string
}

// Error implements the error interface.
func (e *VersionFormatError) Error() string {
	return fmt.Sprintf("manifest version %q is not a MAJOR.MINOR.PATCH triplet", e.Value)
}

// VendorURLError reports a vendor URL the homepage link pattern rejects.
type VendorURLError struct {
	Value string
}

// Error implements the error interface.
func (e *VendorURLError) Error() string {
	return fmt.Sprintf("vendor URL %q does not match the homepage link pattern", e.Value)
}
