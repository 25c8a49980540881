package conf

import (
	"fmt"
	"strings"

	"github.com/oshokin/acap-packager/internal/appmanifest"
)

// CgiConfFilename is the CGI descriptor file name inside the package.
const CgiConfFilename = "cgi.conf"

// httpConfig entry types with dedicated handling.
const (
	cgiKindDirectory = "directory"
	cgiKindFastCGI   = "fastCgi"
)

// adminAccess is rewritten to its long form in the descriptor.
const (
	adminAccess       = "admin"
	administratorName = "administrator"
)

// CgiEntry is one access line of the CGI descriptor.
type CgiEntry struct {
	// Access is the required access level, already rewritten for output.
	Access string
	// Path is the endpoint path without its leading slash.
	Path string
	// FastCGI marks endpoints served over FastCGI.
	FastCGI bool
}

// CgiConf is the ordered CGI descriptor.
type CgiConf struct {
	entries []CgiEntry
}

// BuildCgiConf derives the CGI descriptor from the manifest httpConfig
// list. It returns nil when the manifest declares no httpConfig at all.
func BuildCgiConf(doc *appmanifest.Document) (*CgiConf, error) {
	items, found, err := doc.HTTPConfig()
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	cgi := &CgiConf{entries: make([]CgiEntry, 0, len(items))}

	for index, item := range items {
		entry, keep, err := cgiEntryFromValue(index, item)
		if err != nil {
			return nil, err
		}

		if keep {
			cgi.entries = append(cgi.entries, entry)
		}
	}

	return cgi, nil
}

// cgiEntryFromValue converts one httpConfig member. Directory entries
// describe static content and are skipped.
func cgiEntryFromValue(index int, item *appmanifest.Value) (CgiEntry, bool, error) {
	var zero CgiEntry

	itemPath := fmt.Sprintf("%s[%d]", appmanifest.PathHTTPConfig, index)

	if item.Kind() != appmanifest.KindObject {
		return zero, false, &appmanifest.FieldTypeError{
			FieldPath: itemPath,
			Expected:  appmanifest.KindObject,
			Actual:    item.Kind(),
		}
	}

	kind, err := memberString(item, itemPath, "type", true)
	if err != nil {
		return zero, false, err
	}

	if kind == cgiKindDirectory {
		return zero, false, nil
	}

	name, err := memberString(item, itemPath, "name", true)
	if err != nil {
		return zero, false, err
	}

	access, err := memberString(item, itemPath, "access", true)
	if err != nil {
		return zero, false, err
	}

	if access == adminAccess {
		access = administratorName
	}

	entry := CgiEntry{
		Access:  access,
		Path:    strings.TrimPrefix(name, "/"),
		FastCGI: kind == cgiKindFastCGI,
	}

	return entry, true, nil
}

// memberString reads a string member of an object value.
func memberString(item *appmanifest.Value, itemPath, key string, required bool) (string, error) {
	member, ok := item.Member(key)
	if !ok {
		if required {
			return "", &appmanifest.FieldNotFoundError{FieldPath: itemPath + "." + key}
		}

		return "", nil
	}

	text, isString := member.StringValue()
	if !isString {
		return "", &appmanifest.FieldTypeError{
			FieldPath: itemPath + "." + key,
			Expected:  appmanifest.KindString,
			Actual:    member.Kind(),
		}
	}

	return text, nil
}

// Empty reports whether the descriptor retained no entries.
func (c *CgiConf) Empty() bool {
	return c == nil || len(c.entries) == 0
}

// Entries returns retained entries in manifest order.
func (c *CgiConf) Entries() []CgiEntry {
	if c == nil {
		return nil
	}

	return c.entries
}

// Render produces cgi.conf text, one line per retained entry.
func (c *CgiConf) Render() string {
	if c == nil {
		return ""
	}

	var builder strings.Builder

	for _, entry := range c.entries {
		builder.WriteString(entry.Access)
		builder.WriteString(" /")
		builder.WriteString(entry.Path)

		if entry.FastCGI {
			builder.WriteString(" fastCgi")
		}

		builder.WriteByte('\n')
	}

	return builder.String()
}
