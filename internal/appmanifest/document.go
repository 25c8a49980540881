package appmanifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Flattened paths of the manifest fields the engine reads directly.
const (
	PathSchemaVersion      = "acapPackageConf.schemaVersion"
	PathSetup              = "acapPackageConf.setup"
	PathAppName            = "acapPackageConf.setup.appName"
	PathFriendlyName       = "acapPackageConf.setup.friendlyName"
	PathAppID              = "acapPackageConf.setup.appId"
	PathVendor             = "acapPackageConf.setup.vendor"
	PathVendorURL          = "acapPackageConf.setup.vendorUrl"
	PathVersion            = "acapPackageConf.setup.version"
	PathArchitecture       = "acapPackageConf.setup.architecture"
	PathUserName           = "acapPackageConf.setup.user.username"
	PathUserGroup          = "acapPackageConf.setup.user.group"
	PathRunMode            = "acapPackageConf.setup.runMode"
	PathRunOptions         = "acapPackageConf.setup.runOptions"
	PathEmbeddedSdkVersion = "acapPackageConf.setup.embeddedSdkVersion"
	PathSettingPage        = "acapPackageConf.configuration.settingPage"
	PathHTTPConfig         = "acapPackageConf.configuration.httpConfig"
	PathParamConfig        = "acapPackageConf.configuration.paramConfig"
	PathCopyProtMethod     = "acapPackageConf.copyProtection.method"
	PathCopyProtOptions    = "acapPackageConf.copyProtection.customOptions"
	PathPostInstallScript  = "acapPackageConf.installation.postInstallScript"
	PathPreUninstallScript = "acapPackageConf.uninstallation.preUninstallScript"
)

// Document is a parsed manifest. It is read-only after Parse; the one
// mutation the engine performs (architecture injection) happens on a clone.
type Document struct {
	root *Value
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Document, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	doc, err := Parse(contents)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}

		return nil, err
	}

	return doc, nil
}

// Parse decodes a manifest from raw bytes and checks the fields every build
// needs up front: the schema version and the application name.
func Parse(data []byte) (*Document, error) {
	root, err := decodeDocument(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if root.Kind() != KindObject {
		return nil, &ParseError{Err: errRootNotObject}
	}

	doc := &Document{root: root}

	if _, err = doc.SchemaVersion(); err != nil {
		return nil, err
	}

	if _, err = doc.AppName(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.Clone()}
}

// SchemaVersion returns the declared manifest schema version.
func (d *Document) SchemaVersion() (string, error) {
	return d.requireString(PathSchemaVersion)
}

// AppName returns the application name.
func (d *Document) AppName() (string, error) {
	return d.requireString(PathAppName)
}

// Version returns the application version.
func (d *Document) Version() (string, error) {
	return d.requireString(PathVersion)
}

// FriendlyName returns the optional display name.
func (d *Document) FriendlyName() (string, bool, error) {
	return d.findString(PathFriendlyName)
}

// Architecture returns the optional declared architecture.
func (d *Document) Architecture() (string, bool, error) {
	return d.findString(PathArchitecture)
}

// VendorURL returns the optional vendor homepage address.
func (d *Document) VendorURL() (string, bool, error) {
	return d.findString(PathVendorURL)
}

// PreUninstallScript returns the optional pre-uninstall script name.
func (d *Document) PreUninstallScript() (string, bool, error) {
	return d.findString(PathPreUninstallScript)
}

// HTTPConfig returns the optional CGI endpoint list.
func (d *Document) HTTPConfig() ([]*Value, bool, error) {
	return d.findArray(PathHTTPConfig)
}

// ParamConfig returns the optional runtime parameter list.
func (d *Document) ParamConfig() ([]*Value, bool, error) {
	return d.findArray(PathParamConfig)
}

// find navigates a dotted path through nested objects. It reports a
// FieldTypeError when an intermediate segment is not an object, and a plain
// not-found for absent segments so callers can fall back to defaults.
func (d *Document) find(path string) (*Value, bool, error) {
	current := d.root
	segments := strings.Split(path, ".")

	for i, segment := range segments {
		if current.Kind() != KindObject {
			return nil, false, &FieldTypeError{
				FieldPath: strings.Join(segments[:i], "."),
				Expected:  KindObject,
				Actual:    current.Kind(),
			}
		}

		next, ok := current.Member(segment)
		if !ok {
			return nil, false, nil
		}

		current = next
	}

	return current, true, nil
}

// findString returns the string at path, distinguishing absence from a wrong shape.
func (d *Document) findString(path string) (string, bool, error) {
	value, found, err := d.find(path)
	if err != nil || !found {
		return "", found, err
	}

	s, ok := value.StringValue()
	if !ok {
		return "", true, &FieldTypeError{FieldPath: path, Expected: KindString, Actual: value.Kind()}
	}

	return s, true, nil
}

// findArray returns the array at path, distinguishing absence from a wrong shape.
func (d *Document) findArray(path string) ([]*Value, bool, error) {
	value, found, err := d.find(path)
	if err != nil || !found {
		return nil, found, err
	}

	if value.Kind() != KindArray {
		return nil, true, &FieldTypeError{FieldPath: path, Expected: KindArray, Actual: value.Kind()}
	}

	return value.Items(), true, nil
}

// requireString returns the string at path or fails when it is absent.
func (d *Document) requireString(path string) (string, error) {
	s, found, err := d.findString(path)
	if err != nil {
		return "", err
	}

	if !found {
		return "", &FieldNotFoundError{FieldPath: path}
	}

	return s, nil
}
