package conf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/oshokin/acap-packager/internal/appmanifest"
	"github.com/oshokin/acap-packager/internal/arch"
)

// PackageConfFilename is the package descriptor file name inside the package.
const PackageConfFilename = "package.conf"

// Parameter names referenced outside the table itself.
const (
	namePackageName    = "PACKAGENAME"
	nameAppType        = "APPTYPE"
	nameAppName        = "APPNAME"
	nameMajorVersion   = "APPMAJORVERSION"
	nameMinorVersion   = "APPMINORVERSION"
	nameMicroVersion   = "APPMICROVERSION"
	nameOtherFiles     = "OTHERFILES"
	nameVendorHomePage = "VENDORHOMEPAGELINK"
	nameHTTPCgiPaths   = "HTTPCGIPATHS"
)

// vendorURLPattern splits a vendor URL into an optional "scheme://" prefix
// and the display label that follows it.
//
//nolint:gochecknoglobals // compiled once, read-only.
var vendorURLPattern = regexp.MustCompile(`^(?:.*://)?(.+)$`)

// parameter is one entry of the fixed package.conf table.
type parameter struct {
	// name is the parameter as it appears in package.conf.
	name string
	// source is the flattened manifest path feeding the parameter,
	// empty when the parameter has no manifest source.
	source string
	// def applies when the source is absent; nil omits the parameter.
	def *string
	// special entries resolve ahead of the generic pass and never use
	// source or def.
	special bool
}

// stringDefault returns a pointer to s for table literals.
func stringDefault(s string) *string {
	return &s
}

// parameterTable returns the package.conf layout in output order.
func parameterTable() []parameter {
	return []parameter{
		{name: namePackageName, source: appmanifest.PathFriendlyName},
		{name: "MENUNAME"},
		{name: nameAppType, source: appmanifest.PathArchitecture},
		{name: nameAppName, source: appmanifest.PathAppName},
		{name: "APPID", source: appmanifest.PathAppID, def: stringDefault("")},
		{name: "LICENSEPAGE", source: appmanifest.PathCopyProtMethod, def: stringDefault("none")},
		{name: "LICENSENAME", def: stringDefault("Available")},
		{name: "LICENSE_CHECK_ARGS", source: appmanifest.PathCopyProtOptions},
		{name: "VENDOR", source: appmanifest.PathVendor, def: stringDefault("-")},
		{name: "REQEMBDEVVERSION", source: appmanifest.PathEmbeddedSdkVersion, def: stringDefault("2.0")},
		{name: nameMajorVersion, special: true},
		{name: nameMinorVersion, special: true},
		{name: nameMicroVersion, special: true},
		{name: "APPGRP", source: appmanifest.PathUserGroup, def: stringDefault("sdk")},
		{name: "APPUSR", source: appmanifest.PathUserName, def: stringDefault("sdk")},
		{name: "APPOPTS", source: appmanifest.PathRunOptions, def: stringDefault("")},
		{name: nameOtherFiles, def: stringDefault("")},
		{name: "SETTINGSPAGEFILE", source: appmanifest.PathSettingPage, def: stringDefault("")},
		{name: "SETTINGSPAGETEXT", def: stringDefault("")},
		{name: nameVendorHomePage, special: true},
		{name: "PREUPGRADESCRIPT", def: stringDefault("")},
		{name: "POSTINSTALLSCRIPT", source: appmanifest.PathPostInstallScript, def: stringDefault("")},
		{name: "STARTMODE", source: appmanifest.PathRunMode, def: stringDefault("never")},
		{name: nameHTTPCgiPaths, special: true},
		{name: "AUTOSTART"},
	}
}

// PackageConf holds resolved package.conf parameters keyed by name.
// Parameters left unset by every pass stay absent from the rendered file.
type PackageConf struct {
	values map[string]string
}

// Resolve computes package.conf content from a parsed manifest, the names
// of staged additional files and the build target.
func Resolve(doc *appmanifest.Document, otherFiles []string, target arch.Architecture) (*PackageConf, error) {
	values := make(map[string]string, len(parameterTable()))

	if err := resolveVersionTriplet(doc, values); err != nil {
		return nil, err
	}

	if err := resolveVendorHomePage(doc, values); err != nil {
		return nil, err
	}

	if err := resolveHTTPCgiPaths(doc, values); err != nil {
		return nil, err
	}

	if len(otherFiles) > 0 {
		values[nameOtherFiles] = strings.Join(otherFiles, " ")
	}

	flat := doc.FlatMap()

	for _, entry := range parameterTable() {
		if entry.special {
			continue
		}

		if _, ok := values[entry.name]; ok {
			continue
		}

		if entry.source != "" {
			raw, found := flat[entry.source]
			if found {
				text, isString := raw.StringValue()
				if !isString {
					return nil, &appmanifest.FieldTypeError{
						FieldPath: entry.source,
						Expected:  appmanifest.KindString,
						Actual:    raw.Kind(),
					}
				}

				values[entry.name] = text

				continue
			}
		}

		if entry.def != nil {
			values[entry.name] = *entry.def
		}
	}

	applyFallbacks(values, target)

	return &PackageConf{values: values}, nil
}

// resolveVersionTriplet splits the manifest version into the three
// version parameters. Anything but a bare MAJOR.MINOR.PATCH is rejected.
func resolveVersionTriplet(doc *appmanifest.Document, values map[string]string) error {
	raw, err := doc.Version()
	if err != nil {
		return err
	}

	parsed, err := semver.StrictNewVersion(raw)
	if err != nil || parsed.Prerelease() != "" || parsed.Metadata() != "" {
		return &VersionFormatError{Value: raw}
	}

	values[nameMajorVersion] = strconv.FormatUint(parsed.Major(), 10)
	values[nameMinorVersion] = strconv.FormatUint(parsed.Minor(), 10)
	values[nameMicroVersion] = strconv.FormatUint(parsed.Patch(), 10)

	return nil
}

// resolveVendorHomePage turns the vendor URL into an anchor tag whose label
// is the URL without its scheme.
func resolveVendorHomePage(doc *appmanifest.Document, values map[string]string) error {
	raw, found, err := doc.VendorURL()
	if err != nil {
		return err
	}

	if !found {
		return nil
	}

	match := vendorURLPattern.FindStringSubmatch(raw)
	if match == nil {
		return &VendorURLError{Value: raw}
	}

	values[nameVendorHomePage] = fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, raw, match[1])

	return nil
}

// resolveHTTPCgiPaths advertises the CGI descriptor when the manifest
// declares at least one httpConfig entry.
func resolveHTTPCgiPaths(doc *appmanifest.Document, values map[string]string) error {
	items, found, err := doc.HTTPConfig()
	if err != nil {
		return err
	}

	if found && len(items) > 0 {
		values[nameHTTPCgiPaths] = CgiConfFilename
	}

	return nil
}

// applyFallbacks fills the two parameters whose values depend on other
// inputs, only when the passes above left them unset.
func applyFallbacks(values map[string]string, target arch.Architecture) {
	if _, ok := values[nameAppType]; !ok {
		values[nameAppType] = target.Name()
	}

	if _, ok := values[namePackageName]; !ok {
		values[namePackageName] = values[nameAppName]
	}
}

// Value returns the resolved value of a parameter and whether it is set.
func (p *PackageConf) Value(name string) (string, bool) {
	value, ok := p.values[name]

	return value, ok
}

// Render produces package.conf text: one NAME="value" line per set
// parameter in table order. The homepage link uses single quotes because
// its value contains double quotes.
func (p *PackageConf) Render() string {
	var builder strings.Builder

	for _, entry := range parameterTable() {
		value, ok := p.values[entry.name]
		if !ok {
			continue
		}

		quote := `"`
		if entry.name == nameVendorHomePage {
			quote = `'`
		}

		builder.WriteString(entry.name)
		builder.WriteByte('=')
		builder.WriteString(quote)
		builder.WriteString(value)
		builder.WriteString(quote)
		builder.WriteByte('\n')
	}

	return builder.String()
}
