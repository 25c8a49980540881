package conf

import (
	"fmt"
	"strings"

	"github.com/oshokin/acap-packager/internal/appmanifest"
)

// ParamConfFilename is the parameter descriptor file name inside the package.
const ParamConfFilename = "param.conf"

// ParamEntry is one runtime parameter definition.
type ParamEntry struct {
	Name    string
	Default string
	// Type is empty for untyped parameters, which render bare.
	Type string
}

// ParamConf is the ordered parameter descriptor.
type ParamConf struct {
	entries []ParamEntry
}

// BuildParamConf derives the parameter descriptor from the manifest
// paramConfig list. It returns nil when the manifest declares no
// paramConfig; the caller still writes an empty descriptor file in
// that case.
func BuildParamConf(doc *appmanifest.Document) (*ParamConf, error) {
	items, found, err := doc.ParamConfig()
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	params := &ParamConf{entries: make([]ParamEntry, 0, len(items))}

	for index, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", appmanifest.PathParamConfig, index)

		if item.Kind() != appmanifest.KindObject {
			return nil, &appmanifest.FieldTypeError{
				FieldPath: itemPath,
				Expected:  appmanifest.KindObject,
				Actual:    item.Kind(),
			}
		}

		name, err := memberString(item, itemPath, "name", true)
		if err != nil {
			return nil, err
		}

		def, err := memberString(item, itemPath, "default", true)
		if err != nil {
			return nil, err
		}

		kind, err := memberString(item, itemPath, "type", false)
		if err != nil {
			return nil, err
		}

		params.entries = append(params.entries, ParamEntry{
			Name:    name,
			Default: def,
			Type:    kind,
		})
	}

	return params, nil
}

// Entries returns parameter definitions in manifest order.
func (p *ParamConf) Entries() []ParamEntry {
	if p == nil {
		return nil
	}

	return p.entries
}

// Render produces param.conf text. Typed parameters quote the default and
// name the type; untyped parameters render without quotes. The asymmetry
// is part of the format.
func (p *ParamConf) Render() string {
	if p == nil {
		return ""
	}

	var builder strings.Builder

	for _, entry := range p.entries {
		builder.WriteString(entry.Name)
		builder.WriteByte('=')

		if entry.Type != "" {
			builder.WriteString(`"`)
			builder.WriteString(entry.Default)
			builder.WriteString(`" type="`)
			builder.WriteString(entry.Type)
			builder.WriteString(`"`)
		} else {
			builder.WriteString(entry.Default)
		}

		builder.WriteByte('\n')
	}

	return builder.String()
}
