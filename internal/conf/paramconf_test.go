package conf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/acap-packager/internal/appmanifest"
)

// TestBuildParamConf_NoParamConfig verifies that a manifest without
// paramConfig yields no descriptor; the pipeline still writes an empty
// param.conf file from it.
func TestBuildParamConf_NoParamConfig(t *testing.T) {
	t.Parallel()

	doc := parseManifest(t, minimalManifest)

	params, err := BuildParamConf(doc)
	require.NoError(t, err)
	require.Nil(t, params)
	require.Equal(t, "", params.Render())
}

// TestBuildParamConf_RenderAsymmetry verifies that typed parameters quote
// their default and name the type while untyped parameters render bare.
func TestBuildParamConf_RenderAsymmetry(t *testing.T) {
	t.Parallel()

	doc := parseManifest(t, `{
        "acapPackageConf": {
            "schemaVersion": "1.3.1",
            "setup": {"appName": "demo", "version": "1.0.0"},
            "configuration": {
                "paramConfig": [
                    {"name": "Interval", "default": "5", "type": "int"},
                    {"name": "Mode", "default": "auto", "type": ""},
                    {"name": "Plain", "default": "1"}
                ]
            }
        }
    }`)

	params, err := BuildParamConf(doc)
	require.NoError(t, err)
	require.Len(t, params.Entries(), 3)

	expected := `Interval="5" type="int"
Mode=auto
Plain=1
`
	require.Equal(t, expected, params.Render())
}

// TestBuildParamConf_MissingDefault verifies that a definition without a
// default fails with the indexed member path.
func TestBuildParamConf_MissingDefault(t *testing.T) {
	t.Parallel()

	doc := parseManifest(t, `{
        "acapPackageConf": {
            "schemaVersion": "1.3.1",
            "setup": {"appName": "demo", "version": "1.0.0"},
            "configuration": {
                "paramConfig": [{"name": "Interval", "type": "int"}]
            }
        }
    }`)

	_, err := BuildParamConf(doc)

	var notFound *appmanifest.FieldNotFoundError

	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "acapPackageConf.configuration.paramConfig[0].default", notFound.FieldPath)
}
