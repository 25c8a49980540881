package checker

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// validManifest passes both parsing and the schema.
const validManifest = `{
    "acapPackageConf": {
        "schemaVersion": "1.4.0",
        "setup": {"appName": "demo", "version": "1.2.0", "architecture": "aarch64"}
    }
}`

// validPackageConf imitates resolved output, including the single-quoted
// homepage link.
const validPackageConf = `PACKAGENAME="demo"
APPTYPE="aarch64"
APPNAME="demo"
VENDORHOMEPAGELINK='<a href="https://example.com" target="_blank">example.com</a>'
STARTMODE="never"
`

// member is one entry written into a fixture archive.
type member struct {
	name    string
	content string
	uid     int
	gid     int
}

// defaultMembers is a complete, valid fixture package.
func defaultMembers() []member {
	return []member{
		{name: "demo", content: "#!/bin/sh\n"},
		{name: "package.conf", content: validPackageConf},
		{name: "param.conf", content: ""},
		{name: "LICENSE", content: "license\n"},
		{name: "manifest.json", content: validManifest},
	}
}

// writeArchive builds a gzip compressed tar fixture and returns its path.
func writeArchive(t *testing.T, members []member) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "demo_1_2_0_aarch64.eap")

	file, err := os.Create(path)
	require.NoError(t, err)

	compressor := gzip.NewWriter(file)
	writer := tar.NewWriter(compressor)

	for _, entry := range members {
		require.NoError(t, writer.WriteHeader(&tar.Header{
			Name: entry.name,
			Mode: 0o644,
			Size: int64(len(entry.content)),
			Uid:  entry.uid,
			Gid:  entry.gid,
		}))

		_, err = writer.Write([]byte(entry.content))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	require.NoError(t, compressor.Close())
	require.NoError(t, file.Close())

	return path
}

// TestRun_ValidPackage verifies that a complete package passes.
func TestRun_ValidPackage(t *testing.T) {
	t.Parallel()

	path := writeArchive(t, defaultMembers())

	require.NoError(t, Run(context.Background(), &Options{Path: path}))
}

// TestRun_MissingManifest verifies the single-manifest requirement.
func TestRun_MissingManifest(t *testing.T) {
	t.Parallel()

	var members []member

	for _, entry := range defaultMembers() {
		if entry.name != "manifest.json" {
			members = append(members, entry)
		}
	}

	path := writeArchive(t, members)

	err := Run(context.Background(), &Options{Path: path})
	require.ErrorIs(t, err, errManifestMissing)
}

// TestRun_DuplicateManifest verifies that two root manifests are rejected.
func TestRun_DuplicateManifest(t *testing.T) {
	t.Parallel()

	members := append(defaultMembers(), member{name: "manifest.json", content: validManifest})
	path := writeArchive(t, members)

	err := Run(context.Background(), &Options{Path: path})
	require.ErrorIs(t, err, errManifestDuplicated)
}

// TestRun_NestedManifestIsNotRoot verifies that a manifest below the root
// neither satisfies nor duplicates the root one.
func TestRun_NestedManifestIsNotRoot(t *testing.T) {
	t.Parallel()

	members := append(defaultMembers(), member{name: "html/manifest.json", content: validManifest})
	path := writeArchive(t, members)

	require.NoError(t, Run(context.Background(), &Options{Path: path}))
}

// TestRun_NonRootOwner verifies the ownership requirement.
func TestRun_NonRootOwner(t *testing.T) {
	t.Parallel()

	members := defaultMembers()
	members[0].uid = 1000

	path := writeArchive(t, members)

	err := Run(context.Background(), &Options{Path: path})
	require.ErrorIs(t, err, errNotRootOwned)
}

// TestRun_MalformedParameterLine verifies the package.conf line shape check.
func TestRun_MalformedParameterLine(t *testing.T) {
	t.Parallel()

	members := defaultMembers()
	members[1].content = validPackageConf + "lowercase=\"x\"\n"

	path := writeArchive(t, members)

	err := Run(context.Background(), &Options{Path: path})
	require.ErrorIs(t, err, errMalformedParameter)
}

// TestRun_SchemaViolation verifies that the stricter schema check applies
// during verification.
func TestRun_SchemaViolation(t *testing.T) {
	t.Parallel()

	members := defaultMembers()
	members[4].content = `{
        "acapPackageConf": {
            "schemaVersion": "1.4.0",
            "setup": {"appName": "demo", "version": "1.2.0", "architecture": "x86"}
        }
    }`

	path := writeArchive(t, members)

	err := Run(context.Background(), &Options{Path: path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "manifest schema")
}

// TestRun_MissingPieces verifies the executable, license and descriptor
// presence checks one by one.
func TestRun_MissingPieces(t *testing.T) {
	t.Parallel()

	cases := []struct {
		drop     string
		expected error
	}{
		{drop: "demo", expected: errExecutableMissing},
		{drop: "LICENSE", expected: errLicenseMissing},
		{drop: "package.conf", expected: errDescriptorMissing},
		{drop: "param.conf", expected: errDescriptorMissing},
	}

	for _, testCase := range cases {
		var members []member

		for _, entry := range defaultMembers() {
			if entry.name != testCase.drop {
				members = append(members, entry)
			}
		}

		path := writeArchive(t, members)

		err := Run(context.Background(), &Options{Path: path})
		require.ErrorIs(t, err, testCase.expected, "dropped %s", testCase.drop)
	}
}
