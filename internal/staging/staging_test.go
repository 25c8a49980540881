package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/acap-packager/internal/arch"
)

// writeFixture creates a file with explicit permissions and returns its path.
func writeFixture(t *testing.T, dir, name, content string, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(dir, name)

	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	// WriteFile permissions pass through the umask, chmod pins them.
	require.NoError(t, os.Chmod(path, perm))

	return path
}

// createFixtureTree stages the three mandatory members from a throwaway
// application directory and returns the tree.
func createFixtureTree(t *testing.T, stagingDir string) *Tree {
	t.Helper()

	appDir := t.TempDir()
	exePath := writeFixture(t, appDir, "demo", "#!/bin/sh\n", 0o644)
	manifestPath := writeFixture(t, appDir, "manifest.json", `{"acapPackageConf":{}}`, 0o644)
	licensePath := writeFixture(t, appDir, "LICENSE", "license text\n", 0o644)

	tree, err := Create(stagingDir, arch.Aarch64, "demo", manifestPath, exePath, licensePath)
	require.NoError(t, err)

	return tree
}

// TestCreate_MandatoryMembers verifies the fixed destination names and the
// forced execute bits on the staged executable.
func TestCreate_MandatoryMembers(t *testing.T) {
	t.Parallel()

	stagingDir := filepath.Join(t.TempDir(), "staging")
	tree := createFixtureTree(t, stagingDir)

	require.Equal(t, stagingDir, tree.Dir())
	require.Equal(t, "demo", tree.AppName())
	require.Equal(t, arch.Aarch64, tree.Target())
	require.Equal(t, filepath.Join(stagingDir, "manifest.json"), tree.ManifestPath())

	info, err := os.Stat(filepath.Join(stagingDir, "demo"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	manifest, err := os.ReadFile(tree.ManifestPath())
	require.NoError(t, err)
	require.Equal(t, `{"acapPackageConf":{}}`, string(manifest))

	license, err := os.ReadFile(filepath.Join(stagingDir, "LICENSE"))
	require.NoError(t, err)
	require.Equal(t, "license text\n", string(license))
}

// TestCreate_ReplacesExisting verifies that leftovers from a previous run
// do not survive a new tree.
func TestCreate_ReplacesExisting(t *testing.T) {
	t.Parallel()

	stagingDir := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.MkdirAll(stagingDir, 0o755))

	stale := filepath.Join(stagingDir, "stale.eap")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	createFixtureTree(t, stagingDir)

	_, err := os.Stat(stale)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestAddTree_PreservesSymlinks verifies that a staged library directory
// keeps its version-alias links as links.
func TestAddTree_PreservesSymlinks(t *testing.T) {
	t.Parallel()

	stagingDir := filepath.Join(t.TempDir(), "staging")
	tree := createFixtureTree(t, stagingDir)

	libDir := filepath.Join(t.TempDir(), "lib")
	require.NoError(t, os.MkdirAll(filepath.Join(libDir, "deep"), 0o755))
	writeFixture(t, libDir, "libdemo.so.1.2.3", "elf", 0o755)
	writeFixture(t, filepath.Join(libDir, "deep"), "extra.txt", "x", 0o644)
	require.NoError(t, os.Symlink("libdemo.so.1.2.3", filepath.Join(libDir, "libdemo.so.1")))

	require.NoError(t, tree.AddTree(libDir))
	require.True(t, tree.Has("lib"))

	linkInfo, err := os.Lstat(filepath.Join(stagingDir, "lib", "libdemo.so.1"))
	require.NoError(t, err)
	require.NotZero(t, linkInfo.Mode()&os.ModeSymlink)

	destination, err := os.Readlink(filepath.Join(stagingDir, "lib", "libdemo.so.1"))
	require.NoError(t, err)
	require.Equal(t, "libdemo.so.1.2.3", destination)

	realInfo, err := os.Stat(filepath.Join(stagingDir, "lib", "libdemo.so.1.2.3"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), realInfo.Mode().Perm())

	nested, err := os.ReadFile(filepath.Join(stagingDir, "lib", "deep", "extra.txt"))
	require.NoError(t, err)
	require.Equal(t, "x", string(nested))
}

// TestAddOtherFile_Order verifies that additional file names are reported
// in the order they were staged.
func TestAddOtherFile_Order(t *testing.T) {
	t.Parallel()

	stagingDir := filepath.Join(t.TempDir(), "staging")
	tree := createFixtureTree(t, stagingDir)

	extraDir := t.TempDir()
	second := writeFixture(t, extraDir, "b.txt", "b", 0o644)
	first := writeFixture(t, extraDir, "a.txt", "a", 0o600)

	require.NoError(t, tree.AddOtherFile(second))
	require.NoError(t, tree.AddOtherFile(first))
	require.Equal(t, []string{"b.txt", "a.txt"}, tree.OtherFiles())

	info, err := os.Stat(filepath.Join(stagingDir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

// TestClaimCollisions verifies that a top-level name can only be staged
// once, whatever kind of member claimed it first.
func TestClaimCollisions(t *testing.T) {
	t.Parallel()

	stagingDir := filepath.Join(t.TempDir(), "staging")
	tree := createFixtureTree(t, stagingDir)

	extraDir := t.TempDir()
	license := writeFixture(t, extraDir, "LICENSE", "other license", 0o644)

	err := tree.AddOtherFile(license)

	var collision *CollisionError

	require.ErrorAs(t, err, &collision)
	require.Equal(t, "LICENSE", collision.Name)

	libDir := filepath.Join(t.TempDir(), "lib")
	require.NoError(t, os.MkdirAll(libDir, 0o755))
	require.NoError(t, tree.AddTree(libDir))

	libFile := writeFixture(t, extraDir, "lib", "not a directory", 0o644)
	err = tree.AddFile(libFile)
	require.ErrorAs(t, err, &collision)
	require.Equal(t, "lib", collision.Name)

	require.NoError(t, tree.WriteFile("package.conf", []byte(`APPNAME="demo"`+"\n")))
	err = tree.WriteFile("package.conf", []byte("again"))
	require.ErrorAs(t, err, &collision)
	require.Equal(t, "package.conf", collision.Name)
}

// TestWriteFile verifies descriptor staging.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	stagingDir := filepath.Join(t.TempDir(), "staging")
	tree := createFixtureTree(t, stagingDir)

	require.NoError(t, tree.WriteFile("param.conf", nil))
	require.True(t, tree.Has("param.conf"))

	content, err := os.ReadFile(filepath.Join(stagingDir, "param.conf"))
	require.NoError(t, err)
	require.Empty(t, content)
}
