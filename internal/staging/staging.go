package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/acap-packager/internal/arch"
)

// Fixed member names inside every staging tree.
const (
	// ManifestFilename is the canonical manifest name inside the package.
	ManifestFilename = "manifest.json"
	// LicenseFilename is the canonical license name inside the package.
	LicenseFilename = "LICENSE"
)

// File permissions used for staged content.
const (
	dirPerm        os.FileMode = 0o755
	descriptorPerm os.FileMode = 0o644
	// executableBits are forced onto the staged executable.
	executableBits os.FileMode = 0o111
)

// CollisionError reports two sources claiming the same top-level name.
type CollisionError struct {
	Name   string
	First  string
	Second string
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("staging name %q already taken by %s, cannot stage %s", e.Name, e.First, e.Second)
}

// Tree is one staging directory under assembly.
type Tree struct {
	dir        string
	appName    string
	target     arch.Architecture
	claims     map[string]string
	otherFiles []string
}

// Create replaces the staging directory and stages the three mandatory
// members: the executable under the application name with execute bits
// forced on, the manifest as manifest.json and the license as LICENSE.
func Create(dir string, target arch.Architecture, appName, manifestPath, exePath, licensePath string) (*Tree, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear staging directory %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create staging directory %s: %w", dir, err)
	}

	tree := &Tree{
		dir:     dir,
		appName: appName,
		target:  target,
		claims:  make(map[string]string),
	}

	if err := tree.stageExecutable(exePath); err != nil {
		return nil, err
	}

	if err := tree.stageAs(ManifestFilename, manifestPath); err != nil {
		return nil, err
	}

	if err := tree.stageAs(LicenseFilename, licensePath); err != nil {
		return nil, err
	}

	return tree, nil
}

// Dir returns the staging directory path.
func (t *Tree) Dir() string {
	return t.dir
}

// AppName returns the application name the executable is staged under.
func (t *Tree) AppName() string {
	return t.appName
}

// Target returns the build target the tree was created for.
func (t *Tree) Target() arch.Architecture {
	return t.target
}

// ManifestPath returns the staged manifest location.
func (t *Tree) ManifestPath() string {
	return filepath.Join(t.dir, ManifestFilename)
}

// OtherFiles returns additional file names in the order they were added.
func (t *Tree) OtherFiles() []string {
	return t.otherFiles
}

// Has reports whether a top-level name has been staged.
func (t *Tree) Has(name string) bool {
	_, ok := t.claims[name]

	return ok
}

// AddFile stages a single file under its base name, preserving its mode.
func (t *Tree) AddFile(src string) error {
	return t.stageAs(filepath.Base(src), src)
}

// AddOtherFile stages a single file like AddFile and records its name for
// the OTHERFILES parameter.
func (t *Tree) AddOtherFile(src string) error {
	if err := t.AddFile(src); err != nil {
		return err
	}

	t.otherFiles = append(t.otherFiles, filepath.Base(src))

	return nil
}

// AddTree stages a whole directory under its base name, preserving the
// directory shape, file modes and symbolic links.
func (t *Tree) AddTree(src string) error {
	name := filepath.Base(src)

	if err := t.claim(name, src); err != nil {
		return err
	}

	if err := copyTree(src, filepath.Join(t.dir, name)); err != nil {
		return fmt.Errorf("stage directory %s: %w", src, err)
	}

	return nil
}

// WriteFile stages generated descriptor content under the given name.
func (t *Tree) WriteFile(name string, content []byte) error {
	if err := t.claim(name, "generated content"); err != nil {
		return err
	}

	path := filepath.Join(t.dir, name)

	if err := os.WriteFile(path, content, descriptorPerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// stageExecutable copies the executable to the application name and forces
// execute bits on top of its original mode.
func (t *Tree) stageExecutable(exePath string) error {
	if err := t.stageAs(t.appName, exePath); err != nil {
		return err
	}

	info, err := os.Stat(exePath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", exePath, err)
	}

	staged := filepath.Join(t.dir, t.appName)

	if err := os.Chmod(staged, info.Mode().Perm()|executableBits); err != nil {
		return fmt.Errorf("chmod %s: %w", staged, err)
	}

	return nil
}

// stageAs copies a file into the tree under an explicit name.
func (t *Tree) stageAs(name, src string) error {
	if err := t.claim(name, src); err != nil {
		return err
	}

	if err := copyFile(src, filepath.Join(t.dir, name)); err != nil {
		return fmt.Errorf("stage %s: %w", src, err)
	}

	return nil
}

// claim reserves a top-level name for a source.
func (t *Tree) claim(name, src string) error {
	if first, ok := t.claims[name]; ok {
		return &CollisionError{Name: name, First: first, Second: src}
	}

	t.claims[name] = src

	return nil
}
