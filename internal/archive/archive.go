package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/acap-packager/internal/appmanifest"
	"github.com/oshokin/acap-packager/internal/arch"
	"github.com/oshokin/acap-packager/internal/conf"
	"github.com/oshokin/acap-packager/internal/logger"
	"github.com/oshokin/acap-packager/internal/staging"
)

// Extension is the package archive suffix.
const Extension = ".eap"

// SourceDateEpochEnv is honored for reproducible member timestamps when no
// explicit override is set on the builder.
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

// tarBinary is the archiver the builder shells out to.
const tarBinary = "tar"

// Optional directories included in the archive when staged, in member order.
//
//nolint:gochecknoglobals // fixed member layout.
var optionalTrees = []string{"html", "declarations", "lib"}

// BuildError reports a failed archive build.
type BuildError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("build archive: %s", e.Reason)
	}

	return fmt.Sprintf("build archive: %s: %v", e.Reason, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Builder produces package archives from staging trees.
type Builder struct {
	// Timestamp overrides the modification time recorded for every member.
	// Zero means SOURCE_DATE_EPOCH or, failing that, the current time.
	Timestamp time.Time
}

// Build archives the staging tree and returns the archive path inside the
// staging directory. The staged manifest is validated against the tree's
// target first; the pretty-printed form of the validated manifest is what
// ends up in the archive as manifest.json.
func (b *Builder) Build(ctx context.Context, tree *staging.Tree) (string, error) {
	doc, err := appmanifest.Load(tree.ManifestPath())
	if err != nil {
		return "", err
	}

	doc, err = doc.ValidateArchitecture(tree.Target())
	if err != nil {
		return "", err
	}

	tempName, cleanup, err := writeTempManifest(tree.Dir(), doc)
	if err != nil {
		return "", err
	}
	defer cleanup()

	resolved, err := conf.Resolve(doc, tree.OtherFiles(), tree.Target())
	if err != nil {
		return "", err
	}

	if err = tree.WriteFile(conf.PackageConfFilename, []byte(resolved.Render())); err != nil {
		return "", err
	}

	archiveName, err := archiveName(doc, tree.Target())
	if err != nil {
		return "", err
	}

	members, err := memberList(doc, tree, tempName)
	if err != nil {
		return "", err
	}

	stamp := b.timestamp(ctx)
	args := tarArgs(archiveName, tempName, stamp, members)

	logger.InfoKV(ctx, "Creating package archive",
		"archive", archiveName,
		"members", len(members),
		"mtime", stamp.Unix())

	if err = runTar(ctx, tree.Dir(), args); err != nil {
		return "", &BuildError{Reason: "tar failed", Err: err}
	}

	return singleArchive(tree.Dir())
}

// timestamp picks the member modification time.
func (b *Builder) timestamp(ctx context.Context) time.Time {
	if !b.Timestamp.IsZero() {
		return b.Timestamp
	}

	if raw := os.Getenv(SourceDateEpochEnv); raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return time.Unix(seconds, 0)
		}

		logger.Warnf(ctx, "Ignoring unparsable %s value %q: %v", SourceDateEpochEnv, raw, err)
	}

	return time.Now()
}

// writeTempManifest renders the validated manifest next to the other
// members under a temporary name. The tar transform renames it to
// manifest.json inside the archive so the staged original stays untouched.
func writeTempManifest(dir string, doc *appmanifest.Document) (string, func(), error) {
	temp, err := os.CreateTemp(dir, "manifest-*.json")
	if err != nil {
		return "", nil, fmt.Errorf("create temporary manifest: %w", err)
	}

	path := temp.Name()
	cleanup := func() { os.Remove(path) }

	if _, err = temp.Write(doc.EncodePretty()); err != nil {
		temp.Close()
		cleanup()

		return "", nil, fmt.Errorf("write temporary manifest: %w", err)
	}

	if err = temp.Close(); err != nil {
		cleanup()

		return "", nil, fmt.Errorf("close temporary manifest: %w", err)
	}

	return filepath.Base(path), cleanup, nil
}

// archiveName derives the output file name from the manifest display name,
// the version and the target, for example demo_1_2_0_aarch64.eap.
func archiveName(doc *appmanifest.Document, target arch.Architecture) (string, error) {
	displayName, found, err := doc.FriendlyName()
	if err != nil {
		return "", err
	}

	if !found {
		displayName, err = doc.AppName()
		if err != nil {
			return "", err
		}
	}

	version, err := doc.Version()
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%s%s",
		strings.ReplaceAll(displayName, " ", "_"),
		strings.ReplaceAll(version, ".", "_"),
		target.Name(),
		Extension)

	return name, nil
}

// memberList orders the archive members: the executable, the generated
// descriptors, the license, the manifest, then optional content.
func memberList(doc *appmanifest.Document, tree *staging.Tree, tempName string) ([]string, error) {
	members := []string{
		tree.AppName(),
		conf.PackageConfFilename,
		conf.ParamConfFilename,
		staging.LicenseFilename,
		tempName,
	}

	for _, name := range optionalTrees {
		if tree.Has(name) {
			members = append(members, name)
		}
	}

	members = append(members, tree.OtherFiles()...)

	script, found, err := doc.PreUninstallScript()
	if err != nil {
		return nil, err
	}

	if found {
		members = append(members, script)
	}

	if tree.Has(conf.CgiConfFilename) {
		members = append(members, conf.CgiConfFilename)
	}

	return members, nil
}

// tarArgs pins the flags that make the archive reproducible: stable member
// order, a fixed modification time, numeric root ownership and the rename
// of the temporary manifest.
func tarArgs(archiveName, tempName string, stamp time.Time, members []string) []string {
	args := []string{
		"--exclude-vcs",
		"--exclude=*~",
		"--sort=name",
		fmt.Sprintf("--mtime=@%d", stamp.Unix()),
		"--owner=0",
		"--group=0",
		fmt.Sprintf("--transform=s,^%s$,%s,", tempName, staging.ManifestFilename),
		"-czf", archiveName,
	}

	return append(args, members...)
}

// singleArchive returns the only archive in the staging directory and
// fails when the glob is ambiguous.
func singleArchive(dir string) (string, error) {
	candidates, err := filepath.Glob(filepath.Join(dir, "*"+Extension))
	if err != nil {
		return "", &BuildError{Reason: "glob archive", Err: err}
	}

	if len(candidates) != 1 {
		return "", &BuildError{
			Reason: fmt.Sprintf("expected exactly one %s file in %s, found %d", Extension, dir, len(candidates)),
		}
	}

	return candidates[0], nil
}
