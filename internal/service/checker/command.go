package checker

import (
	"archive/tar"
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/oshokin/acap-packager/internal/appmanifest"
	"github.com/oshokin/acap-packager/internal/conf"
	"github.com/oshokin/acap-packager/internal/logger"
	"github.com/oshokin/acap-packager/internal/staging"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

// Options controls the package verification run.
type Options struct {
	// Path is the package archive to verify.
	Path string
}

// DefaultChecksumFunction is used to fingerprint verified packages.
const DefaultChecksumFunction crypto.Hash = crypto.SHA512

var (
	// errHashUnavailable indicates the checksum function is not linked in.
	errHashUnavailable = errors.New("hash function unavailable")
	// errManifestMissing indicates the package has no root-level manifest.
	errManifestMissing = errors.New("manifest.json not found in package")
	// errManifestDuplicated indicates more than one root-level manifest.
	errManifestDuplicated = errors.New("manifest.json appears more than once")
	// errNotRootOwned indicates a member with non-root ownership.
	errNotRootOwned = errors.New("member is not owned by root")
	// errDescriptorMissing indicates a generated descriptor is absent.
	errDescriptorMissing = errors.New("generated descriptor not found in package")
	// errLicenseMissing indicates the license file is absent.
	errLicenseMissing = errors.New("license not found in package")
	// errExecutableMissing indicates the application executable is absent.
	errExecutableMissing = errors.New("application executable not found in package")
	// errMalformedParameter indicates a package.conf line with the wrong shape.
	errMalformedParameter = errors.New("malformed package.conf line")
)

// parameterLine is the NAME="value" shape of every package.conf line; the
// vendor homepage link is the one single-quoted value.
//
//nolint:gochecknoglobals // compiled once, read-only.
var parameterLine = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*=("[^"]*"|'.*')$`)

// inspection accumulates what the member walk saw.
type inspection struct {
	names       map[string]bool
	manifestRaw []byte
	manifests   int
	packageConf []byte
	paramConf   bool
}

// Run verifies the package archive at opts.Path.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "acap-checker")

	logger.InfoKV(ctx, "Verifying package", "path", opts.Path)

	result, err := inspect(opts.Path)
	if err != nil {
		return fmt.Errorf("inspect package: %w", err)
	}

	doc, err := checkManifest(result)
	if err != nil {
		return err
	}

	appName, err := doc.AppName()
	if err != nil {
		return err
	}

	if !result.names[appName] {
		return fmt.Errorf("%s: %w", appName, errExecutableMissing)
	}

	if !result.names[staging.LicenseFilename] {
		return errLicenseMissing
	}

	if err = checkDescriptors(result); err != nil {
		return err
	}

	checksum, err := packageChecksum(opts.Path)
	if err != nil {
		return fmt.Errorf("checksum package: %w", err)
	}

	logger.InfoKV(ctx, "Package verified",
		"app", appName,
		"members", len(result.names),
		"sha512", checksum)

	return nil
}

// packageChecksum returns the base64 encoded digest of the archive so
// release records can pin the exact artifact.
func packageChecksum(path string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	if !DefaultChecksumFunction.Available() {
		return "", errHashUnavailable
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return "", fmt.Errorf("calculate checksum: %w", err)
	}

	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}

// inspect decompresses the archive and walks its members once, checking
// ownership and collecting the files the later checks need.
func inspect(path string) (*inspection, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	// Best-effort cleanup.
	defer func() {
		_ = file.Close()
	}()

	decompressor, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	defer func() {
		_ = decompressor.Close()
	}()

	result := &inspection{names: make(map[string]bool)}
	reader := tar.NewReader(decompressor)

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read member: %w", err)
		}

		if header.Uid != 0 || header.Gid != 0 {
			return nil, fmt.Errorf("%s (uid %d, gid %d): %w",
				header.Name, header.Uid, header.Gid, errNotRootOwned)
		}

		name := strings.TrimSuffix(header.Name, "/")
		result.names[name] = true

		switch name {
		case staging.ManifestFilename:
			result.manifests++

			raw, err := io.ReadAll(reader)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}

			result.manifestRaw = raw
		case conf.PackageConfFilename:
			raw, err := io.ReadAll(reader)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}

			result.packageConf = raw
		case conf.ParamConfFilename:
			result.paramConf = true
		}
	}

	return result, nil
}

// checkManifest requires exactly one root-level manifest that parses and
// passes the schema.
func checkManifest(result *inspection) (*appmanifest.Document, error) {
	if result.manifests == 0 {
		return nil, errManifestMissing
	}

	if result.manifests > 1 {
		return nil, errManifestDuplicated
	}

	doc, err := appmanifest.Parse(result.manifestRaw)
	if err != nil {
		return nil, err
	}

	if err = doc.CheckSchema(); err != nil {
		return nil, err
	}

	return doc, nil
}

// checkDescriptors requires both generated descriptors, with every
// package.conf line in parameter shape.
func checkDescriptors(result *inspection) error {
	if result.packageConf == nil {
		return fmt.Errorf("%s: %w", conf.PackageConfFilename, errDescriptorMissing)
	}

	if err := checkParameterLines(string(result.packageConf)); err != nil {
		return err
	}

	if !result.paramConf {
		return fmt.Errorf("%s: %w", conf.ParamConfFilename, errDescriptorMissing)
	}

	return nil
}

// checkParameterLines validates the shape of each non-empty line.
func checkParameterLines(content string) error {
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}

		if !parameterLine.MatchString(line) {
			return fmt.Errorf("%w: %q", errMalformedParameter, line)
		}
	}

	return nil
}
