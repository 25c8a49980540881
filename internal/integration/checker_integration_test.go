package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/acap-packager/internal/service/checker"
	"github.com/oshokin/acap-packager/internal/service/packager"
)

// fullManifest exercises optional content end to end: display name,
// declared architecture, runtime parameters, CGI endpoints and an
// uninstall hook.
const fullManifest = `{
    "acapPackageConf": {
        "schemaVersion": "1.4.0",
        "setup": {
            "appName": "demo",
            "friendlyName": "Demo App",
            "version": "2.10.3",
            "architecture": "armv7hf",
            "vendor": "Example Vendor",
            "vendorUrl": "https://example.com"
        },
        "configuration": {
            "paramConfig": [{"name": "Interval", "default": "5", "type": "int"}],
            "httpConfig": [
                {"type": "directory", "name": "html", "access": "viewer"},
                {"type": "fastCgi", "name": "api.cgi", "access": "admin"}
            ]
        },
        "uninstallation": {"preUninstallScript": "cleanup.sh"}
    }
}`

// TestBuildAndVerify_FullApplication builds a package with every optional
// member and runs the verifier against the result.
func TestBuildAndVerify_FullApplication(t *testing.T) {
	requireGNUTar(t)
	t.Parallel()

	appDir := writeAppDir(t, fullManifest)

	require.NoError(t, os.MkdirAll(filepath.Join(appDir, "html"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "html", "index.html"), []byte("<html/>"), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(appDir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "lib", "libdemo.so.1.2.3"), []byte("elf"), 0o755))
	require.NoError(t, os.Symlink("libdemo.so.1.2.3", filepath.Join(appDir, "lib", "libdemo.so.1")))

	require.NoError(t, os.WriteFile(filepath.Join(appDir, "cleanup.sh"), []byte("#!/bin/sh\n"), 0o755))

	extraPath := filepath.Join(t.TempDir(), "extra.txt")
	require.NoError(t, os.WriteFile(extraPath, []byte("x"), 0o644))

	outputDir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := packager.Run(ctx, &packager.Options{
		AppDir:          appDir,
		Architecture:    "armv7hf",
		BuildDir:        filepath.Join(t.TempDir(), "build"),
		OutputDir:       outputDir,
		AdditionalFiles: []string{extraPath},
		Timestamp:       time.Unix(1700000000, 0),
	})
	require.NoError(t, err)

	archivePath := filepath.Join(outputDir, "Demo_App_2_10_3_armv7hf.eap")
	_, err = os.Stat(archivePath)
	require.NoError(t, err)

	contents, _ := readMembers(t, archivePath)
	require.Contains(t, contents, "html/index.html")
	require.Contains(t, contents, "lib/libdemo.so.1.2.3")
	require.Contains(t, contents, "lib/libdemo.so.1")
	require.Contains(t, contents, "cleanup.sh")
	require.Contains(t, contents, "extra.txt")
	require.Equal(t, "administrator /api.cgi fastCgi\n", contents["cgi.conf"])
	require.Equal(t, `Interval="5" type="int"`+"\n", contents["param.conf"])

	packageConf := contents["package.conf"]
	require.Contains(t, packageConf, `PACKAGENAME="Demo App"`+"\n")
	require.Contains(t, packageConf, `OTHERFILES="extra.txt"`+"\n")
	require.Contains(t, packageConf, `HTTPCGIPATHS="cgi.conf"`+"\n")
	require.Contains(t, packageConf,
		`VENDORHOMEPAGELINK='<a href="https://example.com" target="_blank">example.com</a>'`+"\n")

	require.NoError(t, checker.Run(ctx, &checker.Options{Path: archivePath}))
}

// TestVerify_RejectsTamperedArchive verifies that a damaged archive
// surfaces as a verification error.
func TestVerify_RejectsTamperedArchive(t *testing.T) {
	requireGNUTar(t)
	t.Parallel()

	archivePath := buildPackage(t, writeAppDir(t, minimalManifest), "aarch64", time.Unix(1700000000, 0))

	raw, err := os.ReadFile(archivePath)
	require.NoError(t, err)

	tampered := filepath.Join(t.TempDir(), "tampered.eap")
	require.NoError(t, os.WriteFile(tampered, raw[:len(raw)/2], 0o644))

	err = checker.Run(context.Background(), &checker.Options{Path: tampered})
	require.Error(t, err)
}
