package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/acap-packager/internal/appmanifest"
	"github.com/oshokin/acap-packager/internal/arch"
	"github.com/oshokin/acap-packager/internal/archive"
	"github.com/oshokin/acap-packager/internal/conf"
	"github.com/oshokin/acap-packager/internal/config"
	"github.com/oshokin/acap-packager/internal/logger"
	"github.com/oshokin/acap-packager/internal/staging"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// AppDir is the built application directory holding the executable,
	// manifest.json and LICENSE. Empty means the current directory.
	AppDir string
	// Architecture is the build target name; empty falls back to the
	// settings file.
	Architecture string
	// ConfigPath is an optional path to packaging settings. When set, the
	// file must exist; the default path is used as a silent fallback.
	ConfigPath string
	// BuildDir overrides the staging root from the settings file.
	BuildDir string
	// OutputDir overrides the archive destination from the settings file.
	OutputDir string
	// AdditionalFiles are staged next to the executable and listed in the
	// OTHERFILES parameter, after the ones from the settings file.
	AdditionalFiles []string
	// Timestamp overrides the archive member modification time for
	// reproducible builds. Zero defers to SOURCE_DATE_EPOCH.
	Timestamp time.Time
}

// packager assembles one application directory into a package archive.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type packager struct {
	// cfg holds the merged packaging settings.
	cfg *config.Config
	// appDir is the application directory being packaged.
	appDir string
	// target is the parsed build architecture.
	target arch.Architecture
	// doc is the parsed application manifest.
	doc *appmanifest.Document
	// appName names the executable inside appDir.
	appName string
	// stamp overrides archive member times, zero for environment control.
	stamp time.Time
}

var (
	// errArchitectureRequired indicates that neither the flag nor the
	// settings file named a build target.
	errArchitectureRequired = errors.New("build target architecture is not set")
	// errLicenseRequired indicates a missing LICENSE next to the executable.
	errLicenseRequired = errors.New("a LICENSE file is required next to the executable")
)

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "acap-packager")

	pkg, err := newPackager(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	if err = pkg.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// newPackager merges settings with flags and checks the application
// directory before any staging happens.
func newPackager(ctx context.Context, opts *Options) (*packager, error) {
	settings, err := loadSettings(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	mergeOptions(settings, opts)

	if err = config.Validate(settings); err != nil {
		return nil, err
	}

	if settings.Architecture == "" {
		return nil, errArchitectureRequired
	}

	target, err := arch.Parse(settings.Architecture)
	if err != nil {
		return nil, err
	}

	appDir := opts.AppDir
	if appDir == "" {
		appDir = "."
	}

	doc, err := appmanifest.Load(filepath.Join(appDir, staging.ManifestFilename))
	if err != nil {
		return nil, err
	}

	if err = doc.CheckSchema(); err != nil {
		// Schema findings do not stop a build, device compatibility does.
		logger.Warnf(ctx, "Manifest schema check failed: %v", err)
	}

	appName, err := doc.AppName()
	if err != nil {
		return nil, err
	}

	pkg := &packager{
		cfg:     settings,
		appDir:  appDir,
		target:  target,
		doc:     doc,
		appName: appName,
		stamp:   opts.Timestamp,
	}

	if err = pkg.checkInputs(); err != nil {
		return nil, err
	}

	return pkg, nil
}

// loadSettings reads the settings file. An explicitly named file must
// exist; the default path silently falls back to built-in defaults.
func loadSettings(path string) (*config.Config, error) {
	settings, err := config.Load(path)
	if err == nil {
		return settings, nil
	}

	if path == "" && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}

	return nil, fmt.Errorf("load settings: %w", err)
}

// mergeOptions lets command line flags win over the settings file.
func mergeOptions(settings *config.Config, opts *Options) {
	if opts.Architecture != "" {
		settings.Architecture = opts.Architecture
	}

	if opts.BuildDir != "" {
		settings.BuildDir = opts.BuildDir
	}

	if opts.OutputDir != "" {
		settings.OutputDir = opts.OutputDir
	}

	settings.AdditionalFiles = append(settings.AdditionalFiles, opts.AdditionalFiles...)
}

// checkInputs verifies the mandatory members of the application directory.
func (p *packager) checkInputs() error {
	if _, err := os.Stat(p.executablePath()); err != nil {
		return fmt.Errorf("executable %s: %w", p.executablePath(), err)
	}

	if _, err := os.Stat(p.licensePath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errLicenseRequired
		}

		return fmt.Errorf("license %s: %w", p.licensePath(), err)
	}

	return nil
}

// Run stages the application, writes the descriptors and builds the archive.
func (p *packager) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Packaging application",
		"app", p.appName,
		"architecture", p.target.Name(),
		"app_dir", p.appDir)

	tree, err := p.stage(ctx)
	if err != nil {
		return err
	}

	if err = p.writeDescriptors(tree); err != nil {
		return err
	}

	builder := archive.Builder{Timestamp: p.stamp}

	archivePath, err := builder.Build(ctx, tree)
	if err != nil {
		return err
	}

	finalPath, err := p.deliver(archivePath)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Package created", "path", finalPath)

	return nil
}

// stage creates the staging tree and copies every optional member in.
func (p *packager) stage(ctx context.Context) (*staging.Tree, error) {
	stagingDir := filepath.Join(p.cfg.BuildDir, p.target.Name(), p.appName)

	logger.InfoKV(ctx, "Staging application", "dir", stagingDir)

	tree, err := staging.Create(stagingDir, p.target, p.appName,
		filepath.Join(p.appDir, staging.ManifestFilename),
		p.executablePath(),
		p.licensePath())
	if err != nil {
		return nil, err
	}

	for _, name := range []string{"html", "declarations", "lib"} {
		source := filepath.Join(p.appDir, name)

		info, err := os.Stat(source)
		if err != nil || !info.IsDir() {
			continue
		}

		if err = tree.AddTree(source); err != nil {
			return nil, err
		}
	}

	for _, file := range p.cfg.AdditionalFiles {
		if err = tree.AddOtherFile(file); err != nil {
			return nil, err
		}
	}

	if err = p.stagePreUninstallScript(tree); err != nil {
		return nil, err
	}

	return tree, nil
}

// stagePreUninstallScript copies the declared uninstall hook, which must
// exist in the application directory when the manifest names it.
func (p *packager) stagePreUninstallScript(tree *staging.Tree) error {
	script, found, err := p.doc.PreUninstallScript()
	if err != nil {
		return err
	}

	if !found {
		return nil
	}

	source := filepath.Join(p.appDir, script)
	if _, err = os.Stat(source); err != nil {
		return fmt.Errorf("pre-uninstall script %s: %w", source, err)
	}

	return tree.AddFile(source)
}

// writeDescriptors generates param.conf and, when endpoints remain after
// filtering, cgi.conf. The parameter descriptor is written even when empty.
func (p *packager) writeDescriptors(tree *staging.Tree) error {
	params, err := conf.BuildParamConf(p.doc)
	if err != nil {
		return err
	}

	if err = tree.WriteFile(conf.ParamConfFilename, []byte(params.Render())); err != nil {
		return err
	}

	cgi, err := conf.BuildCgiConf(p.doc)
	if err != nil {
		return err
	}

	if !cgi.Empty() {
		if err = tree.WriteFile(conf.CgiConfFilename, []byte(cgi.Render())); err != nil {
			return err
		}
	}

	return nil
}

// deliver copies the archive from the staging directory to the output
// directory and returns the final path.
func (p *packager) deliver(archivePath string) (string, error) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", p.cfg.OutputDir, err)
	}

	finalPath := filepath.Join(p.cfg.OutputDir, filepath.Base(archivePath))

	if err := copyFile(archivePath, finalPath); err != nil {
		return "", err
	}

	return finalPath, nil
}

func (p *packager) executablePath() string {
	return filepath.Join(p.appDir, p.appName)
}

func (p *packager) licensePath() string {
	return filepath.Join(p.appDir, staging.LicenseFilename)
}

// copyFile copies a finished archive byte for byte.
func copyFile(src, dest string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer source.Close()

	target, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err = io.Copy(target, source); err != nil {
		target.Close()

		return fmt.Errorf("copy %s: %w", src, err)
	}

	if err = target.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}

	return nil
}
