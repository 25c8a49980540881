package appmanifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/oshokin/acap-packager/internal/arch"
)

// architectureAll is the manifest architecture accepting any build target.
const architectureAll = "all"

// archCheckThreshold is the last schema version without an architecture field.
//
//nolint:gochecknoglobals // Parsed once, read-only afterwards.
var archCheckThreshold = semver.MustParse("1.3.0")

// ValidateArchitecture checks a declared architecture against the build
// target for schema versions newer than 1.3.0. A missing declaration is
// filled in with the target's canonical name on a working copy; the receiver
// and the file it was read from stay untouched. Running it again on the
// returned document is a no-op.
func (d *Document) ValidateArchitecture(target arch.Architecture) (*Document, error) {
	declared, err := d.SchemaVersion()
	if err != nil {
		return nil, err
	}

	// NewVersion coerces partial versions, so "1.3" compares as "1.3.0".
	schemaVersion, err := semver.NewVersion(declared)
	if err != nil {
		return nil, fmt.Errorf("parse schema version %q: %w", declared, err)
	}

	if !schemaVersion.GreaterThan(archCheckThreshold) {
		// Old schemas carry no architecture field to check.
		return d, nil
	}

	manifestArch, found, err := d.Architecture()
	if err != nil {
		return nil, err
	}

	if found {
		if manifestArch != architectureAll && manifestArch != target.Name() {
			return nil, &ArchitectureError{Declared: manifestArch, Target: target.Name()}
		}

		return d, nil
	}

	clone := d.Clone()

	setup, found, err := clone.find(PathSetup)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, &FieldNotFoundError{FieldPath: PathSetup}
	}

	setup.SetMember("architecture", String(target.Name()))

	return clone, nil
}
