package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// CheckCompatibility reports whether a result produced by resultVersion can
// be read by an engine at engineVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - The result's minor version must not be newer than the engine's
//   - Patch versions can differ
//
// Examples:
//   - Engine 1.2.0, Result 1.2.7 -> OK (patch differs)
//   - Engine 1.3.0, Result 1.2.0 -> OK (older minor)
//   - Engine 1.2.0, Result 1.3.0 -> ERROR (result is newer)
//   - Engine 2.0.0, Result 1.2.0 -> ERROR (major differs)
func CheckCompatibility(engineVersion, resultVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	resultVersion = strings.TrimPrefix(resultVersion, "v")

	if engineVersion == "main" || resultVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid engine version '%s'", engineVersion)
	}

	resultSemver, err := semver.NewVersion(resultVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid result version '%s'", resultVersion)
	}

	if engineSemver.Major() != resultSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: engine is %d.x.x but result was produced by %d.x.x",
			engineSemver.Major(), resultSemver.Major())
	}

	if resultSemver.Minor() > engineSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version too new: engine is %d.%d.x but result was produced by %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			resultSemver.Major(), resultSemver.Minor())
	}

	return nil
}
