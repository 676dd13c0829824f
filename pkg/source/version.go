package source

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// SupportedMajor is the recording format major version this reader understands.
const SupportedMajor = "v1"

// FormatVersion is written into new recordings.
const FormatVersion = "1.0.0"

func checkVersion(toCheck string) error {
	if !strings.HasPrefix(toCheck, "v") {
		toCheck = "v" + toCheck
	}
	if !semver.IsValid(toCheck) {
		return fmt.Errorf("%w: invalid version %q", ErrUnsupportedVersion, toCheck)
	}
	if semver.Major(toCheck) != SupportedMajor {
		return fmt.Errorf("%w: %s (supported: %s.x)", ErrUnsupportedVersion, toCheck, SupportedMajor)
	}
	return nil
}
