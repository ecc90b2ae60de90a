package registry

import (
	"fmt"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// The validators are pure: they classify input as accepted or rejected and
// never touch registry state.

// ValidateStringLength rejects strings longer than max.
func ValidateStringLength(s string, max int) error {
	if len(s) > max {
		return fmt.Errorf("%w: %d > %d", interfaces.ErrInvalidStringLength, len(s), max)
	}
	return nil
}

// ValidateQuality rejects quality scores outside [0, MaxQuality].
func ValidateQuality(q int) error {
	if q < 0 || q > interfaces.MaxQuality {
		return fmt.Errorf("%w: %d", interfaces.ErrInvalidQuality, q)
	}
	return nil
}

// ValidateCertifications rejects lists longer than MaxCertifications, then
// checks each entry's length in order and reports the first violation.
func ValidateCertifications(list []string) error {
	if len(list) > interfaces.MaxCertifications {
		return fmt.Errorf("%w: %d > %d", interfaces.ErrMaxCertsExceeded, len(list), interfaces.MaxCertifications)
	}
	for i, cert := range list {
		if err := ValidateStringLength(cert, interfaces.MaxCertificationLen); err != nil {
			return fmt.Errorf("certification %d: %w", i, err)
		}
	}
	return nil
}
