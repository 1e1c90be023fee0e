package paths

import (
	"fmt"
	"regexp"
)

var moduleIDRegexp = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

// ValidateModuleID checks that id is safe to use as a module id.
func ValidateModuleID(id string) error {
	if !moduleIDRegexp.MatchString(id) {
		return fmt.Errorf("invalid module id %q: must match ^[A-Za-z0-9_.:-]{1,64}$", id)
	}
	return nil
}
