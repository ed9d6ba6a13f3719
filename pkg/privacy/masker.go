package privacy

import (
	"fmt"
	"strings"
)

// MaskString obscures all but the last four characters. Short values are
// fully masked so their length is not recoverable.
func MaskString(value string) string {
	if len(value) < 4 {
		return "************"
	}
	mask := strings.Repeat("*", len(value)-4)
	return fmt.Sprintf("%s%s", mask, value[len(value)-4:])
}
