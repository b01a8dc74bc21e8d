package rollnumber

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a roll number as prefix followed by the zero-padded sequence, e.g. "A001".
func Format(prefix string, seq, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}

// NextSequence returns one past the highest sequence among roll numbers carrying prefix.
// Roll numbers that do not parse as prefix+digits are ignored.
func NextSequence(existing []string, prefix string) int {
	highest := 0
	for _, roll := range existing {
		digits, ok := strings.CutPrefix(roll, prefix)
		if !ok || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return highest + 1
}
