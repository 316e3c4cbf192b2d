package packages

import (
	"bufio"
	"strings"
)

// ParseVersion returns the token following the "Version" label in
// "Field : value" formatted tool output, or "" when there is none.
func ParseVersion(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		field, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(field) != "Version" {
			continue
		}
		if tokens := strings.Fields(value); len(tokens) > 0 {
			return tokens[0]
		}
		return ""
	}
	return ""
}

// FilterLines returns the lines of output that contain term. Matching is a
// case-sensitive substring test on the raw line.
func FilterLines(output, term string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); strings.Contains(line, term) {
			lines = append(lines, line)
		}
	}
	return lines
}
