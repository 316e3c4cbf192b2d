package organize

import (
	"path/filepath"
	"regexp"
	"strings"
)

var simplifyPattern = regexp.MustCompile(`^([a-zA-Z0-9]+)[-_]?([0-9]+(?:\.[0-9]+)*)?`)

// SimplifyName reduces a file name to "library-version" or "library" for
// grouping. Only the last extension is dropped, so "lib-1.2.tar.gz"
// becomes "lib-1.2". Names that do not start with a letter or digit are
// returned without their extension.
func SimplifyName(fileName string) string {
	base := strings.ReplaceAll(stem(fileName), " ", "_")

	m := simplifyPattern.FindStringSubmatch(base)
	if m == nil {
		return base
	}
	if m[2] != "" {
		return m[1] + "-" + m[2]
	}
	return m[1]
}

// GroupPaths returns the group folder and the specific folder for
// fileName under outputDir.
func GroupPaths(outputDir, fileName string) (group, specific string) {
	folder := SimplifyName(fileName)
	groupName, _, _ := strings.Cut(folder, "-")
	group = filepath.Join(outputDir, groupName)
	return group, filepath.Join(group, folder)
}

// stem drops the last extension. A leading dot does not start an
// extension (".bashrc" keeps its name).
func stem(name string) string {
	ext := filepath.Ext(name)
	if ext == name || ext == "" {
		return name
	}
	trimmed := strings.TrimSuffix(name, ext)
	if strings.Trim(trimmed, ".") == "" {
		return name
	}
	return trimmed
}
