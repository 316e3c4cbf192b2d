package archive

import (
	"path/filepath"
	"slices"
	"strings"
)

// Rule maps a file name suffix to a format.
type Rule struct {
	Suffix string
	Format Format
}

// Table matches file names against rules, longest suffix first.
type Table struct {
	rules []Rule
}

// NewTable sorts rules by suffix length, longest first. Equal lengths keep
// their declaration order.
func NewTable(rules ...Rule) *Table {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return len(b.Suffix) - len(a.Suffix)
	})
	return &Table{rules: sorted}
}

// DefaultTable returns the built-in rules.
func DefaultTable() *Table {
	return NewTable(
		Rule{".tar.bz2", FormatTarBz2},
		Rule{".tar.gz", FormatTarGz},
		Rule{".tar.xz", FormatTarXz},
		Rule{".tar.zst", FormatTarZst},
		Rule{".tbz2", FormatTbz2},
		Rule{".tgz", FormatTgz},
		Rule{".txz", FormatTxz},
		Rule{".tar", FormatTar},
		Rule{".bz2", FormatBz2},
		Rule{".gz", FormatGz},
		Rule{".xz", FormatXz},
		Rule{".zst", FormatZst},
		Rule{".zip", FormatZip},
		Rule{".rar", FormatRar},
		Rule{".7z", Format7z},
		Rule{".Z", FormatZ},
	)
}

// Rules returns the rules in match order.
func (t *Table) Rules() []Rule {
	return slices.Clone(t.rules)
}

// Match returns the format for path and the matched suffix. Matching is
// case-sensitive and needs a non-empty stem, so ".gz" alone is unknown.
func (t *Table) Match(path string) (Format, string) {
	base := filepath.Base(path)
	for _, r := range t.rules {
		if len(base) > len(r.Suffix) && strings.HasSuffix(base, r.Suffix) {
			return r.Format, r.Suffix
		}
	}
	return FormatUnknown, ""
}

// MatchFold is Match with a case-insensitive fallback. An exact match wins;
// otherwise the lowercased name is compared against the lowercased rules
// and the suffix is returned as it appears in path.
func (t *Table) MatchFold(path string) (Format, string) {
	if f, suffix := t.Match(path); f != FormatUnknown {
		return f, suffix
	}
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, r := range t.rules {
		if len(base) > len(r.Suffix) && strings.HasSuffix(lower, strings.ToLower(r.Suffix)) {
			return r.Format, base[len(base)-len(r.Suffix):]
		}
	}
	return FormatUnknown, ""
}
