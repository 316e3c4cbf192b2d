// Package archive dispatches archive files to the matching extraction tool.
//
// It never parses archive contents itself. A file's format is chosen by
// suffix from an ordered Table in which longer suffixes win, so
// "notes.tar.gz" is a gzip-compressed tarball and never a bare gzip stream.
package archive

// Format is one member of the closed set of recognized archive formats.
type Format string

const (
	FormatTarBz2  Format = "tar.bz2"
	FormatTarGz   Format = "tar.gz"
	FormatTarXz   Format = "tar.xz"
	FormatTarZst  Format = "tar.zst"
	FormatTbz2    Format = "tbz2"
	FormatTgz     Format = "tgz"
	FormatTxz     Format = "txz"
	FormatTar     Format = "tar"
	FormatBz2     Format = "bz2"
	FormatGz      Format = "gz"
	FormatXz      Format = "xz"
	FormatZst     Format = "zst"
	FormatZip     Format = "zip"
	FormatRar     Format = "rar"
	Format7z      Format = "7z"
	FormatZ       Format = "Z"
	FormatUnknown Format = "unknown"
)

func (f Format) String() string {
	return string(f)
}

// IsTar reports whether the format is a (possibly compressed) tarball.
func (f Format) IsTar() bool {
	switch f {
	case FormatTarBz2, FormatTarGz, FormatTarXz, FormatTarZst,
		FormatTbz2, FormatTgz, FormatTxz, FormatTar:
		return true
	}
	return false
}

// SingleStream reports whether the format compresses exactly one file.
func (f Format) SingleStream() bool {
	switch f {
	case FormatBz2, FormatGz, FormatXz, FormatZst, FormatZ:
		return true
	}
	return false
}

// SupportsPassword reports whether the tool for f accepts a password.
func (f Format) SupportsPassword() bool {
	switch f {
	case FormatZip, FormatRar, Format7z:
		return true
	}
	return false
}

// tools lists the binary each format is extracted with.
var tools = map[Format]string{
	FormatTarBz2: "tar",
	FormatTarGz:  "tar",
	FormatTarXz:  "tar",
	FormatTarZst: "tar",
	FormatTbz2:   "tar",
	FormatTgz:    "tar",
	FormatTxz:    "tar",
	FormatTar:    "tar",
	FormatBz2:    "bunzip2",
	FormatGz:     "gunzip",
	FormatXz:     "unxz",
	FormatZst:    "unzstd",
	FormatZip:    "unzip",
	FormatRar:    "unrar",
	Format7z:     "7z",
	FormatZ:      "uncompress",
}

// Tool returns the binary used to extract f, or "" for FormatUnknown.
func (f Format) Tool() string {
	return tools[f]
}

// Tools returns every extraction binary once, in table order.
func Tools() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range DefaultTable().Rules() {
		tool := r.Format.Tool()
		if !seen[tool] {
			seen[tool] = true
			out = append(out, tool)
		}
	}
	return out
}
