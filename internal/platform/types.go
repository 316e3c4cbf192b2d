// Package platform detects the host OS, architecture and Linux distribution
// and exposes them to Lua configurations as a read-only table.
//
// Distribution details come from gopsutil. When detection fails the package
// falls back to OS and architecture only, so an unknown distro never blocks
// shell activation.
package platform

import "context"

// Canonical Linux distribution families.
const (
	FamilyArch    = "arch"    // Arch Linux, Manjaro, EndeavourOS
	FamilyDebian  = "debian"  // Debian, Ubuntu, Mint
	FamilyFedora  = "fedora"  // Fedora, RHEL, CentOS
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyUnknown = "unknown" // anything else
)

// Info describes the machine hearth runs on.
type Info struct {
	OS      string // runtime.GOOS
	Arch    string // normalized, e.g. "amd64", "arm64"
	Distro  string // distro ID on Linux, e.g. "arch", "manjaro"
	Family  string // canonical family on Linux
	Version string // distro version on Linux (rolling releases report "")
}

// IsLinux reports whether the OS is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS reports whether the OS is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsArchFamily reports whether the host is an Arch-based distribution,
// the only family where pacman and yay are expected to exist.
func (i *Info) IsArchFamily() bool {
	return i.IsLinux() && i.Family == FamilyArch
}

// IsDebianFamily reports whether the host is a Debian-based distribution.
func (i *Info) IsDebianFamily() bool {
	return i.IsLinux() && i.Family == FamilyDebian
}

// IsFedoraFamily reports whether the host is a Fedora/RHEL-based distribution.
func (i *Info) IsFedoraFamily() bool {
	return i.IsLinux() && i.Family == FamilyFedora
}

// String renders a short human-readable summary.
func (i *Info) String() string {
	s := i.OS + "/" + i.Arch
	if i.Distro != "" {
		s += " (" + i.Distro
		if i.Version != "" {
			s += " " + i.Version
		}
		s += ")"
	}
	return s
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when detection has
// already happened and in tests.
type StaticDetector struct {
	Info *Info
	Err  error
}

// Detect returns the configured Info and error.
func (d StaticDetector) Detect(ctx context.Context) (*Info, error) {
	return d.Info, d.Err
}
