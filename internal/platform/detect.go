package platform

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// archReleaseFile exists on every Arch-based install, even when os-release
// reports a derivative ID gopsutil does not know about.
var archReleaseFile = "/etc/arch-release"

// familyMap maps distro IDs and gopsutil family strings to canonical families.
var familyMap = map[string]string{
	"arch":        FamilyArch,
	"archlinux":   FamilyArch,
	"manjaro":     FamilyArch,
	"endeavouros": FamilyArch,
	"garuda":      FamilyArch,
	"artix":       FamilyArch,
	"debian":      FamilyDebian,
	"ubuntu":      FamilyDebian,
	"linuxmint":   FamilyDebian,
	"pop":         FamilyDebian,
	"fedora":      FamilyFedora,
	"rhel":        FamilyFedora,
	"centos":      FamilyFedora,
	"rocky":       FamilyFedora,
	"suse":        FamilySUSE,
	"opensuse":    FamilySUSE,
	"sles":        FamilySUSE,
}

// RealDetector implements Detector using runtime and gopsutil.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns platform information for the running host.
//
// Distro detection errors are swallowed: the returned Info then carries only
// OS and Arch. A cancelled context is the one hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: normalizeArch(runtime.GOARCH),
	}

	if runtime.GOOS != "linux" {
		return info, nil
	}

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		if fileExists(archReleaseFile) {
			info.Distro = "arch"
			info.Family = FamilyArch
		}
		return info, nil
	}

	info.Distro = normalize(distro)
	info.Version = normalize(version)
	info.Family = resolveFamily(info.Distro, family)
	if info.Family == FamilyUnknown && fileExists(archReleaseFile) {
		info.Family = FamilyArch
	}

	return info, nil
}

// resolveFamily prefers the distro ID and falls back to gopsutil's family.
func resolveFamily(distro, family string) string {
	if f, ok := familyMap[normalize(distro)]; ok {
		return f
	}
	if f, ok := familyMap[normalize(family)]; ok {
		return f
	}
	return FamilyUnknown
}

func normalizeArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return arch
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
