package shell

// Environment variable names used by hearth shell integration
const (
	// EnvActive is exported by the activation script.
	EnvActive = "HEARTH_ACTIVE"

	// EnvDebug enables debug logging when set
	EnvDebug = "HEARTH_DEBUG"
)

// Activation and backup markers
const (
	// ActivationMarker is the string that must appear in activation commands
	ActivationMarker = "hearth activate"

	// BackupSuffix is the prefix for timestamped backup files
	BackupSuffix = ".hearth-backup"

	// rcHeader precedes the activation line in rc files.
	rcHeader = "# hearth - shell environment"
)
