// Package shell renders hearth's shell startup environment and wires it
// into the user's rc file.
//
// # Activation
//
// The rc file carries a single line:
//
//	eval "$(hearth activate zsh)"
//
// `hearth activate` loads the Lua configuration and prints a script that,
// in order, prepends PATH entries, loads the zsh framework and prompt
// theme, exports TERM, SCRIPTS and extra variables, sources optional files
// when they exist, defines aliases, and defines the search_packages,
// install_package and extract helper functions. Every rendered script is
// parsed with mvdan.cc/sh before it is returned.
//
// # Shell Detection
//
//  1. $SHELL environment variable
//  2. Parent process name (gopsutil)
//
// # RC File Management
//
//   - bash: ~/.bashrc
//   - zsh: ~/.zshrc
//
// Modifications are idempotent, optionally backed up, refuse symlinked rc
// files and are written atomically via temp file + rename.
package shell
