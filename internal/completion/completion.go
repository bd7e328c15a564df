// Package completion provides CLI tab-completion for winguard.
//
// The binary itself handles completions: when invoked with COMP_LINE set
// (by the shell), it outputs matching completions and exits.
// Works across bash, zsh, and fish with a one-time install.
package completion

import (
	"os"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/install"
	"github.com/posener/complete/v2/predict"
)

// guardFlags are shared by every subcommand that runs the scanning core.
var guardFlags = map[string]complete.Predictor{
	"config":    predict.Files("*.yaml"),
	"force":     predict.Nothing,
	"mode":      predict.Set{"fix", "warn", "block"},
	"log-level": predict.Set{"trace", "debug", "info", "warn", "error"},
	"no-color":  predict.Nothing,
}

// command defines the full winguard CLI completion tree.
var command = &complete.Command{
	Sub: map[string]*complete.Command{
		"hook":     {Flags: guardFlags},
		"gate":     {Flags: guardFlags},
		"stop":     {Flags: guardFlags},
		"posttool": {Flags: guardFlags},
		"check":    {Flags: guardFlags, Args: predict.Something},
		"fix":      {Flags: guardFlags, Args: predict.Something},
		"explain":  {Args: predict.Something},
		"serve": {
			Flags: map[string]complete.Predictor{
				"config":    predict.Files("*.yaml"),
				"port":      predict.Nothing,
				"watch":     predict.Nothing,
				"log-level": predict.Set{"trace", "debug", "info", "warn", "error"},
				"no-color":  predict.Nothing,
			},
		},
		"events":     {Flags: map[string]complete.Predictor{"n": predict.Nothing, "json": predict.Nothing}},
		"version":    {},
		"help":       {},
		"completion": {Flags: map[string]complete.Predictor{"install": predict.Nothing, "uninstall": predict.Nothing}},
	},
}

// Run checks if the binary was invoked for shell completion.
// If COMP_LINE is set, it outputs completions and exits (never returns).
// Otherwise it returns false and the program continues normally.
func Run() bool {
	if os.Getenv("COMP_LINE") != "" || os.Getenv("COMP_INSTALL") != "" || os.Getenv("COMP_UNINSTALL") != "" {
		command.Complete("winguard")
		return true
	}
	return false
}

// Install sets up shell completion for the detected shells.
func Install() error {
	return install.Install("winguard")
}

// Uninstall removes shell completion for the detected shells.
func Uninstall() error {
	return install.Uninstall("winguard")
}

// IsInstalled reports whether shell completion is already set up.
func IsInstalled() bool {
	return install.IsInstalled("winguard")
}
