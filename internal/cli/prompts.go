package cli

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Prompt functions are variables so tests can answer them.
//
//nolint:gochecknoglobals // test seams
var (
	promptConfirmFn = promptConfirm
	isInteractiveFn = isInteractive
)

// errNotConfirmed is returned when the user declines a confirmation.
var errNotConfirmed = wiserr.WithSuggestion(
	wiserr.New("NOT_CONFIRMED", "operation not confirmed"),
	"re-run with --yes to skip the confirmation prompt",
)

// promptConfirm asks a yes/no question on the terminal. It answers no when
// stdin is not a terminal.
func promptConfirm(message string) bool {
	if !isInteractiveFn() {
		return false
	}
	proceed := false
	if err := survey.AskOne(&survey.Confirm{Message: message}, &proceed, survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)); err != nil {
		return false
	}
	return proceed
}

// requireConfirmation fails with errNotConfirmed unless skip is set or the
// user agrees.
func requireConfirmation(message string, skip bool) error {
	if skip {
		return nil
	}
	if !promptConfirmFn(message) {
		return errNotConfirmed
	}
	return nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
}
