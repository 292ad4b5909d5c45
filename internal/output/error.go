package output

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	detail := errorDetail(err)
	if format == FormatJSON {
		return WriteJSON(w, ErrorOutput{Error: detail})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", paintError("Error:"), detail.Message)
	if len(detail.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		keys := lo.Keys(detail.Details)
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, detail.Details[k])
		}
	}
	if detail.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", detail.Suggestion)
	}

	_, writeErr := io.WriteString(w, sb.String())
	return writeErr
}

// errorDetail flattens err, preferring the outermost message so wrapping
// context like the failing recipient is kept.
func errorDetail(err error) ErrorDetail {
	var we *wiserr.WiserError
	if !errors.As(err, &we) {
		return ErrorDetail{
			Code:     wiserr.ErrGeneral.Code,
			Message:  err.Error(),
			ExitCode: wiserr.ExitGeneral,
		}
	}

	msg := we.Message
	if error(we) != err { //nolint:errorlint // identity check on the outermost error
		msg = err.Error()
	}
	return ErrorDetail{
		Code:       we.Code,
		Message:    msg,
		Details:    we.Details,
		Suggestion: we.Suggestion,
		ExitCode:   we.ExitCode,
	}
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		return WriteJSON(w, map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
