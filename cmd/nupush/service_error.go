// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/nupush/nupush/internal/auth"
	"github.com/nupush/nupush/internal/issue"
	"github.com/nupush/nupush/internal/publish"
	"github.com/nupush/nupush/internal/pushtool"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// issueFor maps a failed run to the catalog entry that explains it.
func issueFor(err error) issue.Id {
	switch publish.Classify(err) {
	case publish.KindConfiguration:
		switch {
		case errors.Is(err, auth.ErrUnknownFeedType):
			return issue.UnknownFeedTypeId
		case errors.Is(err, pushtool.ErrToolNotFound):
			return issue.PushToolNotFoundId
		default:
			return 0
		}
	case publish.KindValidation:
		return issue.NotARegularFileId
	case publish.KindAuthResolution:
		return issue.NoPushSourceId
	case publish.KindToolInvocation:
		return issue.PushFailedId
	case publish.KindIO:
		return issue.TempConfigFailedId
	default:
		return 0
	}
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	renderIssue(stderr, issue.Get(svcErr.IssueID))
}

// renderIssue prints the issue's help text, falling back to raw Markdown
// when glamour cannot render it.
func renderIssue(w io.Writer, entry *issue.Issue) {
	if entry == nil {
		return
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		fmt.Fprintln(w, string(entry.MarkdownMsg()))
		return
	}
	fmt.Fprint(w, rendered)
}
