// Package controller drives the interactive session: it collects input through
// a display.Sink, calls the workflow services and reports their outcome.
package controller

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/service"
	"github.com/epic-events/crm/internal/validation"
	"go.uber.org/zap"
)

// errCancelled is returned when the user leaves a required prompt empty
var errCancelled = errors.New("cancelled")

// MsgInvalidInput is shown for an unknown menu selection
const MsgInvalidInput = "Invalid input, please choose one of the listed options."

// ask prompts until parse accepts the answer. An empty answer cancels.
func ask[T any](sink display.Sink, label string, parse func(string) (T, error)) (T, error) {
	var zero T
	for {
		answer, err := sink.Prompt(label)
		if err != nil {
			return zero, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return zero, errCancelled
		}
		value, err := parse(answer)
		if err != nil {
			sink.ShowError(validation.Message(err))
			continue
		}
		return value, nil
	}
}

// askDefault prompts like ask, but an empty answer keeps current
func askDefault[T any](sink display.Sink, label string, current T, parse func(string) (T, error)) (T, error) {
	for {
		answer, err := sink.Prompt(fmt.Sprintf("%s [%v]", label, current))
		if err != nil {
			return current, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return current, nil
		}
		value, err := parse(answer)
		if err != nil {
			sink.ShowError(validation.Message(err))
			continue
		}
		return value, nil
	}
}

// askText prompts for free text
func askText(sink display.Sink, label string) (string, error) {
	return ask(sink, label, text)
}

// confirm asks a yes/no question; anything but y/yes is no
func confirm(sink display.Sink, label string) (bool, error) {
	answer, err := sink.Prompt(label + " (y/N)")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// choose shows menu and returns the key of the selected option. An empty
// answer or "0" backs out.
func choose(sink display.Sink, menu display.Menu) (string, error) {
	sink.Show(menu)
	for {
		answer, err := sink.Prompt("Choice:")
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" || answer == "0" {
			return "", errCancelled
		}
		for _, opt := range menu.Options {
			if opt.Key == answer {
				return answer, nil
			}
		}
		sink.ShowError(MsgInvalidInput)
	}
}

func text(s string) (string, error) {
	return s, nil
}

func email(s string) (string, error) {
	return s, validation.Email(s)
}

func phone(s string) (string, error) {
	return s, validation.Phone(s)
}

func password(s string) (string, error) {
	return s, validation.Password(s)
}

func role(s string) (domain.UserRoleType, error) {
	r, ok := domain.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("role must be one of %v", domain.AllRoles)
	}
	return r, nil
}

// attempt runs op, re-running it while it fails with an error the user can
// correct by entering something else
func attempt(sink display.Sink, logger *zap.Logger, op func() error) error {
	for {
		err := op()
		retry, err := handle(sink, logger, err)
		if !retry {
			return err
		}
	}
}

// report runs op once and reports its failure
func report(sink display.Sink, logger *zap.Logger, op func() error) error {
	_, err := handle(sink, logger, op())
	return err
}

// handle reports err to the user. Domain errors are swallowed; io.EOF and
// unclassified errors are returned for the caller to deal with.
func handle(sink display.Sink, logger *zap.Logger, err error) (retry bool, _ error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, errCancelled):
		sink.Show(display.Info("Cancelled."))
		return false, nil
	case errors.Is(err, io.EOF):
		return false, err
	}

	kind := service.Kind(err)
	if kind == domain.ErrorKindInternal {
		return false, err
	}
	sink.ShowError(errorMessage(err))
	if kind == domain.ErrorKindStorage {
		logger.Error("operation failed", zap.Error(err))
	}
	return service.IsRecoverable(err), nil
}

// errorMessage renders a service error for the user
func errorMessage(err error) string {
	switch service.Kind(err) {
	case domain.ErrorKindValidation:
		msg := strings.TrimPrefix(validation.Message(err), service.ErrInvalidInput.Error()+": ")
		return capitalize(msg)
	case domain.ErrorKindStorage:
		return "The operation could not be saved, nothing was changed. Please try again later."
	case domain.ErrorKindPermission:
		return "You are not allowed to do this."
	default:
		return capitalize(err.Error())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// cancelOK treats backing out of a menu as success
func cancelOK(err error) error {
	if errors.Is(err, errCancelled) {
		return nil
	}
	return err
}

// askOptional prompts once; an empty answer is accepted
func askOptional(sink display.Sink, label string) (string, error) {
	answer, err := sink.Prompt(label + " (optional)")
	return strings.TrimSpace(answer), err
}
