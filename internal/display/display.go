// Package display is the presentation boundary of the CRM. The core hands it
// semantic payloads (entity snapshots, menus, notices) and reads user input
// back through Prompt; formatting stays on this side.
package display

import "github.com/epic-events/crm/internal/domain"

// Sink receives prompts, results and error messages
type Sink interface {
	// Prompt shows label and returns the trimmed line entered by the user.
	// io.EOF means the input stream is closed.
	Prompt(label string) (string, error)
	Show(payload any)
	ShowError(message string)
}

// Level grades a Notice
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
)

// Notice is a one-line message
type Notice struct {
	Level   Level
	Message string
}

// Info builds an informational notice
func Info(message string) Notice {
	return Notice{Level: LevelInfo, Message: message}
}

// Success builds a success notice
func Success(message string) Notice {
	return Notice{Level: LevelSuccess, Message: message}
}

// Warning builds a warning notice
func Warning(message string) Notice {
	return Notice{Level: LevelWarning, Message: message}
}

// MenuOption is a selectable entry of a Menu
type MenuOption struct {
	Key   string
	Label string
}

// Menu is a titled list of options
type Menu struct {
	Title   string
	Options []MenuOption
}

// Welcome greets the authenticated user
type Welcome struct {
	User *domain.User
}

// Payloads for entity snapshots
type (
	Users     []domain.User
	Customers []domain.Customer
	Contracts []domain.Contract
	Events    []domain.Event
	AuditLogs []domain.AuditLog
)
