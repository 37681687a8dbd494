package display

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/epic-events/crm/internal/domain"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	headerStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

const dateLayout = "02-01-2006"

// Terminal is the interactive Sink: line-based input, lipgloss output
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a terminal sink reading from in and writing to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Prompt reads one line of input
func (t *Terminal) Prompt(label string) (string, error) {
	fmt.Fprint(t.out, primaryStyle.Render(label)+" ")
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ShowError prints an error message
func (t *Terminal) ShowError(message string) {
	fmt.Fprintln(t.out, errorStyle.Render("✗ ")+message)
}

// Show renders a payload
func (t *Terminal) Show(payload any) {
	switch p := payload.(type) {
	case Notice:
		t.notice(p)
	case Menu:
		t.menu(p)
	case Welcome:
		t.section(fmt.Sprintf("Welcome %s (%s)", p.User.FullName, p.User.Role))
	case Users:
		t.users(p)
	case *domain.User:
		t.users(Users{*p})
	case Customers:
		t.customers(p)
	case *domain.Customer:
		t.customers(Customers{*p})
	case Contracts:
		t.contracts(p)
	case *domain.Contract:
		t.contracts(Contracts{*p})
	case Events:
		t.events(p)
	case *domain.Event:
		t.events(Events{*p})
	case AuditLogs:
		t.auditLogs(p)
	case string:
		fmt.Fprintln(t.out, p)
	default:
		fmt.Fprintf(t.out, "%v\n", p)
	}
}

func (t *Terminal) notice(n Notice) {
	switch n.Level {
	case LevelSuccess:
		fmt.Fprintln(t.out, successStyle.Render("✓ ")+n.Message)
	case LevelWarning:
		fmt.Fprintln(t.out, warningStyle.Render("⚠ ")+n.Message)
	default:
		fmt.Fprintln(t.out, infoStyle.Render("ℹ ")+n.Message)
	}
}

func (t *Terminal) section(title string) {
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, primaryStyle.Render(title))
	fmt.Fprintln(t.out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

func (t *Terminal) menu(m Menu) {
	t.section(m.Title)
	for _, opt := range m.Options {
		fmt.Fprintf(t.out, "  %s  %s\n", primaryStyle.Render(opt.Key), opt.Label)
	}
	fmt.Fprintln(t.out)
}

func (t *Terminal) table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(t.out, mutedStyle.Render("Nothing to display"))
		return
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(t.out, tbl.Render())
}

func (t *Terminal) users(users Users) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Username, u.FullName, u.Email, u.Phone, string(u.Role)})
	}
	t.table([]string{"Username", "Full name", "Email", "Phone", "Role"}, rows)
}

func (t *Terminal) customers(customers Customers) {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		sales := ""
		if c.Sales != nil {
			sales = c.Sales.FullName
		}
		rows = append(rows, []string{
			c.FullName(), c.Email, c.Phone, c.CompanyName,
			c.CreatedAt.Format(dateLayout), c.LastContactDate.Format(dateLayout), sales,
		})
	}
	t.table([]string{"Name", "Email", "Phone", "Company", "Created", "Last contact", "Sales contact"}, rows)
}

func (t *Terminal) contracts(contracts Contracts) {
	rows := make([][]string, 0, len(contracts))
	for i, c := range contracts {
		customer, manager := "", ""
		if c.Customer != nil {
			customer = c.Customer.CompanyName
		}
		if c.Manager != nil {
			manager = c.Manager.FullName
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1), customer, manager,
			formatAmount(c.TotalAmount), formatAmount(c.RemainingAmount),
			yesNo(c.IsSigned), c.CreationDate.Format(dateLayout),
		})
	}
	t.table([]string{"#", "Customer", "Sales contact", "Total", "Remaining", "Signed", "Last update"}, rows)
}

func (t *Terminal) events(events Events) {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		support := mutedStyle.Render("none")
		if e.Support != nil {
			support = e.Support.FullName
		}
		rows = append(rows, []string{
			e.Name, e.CustomerName, e.CustomerContact,
			e.StartDate.Format(dateLayout), e.EndDate.Format(dateLayout),
			e.Location, strconv.Itoa(e.Attendees), support, e.Notes,
		})
	}
	t.table([]string{"Event", "Customer", "Contact", "Start", "End", "Location", "Attendees", "Support", "Notes"}, rows)
}

func (t *Terminal) auditLogs(logs AuditLogs) {
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		outcome := successStyle.Render(string(l.Outcome))
		if l.Outcome != domain.AuditOutcomeSuccess {
			outcome = warningStyle.Render(string(l.Outcome))
		}
		rows = append(rows, []string{
			l.PerformedAt.Format(dateLayout + " 15:04"), l.UserEmail, string(l.Action), outcome,
			l.EntityType, l.EntityName, l.Detail,
		})
	}
	t.table([]string{"When", "By", "Action", "Outcome", "Entity", "Name", "Detail"}, rows)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return successStyle.Render("yes")
	}
	return warningStyle.Render("no")
}
