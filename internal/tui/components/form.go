package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/model"
	"github.com/Veraticus/spendsync/internal/tui/themes"
)

// FormKind identifies what a form creates or edits.
type FormKind int

// Form kinds.
const (
	FormAddTransaction FormKind = iota
	FormAddAccount
	FormEditBudget
)

func (k FormKind) String() string {
	switch k {
	case FormAddTransaction:
		return "Add Transaction"
	case FormAddAccount:
		return "Add Account"
	case FormEditBudget:
		return "Edit Budget"
	default:
		return "Form"
	}
}

type formField struct {
	label    string
	input    textinput.Model
	optional bool
}

// FormModel collects text fields and turns them into an engine command on submit.
type FormModel struct {
	theme  themes.Theme
	now    func() time.Time
	err    string
	fields []formField
	kind   FormKind
	focus  int
	width  int
}

func newField(label, placeholder string, limit int) formField {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Prompt = ""
	input.Cursor.SetMode(cursor.CursorStatic)
	return formField{label: label, input: input}
}

func newForm(theme themes.Theme, kind FormKind, fields ...formField) FormModel {
	f := FormModel{
		theme:  theme,
		now:    time.Now,
		kind:   kind,
		fields: fields,
		width:  50,
	}
	f.fields[0].input.Focus()
	return f
}

// NewTransactionForm creates the add-transaction form.
func NewTransactionForm(theme themes.Theme, now func() time.Time) FormModel {
	date := newField("Date", "YYYY-MM-DD (default today)", 10)
	date.optional = true
	kind := newField("Type", "expense or income", 7)
	kind.input.SetValue(string(model.TypeExpense))

	f := newForm(theme, FormAddTransaction,
		newField("Title", "Groceries", 80),
		newField("Category", "Food", 40),
		newField("Amount", "0.00", 16),
		kind,
		date,
	)
	if now != nil {
		f.now = now
	}
	return f
}

// NewAccountForm creates the add-account form.
func NewAccountForm(theme themes.Theme) FormModel {
	balance := newField("Opening balance", "0.00", 16)
	balance.optional = true
	return newForm(theme, FormAddAccount,
		newField("Name", "HDFC Savings", 60),
		newField("Type", "bank, wallet, credit", 30),
		balance,
	)
}

// NewBudgetForm creates the budget form prefilled with the current limit.
func NewBudgetForm(theme themes.Theme, current decimal.Decimal) FormModel {
	limit := newField("Monthly limit", "10000", 16)
	if current.IsPositive() {
		limit.input.SetValue(current.String())
	}
	f := newForm(theme, FormEditBudget, limit)
	f.fields[0].input.CursorEnd()
	return f
}

// Kind returns what the form edits.
func (f FormModel) Kind() FormKind {
	return f.kind
}

// Err returns the message currently shown under the form.
func (f FormModel) Err() string {
	return f.err
}

// SetError shows msg under the form, typically a rejection from the session.
func (f *FormModel) SetError(msg string) {
	f.err = msg
}

// SetValue fills the field at index i.
func (f *FormModel) SetValue(i int, value string) {
	if i >= 0 && i < len(f.fields) {
		f.fields[i].input.SetValue(value)
	}
}

// Resize updates the component size.
func (f *FormModel) Resize(width int) {
	f.width = width
	for i := range f.fields {
		f.fields[i].input.Width = max(width-6, 10)
	}
}

// Update handles focus movement, submission and cancellation.
func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return f, emit(FormCancelledMsg{})
		case "tab", "down":
			f.move(1)
			return f, nil
		case "shift+tab", "up":
			f.move(-1)
			return f, nil
		case "enter":
			if f.focus < len(f.fields)-1 {
				f.move(1)
				return f, nil
			}
			return f.submit()
		}
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f *FormModel) move(delta int) {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f FormModel) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f FormModel) submit() (FormModel, tea.Cmd) {
	cmd, err := f.command()
	if err != nil {
		f.err = err.Error()
		return f, nil
	}
	f.err = ""
	return f, emit(CommandMsg{Command: cmd})
}

// command builds the engine command from the current field values.
func (f FormModel) command() (engine.Command, error) {
	switch f.kind {
	case FormAddTransaction:
		amount, err := model.ParseAmount("amount", f.value(2))
		if err != nil {
			return nil, err
		}
		date := model.NewDate(f.now())
		if raw := f.value(4); raw != "" {
			if date, err = model.ParseDate(raw); err != nil {
				return nil, err
			}
		}
		return engine.AddTransaction{Transaction: model.NewTransaction{
			Title:    f.value(0),
			Category: f.value(1),
			Amount:   amount,
			Type:     model.TransactionType(strings.ToLower(f.value(3))),
			Date:     date,
		}}, nil

	case FormAddAccount:
		balance := decimal.Zero
		if raw := f.value(2); raw != "" {
			var err error
			if balance, err = model.ParseAmount("balance", raw); err != nil {
				return nil, err
			}
		}
		return engine.AddAccount{Account: model.NewAccount{
			Name:    f.value(0),
			Type:    f.value(1),
			Balance: balance,
		}}, nil

	case FormEditBudget:
		limit, err := model.ParseAmount("budget_limit", f.value(0))
		if err != nil {
			return nil, err
		}
		return engine.UpdateBudget{Limit: limit}, nil

	default:
		return nil, fmt.Errorf("unknown form kind %d", f.kind)
	}
}

// View renders the form.
func (f FormModel) View() string {
	lines := []string{f.theme.Title.Render(f.kind.String()), ""}
	for i, field := range f.fields {
		label := field.label
		if field.optional {
			label += " (optional)"
		}
		labelStyle := f.theme.Subtitle
		if i == f.focus {
			labelStyle = lipgloss.NewStyle().Foreground(f.theme.Primary).Bold(true)
		}
		lines = append(lines, labelStyle.Render(label), "  "+field.input.View(), "")
	}

	if f.err != "" {
		lines = append(lines, f.theme.StatusError.Render(f.err), "")
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(f.theme.Muted).Render("tab next • enter submit • esc cancel"))

	return f.theme.Card.Width(f.width).Render(strings.Join(lines, "\n"))
}
