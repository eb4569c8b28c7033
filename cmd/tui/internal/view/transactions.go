package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/ledger"
)

type transactionsState int

const (
	transactionsStateAccountSelect transactionsState = iota
	transactionsStateLoading
	transactionsStateList
	transactionsStateError
)

type TransactionsModel struct {
	CommonModel
	ledgerService *ledger.Service
	userID        uuid.UUID

	state         transactionsState
	accounts      []ledger.Account
	accountCursor int

	categories map[uuid.UUID]string
	txList     list.Model

	err error
}

func NewTransactionsModel(ledgerSvc *ledger.Service, userID uuid.UUID) TransactionsModel {
	return TransactionsModel{
		ledgerService: ledgerSvc,
		userID:        userID,
	}
}

func (m TransactionsModel) Title() string { return "Browse Transactions" }

func (m TransactionsModel) ShortHelp() string {
	if m.state == transactionsStateList {
		return "Esc: back to account select"
	}

	return "Esc: back | Enter: select"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == transactionsStateList || m.state == transactionsStateError {
				m.state = transactionsStateAccountSelect
				m.err = nil

				return m, nil
			}

			return m, Back
		}

		if m.state == transactionsStateAccountSelect {
			return m.updateAccountSelect(msg)
		}

	case txAccountsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = transactionsStateError

			return m, nil
		}

		m.accounts = msg.accounts
		m.state = transactionsStateAccountSelect

		return m, nil

	case transactionsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = transactionsStateError

			return m, nil
		}

		m.categories = msg.categories

		items := make([]list.Item, len(msg.transactions))
		for i, tx := range msg.transactions {
			items[i] = transactionItem{tx: tx}
		}

		m.txList = list.New(items, transactionDelegate{categories: m.categories}, 90, 20)
		m.txList.Title = "Transactions"
		m.txList.SetShowStatusBar(false)
		m.txList.SetFilteringEnabled(false)
		m.txList.SetShowHelp(false)
		m.state = transactionsStateList

		return m, nil
	}

	if m.state == transactionsStateList {
		var cmd tea.Cmd
		m.txList, cmd = m.txList.Update(msg)

		return m, cmd
	}

	return m, nil
}

// The first cursor position is "all accounts".
func (m TransactionsModel) updateAccountSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.accountCursor > 0 {
			m.accountCursor--
		}
	case tea.KeyDown:
		if m.accountCursor < len(m.accounts) {
			m.accountCursor++
		}
	case tea.KeyEnter:
		var accountID *uuid.UUID

		if m.accountCursor > 0 {
			id := m.accounts[m.accountCursor-1].ID
			accountID = &id
		}

		m.state = transactionsStateLoading

		return m, m.loadTransactionsCmd(accountID)
	}

	return m, nil
}

func (m TransactionsModel) View() string {
	switch m.state {
	case transactionsStateAccountSelect:
		return m.viewAccountSelect()
	case transactionsStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	case transactionsStateList:
		return lipgloss.NewStyle().Padding(1).Render(m.txList.View())
	case transactionsStateError:
		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	return ""
}

func (m TransactionsModel) viewAccountSelect() string {
	s := "Show transactions for:\n\n"

	cursor := " "
	if m.accountCursor == 0 {
		cursor = ">"
	}

	s += fmt.Sprintf("%s All accounts\n", cursor)

	for i, account := range m.accounts {
		cursor := " "
		if m.accountCursor == i+1 {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, account.Name)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

// Messages

type txAccountsMsg struct {
	accounts []ledger.Account
	err      error
}

type transactionsMsg struct {
	transactions []*ledger.Transaction
	categories   map[uuid.UUID]string
	err          error
}

func (m TransactionsModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.ledgerService.Accounts(ctx, m.userID)
		if err != nil {
			return txAccountsMsg{err: err}
		}

		return txAccountsMsg{accounts: accounts}
	}
}

func (m TransactionsModel) loadTransactionsCmd(accountID *uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.ledgerService.Transactions(ctx, m.userID, accountID)
		if err != nil {
			return transactionsMsg{err: err}
		}

		categories, err := m.ledgerService.Categories(ctx, m.userID)
		if err != nil {
			return transactionsMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(categories))
		for _, c := range categories {
			names[c.ID] = c.Name
		}

		return transactionsMsg{transactions: txs, categories: names}
	}
}

// Transaction list item

type transactionItem struct {
	tx *ledger.Transaction
}

func (i transactionItem) Title() string       { return "" }
func (i transactionItem) Description() string { return "" }
func (i transactionItem) FilterValue() string { return "" }

// Transaction list delegate

type transactionDelegate struct {
	categories map[uuid.UUID]string
}

func (d transactionDelegate) Height() int                             { return 2 }
func (d transactionDelegate) Spacing() int                            { return 0 }
func (d transactionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d transactionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(transactionItem)
	if !ok {
		return
	}

	tx := item.tx

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	category := "-"
	if tx.CategoryID != nil {
		if name, ok := d.categories[*tx.CategoryID]; ok {
			category = name
		}
	}

	line1 := fmt.Sprintf("%s%s  %10s  %s", cursor, tx.Date, tx.Amount.StringFixed(2), tx.Vendor)
	line2 := fmt.Sprintf("      %s  [%s]", category, tx.Type)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
