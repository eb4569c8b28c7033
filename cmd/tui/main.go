package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/dclay/budgie/cmd/tui/internal/view"
	"github.com/dclay/budgie/internal/config"
	"github.com/dclay/budgie/internal/database"
	"github.com/dclay/budgie/internal/importer"
	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/ledger/store"
)

type model struct {
	ledgerService *ledger.Service
	userID        uuid.UUID
	repo          ledger.Repository

	currentView View

	wizardView       view.WizardModel
	transactionsView view.TransactionsModel
}

type View int

const (
	ViewMenu         View = 0
	ViewWizard       View = 1
	ViewTransactions View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	userID, err := uuid.Parse(cfg.User.ID)
	if err != nil {
		slog.Error("USER_ID must be set to a valid uuid", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	repo := store.New(db)
	ledgerSvc := ledger.NewService(repo)

	return model{
		ledgerService: ledgerSvc,
		userID:        userID,
		repo:          repo,
		currentView:   ViewMenu,
		wizardView: view.NewWizardModel(
			ledgerSvc,
			importer.NewWizard(repo, userID, nil),
		),
		transactionsView: view.NewTransactionsModel(ledgerSvc, userID),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewWizard
				m.wizardView = view.NewWizardModel(
					m.ledgerService,
					importer.NewWizard(m.repo, m.userID, nil),
				)

				return m, m.wizardView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.ledgerService, m.userID)

				return m, m.transactionsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewWizard:
		var newModel tea.Model
		newModel, cmd = m.wizardView.Update(msg)
		m.wizardView = newModel.(view.WizardModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Budgie TUI\n\n" +
				"1. Import Bank Export\n" +
				"2. Browse Transactions\n\n" +
				"q. Quit",
		)
	case ViewWizard:
		return m.wizardView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
