package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/dclay/budgie/internal/format"
	"github.com/dclay/budgie/internal/importer"
	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/normalize"
)

type wizardState int

const (
	wizardStateFilePick wizardState = iota
	wizardStateMapping
	wizardStateAccount
	wizardStateAccountName
	wizardStateCategories
	wizardStateCategoryPick
	wizardStateCategoryCreate
	wizardStateReview
	wizardStateCommitting
	wizardStateResult
)

// dateFormats is the cycle order for the manual date format override.
var dateFormats = []normalize.DateFormat{
	normalize.DateAuto,
	normalize.DateDayFirst,
	normalize.DateMonthFirst,
	normalize.DateISO,
	normalize.DateMonthName,
}

type WizardModel struct {
	CommonModel
	ledgerService *ledger.Service
	wizard        *importer.Wizard

	state      wizardState
	filePicker filepicker.Model
	spinner    spinner.Model

	accounts      []ledger.Account
	accountCursor int
	accountForm   *huh.Form
	accountName   string

	categories     []ledger.Category
	groups         []ledger.Group
	csvCategories  []string
	categoryCursor int
	targetCursor   int
	createForm     *huh.Form
	createName     string
	createGroup    string

	candidateList list.Model
	progress      chan progressMsg

	status string
	err    error
}

func NewWizardModel(ledgerSvc *ledger.Service, wiz *importer.Wizard) WizardModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return WizardModel{
		ledgerService: ledgerSvc,
		wizard:        wiz,
		filePicker:    fp,
		spinner:       s,
	}
}

func (m WizardModel) Title() string { return "Import Bank Export" }

func (m WizardModel) ShortHelp() string {
	switch m.state {
	case wizardStateMapping:
		return "d: cycle date format | Enter: continue | Esc: back"
	case wizardStateCategories:
		return "m: merge | c: create | s: skip | Enter: continue | Esc: back"
	case wizardStateReview:
		return "Space: include duplicate anyway | Enter: commit | Esc: back"
	case wizardStateCommitting:
		return "Committing..."
	}

	return "Esc: back | Enter: select"
}

func (m WizardModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case accountsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = wizardStateResult
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.accounts = msg.accounts
		m.accountCursor = 0

		return m, nil

	case taxonomyMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = wizardStateResult
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.categories = msg.categories
		m.groups = msg.groups

		return m, nil

	case progressMsg:
		m.status = fmt.Sprintf("Inserted %d of %d transactions...", msg.done, msg.total)
		return m, m.waitProgressCmd()

	case commitDoneMsg:
		m.state = wizardStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf(
			"Imported %d transactions in %d batches (%d skipped as duplicates).",
			msg.result.Inserted, msg.result.Batches, msg.result.Skipped,
		)

		return m, nil
	}

	switch m.state {
	case wizardStateFilePick:
		return m.updateFilePick(msg)
	case wizardStateMapping:
		return m.updateMapping(msg)
	case wizardStateAccount:
		return m.updateAccount(msg)
	case wizardStateAccountName:
		return m.updateAccountName(msg)
	case wizardStateCategories:
		return m.updateCategories(msg)
	case wizardStateCategoryPick:
		return m.updateCategoryPick(msg)
	case wizardStateCategoryCreate:
		return m.updateCategoryCreate(msg)
	case wizardStateReview:
		return m.updateReview(msg)
	case wizardStateCommitting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m WizardModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case wizardStateFilePick:
		return m, Back
	case wizardStateAccountName:
		m.state = wizardStateAccount
		return m, nil
	case wizardStateCategoryPick, wizardStateCategoryCreate:
		m.state = wizardStateCategories
		return m, nil
	case wizardStateCommitting:
		// A running commit cannot be interrupted.
		return m, nil
	case wizardStateResult:
		if err := m.wizard.Reset(); err == nil {
			m.state = wizardStateFilePick
			m.err = nil
			m.status = ""

			return m, m.filePicker.Init()
		}

		return m, nil
	}

	if err := m.wizard.Back(); err == nil {
		m.state = m.stateFor(m.wizard.Stage())
	}

	return m, nil
}

func (m WizardModel) stateFor(stage importer.Stage) wizardState {
	switch stage {
	case importer.StageUpload:
		return wizardStateFilePick
	case importer.StageMapping:
		return wizardStateMapping
	case importer.StageAccount:
		return wizardStateAccount
	case importer.StageCategories:
		return wizardStateCategories
	}

	return wizardStateReview
}

func (m WizardModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		f, err := os.Open(path)
		if err != nil {
			m.err = err
			m.state = wizardStateResult
			m.status = fmt.Sprintf("Error: %v", err)

			return m, nil
		}
		defer f.Close()

		if err := m.wizard.LoadFile(f); err != nil {
			m.err = err
			m.state = wizardStateResult
			m.status = fmt.Sprintf("Error: %v", err)

			return m, nil
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.wizard.Next(ctx); err != nil {
			m.err = err
			m.state = wizardStateResult
			m.status = fmt.Sprintf("Error: %v", err)

			return m, nil
		}

		m.state = wizardStateMapping

		return m, nil
	}

	return m, cmd
}

func (m WizardModel) updateMapping(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "d":
		m.wizard.SetDateFormat(nextDateFormat(m.wizard.DateFormat()))
		return m, nil

	case "enter":
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.wizard.Next(ctx); err != nil {
			m.status = fmt.Sprintf("Cannot continue: %v", err)
			return m, nil
		}

		m.state = wizardStateAccount
		m.status = ""

		return m, m.loadAccountsCmd()
	}

	return m, nil
}

func nextDateFormat(current normalize.DateFormat) normalize.DateFormat {
	for i, f := range dateFormats {
		if f == current {
			return dateFormats[(i+1)%len(dateFormats)]
		}
	}

	return dateFormats[0]
}

func (m WizardModel) updateAccount(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// The last cursor position is the "create new account" entry.
	switch keyMsg.Type {
	case tea.KeyUp:
		if m.accountCursor > 0 {
			m.accountCursor--
		}
	case tea.KeyDown:
		if m.accountCursor < len(m.accounts) {
			m.accountCursor++
		}
	case tea.KeyEnter:
		if m.accountCursor < len(m.accounts) {
			m.wizard.SetAccount(m.accounts[m.accountCursor].ID)
			return m.advanceToCategories()
		}

		m.accountName = ""
		m.accountForm = m.buildAccountForm()
		m.state = wizardStateAccountName

		return m, m.accountForm.Init()
	}

	return m, nil
}

func (m WizardModel) buildAccountForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Account Name").
				Placeholder("Current Account").
				Value(&m.accountName),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m WizardModel) updateAccountName(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.accountForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.accountForm = f
	}

	if m.accountForm.State != huh.StateCompleted {
		return m, cmd
	}

	name := strings.TrimSpace(m.accountForm.GetString("name"))
	if name == "" {
		m.state = wizardStateAccount
		return m, nil
	}

	m.wizard.SetAccountDraft(name)

	return m.advanceToCategories()
}

func (m WizardModel) advanceToCategories() (tea.Model, tea.Cmd) {
	ctx, cancel := DbCtx()
	defer cancel()

	if err := m.wizard.Next(ctx); err != nil {
		m.status = fmt.Sprintf("Cannot continue: %v", err)
		return m, nil
	}

	m.csvCategories = distinctCSVCategories(m.wizard.Candidates())
	m.categoryCursor = 0
	m.state = wizardStateCategories
	m.status = ""

	return m, m.loadTaxonomyCmd()
}

func distinctCSVCategories(candidates []importer.Candidate) []string {
	seen := make(map[string]bool)

	var out []string

	for _, c := range candidates {
		if c.CSVCategory == "" || seen[c.CSVCategory] {
			continue
		}

		seen[c.CSVCategory] = true
		out = append(out, c.CSVCategory)
	}

	return out
}

func (m WizardModel) updateCategories(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up":
		if m.categoryCursor > 0 {
			m.categoryCursor--
		}
	case "down":
		if m.categoryCursor < len(m.csvCategories)-1 {
			m.categoryCursor++
		}
	case "m":
		if len(m.csvCategories) > 0 && len(m.categories) > 0 {
			m.targetCursor = 0
			m.state = wizardStateCategoryPick
		}
	case "c":
		if len(m.csvCategories) > 0 {
			m.createName = m.csvCategories[m.categoryCursor]
			m.createGroup = ""
			m.createForm = m.buildCreateForm()
			m.state = wizardStateCategoryCreate

			return m, m.createForm.Init()
		}
	case "s":
		if len(m.csvCategories) > 0 {
			m.wizard.SetCategoryAction(m.csvCategories[m.categoryCursor], importer.CategoryAction{
				Kind: importer.ActionSkip,
			})
		}
	case "enter":
		return m.advanceToReview()
	}

	return m, nil
}

func (m WizardModel) updateCategoryPick(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		if m.targetCursor > 0 {
			m.targetCursor--
		}
	case tea.KeyDown:
		if m.targetCursor < len(m.categories)-1 {
			m.targetCursor++
		}
	case tea.KeyEnter:
		m.wizard.SetCategoryAction(m.csvCategories[m.categoryCursor], importer.CategoryAction{
			Kind:     importer.ActionMerge,
			TargetID: m.categories[m.targetCursor].ID,
		})
		m.state = wizardStateCategories
	}

	return m, nil
}

func (m WizardModel) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Category Name").
				Value(&m.createName),
			huh.NewInput().
				Key("group").
				Title("Group").
				Description("Existing groups are matched by name; anything else is created").
				Value(&m.createGroup),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m WizardModel) updateCategoryCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.createForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.createForm = f
	}

	if m.createForm.State != huh.StateCompleted {
		return m, cmd
	}

	name := strings.TrimSpace(m.createForm.GetString("name"))
	group := strings.TrimSpace(m.createForm.GetString("group"))

	if name == "" || group == "" {
		m.state = wizardStateCategories
		return m, nil
	}

	m.wizard.SetCategoryAction(m.csvCategories[m.categoryCursor], importer.CategoryAction{
		Kind:  importer.ActionCreate,
		Name:  name,
		Group: importer.PendingGroup(group),
	})
	m.state = wizardStateCategories

	return m, nil
}

func (m WizardModel) advanceToReview() (tea.Model, tea.Cmd) {
	ctx, cancel := DbCtx()
	defer cancel()

	if err := m.wizard.Next(ctx); err != nil {
		m.status = fmt.Sprintf("Cannot continue: %v", err)
		return m, nil
	}

	candidates := m.wizard.Candidates()

	items := make([]list.Item, len(candidates))
	for i := range candidates {
		items[i] = candidateItem{index: i}
	}

	delegate := candidateDelegate{wizard: m.wizard}
	m.candidateList = list.New(items, delegate, 90, 20)
	m.candidateList.Title = "Review Import"
	m.candidateList.SetShowStatusBar(false)
	m.candidateList.SetFilteringEnabled(false)
	m.candidateList.SetShowHelp(false)

	m.state = wizardStateReview
	m.status = ""

	return m, nil
}

func (m WizardModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.candidateList, cmd = m.candidateList.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case " ":
		idx := m.candidateList.Index()

		candidates := m.wizard.Candidates()
		if idx < len(candidates) && candidates[idx].Duplicate {
			_ = m.wizard.SetIncludeAnyway(idx, !candidates[idx].IncludeAnyway)
		}

		return m, nil

	case "enter":
		m.state = wizardStateCommitting
		m.status = "Committing..."
		m.progress = make(chan progressMsg, 1)
		m.wizard.SetProgressFunc(func(done, total int) {
			select {
			case m.progress <- progressMsg{done: done, total: total}:
			default:
			}
		})

		return m, tea.Batch(m.spinner.Tick, m.commitCmd(), m.waitProgressCmd())
	}

	var cmd tea.Cmd
	m.candidateList, cmd = m.candidateList.Update(msg)

	return m, cmd
}

func (m WizardModel) View() string {
	switch m.state {
	case wizardStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a bank export to import:\n\n" + m.filePicker.View(),
		)
	case wizardStateMapping:
		return m.viewMapping()
	case wizardStateAccount:
		return m.viewAccount()
	case wizardStateAccountName:
		return lipgloss.NewStyle().Padding(1).Render(m.accountForm.View())
	case wizardStateCategories:
		return m.viewCategories()
	case wizardStateCategoryPick:
		return m.viewCategoryPick()
	case wizardStateCategoryCreate:
		return lipgloss.NewStyle().Padding(1).Render(m.createForm.View())
	case wizardStateReview:
		return m.viewReview()
	case wizardStateCommitting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s %s", m.spinner.View(), m.status),
		)
	case wizardStateResult:
		return m.viewResult()
	}

	return ""
}

func (m WizardModel) viewMapping() string {
	detected := m.wizard.Detected()
	table := m.wizard.Table()
	mapping := m.wizard.Mapping()

	var b strings.Builder

	fmt.Fprintf(&b, "Detected format: %s (%.0f%% confidence)\n", detected.Format, detected.Confidence*100)
	fmt.Fprintf(&b, "Date format: %s\n\n", m.wizard.DateFormat())

	for i, header := range table.Headers {
		fmt.Fprintf(&b, "  %-24s %s\n", header, roleFor(mapping, i))
	}

	fmt.Fprintf(&b, "\n%d data rows.", len(table.Rows))

	if m.status != "" {
		b.WriteString("\n\n" + m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func roleFor(m format.Mapping, column int) string {
	switch column {
	case m.Date:
		return "date"
	case m.Vendor:
		return "vendor"
	case m.Amount:
		return "amount"
	case m.Inflow:
		return "inflow"
	case m.Outflow:
		return "outflow"
	case m.Description:
		return "description"
	case m.Category:
		return "category"
	}

	return "-"
}

func (m WizardModel) viewAccount() string {
	s := "Import into account:\n\n"

	for i, account := range m.accounts {
		cursor := " "
		if i == m.accountCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, account.Name)
	}

	cursor := " "
	if m.accountCursor == len(m.accounts) {
		cursor = ">"
	}

	s += fmt.Sprintf("%s Create new account...\n", cursor)

	if m.status != "" {
		s += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m WizardModel) viewCategories() string {
	if len(m.csvCategories) == 0 {
		return lipgloss.NewStyle().Padding(2).Render(
			"No categories found in the file.\n\nEnter: continue to review",
		)
	}

	s := "Resolve file categories:\n\n"

	for i, name := range m.csvCategories {
		cursor := " "
		if i == m.categoryCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %-24s %s\n", cursor, name, m.actionLabel(name))
	}

	if m.status != "" {
		s += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m WizardModel) actionLabel(csvCategory string) string {
	action, ok := m.wizard.CategoryAction(csvCategory)
	if !ok {
		return "(unresolved)"
	}

	switch action.Kind {
	case importer.ActionMerge:
		for _, c := range m.categories {
			if c.ID == action.TargetID {
				return fmt.Sprintf("merge into %q", c.Name)
			}
		}

		return "merge"
	case importer.ActionCreate:
		if group, ok := action.Group.Pending(); ok {
			return fmt.Sprintf("create %q in %q", action.Name, group)
		}

		return fmt.Sprintf("create %q", action.Name)
	case importer.ActionSkip:
		return "skip"
	}

	return ""
}

func (m WizardModel) viewCategoryPick() string {
	s := fmt.Sprintf("Merge %q into:\n\n", m.csvCategories[m.categoryCursor])

	for i, category := range m.categories {
		cursor := " "
		if i == m.targetCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s (%s)\n", cursor, category.Name, m.groupName(category.GroupID))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m WizardModel) groupName(id uuid.UUID) string {
	for _, g := range m.groups {
		if g.ID == id {
			return g.Name
		}
	}

	return "?"
}

func (m WizardModel) viewReview() string {
	candidates := m.wizard.Candidates()
	skips := m.wizard.Skips()

	duplicates := 0
	for _, c := range candidates {
		if c.Duplicate {
			duplicates++
		}
	}

	header := fmt.Sprintf("%d candidates, %d flagged as duplicates, %d rows skipped.",
		len(candidates), duplicates, len(skips))

	return lipgloss.NewStyle().Padding(1).Render(
		header + "\n\n" + m.candidateList.View(),
	)
}

func (m WizardModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to start over)",
		)
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
			"\n\n(Esc to start over)",
	)
}

// Messages

type accountsMsg struct {
	accounts []ledger.Account
	err      error
}

type taxonomyMsg struct {
	categories []ledger.Category
	groups     []ledger.Group
	err        error
}

type progressMsg struct {
	done  int
	total int
}

type commitDoneMsg struct {
	result *importer.CommitResult
	err    error
}

func (m WizardModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.ledgerService.Accounts(ctx, m.wizard.UserID())
		if err != nil {
			return accountsMsg{err: err}
		}

		return accountsMsg{accounts: accounts}
	}
}

func (m WizardModel) loadTaxonomyCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		categories, err := m.ledgerService.Categories(ctx, m.wizard.UserID())
		if err != nil {
			return taxonomyMsg{err: err}
		}

		groups, err := m.ledgerService.Groups(ctx, m.wizard.UserID())
		if err != nil {
			return taxonomyMsg{err: err}
		}

		return taxonomyMsg{categories: categories, groups: groups}
	}
}

const commitTimeout = 2 * time.Minute

func (m WizardModel) commitCmd() tea.Cmd {
	wiz := m.wizard
	progress := m.progress

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		result, err := wiz.Commit(ctx)

		// Progress callbacks only fire inside Commit, so the channel can be
		// closed here to release the pending wait command.
		close(progress)

		if err != nil {
			return commitDoneMsg{err: err}
		}

		return commitDoneMsg{result: result}
	}
}

func (m WizardModel) waitProgressCmd() tea.Cmd {
	progress := m.progress

	return func() tea.Msg {
		msg, ok := <-progress
		if !ok {
			return nil
		}

		return msg
	}
}

// Candidate list item

type candidateItem struct {
	index int
}

func (i candidateItem) Title() string       { return "" }
func (i candidateItem) Description() string { return "" }
func (i candidateItem) FilterValue() string { return "" }

// Candidate list delegate

type candidateDelegate struct {
	wizard *importer.Wizard
}

func (d candidateDelegate) Height() int                             { return 2 }
func (d candidateDelegate) Spacing() int                            { return 0 }
func (d candidateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d candidateDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(candidateItem)
	if !ok {
		return
	}

	candidates := d.wizard.Candidates()
	if item.index >= len(candidates) {
		return
	}

	c := candidates[item.index]

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	flag := "   "

	if c.Duplicate {
		flag = "[ ]"
		if c.IncludeAnyway {
			flag = "[x]"
		}
	}

	line1 := fmt.Sprintf("%s%s %s  %10s  %s", cursor, flag, c.Date, c.Amount.StringFixed(2), c.Vendor)

	line2 := "      "
	switch {
	case c.StartingBalance:
		line2 += "starting balance"
	case c.Duplicate:
		line2 += "duplicate of an existing transaction"
	default:
		line2 += categoryLine(c)
	}

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}

func categoryLine(c importer.Candidate) string {
	if name, ok := c.Assigned.Pending(); ok {
		return fmt.Sprintf("category: %s (new)", name)
	}

	if _, ok := c.Assigned.ID(); ok {
		return "category: assigned"
	}

	return "uncategorized"
}
