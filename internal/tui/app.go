package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/shelfmark/internal/account"
	"github.com/user/shelfmark/internal/bookmarks"
	"github.com/user/shelfmark/internal/catalog"
	"github.com/user/shelfmark/internal/config"
	"github.com/user/shelfmark/internal/geo"
	"github.com/user/shelfmark/internal/store"
)

type screen int

const (
	screenAuth screen = iota
	screenSearch
	screenBookmarks
)

const (
	fieldEmail = iota
	fieldPassword
	fieldCountry
	fieldCount
)

type model struct {
	cfg      *config.Config
	accounts *account.Manager
	marks    *bookmarks.Manager
	client   *catalog.Client
	searcher *catalog.Searcher
	geo      *geo.Client

	screen screen
	width  int
	height int
	err    error

	// Auth form
	signupMode bool
	fields     [fieldCount]textinput.Model
	focus      int
	criteria   account.PasswordCriteria
	authErr    string

	// Search
	searchInput textinput.Model
	list        list.Model
	searching   bool
	loading     bool
	status      string

	// Bookmarks
	markList list.Model
}

type bookItem struct {
	book catalog.Book
}

func (b bookItem) Title() string { return b.book.Title }

func (b bookItem) Description() string {
	if b.book.RatingCount == 0 {
		return "no ratings"
	}
	return fmt.Sprintf("rating %.2f (%d ratings)", b.book.RatingAverage, b.book.RatingCount)
}

func (b bookItem) FilterValue() string { return b.book.Title }

type markItem struct {
	mark store.Bookmark
}

func (m markItem) Title() string { return m.mark.Title }

func (m markItem) Description() string {
	if m.mark.RatingCount == 0 {
		return "no ratings"
	}
	return fmt.Sprintf("rating %.2f (%d ratings)", m.mark.RatingAverage, m.mark.RatingCount)
}

func (m markItem) FilterValue() string { return m.mark.Title }

func initialModel(cfg *config.Config, accounts *account.Manager, marks *bookmarks.Manager, client *catalog.Client, geoClient *geo.Client) model {
	var fields [fieldCount]textinput.Model
	for i := range fields {
		fields[i] = textinput.New()
		fields[i].CharLimit = 128
		fields[i].Width = 40
	}
	fields[fieldEmail].Placeholder = "email"
	fields[fieldPassword].Placeholder = "password"
	fields[fieldPassword].EchoMode = textinput.EchoPassword
	fields[fieldCountry].Placeholder = "country"
	fields[fieldEmail].Focus()

	si := textinput.New()
	si.Placeholder = "Search books by title..."
	si.CharLimit = 256
	si.Width = 50

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Shelfmark"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	ml := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	ml.Title = "Bookmarks"
	ml.SetShowStatusBar(true)
	ml.SetFilteringEnabled(false)
	ml.SetShowHelp(false)

	m := model{
		cfg:         cfg,
		accounts:    accounts,
		marks:       marks,
		client:      client,
		searcher:    catalog.NewSearcher(client, cfg.Catalog.PageSize),
		geo:         geoClient,
		fields:      fields,
		searchInput: si,
		list:        l,
		markList:    ml,
	}

	if _, ok := accounts.Current(); ok {
		m.screen = screenSearch
		m.searching = true
		m.searchInput.Focus()
	}

	return m
}

type searchMsg struct {
	books []catalog.Book
	err   error
}

type marksMsg struct {
	marks []store.Bookmark
	err   error
}

type countryMsg struct {
	name string
}

func (m model) Init() tea.Cmd {
	if m.screen == screenAuth {
		return tea.Batch(textinput.Blink, m.detectCountry)
	}
	return textinput.Blink
}

// detectCountry pre-fills the signup country from the caller's IP.
func (m model) detectCountry() tea.Msg {
	ctx := context.Background()
	code, err := m.geo.IPCountry(ctx)
	if err != nil {
		return countryMsg{}
	}
	countries, err := m.geo.Countries(ctx)
	if err != nil {
		return countryMsg{}
	}
	return countryMsg{name: geo.CountryByCode(countries, code)}
}

func (m model) doSearch(query string, refresh bool) tea.Cmd {
	return func() tea.Msg {
		books, err := m.searcher.Fetch(context.Background(), query, refresh)
		return searchMsg{books: books, err: err}
	}
}

func (m model) loadMarks() tea.Msg {
	marks, err := m.marks.List()
	return marksMsg{marks: marks, err: err}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-6)
		m.markList.SetSize(msg.Width, msg.Height-4)
		m.searchInput.Width = msg.Width - 20
		return m, nil

	case countryMsg:
		if msg.name != "" && m.fields[fieldCountry].Value() == "" {
			m.fields[fieldCountry].SetValue(msg.name)
		}
		return m, nil

	case searchMsg:
		m.loading = false
		if msg.err != nil {
			// Prior results stay on screen; just surface the failure.
			m.status = fmt.Sprintf("search failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("%d result(s)", len(msg.books))
		m.list.SetItems(booksToItems(msg.books))
		return m, nil

	case marksMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("loading bookmarks failed: %v", msg.err)
			return m, nil
		}
		m.markList.SetItems(marksToItems(msg.marks))
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenAuth:
			return m.updateAuth(msg)
		case screenSearch:
			return m.updateSearch(msg)
		case screenBookmarks:
			return m.updateBookmarks(msg)
		}
	}

	return m.updateFocused(msg)
}

func (m model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		m.focus = (m.focus + 1) % m.fieldLimit()
		return m.refocusFields()
	case "shift+tab", "up":
		m.focus = (m.focus + m.fieldLimit() - 1) % m.fieldLimit()
		return m.refocusFields()
	case "ctrl+s":
		m.signupMode = !m.signupMode
		m.authErr = ""
		if !m.signupMode && m.focus >= fieldCountry {
			m.focus = fieldEmail
		}
		return m.refocusFields()
	case "enter":
		return m.submitAuth()
	}
	return m.updateFocused(msg)
}

// fieldLimit is the number of active auth fields: login needs no country.
func (m model) fieldLimit() int {
	if m.signupMode {
		return fieldCount
	}
	return fieldCountry
}

func (m model) refocusFields() (tea.Model, tea.Cmd) {
	for i := range m.fields {
		if i == m.focus {
			m.fields[i].Focus()
		} else {
			m.fields[i].Blur()
		}
	}
	return m, textinput.Blink
}

func (m model) submitAuth() (tea.Model, tea.Cmd) {
	email := m.fields[fieldEmail].Value()
	password := m.fields[fieldPassword].Value()

	var err error
	if m.signupMode {
		_, err = m.accounts.Signup(email, password, m.fields[fieldCountry].Value())
	} else {
		_, err = m.accounts.Login(email, password)
	}
	if err != nil {
		m.authErr = err.Error()
		return m, nil
	}

	m.authErr = ""
	m.screen = screenSearch
	m.searching = true
	m.searchInput.Focus()
	return m, textinput.Blink
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			if strings.TrimSpace(m.searchInput.Value()) == "" {
				return m, nil
			}
			m.loading = true
			return m, m.doSearch(m.searchInput.Value(), true)
		}
		return m.updateFocused(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "r":
		if strings.TrimSpace(m.searchInput.Value()) == "" {
			return m, nil
		}
		m.loading = true
		return m, m.doSearch(m.searchInput.Value(), true)
	case "n":
		// Next page for the current query.
		if !m.loading && m.searchInput.Value() != "" {
			m.loading = true
			return m, m.doSearch(m.searchInput.Value(), false)
		}
		return m, nil
	case "1":
		m.searcher.SortByTitle()
		m.list.SetItems(booksToItems(m.searcher.Books()))
		return m, nil
	case "2":
		m.searcher.SortByRating()
		m.list.SetItems(booksToItems(m.searcher.Books()))
		return m, nil
	case "3":
		m.searcher.SortByHits()
		m.list.SetItems(booksToItems(m.searcher.Books()))
		return m, nil
	case "b":
		if item, ok := m.list.SelectedItem().(bookItem); ok {
			if err := m.marks.Add(bookToMark(item.book)); err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("bookmarked %q", item.book.Title)
			}
		}
		return m, nil
	case "m":
		m.screen = screenBookmarks
		return m, m.loadMarks
	case "o":
		if item, ok := m.list.SelectedItem().(bookItem); ok {
			openBrowser(m.client.BookURL(item.book.ID))
		}
		return m, nil
	case "c":
		if item, ok := m.list.SelectedItem().(bookItem); ok {
			openBrowser(m.client.CoverURL(item.book.CoverID, "L"))
		}
		return m, nil
	case "L":
		if err := m.accounts.Logout(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m.toAuth()
	}
	return m.updateFocused(msg)
}

func (m model) updateBookmarks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.screen = screenSearch
		return m, nil
	case "d":
		if item, ok := m.markList.SelectedItem().(markItem); ok {
			if _, err := m.marks.RemoveByID(item.mark.ID); err != nil {
				m.status = err.Error()
				return m, nil
			}
		}
		return m, m.loadMarks
	case "o":
		if item, ok := m.markList.SelectedItem().(markItem); ok {
			openBrowser(m.client.BookURL(item.mark.ID))
		}
		return m, nil
	case "c":
		if item, ok := m.markList.SelectedItem().(markItem); ok {
			openBrowser(m.client.CoverURL(item.mark.CoverID, "L"))
		}
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m model) toAuth() (tea.Model, tea.Cmd) {
	m.screen = screenAuth
	m.signupMode = false
	m.focus = fieldEmail
	for i := range m.fields {
		m.fields[i].SetValue("")
		m.fields[i].Blur()
	}
	m.fields[fieldEmail].Focus()
	m.list.SetItems(nil)
	m.status = ""
	return m, textinput.Blink
}

// updateFocused routes non-key messages and typed characters to the
// focused widget of the current screen.
func (m model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.screen {
	case screenAuth:
		for i := range m.fields {
			m.fields[i], cmd = m.fields[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		// Live password feedback while typing in signup mode
		if m.signupMode {
			m.criteria = account.CheckPassword(m.fields[fieldPassword].Value())
		}
	case screenSearch:
		if m.searching {
			m.searchInput, cmd = m.searchInput.Update(msg)
		} else {
			m.list, cmd = m.list.Update(msg)
		}
		cmds = append(cmds, cmd)
	case screenBookmarks:
		m.markList, cmd = m.markList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func booksToItems(books []catalog.Book) []list.Item {
	items := make([]list.Item, 0, len(books))
	for _, b := range books {
		items = append(items, bookItem{book: b})
	}
	return items
}

func marksToItems(marks []store.Bookmark) []list.Item {
	items := make([]list.Item, 0, len(marks))
	for _, b := range marks {
		items = append(items, markItem{mark: b})
	}
	return items
}

func bookToMark(b catalog.Book) store.Bookmark {
	return store.Bookmark{
		ID:            b.ID,
		Title:         b.Title,
		RatingAverage: b.RatingAverage,
		RatingCount:   b.RatingCount,
		CoverID:       b.CoverID,
	}
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("86"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	switch m.screen {
	case screenAuth:
		return m.viewAuth()
	case screenBookmarks:
		return m.viewBookmarks()
	default:
		return m.viewSearch()
	}
}

func (m model) viewAuth() string {
	var b strings.Builder

	title := "Log in"
	if m.signupMode {
		title = "Sign up"
	}
	b.WriteString(boxStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.fields[fieldEmail].View())
	b.WriteString("\n")
	b.WriteString(m.fields[fieldPassword].View())
	b.WriteString("\n")
	if m.signupMode {
		b.WriteString(m.fields[fieldCountry].View())
		b.WriteString("\n")
		b.WriteString("\n")
		b.WriteString(criterionLine(m.criteria.HasMinLength, "at least 8 characters"))
		b.WriteString(criterionLine(m.criteria.HasUpperCase, "an uppercase letter"))
		b.WriteString(criterionLine(m.criteria.HasSpecialCharacter, "a special character (!@#$%^&*)"))
	}

	if m.authErr != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.authErr))
		b.WriteString("\n")
	}

	help := "[Tab]next field [Enter]submit [Ctrl+S]switch to sign up [Ctrl+C]quit"
	if m.signupMode {
		help = "[Tab]next field [Enter]submit [Ctrl+S]switch to log in [Ctrl+C]quit"
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(help))
	return b.String()
}

func criterionLine(ok bool, label string) string {
	if ok {
		return okStyle.Render("  + "+label) + "\n"
	}
	return dimStyle.Render("  - "+label) + "\n"
}

func (m model) viewSearch() string {
	var b strings.Builder

	header := boxStyle.Render(m.searchInput.View())
	if user, ok := m.accounts.Current(); ok {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", dimStyle.Render(user.Email))
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(m.list.View())
	b.WriteString("\n")

	status := m.status
	if m.loading {
		status = "searching..."
	}
	if status != "" {
		b.WriteString(dimStyle.Render(status))
		b.WriteString("\n")
	}

	help := "[/]search [n]ext page [r]efresh [1]title [2]rating [3]hits [b]ookmark [m]arks [o]pen [c]over [L]ogout [q]uit"
	b.WriteString(dimStyle.Render(help))
	return b.String()
}

func (m model) viewBookmarks() string {
	var b strings.Builder

	b.WriteString(m.markList.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(dimStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("[d]elete [o]pen [c]over [Esc]back [q]uit"))
	return b.String()
}

func openBrowser(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the TUI application
func Run(cfg *config.Config, log *slog.Logger, accounts *account.Manager, marks *bookmarks.Manager) error {
	client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.CoversURL,
		&http.Client{Timeout: cfg.Catalog.Timeout}, log)
	geoClient := geo.NewClient(cfg.Geo.CountriesURL, cfg.Geo.IPInfoURL, cfg.DataDir,
		&http.Client{Timeout: cfg.Geo.Timeout}, log)
	p := tea.NewProgram(initialModel(cfg, accounts, marks, client, geoClient), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
