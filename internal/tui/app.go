package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/jask/watchdeck/internal/backend"
	"github.com/jask/watchdeck/internal/config"
	"github.com/jask/watchdeck/internal/prefs"
	"github.com/jask/watchdeck/internal/secrets"
	"github.com/jask/watchdeck/internal/session"
	"github.com/jask/watchdeck/internal/store"
	"github.com/jask/watchdeck/internal/watchlist"
)

// App ties together screens.
type App struct {
	ctx    context.Context
	cfg    config.Config
	svc    backend.Service
	store  *store.Store
	ident  *session.Session
	logger *log.Logger

	state       appState
	modal       modalState
	catalog     []watchlist.List
	listCursor  int
	initialList string

	// edit screen
	sess    *watchlist.Session
	rows    []watchlist.Item
	cursor  int
	lifting bool

	// add-symbol picker
	symbols    []backend.SymbolInfo
	symLoaded  bool
	symInput   textinput.Model
	symChoices []backend.SymbolInfo
	symCursor  int

	// settings
	inputBuffer string
	tokenCached string
	showToken   bool

	status string
}

type appState string

const (
	viewBrowse   appState = "browse"
	viewEdit     appState = "edit"
	viewSettings appState = "settings"
)

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmDelete modalState = "confirmDelete"
	modalDeleteError   modalState = "deleteError"
	modalAddSymbol     modalState = "addSymbol"
	modalEditToken     modalState = "editToken"
)

// tokenProfile is the secrets-store slot holding the remote backend token.
const tokenProfile = "remote"

func New(ctx context.Context, cfg config.Config, svc backend.Service, st *store.Store, ident *session.Session, logger *log.Logger, lastWatchlist string) *App {
	inp := textinput.New()
	inp.Placeholder = "symbol or name"
	inp.Prompt = "> "
	token := os.Getenv(cfg.Backend.TokenEnv)
	if token == "" {
		if tok, err := secrets.FetchToken(tokenProfile); err == nil {
			token = tok
		}
	}
	if token == "" {
		token = cfg.Backend.Token
	}
	return &App{
		ctx:         ctx,
		cfg:         cfg,
		svc:         svc,
		store:       st,
		ident:       ident,
		logger:      logger,
		state:       viewBrowse,
		initialList: lastWatchlist,
		symInput:    inp,
		tokenCached: token,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadWatchlists(), a.waitForStore())
}

func (a *App) loadWatchlists() tea.Cmd {
	return func() tea.Msg {
		lists, err := a.svc.Watchlists(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		a.store.SetCatalog(lists)
		return catalogMsg(lists)
	}
}

func (a *App) loadSymbols() tea.Cmd {
	return func() tea.Msg {
		syms, err := a.svc.Symbols(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return symbolsMsg(syms)
	}
}

// waitForStore blocks on the shared store's change feed and re-arms after
// every delivery.
func (a *App) waitForStore() tea.Cmd {
	return func() tea.Msg {
		return <-a.store.Events()
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewEdit {
			return a.handleEditKey(m)
		}
		if a.state == viewSettings {
			return a.handleSettingsKey(m)
		}
		switch m.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "up", "k":
			if a.listCursor > 0 {
				a.listCursor--
			}
		case "down", "j":
			if a.listCursor < len(a.catalog)-1 {
				a.listCursor++
			}
		case "r":
			a.status = "refreshing..."
			return a, a.loadWatchlists()
		case "p":
			a.state = viewSettings
			a.status = ""
		case "enter":
			if len(a.catalog) == 0 {
				return a, nil
			}
			return a, a.openEdit(a.catalog[a.listCursor].ID)
		}
	case catalogMsg:
		a.catalog = []watchlist.List(m)
		if a.initialList != "" {
			for i, l := range a.catalog {
				if l.ID == a.initialList {
					a.listCursor = i
				}
			}
			a.initialList = ""
		}
		if a.listCursor >= len(a.catalog) {
			a.listCursor = 0
		}
	case store.CatalogMsg:
		a.catalog = a.store.Catalog()
		if a.listCursor >= len(a.catalog) {
			a.listCursor = 0
		}
		return a, a.waitForStore()
	case store.ChangeMsg:
		a.catalog = a.store.Catalog()
		return a, a.waitForStore()
	case editReadyMsg:
		if m.sess != a.sess || m.gen != m.sess.Generation() {
			return a, nil
		}
		m.sess.Load()
		a.rows = m.sess.Items()
		a.lifting = false
		if a.cursor >= len(a.rows) {
			a.cursor = 0
		}
	case reorderDoneMsg:
		if m.sess != a.sess {
			return a, nil
		}
		m.sess.CompleteReorder(m.op, m.err)
		if m.err != nil {
			a.status = "save failed, order restored"
			if !a.lifting {
				a.rows = m.sess.Items()
				if a.cursor >= len(a.rows) {
					a.cursor = 0
				}
			}
		} else {
			a.status = "order saved"
		}
	case deleteDoneMsg:
		if m.sess != a.sess {
			return a, nil
		}
		done, err := m.sess.CompleteDelete(m.op, m.err)
		if err != nil {
			if a.logger != nil {
				a.logger.Printf("watchlist %s: bulk delete failed: %v", m.sess.ID(), err)
			}
			a.modal = modalDeleteError
			return a, nil
		}
		if done {
			removed := len(m.op.Tokens)
			a.leaveEdit()
			a.status = fmt.Sprintf("removed %d symbols", removed)
		}
	case addDoneMsg:
		a.status = "added " + m.symbol
		if a.sess == nil {
			return a, nil
		}
		return a, a.refreshAfterAdd(a.sess, a.sess.Generation())
	case symbolsMsg:
		a.symbols = []backend.SymbolInfo(m)
		a.symLoaded = true
		a.refreshSymbolChoices()
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewEdit:
		body = a.renderEdit()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderBrowse()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

// commands
func (a *App) openEdit(id string) tea.Cmd {
	a.state = viewEdit
	a.modal = modalNone
	a.status = ""
	a.cursor = 0
	a.lifting = false
	a.rows = nil
	a.sess = watchlist.NewSession(id, a.store, a.logger)

	// population waits out the entry transition; a teardown before the tick
	// lands bumps the generation and the load is discarded
	delay := time.Duration(a.cfg.UI.DeferredLoadMS) * time.Millisecond
	if delay <= 0 {
		delay = time.Millisecond
	}
	sess, gen := a.sess, a.sess.Generation()
	return tea.Batch(
		tea.Tick(delay, func(time.Time) tea.Msg {
			return editReadyMsg{sess: sess, gen: gen}
		}),
		savePrefsCmd(id),
	)
}

func savePrefsCmd(id string) tea.Cmd {
	return func() tea.Msg {
		_ = prefs.Save(prefs.State{LastWatchlistID: id})
		return nil
	}
}

func (a *App) rearrangeCmd(sess *watchlist.Session, op watchlist.ReorderOp) tea.Cmd {
	caller := a.ident.Username() // read at issue time
	id := sess.ID()
	return func() tea.Msg {
		err := a.svc.Rearrange(a.ctx, id, op.Tokens, caller)
		return reorderDoneMsg{sess: sess, op: op, err: err}
	}
}

func (a *App) bulkDeleteCmd(sess *watchlist.Session, op watchlist.DeleteOp) tea.Cmd {
	caller := a.ident.Username()
	id := sess.ID()
	return func() tea.Msg {
		err := a.svc.BulkDelete(a.ctx, id, op.Tokens, caller)
		return deleteDoneMsg{sess: sess, op: op, err: err}
	}
}

func (a *App) addEntryCmd(sess *watchlist.Session, sym backend.SymbolInfo) tea.Cmd {
	caller := a.ident.Username()
	id := sess.ID()
	item := watchlist.Item{Token: uuid.NewString(), Symbol: sym.Symbol, Name: sym.Name}
	return func() tea.Msg {
		if err := a.svc.AddEntry(a.ctx, id, item, caller); err != nil {
			return errMsg{err}
		}
		return addDoneMsg{symbol: sym.Symbol}
	}
}

func (a *App) saveConfigCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			return errMsg{err}
		}
		return statusMsg("preferences saved")
	}
}

func (a *App) saveTokenCmd(token string) tea.Cmd {
	return func() tea.Msg {
		if err := secrets.StoreToken(tokenProfile, token); err != nil {
			return errMsg{err}
		}
		return statusMsg("token saved (restart to apply)")
	}
}

func (a *App) clearTokenCmd() tea.Cmd {
	return func() tea.Msg {
		if err := secrets.DeleteToken(tokenProfile); err != nil {
			return errMsg{err}
		}
		return statusMsg("token cleared")
	}
}

// refreshAfterAdd pulls the backend's catalog into the store and re-reads
// the open session from it, so a freshly added row shows up in the edit
// screen.
func (a *App) refreshAfterAdd(sess *watchlist.Session, gen int) tea.Cmd {
	return func() tea.Msg {
		lists, err := a.svc.Watchlists(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		a.store.SetCatalog(lists)
		return editReadyMsg{sess: sess, gen: gen}
	}
}

func (a *App) handleEditKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		if a.lifting {
			a.rows = a.sess.Items()
			a.lifting = false
			return a, nil
		}
		a.leaveEdit()
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
	case "K", "shift+up":
		a.moveRow(-1)
	case "J", "shift+down":
		a.moveRow(1)
	case "enter":
		if a.lifting {
			return a, a.commitReorder()
		}
	case " ", "space":
		if a.sess != nil && a.cursor < len(a.rows) {
			a.sess.ToggleMark(a.rows[a.cursor].Token)
		}
	case "s":
		if a.sess == nil || a.sess.Selection().Count() == 0 {
			a.status = "nothing marked"
			return a, nil
		}
		if a.cfg.UI.ConfirmDelete {
			a.modal = modalConfirmDelete
			return a, nil
		}
		return a, a.beginDelete()
	case "a":
		if a.sess != nil && a.sess.Ready() {
			return a, a.openAddSymbol()
		}
	}
	return a, nil
}

func (a *App) moveRow(delta int) {
	if a.sess == nil || !a.sess.Ready() {
		return
	}
	next := a.cursor + delta
	if next < 0 || next >= len(a.rows) {
		return
	}
	a.rows[a.cursor], a.rows[next] = a.rows[next], a.rows[a.cursor]
	a.cursor = next
	a.lifting = true
}

// commitReorder is the drop half of a lift/move: the session gets the full
// candidate order and decides whether anything needs persisting.
func (a *App) commitReorder() tea.Cmd {
	a.lifting = false
	op, ok := a.sess.ApplyReorder(a.rows)
	if !ok {
		a.rows = a.sess.Items()
		return nil
	}
	a.status = "saving order..."
	return a.rearrangeCmd(a.sess, op)
}

func (a *App) beginDelete() tea.Cmd {
	op, ok := a.sess.BeginDelete()
	if !ok {
		if a.sess.Saving() {
			a.status = "remove already running"
		} else {
			a.status = "nothing marked"
		}
		return nil
	}
	a.status = "removing..."
	return a.bulkDeleteCmd(a.sess, op)
}

func (a *App) openAddSymbol() tea.Cmd {
	a.modal = modalAddSymbol
	a.symInput.SetValue("")
	a.symInput.Focus()
	a.symCursor = 0
	a.refreshSymbolChoices()
	if !a.symLoaded {
		return a.loadSymbols()
	}
	return nil
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewBrowse
		a.status = ""
	case "c":
		a.cfg.UI.ConfirmDelete = !a.cfg.UI.ConfirmDelete
		return a, a.saveConfigCmd()
	case "e":
		a.modal = modalEditToken
		a.inputBuffer = a.tokenCached
	case "v":
		a.showToken = !a.showToken
	case "x":
		if a.tokenCached == "" {
			a.status = "no token stored"
			return a, nil
		}
		a.tokenCached = ""
		return a, a.clearTokenCmd()
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y", "enter":
			a.modal = modalNone
			return a, a.beginDelete()
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalDeleteError:
		switch m.String() {
		case "esc", "enter":
			a.modal = modalNone
		}
	case modalAddSymbol:
		switch m.String() {
		case "esc":
			a.modal = modalNone
			return a, nil
		case "up", "ctrl+p":
			if a.symCursor > 0 {
				a.symCursor--
			}
			return a, nil
		case "down", "ctrl+n":
			if a.symCursor < len(a.symChoices)-1 {
				a.symCursor++
			}
			return a, nil
		case "enter":
			if len(a.symChoices) == 0 {
				a.status = "no matching symbol"
				return a, nil
			}
			pick := a.symChoices[a.symCursor]
			a.modal = modalNone
			a.status = "adding " + pick.Symbol + "..."
			return a, a.addEntryCmd(a.sess, pick)
		}
		var cmd tea.Cmd
		a.symInput, cmd = a.symInput.Update(m)
		a.refreshSymbolChoices()
		return a, cmd
	case modalEditToken:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.inputBuffer = ""
		case tea.KeyEnter:
			token := strings.TrimSpace(a.inputBuffer)
			a.modal = modalNone
			a.inputBuffer = ""
			if token == "" {
				a.status = "enter a token"
				return a, nil
			}
			a.tokenCached = token
			return a, a.saveTokenCmd(token)
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
	}
	return a, nil
}

func (a *App) leaveEdit() {
	if a.sess != nil {
		a.sess.Teardown()
	}
	a.sess = nil
	a.rows = nil
	a.cursor = 0
	a.lifting = false
	a.modal = modalNone
	a.state = viewBrowse
}

func (a *App) refreshSymbolChoices() {
	a.symChoices = rankSymbols(a.symbols, a.symInput.Value(), 8)
	if a.symCursor >= len(a.symChoices) {
		a.symCursor = 0
	}
}

func (a *App) listName(id string) string {
	for _, l := range a.catalog {
		if l.ID == id {
			return l.Name
		}
	}
	return id
}

// messages
type catalogMsg []watchlist.List

type symbolsMsg []backend.SymbolInfo

type statusMsg string

type errMsg struct{ error }

type editReadyMsg struct {
	sess *watchlist.Session
	gen  int
}

type reorderDoneMsg struct {
	sess *watchlist.Session
	op   watchlist.ReorderOp
	err  error
}

type deleteDoneMsg struct {
	sess *watchlist.Session
	op   watchlist.DeleteOp
	err  error
}

type addDoneMsg struct {
	symbol string
}

// styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

func (a *App) renderBrowse() string {
	title := titleStyle.Render("Watchdeck")
	out := title + "\n"
	if len(a.catalog) == 0 {
		out += "(no watchlists)\n"
	}
	for i, l := range a.catalog {
		marker := " "
		if i == a.listCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-24s %d symbols\n", marker, l.Name, len(l.Items))
	}
	out += faintStyle.Render("[enter] Open  [r] Refresh  [p] Settings  [q] Quit")
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderSettings() string {
	title := titleStyle.Render("Settings")
	out := title + "\n"
	if strings.EqualFold(strings.TrimSpace(a.cfg.Backend.Mode), "remote") {
		out += fmt.Sprintf("Backend: remote (%s)\n", a.cfg.Backend.BaseURL)
	} else {
		out += fmt.Sprintf("Backend: local (%s)\n", a.cfg.Database.Path)
	}
	confirm := "off"
	if a.cfg.UI.ConfirmDelete {
		confirm = "on"
	}
	out += fmt.Sprintf("Confirm before remove: %s\n", confirm)

	tokenValue := "(not set)"
	if a.tokenCached != "" {
		if a.showToken {
			tokenValue = a.tokenCached
		} else {
			tokenValue = strings.Repeat("*", len(a.tokenCached))
		}
	}
	out += fmt.Sprintf("API token (%s): %s\n", a.cfg.Backend.TokenEnv, tokenValue)
	out += faintStyle.Render("[c] Toggle confirm  [e] Edit token  [v] Toggle visibility  [x] Clear token  [esc] Back  [q] Quit")
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderEdit() string {
	name := ""
	if a.sess != nil {
		name = a.listName(a.sess.ID())
	}
	title := titleStyle.Render("Edit - " + name)
	out := title + "\n"
	if a.sess == nil || !a.sess.Ready() {
		out += "loading...\n"
		out += faintStyle.Render("[esc] Back  [q] Quit")
		return out
	}
	sel := a.sess.Selection()
	for i, it := range a.rows {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		box := "[ ]"
		if sel.Marked(it.Token) {
			box = "[x]"
		}
		out += fmt.Sprintf("%s %s %-8s %s\n", marker, box, it.Symbol, it.Name)
	}
	if len(a.rows) == 0 {
		out += "(empty watchlist)\n"
	}
	out += fmt.Sprintf("marked: %d\n", sel.Count())
	if a.lifting {
		out += faintStyle.Render("moving row - [enter] Drop  [esc] Cancel move")
	} else {
		out += faintStyle.Render("[J/K] Move row  [space] Mark  [s] Remove marked  [a] Add symbol  [esc] Back  [q] Quit")
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmDelete:
		n := 0
		if a.sess != nil {
			n = a.sess.Selection().Count()
		}
		return titleStyle.Render("Remove marked symbols?") + fmt.Sprintf("\n%d symbols will be removed from this watchlist.\n[y] Yes  [n] No", n)
	case modalDeleteError:
		return titleStyle.Render("Save failed") + "\nYour marked symbols could not be removed. Nothing was changed - try again.\n[enter] Close"
	case modalEditToken:
		return titleStyle.Render("Set API token (secrets store)") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalAddSymbol:
		out := titleStyle.Render("Add symbol") + "\n" + a.symInput.View() + "\n"
		for i, s := range a.symChoices {
			marker := " "
			if i == a.symCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %-8s %s\n", marker, s.Symbol, s.Name)
		}
		if !a.symLoaded {
			out += "(loading symbols...)\n"
		}
		out += "[enter] Add  [esc] Cancel"
		return out
	default:
		return ""
	}
}

// rankSymbols orders the catalog by edit distance to the query, symbol
// prefix matches first.
func rankSymbols(all []backend.SymbolInfo, query string, limit int) []backend.SymbolInfo {
	q := strings.ToUpper(strings.TrimSpace(query))
	out := append([]backend.SymbolInfo(nil), all...)
	if q != "" {
		dist := make(map[string]int, len(out))
		for _, s := range out {
			sym := strings.ToUpper(s.Symbol)
			d := levenshtein.ComputeDistance(q, sym)
			if nd := levenshtein.ComputeDistance(q, strings.ToUpper(s.Name)); nd < d {
				d = nd
			}
			if strings.HasPrefix(sym, q) {
				d = 0
			}
			dist[s.Symbol] = d
		}
		sort.SliceStable(out, func(i, j int) bool {
			return dist[out[i].Symbol] < dist[out[j].Symbol]
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
