package web

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"trafficledger/internal/catalog"
	"trafficledger/internal/observability"
	"trafficledger/internal/report"
	"trafficledger/internal/session"
	"trafficledger/internal/storage"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "tl_session"

type Server struct {
	snapshot  *storage.Snapshot
	runner    *catalog.Runner
	sessions  session.Store
	logger    *slog.Logger
	metrics   *observability.Metrics
	templates map[string]*template.Template
}

type PageData struct {
	Title   string
	Page    string
	Message string
}

type HomePageData struct {
	PageData
	Metrics     report.Metrics
	ShowMetrics bool
}

// Notice is the single status line under the summary form. Kind is one of
// success, info, warning or error.
type Notice struct {
	Kind string
	Text string
}

type SummaryPageData struct {
	PageData
	Countries []string
	Input     report.LocateInput
	Notice    *Notice
}

type QuestionView struct {
	Index    int
	Number   int
	Label    string
	Selected bool
}

type TableView struct {
	Columns []string
	Rows    [][]string
}

type QueriesPageData struct {
	PageData
	Questions []QuestionView
	Selected  QuestionView
	Error     string
	NoRows    bool
	Table     *TableView
}

func NewServer(snapshot *storage.Snapshot, runner *catalog.Runner, sessions session.Store, logger *slog.Logger, metrics *observability.Metrics) (*Server, error) {
	if runner == nil {
		return nil, errors.New("catalog runner is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if snapshot == nil {
		snapshot = storage.NewSnapshot(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	funcs := template.FuncMap{
		"noticeIcon": func(kind string) string {
			switch kind {
			case "success":
				return "✅"
			case "info":
				return "ℹ"
			case "warning":
				return "⚠"
			default:
				return "❌"
			}
		},
	}
	templates := make(map[string]*template.Template)
	for _, page := range []string{"home", "summary", "queries"} {
		tmpl, err := template.New("base").Funcs(funcs).ParseFS(
			templatesFS,
			"templates/base.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, err
		}
		templates[page] = tmpl
	}

	return &Server{
		snapshot:  snapshot,
		runner:    runner,
		sessions:  sessions,
		logger:    logger,
		metrics:   metrics,
		templates: templates,
	}, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	if err := s.templates[page].ExecuteTemplate(w, "base", data); err != nil {
		s.logger.ErrorContext(r.Context(), "template render failed", "page", page, "error", err)
		http.Error(w, "template render failed", http.StatusInternalServerError)
	}
}

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	metrics := report.ComputeMetrics(s.snapshot.Stops())
	data := HomePageData{
		PageData: PageData{
			Title:   "Digital Ledger for Police Post Logs",
			Page:    "home",
			Message: r.URL.Query().Get("msg"),
		},
		Metrics:     metrics,
		ShowMetrics: !metrics.Empty(),
	}
	s.render(w, r, "home", data)
}

func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	data := SummaryPageData{
		PageData: PageData{
			Title:   "Generate Summary",
			Page:    "summary",
			Message: r.URL.Query().Get("msg"),
		},
		Countries: s.snapshot.Countries(),
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/summary?msg=invalid+form", http.StatusFound)
			return
		}
		data.Input = report.LocateInput{
			Country: r.FormValue("country"),
			Gender:  r.FormValue("gender"),
			Age:     r.FormValue("age"),
			Date:    r.FormValue("date"),
			Time:    r.FormValue("time"),
		}
		data.Notice = s.locate(r, data.Input)
	}

	s.render(w, r, "summary", data)
}

func (s *Server) locate(r *http.Request, input report.LocateInput) *Notice {
	result, err := report.Locate(s.snapshot.Stops(), input)
	switch {
	case errors.Is(err, report.ErrMissingInput):
		s.metrics.IncrementLookup(observability.LookupInvalid)
		return &Notice{Kind: "warning", Text: "Please fill in all fields before submitting."}
	case err != nil:
		s.metrics.IncrementLookup(observability.LookupInvalid)
		s.logger.InfoContext(r.Context(), "summary input rejected", "error", err)
		return &Notice{Kind: "error", Text: "Invalid input format: " + err.Error()}
	case !result.Found:
		s.metrics.IncrementLookup(observability.LookupNoMatch)
		return &Notice{Kind: "info", Text: report.NoMatchMessage}
	default:
		s.metrics.IncrementLookup(observability.LookupMatch)
		return &Notice{Kind: "success", Text: result.Summary}
	}
}

func (s *Server) Queries(w http.ResponseWriter, r *http.Request) {
	state, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	questions := catalog.Questions()
	data := QueriesPageData{
		PageData: PageData{
			Title:   "SQL Query Explorer",
			Page:    "queries",
			Message: r.URL.Query().Get("msg"),
		},
	}
	for i, q := range questions {
		view := QuestionView{Index: i, Number: i + 1, Label: q.Label, Selected: i == state.Selected}
		if view.Selected {
			data.Selected = view
		}
		data.Questions = append(data.Questions, view)
	}

	switch {
	case state.Error != "":
		data.Error = state.Error
	case state.HasResult() && state.Result.Empty():
		data.NoRows = true
	case state.HasResult():
		data.Table = tableView(state.Result)
	}

	s.render(w, r, "queries", data)
}

// SelectQuestion changes the session's question. A different question
// clears the previous answer until it is run again.
func (s *Server) SelectQuestion(w http.ResponseWriter, r *http.Request) {
	state, index, ok := s.selectFromForm(w, r)
	if !ok {
		return
	}
	state.Select(index)
	if err := s.sessions.Save(r.Context(), state); err != nil {
		s.logger.ErrorContext(r.Context(), "session save failed", "error", err)
		http.Redirect(w, r, "/queries?msg=session+save+failed", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/queries", http.StatusFound)
}

func (s *Server) RunQuestion(w http.ResponseWriter, r *http.Request) {
	state, index, ok := s.selectFromForm(w, r)
	if !ok {
		return
	}
	state.Select(index)
	table, err := s.runner.Run(r.Context(), index)
	state.Record(table, err)
	if err := s.sessions.Save(r.Context(), state); err != nil {
		s.logger.ErrorContext(r.Context(), "session save failed", "error", err)
		http.Redirect(w, r, "/queries?msg=session+save+failed", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/queries", http.StatusFound)
}

func (s *Server) selectFromForm(w http.ResponseWriter, r *http.Request) (session.State, int, bool) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/queries?msg=invalid+form", http.StatusFound)
		return session.State{}, 0, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(r.FormValue("question")))
	if err != nil {
		http.Redirect(w, r, "/queries?msg=invalid+question", http.StatusFound)
		return session.State{}, 0, false
	}
	if _, known := catalog.Lookup(index); !known {
		http.Redirect(w, r, "/queries?msg=unknown+question", http.StatusFound)
		return session.State{}, 0, false
	}
	state, ok := s.loadSession(w, r)
	if !ok {
		return session.State{}, 0, false
	}
	return state, index, true
}

// loadSession returns the state for the request's cookie, issuing a new
// session id when the cookie is absent or malformed.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (session.State, bool) {
	id := ""
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if parsed, err := uuid.Parse(cookie.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	state, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "session load failed", "error", err)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return session.State{}, false
	}
	return state, true
}
