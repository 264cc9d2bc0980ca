package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trafficledger/internal/catalog"
	"trafficledger/internal/observability"
	"trafficledger/internal/report"
)

type metricsResponse struct {
	Empty bool `json:"empty"`
	*report.Metrics
}

type questionResponse struct {
	Number int    `json:"number"`
	Label  string `json:"label"`
}

type summaryResponse struct {
	Found   bool   `json:"found"`
	Summary string `json:"summary,omitempty"`
	Message string `json:"message,omitempty"`
}

type queryResponse struct {
	Number   int              `json:"number"`
	Question string           `json:"question"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
}

// APIMetrics omits the counts entirely for an empty record set.
func (s *Server) APIMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := report.ComputeMetrics(s.snapshot.Stops())
	resp := metricsResponse{Empty: metrics.Empty()}
	if !resp.Empty {
		resp.Metrics = &metrics
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) APIQuestions(w http.ResponseWriter, r *http.Request) {
	questions := catalog.Questions()
	resp := make([]questionResponse, 0, len(questions))
	for i, q := range questions {
		resp = append(resp, questionResponse{Number: i + 1, Label: q.Label})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) APISummary(w http.ResponseWriter, r *http.Request) {
	var input report.LocateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	result, err := report.Locate(s.snapshot.Stops(), input)
	if err != nil {
		s.metrics.IncrementLookup(observability.LookupInvalid)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Found {
		s.metrics.IncrementLookup(observability.LookupNoMatch)
		writeJSON(w, http.StatusOK, summaryResponse{Found: false, Message: report.NoMatchMessage})
		return
	}
	s.metrics.IncrementLookup(observability.LookupMatch)
	writeJSON(w, http.StatusOK, summaryResponse{Found: true, Summary: result.Summary})
}

// APIQuery runs the question numbered in the URL, counting from 1.
func (s *Server) APIQuery(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "question number must be an integer")
		return
	}
	question, ok := catalog.Lookup(number - 1)
	if !ok {
		writeError(w, http.StatusNotFound, catalog.ErrUnknownQuestion.Error())
		return
	}

	table, err := s.runner.Run(r.Context(), number-1)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrUnknownQuestion) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Number:   number,
		Question: question.Label,
		Columns:  table.Columns,
		Rows:     table.Records(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
