// Package gatewaytest provides an in-memory stand-in for the remote expenses
// API, speaking the same envelope format.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/gateway"
)

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	expenses map[int64]core.Expense
	nextID   int64
	insights string
	failing  bool
	failNext int
	requests int
}

// NewServer starts a fake API holding expenses. Expenses without an id are
// given one.
func NewServer(expenses ...core.Expense) *Server {
	s := &Server{
		expenses: make(map[int64]core.Expense),
		insights: "Spending looks steady.",
	}
	for _, e := range expenses {
		s.put(e)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+gateway.BasePath, s.handleList)
	mux.HandleFunc("POST "+gateway.BasePath, s.handleCreate)
	mux.HandleFunc("DELETE "+gateway.BasePath+"/{id}", s.handleDelete)
	mux.HandleFunc("GET "+gateway.BasePath+"/insights", s.handleInsights)
	mux.HandleFunc("GET "+gateway.BasePath+"/category/{category}", s.handleCategory)
	mux.HandleFunc("GET "+gateway.BasePath+"/search", s.handleSearch)
	mux.HandleFunc("GET "+gateway.BasePath+"/stats/total", s.handleTotal)
	mux.HandleFunc("GET "+gateway.BasePath+"/stats/count", s.handleCount)
	mux.HandleFunc("GET "+gateway.BasePath+"/health", s.handleHealth)

	s.Server = httptest.NewServer(s.guard(mux))
	return s
}

// SetInsights changes the text served by the insights endpoint.
func (s *Server) SetInsights(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights = text
}

// SetFailing makes every request answer 500.
func (s *Server) SetFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

// FailNext makes the next n requests answer 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

// Expenses returns the stored expenses ordered by id.
func (s *Server) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Requests returns how many requests were served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) put(e core.Expense) {
	if e.ID == nil {
		s.nextID++
		e.ID = core.NewID(s.nextID)
	} else if *e.ID > s.nextID {
		s.nextID = *e.ID
	}
	s.expenses[*e.ID] = e
}

func (s *Server) sortedLocked() []core.Expense {
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out
}

func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		failing := s.failing || s.failNext > 0
		if s.failNext > 0 {
			s.failNext--
		}
		s.mu.Unlock()
		if failing {
			writeEnvelope(w, http.StatusInternalServerError, false, "", nil, "Internal server error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := s.sortedLocked()
	s.mu.Unlock()
	writeExpenses(w, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, "", nil, "Invalid request body: "+err.Error())
		return
	}
	e.ID = nil

	s.mu.Lock()
	s.put(e)
	created := s.expenses[s.nextID]
	s.mu.Unlock()

	writeEnvelope(w, http.StatusCreated, true, "Expense created successfully", created, "")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, "", nil, "Invalid expense id")
		return
	}
	s.mu.Lock()
	_, ok := s.expenses[id]
	delete(s.expenses, id)
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, "", nil, "Expense not found")
		return
	}
	writeEnvelope(w, http.StatusOK, true, "Expense deleted successfully", nil, "")
}

func (s *Server) handleInsights(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	text := s.insights
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, "Insights generated successfully", text, "")
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	category := core.Category(r.PathValue("category"))
	s.mu.Lock()
	var out []core.Expense
	for _, e := range s.sortedLocked() {
		if e.Category == category {
			out = append(out, e)
		}
	}
	s.mu.Unlock()
	writeExpenses(w, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	var out []core.Expense
	for _, e := range s.sortedLocked() {
		if strings.Contains(strings.ToLower(e.Description), q) {
			out = append(out, e)
		}
	}
	s.mu.Unlock()
	writeExpenses(w, out)
}

func (s *Server) handleTotal(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	total := decimal.Zero
	for _, e := range s.expenses {
		total = total.Add(e.Amount)
	}
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, "", json.Number(total.String()), "")
}

func (s *Server) handleCount(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	n := len(s.expenses)
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, true, "", n, "")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, true, "Service is healthy", nil, "")
}

func writeExpenses(w http.ResponseWriter, list []core.Expense) {
	if list == nil {
		list = []core.Expense{}
	}
	writeEnvelope(w, http.StatusOK, true, "Operation successful", list, "")
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any, errMsg string) {
	body := map[string]any{"success": success}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	if errMsg != "" {
		body["error"] = errMsg
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
