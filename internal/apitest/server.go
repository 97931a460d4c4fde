// Package apitest provides an in-memory implementation of the budget server
// protocol for tests and demos.
package apitest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/model"
)

// Endpoint paths.
const (
	PathData           = "/api/data"
	PathAddAccount     = "/api/add_account"
	PathDeleteAccount  = "/api/delete_account"
	PathToggleAccount  = "/api/toggle_account"
	PathAddTransaction = "/api/add_transaction"
	PathUpdateBudget   = "/api/update_budget"
)

// Request is a request the server received.
type Request struct {
	Method    string
	Path      string
	RequestID string
	Body      []byte
}

// Server is a fake budget server. It is safe for concurrent use.
type Server struct {
	srv       *httptest.Server
	failures  map[string]int
	gates     map[string]*gate
	responses map[string]*gate
	waiting   map[string]int
	all       []*gate
	data      model.Snapshot
	requests  []Request
	mu        sync.Mutex
}

// New creates a server seeded with snap. It is not listening until Start.
func New(seed model.Snapshot) *Server {
	data := seed.Clone()
	if data.Accounts == nil {
		data.Accounts = []model.Account{}
	}
	if data.Transactions == nil {
		data.Transactions = []model.Transaction{}
	}
	return &Server{
		data:      data,
		failures:  make(map[string]int),
		gates:     make(map[string]*gate),
		responses: make(map[string]*gate),
		waiting:   make(map[string]int),
	}
}

// NewServer creates and starts a server seeded with snap.
func NewServer(seed model.Snapshot) *Server {
	s := New(seed)
	s.Start()
	return s
}

// Start begins listening on a local port.
func (s *Server) Start() {
	s.srv = httptest.NewServer(s.Handler())
}

// URL returns the base URL of a started server.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down and releases every held request.
func (s *Server) Close() {
	s.mu.Lock()
	all := s.all
	s.gates = make(map[string]*gate)
	s.responses = make(map[string]*gate)
	s.mu.Unlock()
	for _, g := range all {
		g.open()
	}
	if s.srv != nil {
		s.srv.Close()
	}
}

// Handler returns the HTTP handler implementing the protocol.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathData, s.handleData)
	mux.HandleFunc("POST "+PathAddAccount, s.handleAddAccount)
	mux.HandleFunc("POST "+PathDeleteAccount, s.handleDeleteAccount)
	mux.HandleFunc("POST "+PathToggleAccount, s.handleToggleAccount)
	mux.HandleFunc("POST "+PathAddTransaction, s.handleAddTransaction)
	mux.HandleFunc("POST "+PathUpdateBudget, s.handleUpdateBudget)
	return s.intercept(mux)
}

// Fail makes every request to path answer with status until Recover is called.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Recover clears a failure set with Fail.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Hold blocks requests to path before they are handled until the returned
// release function is called. Calling release more than once is harmless.
func (s *Server) Hold(path string) (release func()) {
	g := s.newGate()
	s.mu.Lock()
	s.gates[path] = g
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.gates[path] == g {
			delete(s.gates, path)
		}
		s.mu.Unlock()
		g.open()
	}
}

// HoldResponse lets the next request to path be handled but holds its
// response until release is called, so the client receives data that may be
// stale by then. Later requests are not affected.
func (s *Server) HoldResponse(path string) (release func()) {
	g := s.newGate()
	s.mu.Lock()
	s.responses[path] = g
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.responses[path] == g {
			delete(s.responses, path)
		}
		s.mu.Unlock()
		g.open()
	}
}

// Waiting returns how many handled responses to path are being held.
func (s *Server) Waiting(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting[path]
}

// Snapshot returns a copy of the server's data.
func (s *Server) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests hit path.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

type gate struct {
	ch   chan struct{}
	once sync.Once
}

func (g *gate) open() {
	g.once.Do(func() { close(g.ch) })
}

func (s *Server) newGate() *gate {
	g := &gate{ch: make(chan struct{})}
	s.mu.Lock()
	s.all = append(s.all, g)
	s.mu.Unlock()
	return g
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get("X-Request-ID"),
			Body:      body,
		})
		g := s.gates[r.URL.Path]
		s.mu.Unlock()

		if g != nil {
			select {
			case <-g.ch:
			case <-r.Context().Done():
				return
			}
		}

		s.mu.Lock()
		status, failing := s.failures[r.URL.Path]
		s.mu.Unlock()
		if failing {
			http.Error(w, http.StatusText(status), status)
			return
		}

		r.Body = newBody(body)

		s.mu.Lock()
		held, ok := s.responses[r.URL.Path]
		if ok {
			delete(s.responses, r.URL.Path)
		}
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r)

		s.mu.Lock()
		s.waiting[r.URL.Path]++
		s.mu.Unlock()
		select {
		case <-held.ch:
		case <-r.Context().Done():
		}
		s.mu.Lock()
		s.waiting[r.URL.Path]--
		s.mu.Unlock()

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}
		w.WriteHeader(rec.Code)
		_, _ = w.Write(rec.Body.Bytes())
	})
}

func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

type addAccountRequest struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req addAccountRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	id := model.ID(fmt.Sprintf("%s_%d", slug(req.Name), len(s.data.Accounts)+1))
	acc := model.Account{
		ID:          id,
		Name:        req.Name,
		Type:        req.Type,
		Balance:     req.Balance,
		BudgetLimit: decimal.NewNullDecimal(model.DefaultBudgetLimit),
	}
	s.data.Accounts = append(s.data.Accounts, acc)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "account": acc})
}

type idRequest struct {
	ID model.ID `json:"id"`
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	accounts := s.data.Accounts[:0]
	for _, acc := range s.data.Accounts {
		if acc.ID != req.ID {
			accounts = append(accounts, acc)
		}
	}
	transactions := s.data.Transactions[:0]
	for _, txn := range s.data.Transactions {
		if txn.AccountID != req.ID {
			transactions = append(transactions, txn)
		}
	}
	s.data.Accounts, s.data.Transactions = accounts, transactions
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func (s *Server) handleToggleAccount(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	for i := range s.data.Accounts {
		s.data.Accounts[i].Active = s.data.Accounts[i].ID == req.ID
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

type addTransactionRequest struct {
	Date      model.Date            `json:"date"`
	Title     string                `json:"title"`
	Category  string                `json:"category"`
	AccountID model.ID              `json:"account_id"`
	Type      model.TransactionType `json:"type"`
	Amount    decimal.Decimal       `json:"amount"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	next := 1
	for _, txn := range s.data.Transactions {
		if n, err := strconv.Atoi(string(txn.ID)); err == nil && n >= next {
			next = n + 1
		}
	}
	txn := model.Transaction{
		ID:        model.ID(strconv.Itoa(next)),
		Title:     req.Title,
		Category:  req.Category,
		Amount:    req.Amount,
		Type:      req.Type,
		Date:      req.Date,
		AccountID: req.AccountID,
	}
	s.data.Transactions = append([]model.Transaction{txn}, s.data.Transactions...)
	for i := range s.data.Accounts {
		if s.data.Accounts[i].ID != req.AccountID {
			continue
		}
		switch req.Type {
		case model.TypeIncome:
			s.data.Accounts[i].Balance = s.data.Accounts[i].Balance.Add(req.Amount)
		case model.TypeExpense:
			s.data.Accounts[i].Balance = s.data.Accounts[i].Balance.Sub(req.Amount)
		}
		break
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "transaction": txn})
}

type updateBudgetRequest struct {
	AccountID model.ID        `json:"account_id"`
	NewLimit  decimal.Decimal `json:"new_limit"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req updateBudgetRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	for i := range s.data.Accounts {
		if s.data.Accounts[i].ID == req.AccountID {
			s.data.Accounts[i].BudgetLimit = decimal.NewNullDecimal(req.NewLimit)
			break
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "malformed request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
