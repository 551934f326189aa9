package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/budgetly/budgetly/internal/middleware"
	"github.com/budgetly/budgetly/internal/models"
)

type goalPayload struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Deadline      string  `json:"deadline"`
	CreatedAt     int64   `json:"created_at"`
}

func toGoalPayload(g models.Goal) goalPayload {
	return goalPayload{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Deadline:      g.Deadline,
		CreatedAt:     g.CreatedAt,
	}
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string  `json:"name"`
		TargetAmount  float64 `json:"target_amount"`
		CurrentAmount float64 `json:"current_amount"`
		Deadline      string  `json:"deadline"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.TargetAmount <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive target_amount are required")
		return
	}

	goal := &models.Goal{
		UserID:        middleware.GetUserID(r.Context()),
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
	}
	if err := s.deps.Store.CreateGoal(r.Context(), goal); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create goal")
		return
	}
	writeJSON(w, http.StatusCreated, toGoalPayload(*goal))
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Store.ListGoals(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list goals")
		return
	}
	out := make([]goalPayload, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalPayload(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) getGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.deps.Store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if goal.UserID != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your goal")
		return
	}
	writeJSON(w, http.StatusOK, toGoalPayload(*goal))
}

func (s *Server) updateGoal(w http.ResponseWriter, r *http.Request) {
	existing, err := s.deps.Store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if existing.UserID != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your goal")
		return
	}

	var req struct {
		Name          string  `json:"name"`
		TargetAmount  float64 `json:"target_amount"`
		CurrentAmount float64 `json:"current_amount"`
		Deadline      string  `json:"deadline"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.TargetAmount > 0 {
		existing.TargetAmount = req.TargetAmount
	}
	if req.CurrentAmount >= 0 {
		existing.CurrentAmount = req.CurrentAmount
	}
	if req.Deadline != "" {
		existing.Deadline = req.Deadline
	}

	if err := s.deps.Store.UpdateGoal(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update goal")
		return
	}
	writeJSON(w, http.StatusOK, toGoalPayload(*existing))
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request) {
	existing, err := s.deps.Store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if existing.UserID != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your goal")
		return
	}
	if err := s.deps.Store.DeleteGoal(r.Context(), existing.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete goal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type budgetPayload struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	CreatedAt  int64   `json:"created_at"`
}

func toBudgetPayload(b models.Budget) budgetPayload {
	return budgetPayload{
		ID:         b.ID,
		Category:   string(b.Category),
		Amount:     b.Amount,
		Percentage: b.Percentage,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		CreatedAt:  b.CreatedAt,
	}
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category   string  `json:"category"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
		StartDate  string  `json:"start_date"`
		EndDate    string  `json:"end_date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category := models.ExpenseCategory(req.Category)
	if !models.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "a positive amount is required")
		return
	}

	budget := &models.Budget{
		UserID:     middleware.GetUserID(r.Context()),
		Category:   category,
		Amount:     req.Amount,
		Percentage: req.Percentage,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	if err := s.deps.Store.CreateBudget(r.Context(), budget); err != nil {
		writeError(w, http.StatusInternalServerError, "could not create budget")
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetPayload(*budget))
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Store.ListBudgets(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list budgets")
		return
	}
	out := make([]budgetPayload, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetPayload(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": out})
}

func (s *Server) updateBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	budgets, err := s.deps.Store.ListBudgets(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load budgets")
		return
	}
	var existing *models.Budget
	for i := range budgets {
		if budgets[i].ID == id {
			existing = &budgets[i]
			break
		}
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}

	var req struct {
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
		StartDate  string  `json:"start_date"`
		EndDate    string  `json:"end_date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount > 0 {
		existing.Amount = req.Amount
	}
	if req.Percentage > 0 {
		existing.Percentage = req.Percentage
	}
	if req.StartDate != "" {
		existing.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		existing.EndDate = req.EndDate
	}

	if err := s.deps.Store.UpdateBudget(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, "could not update budget")
		return
	}
	writeJSON(w, http.StatusOK, toBudgetPayload(*existing))
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")

	budgets, err := s.deps.Store.ListBudgets(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load budgets")
		return
	}
	found := false
	for _, b := range budgets {
		if b.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}

	if err := s.deps.Store.DeleteBudget(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete budget")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type transactionPayload struct {
	ID              string  `json:"id"`
	BillID          string  `json:"bill_id"`
	ParticipantID   int     `json:"participant_id"`
	ItemName        string  `json:"item_name"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	Amount          float64 `json:"amount"`
	MerchantName    string  `json:"merchant"`
	Category        string  `json:"category"`
	TransactionDate string  `json:"transaction_date"`
	CreatedAt       int64   `json:"created_at"`
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.TransactionFilter{
		BillID:       q.Get("bill_id"),
		MerchantName: q.Get("merchant"),
		Category:     models.ExpenseCategory(q.Get("category")),
	}
	if v := q.Get("participant_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "participant_id must be an integer")
			return
		}
		filter.ParticipantID = id
	}
	if v := q.Get("min_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_amount must be a number")
			return
		}
		filter.MinAmount = f
	}
	if v := q.Get("max_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_amount must be a number")
			return
		}
		filter.MaxAmount = f
	}
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	txs, err := s.deps.Store.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}

	out := make([]transactionPayload, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionPayload{
			ID:              tx.ID,
			BillID:          tx.BillID,
			ParticipantID:   tx.ParticipantID,
			ItemName:        tx.ItemName,
			UnitPrice:       tx.UnitPrice,
			Quantity:        tx.Quantity,
			Amount:          tx.Amount,
			MerchantName:    tx.MerchantName,
			Category:        string(tx.Category),
			TransactionDate: tx.TransactionDate,
			CreatedAt:       tx.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}
