package handlers

import (
	"net/http"

	"kycdesk/middleware"
	"kycdesk/models"
)

func (h *Handlers) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.transactions.List(r.Context(), middleware.GetPrincipal(r), pageFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *Handlers) Deposit(w http.ResponseWriter, r *http.Request) {
	h.requestTransaction(w, r, models.TransactionDeposit, "Deposit request submitted for review")
}

func (h *Handlers) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.requestTransaction(w, r, models.TransactionWithdrawal, "Withdrawal request submitted for review")
}

func (h *Handlers) requestTransaction(w http.ResponseWriter, r *http.Request, kind models.TransactionType, message string) {
	var req models.TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := h.transactions.Request(r.Context(), middleware.GetPrincipal(r), kind, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, message, map[string]interface{}{"transaction": txn})
}

func (h *Handlers) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Transaction not found")
	if err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := h.transactions.Approve(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Transaction approved successfully", map[string]interface{}{"transaction": txn})
}

func (h *Handlers) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Transaction not found")
	if err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := h.transactions.Reject(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Transaction rejected successfully", map[string]interface{}{"transaction": txn})
}
