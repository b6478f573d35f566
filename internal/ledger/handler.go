package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/budget-ledger/internal/transport"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	RecordTransaction(ctx context.Context, dto CreateTransactionDTO) (*Transaction, error)
	ListTransactions(ctx context.Context, dto TransactionFilterDTO) ([]*Transaction, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	UpdateTransaction(ctx context.Context, id string, dto UpdateTransactionDTO) (*Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ExportTransactions(ctx context.Context) ([][]string, error)
	Summarize(ctx context.Context) (*Summary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Routes mounts the transaction endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/transactions", func(tr chi.Router) {
		tr.Get("/", h.ListTransactions)
		tr.Post("/", h.CreateTransaction)
		tr.Get("/export/csv", h.ExportCSV)
		tr.Get("/{id}", h.GetTransaction)
		tr.Put("/{id}", h.UpdateTransaction)
		tr.Delete("/{id}", h.DeleteTransaction)
	})
	r.Get("/stats", h.Stats)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dto := TransactionFilterDTO{
		Category: query.Get("category"),
		DateFrom: query.Get("date_from"),
		DateTo:   query.Get("date_to"),
		Tag:      query.Get("tag"),
	}

	txs, err := h.Service.ListTransactions(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewTransactionListResponse(txs))
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto CreateTransactionDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		logger.From(r.Context()).Warn("CreateTransaction: invalid request body", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	tx, err := h.Service.RecordTransaction(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, tx.ToResponse())
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Service.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tx.ToResponse())
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto UpdateTransactionDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		logger.From(r.Context()).Warn("UpdateTransaction: invalid request body", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	tx, err := h.Service.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tx.ToResponse())
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteTransaction(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ExportTransactions(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)

	if err := WriteCSV(w, rows); err != nil {
		logger.From(r.Context()).Error("ExportCSV: failed to write rows", "error", err)
	}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summarize(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary.ToResponse())
}

// WriteCSV writes rows produced by ExportTabular as RFC 4180 CSV.
func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
