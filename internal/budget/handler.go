package budget

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/budget-ledger/internal/transport"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	SetBudget(ctx context.Context, dto SetBudgetDTO) (*Allocation, error)
	ListBudgets(ctx context.Context, month string) ([]*Allocation, error)
	LookupBudget(ctx context.Context, month, category string) (*Allocation, error)
	DeleteBudget(ctx context.Context, id string) error
	Analyze(ctx context.Context, month string) (*Report, error)
	CurrentMonth(ctx context.Context) (string, []*Allocation, *Report, error)
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

// Routes mounts the budget endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/budgets", func(br chi.Router) {
		br.Get("/", h.ListBudgets)
		br.Post("/", h.SetBudget)
		br.Get("/lookup", h.LookupBudget)
		br.Get("/current", h.CurrentMonth)
		br.Get("/analysis/{month}", h.Analyze)
		br.Delete("/{id}", h.DeleteBudget)
	})
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	allocations, err := h.Service.ListBudgets(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewAllocationListResponse(allocations))
}

func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	var dto SetBudgetDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		logger.From(r.Context()).Warn("SetBudget: invalid request body", "error", err)
		h.HandleServiceError(w, r, err)
		return
	}

	allocation, err := h.Service.SetBudget(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, SetBudgetResponse{
		Budget:  allocation.ToResponse(),
		Message: "Budget set successfully",
	})
}

func (h *Handler) LookupBudget(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	allocation, err := h.Service.LookupBudget(r.Context(), query.Get("month"), query.Get("category"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, allocation.ToResponse())
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteBudget(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Analyze(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report.ToResponse())
}

func (h *Handler) CurrentMonth(w http.ResponseWriter, r *http.Request) {
	month, allocations, report, err := h.Service.CurrentMonth(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CurrentMonthResponse{
		Month:    month,
		Budgets:  NewAllocationListResponse(allocations).Budgets,
		Analysis: report.ToResponse(),
	})
}
