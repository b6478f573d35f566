package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/budget-ledger/api"
	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/internal/transport/middleware"
	"github.com/frahmantamala/budget-ledger/internal/transport/rest"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var _ = Describe("RegisterAllRoutes", func() {
	var (
		router   *chi.Mux
		health   map[string]rest.Pinger
		validate bool
	)

	build := func() {
		lg := logger.Discard()
		clock := func() time.Time { return time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC) }

		ledgerService := ledger.NewService(ledger.NewInMemory(ledger.WithClock(clock)), nil, lg)
		budgetService := budget.NewService(budget.NewInMemoryAnalyzer(budget.WithClock(clock)), ledgerService, lg)

		routes := rest.Routes{
			Server:  internal.DefaultConfig().Server,
			Metrics: internal.MetricsConfig{Enabled: true, Path: "/metrics"},
			Health:  health,
			Ledger:  ledger.NewHandler(ledgerService),
			Budget:  budget.NewHandler(budgetService),
		}
		if validate {
			doc, err := middleware.LoadOpenAPI(context.Background(), api.OpenAPI)
			Expect(err).NotTo(HaveOccurred())
			routes.OpenAPI = doc
		}

		router = chi.NewRouter()
		Expect(rest.RegisterAllRoutes(router, routes, lg)).To(Succeed())
	}

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		health = map[string]rest.Pinger{
			"ledger":  pingerFunc(func(context.Context) error { return nil }),
			"budgets": pingerFunc(func(context.Context) error { return nil }),
		}
		validate = true
	})

	JustBeforeEach(build)

	It("should serve the embedded OpenAPI document", func() {
		w := do(http.MethodGet, "/openapi.yml", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Budget Ledger API"))
	})

	It("should answer the liveness probe", func() {
		w := do(http.MethodGet, "/api/v1/ping", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
	})

	It("should expose prometheus metrics", func() {
		do(http.MethodGet, "/api/v1/ping", "")
		w := do(http.MethodGet, "/metrics", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("http_requests_total"))
	})

	Describe("health", func() {
		It("should report every component healthy", func() {
			w := do(http.MethodGet, "/api/v1/health", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp rest.HealthResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(rest.HealthHealthy))
			Expect(resp.Components).To(HaveKey("ledger"))
			Expect(resp.Components).To(HaveKey("budgets"))
		})

		Context("when a component fails", func() {
			BeforeEach(func() {
				health["budgets"] = pingerFunc(func(context.Context) error { return errors.New("database is closed") })
			})

			It("should answer 503 naming the failure", func() {
				w := do(http.MethodGet, "/api/v1/health", "")
				Expect(w.Code).To(Equal(http.StatusServiceUnavailable))

				var resp rest.HealthResponse
				Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
				Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
				Expect(resp.Components["budgets"].Message).To(Equal("database is closed"))
				Expect(resp.Components["ledger"].Status).To(Equal(rest.HealthHealthy))
			})
		})
	})

	It("should record transactions and analyze them against budgets", func() {
		w := do(http.MethodPost, "/api/v1/transactions", `{"amount": 120.50, "category": "Food", "date": "2025-10-03"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created ledger.TransactionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

		w = do(http.MethodGet, "/api/v1/transactions/"+created.ID[:8], "")
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodPost, "/api/v1/budgets", `{"amount": 100, "month": "2025-10", "category": "Food"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/api/v1/budgets/analysis/2025-10", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var report budget.ReportResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &report)).To(Succeed())
		Expect(report.Categories).To(HaveKey("Food"))
		Expect(report.Categories["Food"].Status).To(Equal(budget.StatusExceeded))
		Expect(report.TotalSpent.String()).To(Equal("120.5"))
	})

	It("should reject documented requests that break the schema", func() {
		w := do(http.MethodPost, "/api/v1/budgets", `{"month": "2025-10"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("amount"))
	})

	Context("without request validation", func() {
		BeforeEach(func() {
			validate = false
		})

		It("should fall back to the service validation", func() {
			w := do(http.MethodPost, "/api/v1/budgets", `{"month": "2025-10"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("amount"))
		})
	})

	It("should keep fields sent as null when updating", func() {
		w := do(http.MethodPost, "/api/v1/transactions", `{"amount": 42.5, "category": "Food", "date": "2025-10-03", "description": "Lunch"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created ledger.TransactionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

		w = do(http.MethodPut, "/api/v1/transactions/"+created.ID[:6],
			`{"amount": null, "category": null, "date": null, "description": null}`)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		var updated ledger.TransactionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &updated)).To(Succeed())
		Expect(updated).To(Equal(created))

		w = do(http.MethodPut, "/api/v1/transactions/"+created.ID[:6], `{"amount": null, "description": ""}`)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		Expect(json.Unmarshal(w.Body.Bytes(), &updated)).To(Succeed())
		Expect(updated.Amount.String()).To(Equal("42.5"))
		Expect(updated.Category).To(Equal("Food"))
		Expect(updated.Description).To(BeEmpty())
	})

	It("should answer unknown routes with an error body", func() {
		w := do(http.MethodGet, "/nowhere", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("NOT_FOUND"))
		Expect(w.Body.String()).To(ContainSubstring("route not found"))
	})

	It("should answer unsupported methods with an error body", func() {
		w := do(http.MethodPost, "/openapi.yml", "")
		Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(w.Body.String()).To(ContainSubstring("METHOD_NOT_ALLOWED"))
	})

	It("should answer 404 for unknown transactions", func() {
		w := do(http.MethodGet, "/api/v1/transactions/does-not-exist", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("TRANSACTION_NOT_FOUND"))
	})
})
