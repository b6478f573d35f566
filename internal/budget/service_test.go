package budget_test

import (
	"context"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	"github.com/frahmantamala/budget-ledger/pkg/metrics"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("Budget Service", func() {
	var (
		ctx           context.Context
		bus           *events.EventBus
		ledgerService *ledger.Service
		service       *budget.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(logger.Discard())
		ledgerService = ledger.NewService(ledger.NewInMemory(), bus, logger.Discard())
		service = budget.NewService(budget.NewInMemoryAnalyzer(), ledgerService, logger.Discard())
	})

	Describe("SetBudget", func() {
		It("should treat a blank category as the overall budget", func() {
			allocation, err := service.SetBudget(ctx, budget.SetBudgetDTO{Amount: ptr(amount("1000")), Month: "2025-10", Category: category("  ")})
			Expect(err).NotTo(HaveOccurred())
			Expect(allocation.Category).To(BeNil())
		})

		It("should require an amount", func() {
			_, err := service.SetBudget(ctx, budget.SetBudgetDTO{Month: "2025-10"})
			Expect(errors.IsValidationError(err)).To(BeTrue())
		})

		It("should reject a malformed month", func() {
			_, err := service.SetBudget(ctx, budget.SetBudgetDTO{Amount: ptr(amount("1")), Month: "Oct 2025"})
			Expect(errors.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("LookupBudget", func() {
		It("should map a missing allocation to not-found", func() {
			_, err := service.LookupBudget(ctx, "2025-10", "Food")
			Expect(err).To(Equal(errors.ErrBudgetNotFound))
		})

		It("should find the overall budget when the category is blank", func() {
			_, _ = service.SetBudget(ctx, budget.SetBudgetDTO{Amount: ptr(amount("1000")), Month: "2025-10"})

			allocation, err := service.LookupBudget(ctx, "2025-10", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(allocation.IsOverall()).To(BeTrue())
		})
	})

	Describe("DeleteBudget", func() {
		It("should return not-found for unknown ids", func() {
			Expect(service.DeleteBudget(ctx, "missing")).To(MatchError(errors.ErrBudgetNotFound))
		})
	})

	Describe("Analyze", func() {
		It("should analyze the live ledger", func() {
			_, _ = service.SetBudget(ctx, budget.SetBudgetDTO{Amount: ptr(amount("500")), Month: "2025-11"})
			_, _ = ledgerService.RecordTransaction(ctx, ledger.CreateTransactionDTO{Amount: amount("700"), Category: "Rent", Date: "2025-11-01"})

			report, err := service.Analyze(ctx, "2025-11")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalRemaining.String()).To(Equal("-200"))
			Expect(report.Status).To(Equal(budget.StatusExceeded))
		})

		It("should reject a malformed month", func() {
			_, err := service.Analyze(ctx, "2025-13")
			Expect(errors.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("CurrentMonth", func() {
		It("should analyze the current calendar month", func() {
			month, allocations, report, err := service.CurrentMonth(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(month).To(Equal(time.Now().Format("2006-01")))
			Expect(allocations).To(BeEmpty())
			Expect(report.Month).To(Equal(month))
		})
	})

	Describe("Watcher", func() {
		It("should count an exceeded category after a transaction is recorded", func() {
			budget.NewWatcher(service, logger.Discard()).RegisterEventHandlers(bus)
			counter := metrics.BudgetExceededTotal.WithLabelValues(metrics.ScopeCategory)
			before := testutil.ToFloat64(counter)

			_, _ = service.SetBudget(ctx, budget.SetBudgetDTO{Amount: ptr(amount("50")), Month: "2025-10", Category: category("Food")})
			_, err := ledgerService.RecordTransaction(ctx, ledger.CreateTransactionDTO{Amount: amount("80"), Category: "Food", Date: "2025-10-03"})
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() float64 { return testutil.ToFloat64(counter) - before }).Should(Equal(1.0))
		})

		It("should leave the counter alone while within limits", func() {
			budget.NewWatcher(service, logger.Discard()).RegisterEventHandlers(bus)
			counter := metrics.BudgetExceededTotal.WithLabelValues(metrics.ScopeOverall)
			before := testutil.ToFloat64(counter)

			_, _ = service.SetBudget(ctx, budget.SetBudgetDTO{Amount: ptr(amount("500")), Month: "2025-10"})
			_, _ = ledgerService.RecordTransaction(ctx, ledger.CreateTransactionDTO{Amount: amount("80"), Category: "Food", Date: "2025-10-03"})

			waitCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			Expect(bus.Wait(waitCtx)).To(Succeed())
			Expect(testutil.ToFloat64(counter) - before).To(Equal(0.0))
		})

		It("should reject foreign events", func() {
			watcher := budget.NewWatcher(service, logger.Discard())
			err := watcher.HandleTransactionEvent(ctx, events.BaseEvent{Type: "other"})
			Expect(err).To(HaveOccurred())
		})
	})
})

func ptr[T any](v T) *T {
	return &v
}
