package cmd

import (
	"context"
	"math/rand"
	"time"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func newServices() (*ledger.Service, *budget.Service) {
	lg := logger.Discard()
	ledgerService := ledger.NewService(ledger.NewInMemory(), nil, lg)
	budgetService := budget.NewService(budget.NewInMemoryAnalyzer(), ledgerService, lg)
	return ledgerService, budgetService
}

var _ = Describe("seed", func() {
	var (
		ctx context.Context
		now time.Time
		cfg internal.SeedConfig
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
		cfg = internal.SeedConfig{Enabled: true, Months: 5, Seed: 42}
	})

	It("should spread a fixed total over the current month up to today", func() {
		ledgerService, budgetService := newServices()

		result, err := seed(ctx, ledgerService, budgetService, cfg, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Transactions).To(Equal(currentMonthCount + 5*pastMonthCount))
		Expect(result.Months).To(Equal([]string{"2025-10", "2025-09", "2025-08", "2025-07", "2025-06", "2025-05"}))
		Expect(result.Budget).To(Equal("1500.00"))

		txs, err := ledgerService.ListTransactions(ctx, ledger.TransactionFilterDTO{DateFrom: "2025-10-01", DateTo: "2025-10-31"})
		Expect(err).NotTo(HaveOccurred())
		Expect(txs).To(HaveLen(currentMonthCount))

		total := decimal.Zero
		for _, tx := range txs {
			total = total.Add(tx.Amount)
			Expect(tx.Date <= "2025-10-15").To(BeTrue())
		}
		Expect(total.StringFixed(2)).To(Equal("1000.00"))
	})

	It("should keep every earlier month inside its range", func() {
		ledgerService, budgetService := newServices()
		_, err := seed(ctx, ledgerService, budgetService, cfg, now)
		Expect(err).NotTo(HaveOccurred())

		txs, err := ledgerService.ListTransactions(ctx, ledger.TransactionFilterDTO{DateFrom: "2025-09-01", DateTo: "2025-09-30"})
		Expect(err).NotTo(HaveOccurred())
		Expect(txs).To(HaveLen(pastMonthCount))

		total := decimal.Zero
		for _, tx := range txs {
			total = total.Add(tx.Amount)
		}
		Expect(total.GreaterThanOrEqual(decimal.NewFromInt(1400))).To(BeTrue())
		Expect(total.LessThanOrEqual(decimal.NewFromInt(1700))).To(BeTrue())
	})

	It("should be deterministic for a given seed", func() {
		first, firstBudgets := newServices()
		second, secondBudgets := newServices()

		_, err := seed(ctx, first, firstBudgets, cfg, now)
		Expect(err).NotTo(HaveOccurred())
		_, err = seed(ctx, second, secondBudgets, cfg, now)
		Expect(err).NotTo(HaveOccurred())

		a, _ := first.Summarize(ctx)
		b, _ := second.Summarize(ctx)
		Expect(a.Total.Equal(b.Total)).To(BeTrue())
		Expect(a.Dates()).To(Equal(b.Dates()))
	})

	It("should seed an overall budget the current month stays within", func() {
		ledgerService, budgetService := newServices()
		_, err := seed(ctx, ledgerService, budgetService, cfg, now)
		Expect(err).NotTo(HaveOccurred())

		report, err := budgetService.Analyze(ctx, "2025-10")
		Expect(err).NotTo(HaveOccurred())
		Expect(report.TotalBudget.StringFixed(2)).To(Equal("1500.00"))
		Expect(report.Status).To(Equal(budget.StatusWithinLimit))
	})
})

var _ = Describe("splitCents", func() {
	It("should return positive shares that add up to the total", func() {
		rng := rand.New(rand.NewSource(7))
		for _, total := range []int64{100000, 140000, 169999} {
			shares := splitCents(rng, total, 25, 500)
			Expect(shares).To(HaveLen(25))

			var sum int64
			for _, share := range shares {
				Expect(share).To(BeNumerically(">=", 500))
				sum += share
			}
			Expect(sum).To(Equal(total))
		}
	})
})
