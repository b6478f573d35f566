package budget_test

import (
	"sync"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Analyzer", func() {
	var analyzer *budget.Analyzer

	BeforeEach(func() {
		clock := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
		analyzer = budget.NewInMemoryAnalyzer(budget.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}))
	})

	Describe("SetBudget", func() {
		It("should update an existing allocation in place", func() {
			first, err := analyzer.SetBudget(amount("100"), "2025-10", category("Food"))
			Expect(err).NotTo(HaveOccurred())
			second, err := analyzer.SetBudget(amount("200"), "2025-10", category("Food"))
			Expect(err).NotTo(HaveOccurred())

			Expect(second.ID).To(Equal(first.ID))
			Expect(second.CreatedAt).To(Equal(first.CreatedAt))
			Expect(second.Amount.Equal(amount("200"))).To(BeTrue())

			all, _ := analyzer.GetAllBudgets()
			Expect(all).To(HaveLen(1))
			Expect(all[0].Amount.Equal(amount("200"))).To(BeTrue())
		})

		It("should treat the overall budget as its own key", func() {
			_, _ = analyzer.SetBudget(amount("1000"), "2025-10", nil)
			_, _ = analyzer.SetBudget(amount("300"), "2025-10", category("Food"))
			_, _ = analyzer.SetBudget(amount("1200"), "2025-10", nil)

			all, _ := analyzer.GetAllBudgets()
			Expect(all).To(HaveLen(2))

			overall, err := analyzer.GetBudget("2025-10", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(overall.Amount.Equal(amount("1200"))).To(BeTrue())
		})

		It("should accept zero and negative amounts", func() {
			allocation, err := analyzer.SetBudget(amount("-5"), "2025-10", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(allocation.Amount.IsNegative()).To(BeTrue())
		})

		It("should not let callers mutate stored allocations", func() {
			cat := "Food"
			allocation, _ := analyzer.SetBudget(amount("100"), "2025-10", &cat)
			cat = "Changed"
			*allocation.Category = "Other"

			found, _ := analyzer.GetBudget("2025-10", category("Food"))
			Expect(found).NotTo(BeNil())
		})
	})

	Describe("GetBudget", func() {
		It("should return nil when nothing matches", func() {
			_, _ = analyzer.SetBudget(amount("100"), "2025-10", category("Food"))

			found, err := analyzer.GetBudget("2025-10", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())

			found, err = analyzer.GetBudget("2025-10", category("food"))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("GetBudgetsForMonth", func() {
		It("should keep insertion order within the month", func() {
			_, _ = analyzer.SetBudget(amount("1"), "2025-10", category("Rent"))
			_, _ = analyzer.SetBudget(amount("2"), "2025-11", category("Rent"))
			_, _ = analyzer.SetBudget(amount("3"), "2025-10", nil)

			october, err := analyzer.GetBudgetsForMonth("2025-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(october).To(HaveLen(2))
			Expect(october[0].CategoryName()).To(Equal("Rent"))
			Expect(october[1].IsOverall()).To(BeTrue())
		})
	})

	Describe("DeleteBudget", func() {
		It("should report whether an allocation was removed", func() {
			allocation, _ := analyzer.SetBudget(amount("1"), "2025-10", nil)

			removed, err := analyzer.DeleteBudget(allocation.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeTrue())

			removed, err = analyzer.DeleteBudget(allocation.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeFalse())
		})
	})

	Describe("Analyze", func() {
		It("should report zeros and within_limit with no data", func() {
			report, err := analyzer.Analyze(nil, "2025-01")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalBudget.IsZero()).To(BeTrue())
			Expect(report.TotalSpent.IsZero()).To(BeTrue())
			Expect(report.TotalRemaining.IsZero()).To(BeTrue())
			Expect(report.TotalPercentage).To(Equal(0.0))
			Expect(report.Status).To(Equal(budget.StatusWithinLimit))
			Expect(report.Categories).To(BeEmpty())
			Expect(report.SpendingByCategory).To(BeEmpty())
			Expect(report.HasOverallBudget).To(BeFalse())
		})

		It("should flag an exceeded overall budget", func() {
			_, _ = analyzer.SetBudget(amount("500"), "2025-11", nil)
			txs := []*ledger.Transaction{
				transaction("300", "Food", "2025-11-02"),
				transaction("400", "Rent", "2025-11-05"),
				transaction("999", "Rent", "2025-10-31"),
			}

			report, err := analyzer.Analyze(txs, "2025-11")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalSpent.Equal(amount("700"))).To(BeTrue())
			Expect(report.TotalRemaining.Equal(amount("-200"))).To(BeTrue())
			Expect(report.TotalPercentage).To(Equal(140.0))
			Expect(report.Status).To(Equal(budget.StatusExceeded))
			Expect(report.ExceededScopes()).To(Equal([]string{"overall"}))
		})

		It("should break spending down by allocated category only", func() {
			_, _ = analyzer.SetBudget(amount("500"), "2025-09", category("Groceries"))
			_, _ = analyzer.SetBudget(amount("50"), "2025-09", category("Travel"))
			txs := []*ledger.Transaction{
				transaction("400", "Groceries", "2025-09-20"),
				transaction("25", "Coffee", "2025-09-21"),
			}

			report, err := analyzer.Analyze(txs, "2025-09")
			Expect(err).NotTo(HaveOccurred())

			groceries := report.Categories["Groceries"]
			Expect(groceries.Budget.Equal(amount("500"))).To(BeTrue())
			Expect(groceries.Spent.Equal(amount("400"))).To(BeTrue())
			Expect(groceries.Remaining.Equal(amount("100"))).To(BeTrue())
			Expect(groceries.Percentage).To(Equal(80.0))
			Expect(groceries.Status).To(Equal(budget.StatusWithinLimit))

			travel := report.Categories["Travel"]
			Expect(travel.Spent.IsZero()).To(BeTrue())
			Expect(travel.Percentage).To(Equal(0.0))

			Expect(report.Categories).NotTo(HaveKey("Coffee"))
			Expect(report.SpendingByCategory).To(HaveKey("Coffee"))
			Expect(report.SpendingByCategory).NotTo(HaveKey("Travel"))
		})

		It("should mark spending against a zero budget as exceeded with a zero percentage", func() {
			_, _ = analyzer.SetBudget(amount("0"), "2025-09", category("Fun"))
			txs := []*ledger.Transaction{transaction("10", "Fun", "2025-09-01")}

			report, err := analyzer.Analyze(txs, "2025-09")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(budget.StatusExceeded))
			Expect(report.TotalPercentage).To(Equal(0.0))
			Expect(report.Categories["Fun"].Percentage).To(Equal(0.0))
			Expect(report.Categories["Fun"].Status).To(Equal(budget.StatusExceeded))
			Expect(report.ExceededScopes()).To(Equal([]string{"Fun"}))
		})

		It("should match months by textual prefix", func() {
			txs := []*ledger.Transaction{
				transaction("1", "Food", "2025-10-01"),
				transaction("2", "Food", "2025-1"),
				transaction("4", "Food", "2025-100"),
			}

			report, err := analyzer.Analyze(txs, "2025-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalSpent.Equal(amount("5"))).To(BeTrue())
		})

		It("should reject an empty month", func() {
			_, err := analyzer.Analyze(nil, "")
			Expect(errors.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("concurrent use", func() {
		It("should keep one allocation per key under concurrent upserts", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := analyzer.SetBudget(amount("10"), "2025-10", category("Food"))
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			all, _ := analyzer.GetAllBudgets()
			Expect(all).To(HaveLen(1))
		})
	})
})
