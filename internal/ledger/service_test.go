package ledger_test

import (
	"context"
	"sync"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.TransactionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.(*events.TransactionEvent))
	return nil
}

func (p *recordingPublisher) last() *events.TransactionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

var _ = Describe("Ledger Service", func() {
	var (
		ctx       context.Context
		publisher *recordingPublisher
		service   *ledger.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		publisher = &recordingPublisher{}
		service = ledger.NewService(
			ledger.NewInMemory(ledger.WithIDGenerator(sequentialIDs("abc123de", "abd99999"))),
			publisher,
			logger.Discard(),
		)
	})

	Describe("RecordTransaction", func() {
		It("should record a valid transaction and publish it", func() {
			tx, err := service.RecordTransaction(ctx, ledger.CreateTransactionDTO{
				Amount:      amount("42.00"),
				Category:    "  Food ",
				Date:        "2025-10-03",
				Description: "groceries",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tx.Category).To(Equal("Food"))

			event := publisher.last()
			Expect(event).NotTo(BeNil())
			Expect(event.EventType()).To(Equal(events.EventTypeTransactionRecorded))
			Expect(event.TransactionID).To(Equal(tx.ID))
			Expect(event.Months).To(Equal([]string{"2025-10"}))
		})

		It("should default a missing date to today", func() {
			tx, err := service.RecordTransaction(ctx, ledger.CreateTransactionDTO{
				Amount:   amount("1"),
				Category: "Food",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tx.Date).To(MatchRegexp(`^\d{4}-\d{2}-\d{2}$`))
		})

		DescribeTable("should reject invalid input without touching the ledger",
			func(dto ledger.CreateTransactionDTO, field string) {
				_, err := service.RecordTransaction(ctx, dto)
				Expect(err).To(HaveOccurred())
				Expect(errors.IsValidationError(err)).To(BeTrue())

				appErr, _ := errors.IsAppError(err)
				details := appErr.Details.(errors.ValidationErrors)
				Expect(details.Errors[0].Field).To(Equal(field))

				txs, _ := service.Ledger().GetAll()
				Expect(txs).To(BeEmpty())
				Expect(publisher.last()).To(BeNil())
			},
			Entry("zero amount", ledger.CreateTransactionDTO{Amount: amount("0"), Category: "Food", Date: "2025-10-01"}, "amount"),
			Entry("negative amount", ledger.CreateTransactionDTO{Amount: amount("-3"), Category: "Food", Date: "2025-10-01"}, "amount"),
			Entry("blank category", ledger.CreateTransactionDTO{Amount: amount("3"), Category: "  ", Date: "2025-10-01"}, "category"),
			Entry("malformed date", ledger.CreateTransactionDTO{Amount: amount("3"), Category: "Food", Date: "03/10/2025"}, "date"),
		)
	})

	Describe("GetTransaction", func() {
		It("should map a missing transaction to a not-found error", func() {
			_, err := service.GetTransaction(ctx, "nope")
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeTransactionNotFound))
		})
	})

	Describe("UpdateTransaction", func() {
		It("should report both months when the date moves", func() {
			tx, _ := service.RecordTransaction(ctx, ledger.CreateTransactionDTO{Amount: amount("5"), Category: "Food", Date: "2025-09-30"})

			newDate := "2025-10-01"
			updated, err := service.UpdateTransaction(ctx, "abc", ledger.UpdateTransactionDTO{Date: &newDate})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal(tx.ID))
			Expect(updated.Date).To(Equal(newDate))

			event := publisher.last()
			Expect(event.EventType()).To(Equal(events.EventTypeTransactionUpdated))
			Expect(event.Months).To(Equal([]string{"2025-09", "2025-10"}))
		})

		It("should reject a non-positive amount", func() {
			_, _ = service.RecordTransaction(ctx, ledger.CreateTransactionDTO{Amount: amount("5"), Category: "Food", Date: "2025-09-30"})

			bad := amount("0")
			_, err := service.UpdateTransaction(ctx, "abc", ledger.UpdateTransactionDTO{Amount: &bad})
			Expect(errors.IsValidationError(err)).To(BeTrue())
		})

		It("should return not-found for an unknown id", func() {
			category := "Rent"
			_, err := service.UpdateTransaction(ctx, "zzz", ledger.UpdateTransactionDTO{Category: &category})
			Expect(err).To(Equal(errors.ErrTransactionNotFound))
		})
	})

	Describe("DeleteTransaction", func() {
		It("should delete by prefix and publish the removal", func() {
			tx, _ := service.RecordTransaction(ctx, ledger.CreateTransactionDTO{Amount: amount("5"), Category: "Food", Date: "2025-09-30"})

			Expect(service.DeleteTransaction(ctx, "abc1")).To(Succeed())
			Expect(publisher.last().EventType()).To(Equal(events.EventTypeTransactionDeleted))
			Expect(publisher.last().TransactionID).To(Equal(tx.ID))

			Expect(service.DeleteTransaction(ctx, tx.ID)).To(MatchError(errors.ErrTransactionNotFound))
		})
	})

	Describe("ListTransactions", func() {
		It("should reject an inverted date range", func() {
			_, err := service.ListTransactions(ctx, ledger.TransactionFilterDTO{DateFrom: "2025-10-31", DateTo: "2025-10-01"})
			Expect(errors.IsValidationError(err)).To(BeTrue())
		})
	})
})
