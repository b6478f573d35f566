package cmd

import (
	"context"
	"io"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/frahmantamala/budget-ledger/internal/storage"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("initializeDependencies", func() {
	var cfg *internal.Config

	BeforeEach(func() {
		cfg = internal.DefaultConfig()
	})

	DescribeTable("should wire a working ledger for each storage driver",
		func(driver string) {
			cfg.Storage.Driver = driver
			if driver == internal.StorageDriverSQLite {
				cfg.Storage.DSN = storage.MemoryDSN(uuid.NewString())
			}

			deps, err := initializeDependencies(cfg, io.Discard)
			Expect(err).NotTo(HaveOccurred())
			defer deps.Close(context.Background())

			ctx := context.Background()
			_, err = deps.Ledger.RecordTransaction(ctx, ledger.CreateTransactionDTO{
				Amount:   decimal.NewFromInt(15),
				Category: "Food",
				Date:     "2025-10-03",
			})
			Expect(err).NotTo(HaveOccurred())

			report, err := deps.Budgets.Analyze(ctx, "2025-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalSpent.String()).To(Equal("15"))

			for name, component := range deps.Health {
				Expect(component.Ping(ctx)).To(Succeed(), name)
			}
		},
		Entry("memory", internal.StorageDriverMemory),
		Entry("sqlite", internal.StorageDriverSQLite),
	)
})

var _ = Describe("loadConfig", func() {
	It("should fall back to defaults when no config file exists", func() {
		cfg, err := loadConfig(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Storage.Driver).To(Equal(internal.StorageDriverMemory))
		Expect(cfg.Observability.Metrics.Path).To(Equal("/metrics"))
	})
})
