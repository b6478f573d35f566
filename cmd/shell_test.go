package cmd

import (
	"bytes"
	"context"
	"strings"

	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("shell", func() {
	var (
		ctx           context.Context
		ledgerService *ledger.Service
		budgetService *budget.Service
		out           *bytes.Buffer
	)

	run := func(lines ...string) string {
		out.Reset()
		sh := newShell(ledgerService, budgetService, strings.NewReader(strings.Join(lines, "\n")+"\n"), out)
		Expect(sh.Run(ctx)).To(Succeed())
		return out.String()
	}

	BeforeEach(func() {
		ctx = context.Background()
		ledgerService, budgetService = newServices()
		out = &bytes.Buffer{}
	})

	It("should record and list a transaction", func() {
		output := run("add", "42.50", "Food", "2025-10-03", "Lunch", "list", "quit")
		Expect(output).To(ContainSubstring("recorded "))
		Expect(output).To(ContainSubstring("Food"))
		Expect(output).To(ContainSubstring("42.50"))

		txs, err := ledgerService.Transactions(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(txs).To(HaveLen(1))
		Expect(txs[0].Description).To(Equal("Lunch"))
	})

	It("should report validation errors and keep going", func() {
		output := run("add", "-5", "Food", "2025-10-03", "", "add", "abc", "list")
		Expect(output).To(ContainSubstring("error: "))
		Expect(output).To(ContainSubstring("amount must be a number"))
		Expect(output).To(ContainSubstring("no transactions"))
	})

	It("should edit and delete by id prefix", func() {
		run("add", "10", "Food", "2025-10-03", "Snack")
		txs, _ := ledgerService.Transactions(ctx)
		prefix := txs[0].ID[:6]

		output := run("edit "+prefix, "12.25", "", "", "Bigger snack", "show "+prefix)
		Expect(output).To(ContainSubstring("updated " + txs[0].ID))
		Expect(output).To(ContainSubstring("12.25"))
		Expect(output).To(ContainSubstring("Bigger snack"))

		output = run("delete "+prefix, "list")
		Expect(output).To(ContainSubstring("deleted " + txs[0].ID))
		Expect(output).To(ContainSubstring("no transactions"))
	})

	It("should filter by category ignoring case", func() {
		run("add", "10", "Food", "2025-10-03", "", "add", "20", "Travel", "2025-10-04", "")
		output := run("filter", "food", "", "")
		Expect(output).To(ContainSubstring("Food"))
		Expect(output).NotTo(ContainSubstring("Travel"))
	})

	It("should export the ledger as CSV", func() {
		run("add", "10", "Food", "2025-10-03", "Snack")
		output := run("export")
		Expect(output).To(ContainSubstring("ID,Amount,Category,Date,Description,Created At"))
		Expect(output).To(ContainSubstring(",10,Food,2025-10-03,Snack,"))
	})

	It("should set budgets and analyze a month", func() {
		output := run(
			"add", "120", "Food", "2025-10-03", "",
			"budget", "100", "2025-10", "Food",
			"budget", "500", "2025-10", "",
			"budgets 2025-10",
			"analyze 2025-10",
		)
		Expect(output).To(ContainSubstring("budget Food set to 100.00 for 2025-10"))
		Expect(output).To(ContainSubstring("budget overall set to 500.00 for 2025-10"))
		Expect(output).To(ContainSubstring("2025-10: spent 120.00 of 500.00 (24.0%) within_limit"))
		Expect(output).To(MatchRegexp(`Food\s+120\.00 / 100\.00\s+120\.0%\s+exceeded`))
	})

	It("should reject unknown commands and missing ids", func() {
		output := run("frobnicate", "show")
		Expect(output).To(ContainSubstring(`unknown command "frobnicate"`))
		Expect(output).To(ContainSubstring("an id is required"))
	})
})
