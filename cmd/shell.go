package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive ledger prompt",
	Long:  `Record, edit and analyze transactions and budgets from an interactive prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		// logs go to stderr so they never mix with command output
		deps, err := bootstrap(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer deps.Close(context.Background())

		return newShell(deps.Ledger, deps.Budgets, os.Stdin, os.Stdout).Run(ctx)
	},
}

const shellHelp = `commands:
  add                 record a transaction
  list                list every transaction
  show <id>           show one transaction (an id prefix is enough)
  edit <id>           change fields of a transaction, blank keeps a value
  delete <id>         remove a transaction
  filter              list transactions by category and date range
  export              print the ledger as CSV
  stats               totals by category and date
  budget              set a monthly budget, blank category for overall
  budgets [month]     list budgets, optionally for one month
  analyze [month]     compare spending with budgets, default current month
  help                show this text
  quit                leave the shell
`

type shell struct {
	ledger  *ledger.Service
	budgets *budget.Service
	in      *bufio.Scanner
	out     io.Writer
}

func newShell(ledgerService *ledger.Service, budgetService *budget.Service, in io.Reader, out io.Writer) *shell {
	return &shell{
		ledger:  ledgerService,
		budgets: budgetService,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run reads commands until quit or end of input.
func (s *shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "budget-ledger shell, type help for commands")
	for {
		line, ok := s.prompt("> ")
		if !ok {
			return s.in.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		command, args := strings.ToLower(fields[0]), fields[1:]
		if command == "quit" || command == "exit" {
			return nil
		}
		if err := s.dispatch(ctx, command, args); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *shell) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "help":
		fmt.Fprint(s.out, shellHelp)
		return nil
	case "add":
		return s.add(ctx)
	case "list":
		return s.list(ctx, ledger.TransactionFilterDTO{})
	case "show":
		return s.withID(args, func(id string) error { return s.show(ctx, id) })
	case "edit":
		return s.withID(args, func(id string) error { return s.edit(ctx, id) })
	case "delete":
		return s.withID(args, func(id string) error { return s.remove(ctx, id) })
	case "filter":
		return s.filter(ctx)
	case "export":
		return s.export(ctx)
	case "stats":
		return s.stats(ctx)
	case "budget":
		return s.setBudget(ctx)
	case "budgets":
		return s.listBudgets(ctx, firstArg(args))
	case "analyze":
		return s.analyze(ctx, firstArg(args))
	default:
		return fmt.Errorf("unknown command %q, type help for commands", command)
	}
}

func (s *shell) add(ctx context.Context) error {
	amount, err := s.promptAmount("amount: ")
	if err != nil {
		return err
	}
	category, _ := s.prompt("category: ")
	date, _ := s.prompt("date (YYYY-MM-DD, blank for today): ")
	description, _ := s.prompt("description: ")

	tx, err := s.ledger.RecordTransaction(ctx, ledger.CreateTransactionDTO{
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: description,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "recorded %s\n", tx.ID)
	return nil
}

func (s *shell) list(ctx context.Context, filter ledger.TransactionFilterDTO) error {
	txs, err := s.ledger.ListTransactions(ctx, filter)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(s.out, "no transactions")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(tx.ID), tx.Date, tx.Category, tx.Amount.StringFixed(2), tx.Description)
	}
	return w.Flush()
}

func (s *shell) show(ctx context.Context, id string) error {
	tx, err := s.ledger.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "id:          %s\namount:      %s\ncategory:    %s\ndate:        %s\ndescription: %s\n",
		tx.ID, tx.Amount.StringFixed(2), tx.Category, tx.Date, tx.Description)
	return nil
}

func (s *shell) edit(ctx context.Context, id string) error {
	current, err := s.ledger.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	var dto ledger.UpdateTransactionDTO
	if raw, _ := s.prompt(fmt.Sprintf("amount [%s]: ", current.Amount.StringFixed(2))); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("amount must be a number")
		}
		dto.Amount = &amount
	}
	if category, _ := s.prompt(fmt.Sprintf("category [%s]: ", current.Category)); category != "" {
		dto.Category = &category
	}
	if date, _ := s.prompt(fmt.Sprintf("date [%s]: ", current.Date)); date != "" {
		dto.Date = &date
	}
	if description, _ := s.prompt(fmt.Sprintf("description [%s]: ", current.Description)); description != "" {
		dto.Description = &description
	}

	tx, err := s.ledger.UpdateTransaction(ctx, current.ID, dto)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "updated %s\n", tx.ID)
	return nil
}

func (s *shell) remove(ctx context.Context, id string) error {
	tx, err := s.ledger.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ledger.DeleteTransaction(ctx, tx.ID); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "deleted %s\n", tx.ID)
	return nil
}

func (s *shell) filter(ctx context.Context) error {
	category, _ := s.prompt("category (blank for any): ")
	from, _ := s.prompt("from (YYYY-MM-DD, blank for any): ")
	to, _ := s.prompt("to (YYYY-MM-DD, blank for any): ")
	return s.list(ctx, ledger.TransactionFilterDTO{Category: category, DateFrom: from, DateTo: to})
}

func (s *shell) export(ctx context.Context) error {
	rows, err := s.ledger.ExportTransactions(ctx)
	if err != nil {
		return err
	}
	return ledger.WriteCSV(s.out, rows)
}

func (s *shell) stats(ctx context.Context) error {
	summary, err := s.ledger.Summarize(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "total: %s across %d transactions\n", summary.Total.StringFixed(2), summary.Count)
	categories := make([]string, 0, len(summary.ByCategory))
	for category := range summary.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, category := range categories {
		fmt.Fprintf(w, "  %s\t%s\n", category, summary.ByCategory[category].StringFixed(2))
	}
	return w.Flush()
}

func (s *shell) setBudget(ctx context.Context) error {
	amount, err := s.promptAmount("amount: ")
	if err != nil {
		return err
	}
	month, _ := s.prompt("month (YYYY-MM): ")
	category, _ := s.prompt("category (blank for overall): ")

	allocation, err := s.budgets.SetBudget(ctx, budget.SetBudgetDTO{
		Amount:   &amount,
		Month:    month,
		Category: &category,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "budget %s set to %s for %s\n", budgetLabel(allocation), allocation.Amount.StringFixed(2), allocation.Month)
	return nil
}

func (s *shell) listBudgets(ctx context.Context, month string) error {
	allocations, err := s.budgets.ListBudgets(ctx, month)
	if err != nil {
		return err
	}
	if len(allocations) == 0 {
		fmt.Fprintln(s.out, "no budgets")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMONTH\tSCOPE\tAMOUNT")
	for _, a := range allocations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(a.ID), a.Month, budgetLabel(a), a.Amount.StringFixed(2))
	}
	return w.Flush()
}

func (s *shell) analyze(ctx context.Context, month string) error {
	var (
		report *budget.Report
		err    error
	)
	if month == "" {
		_, _, report, err = s.budgets.CurrentMonth(ctx)
	} else {
		report, err = s.budgets.Analyze(ctx, month)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s: spent %s of %s (%.1f%%) %s\n",
		report.Month,
		report.TotalSpent.StringFixed(2),
		report.TotalBudget.StringFixed(2),
		report.TotalPercentage,
		report.Status)

	names := make([]string, 0, len(report.Categories))
	for name := range report.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		c := report.Categories[name]
		fmt.Fprintf(w, "  %s\t%s / %s\t%.1f%%\t%s\n", name, c.Spent.StringFixed(2), c.Budget.StringFixed(2), c.Percentage, c.Status)
	}
	return w.Flush()
}

func (s *shell) withID(args []string, fn func(id string) error) error {
	if len(args) == 0 {
		return fmt.Errorf("an id is required")
	}
	return fn(args[0])
}

func (s *shell) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *shell) promptAmount(label string) (decimal.Decimal, error) {
	raw, _ := s.prompt(label)
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount must be a number")
	}
	return amount, nil
}

func budgetLabel(a *budget.Allocation) string {
	if a.IsOverall() {
		return "overall"
	}
	return a.CategoryName()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
