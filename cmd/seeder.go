package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

const (
	currentMonthTotalCents = 100000
	currentMonthCount      = 15
	currentMonthMinCents   = 1000
	pastMonthCount         = 25
	pastMonthMinCents      = 500
	pastMonthLowCents      = 140000
	pastMonthHighCents     = 170000
	seedBudgetCents        = 150000
)

var seedCategories = []struct {
	Name         string
	Descriptions []string
}{
	{"Groceries", []string{"Weekly grocery shopping", "Fresh produce", "Supermarket run", "Pantry essentials"}},
	{"Dining Out", []string{"Dinner at restaurant", "Lunch with friends", "Weekend brunch", "Pizza night"}},
	{"Coffee/Snacks", []string{"Morning coffee", "Afternoon snack", "Bakery treats"}},
	{"Fuel/Gas", []string{"Gas station fill-up", "Weekly gas", "Road trip gas"}},
	{"Utilities", []string{"Electricity bill", "Water bill", "Trash service"}},
	{"Public Transit", []string{"Bus pass", "Metro card", "Train ticket"}},
	{"Entertainment", []string{"Movie tickets", "Concert tickets", "Theater show"}},
	{"Subscriptions", []string{"Music streaming", "Cloud storage", "Magazine"}},
	{"Gym/Fitness", []string{"Gym membership", "Yoga class", "Sports equipment"}},
	{"Medical/Pharmacy", []string{"Prescription", "Doctor visit", "Medical supplies"}},
}

// SeedResult summarizes what seed recorded.
type SeedResult struct {
	Transactions int
	Months       []string
	Budget       string
}

// seed fills the ledger with deterministic sample spending: a fixed total
// spread over the current month up to today, and a random total per earlier
// month, plus an overall budget for the current month.
func seed(ctx context.Context, ledgerService *ledger.Service, budgetService *budget.Service, cfg internal.SeedConfig, now time.Time) (*SeedResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	result := &SeedResult{}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	amounts := splitCents(rng, currentMonthTotalCents, currentMonthCount, currentMonthMinCents)
	if err := seedMonth(ctx, ledgerService, rng, monthStart, now.Day(), amounts); err != nil {
		return nil, err
	}
	result.Transactions += len(amounts)
	result.Months = append(result.Months, monthStart.Format(validation.MonthLayout))

	for offset := 1; offset <= cfg.Months; offset++ {
		start := monthStart.AddDate(0, -offset, 0)
		days := start.AddDate(0, 1, -1).Day()
		total := pastMonthLowCents + rng.Int63n(pastMonthHighCents-pastMonthLowCents+1)

		amounts := splitCents(rng, total, pastMonthCount, pastMonthMinCents)
		if err := seedMonth(ctx, ledgerService, rng, start, days, amounts); err != nil {
			return nil, err
		}
		result.Transactions += len(amounts)
		result.Months = append(result.Months, start.Format(validation.MonthLayout))
	}

	budgetAmount := decimal.New(seedBudgetCents, -2)
	allocation, err := budgetService.SetBudget(ctx, budget.SetBudgetDTO{
		Amount: &budgetAmount,
		Month:  monthStart.Format(validation.MonthLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed budget: %w", err)
	}
	result.Budget = allocation.Amount.StringFixed(2)

	return result, nil
}

func seedMonth(ctx context.Context, service *ledger.Service, rng *rand.Rand, start time.Time, days int, amounts []int64) error {
	for _, cents := range amounts {
		category := seedCategories[rng.Intn(len(seedCategories))]
		date := start.AddDate(0, 0, rng.Intn(days))

		_, err := service.RecordTransaction(ctx, ledger.CreateTransactionDTO{
			Amount:      decimal.New(cents, -2),
			Category:    category.Name,
			Date:        date.Format(validation.DateLayout),
			Description: category.Descriptions[rng.Intn(len(category.Descriptions))],
		})
		if err != nil {
			return fmt.Errorf("failed to seed transaction for %s: %w", start.Format(validation.MonthLayout), err)
		}
	}
	return nil
}

// splitCents breaks total into count shuffled positive amounts that sum to
// total. Each share but the last is capped at 15% of what remains.
func splitCents(rng *rand.Rand, total int64, count int, minCents int64) []int64 {
	amounts := make([]int64, 0, count)
	remaining := total
	for i := 0; i < count-1; i++ {
		maxCents := remaining * 15 / 100
		if reserve := remaining - int64(count-1-i)*minCents; reserve < maxCents {
			maxCents = reserve
		}
		if maxCents < minCents {
			maxCents = minCents
		}
		amount := minCents + rng.Int63n(maxCents-minCents+1)
		amounts = append(amounts, amount)
		remaining -= amount
	}
	amounts = append(amounts, remaining)
	rng.Shuffle(len(amounts), func(i, j int) { amounts[i], amounts[j] = amounts[j], amounts[i] })
	return amounts
}
