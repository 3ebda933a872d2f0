package ledger

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

func newTestEngine(observers ...Observer) *Engine {
	var tick int64
	return NewEngine(Options{
		Now: func() time.Time {
			tick++
			return time.UnixMilli(1_700_000_000_000 + tick)
		},
		Logger:    log.Discard(),
		Observers: observers,
	})
}

func mustMoney(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseAmount(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return m
}

func assertInvariants(t *testing.T, e *Engine) {
	t.Helper()
	var sum core.Money
	for _, tx := range e.Transactions() {
		sum = sum.Add(tx.Amount)
		if tx.Type() != tx.Amount.Type() {
			t.Fatalf("type out of sync for %+v", tx)
		}
	}
	if e.Balance() != sum {
		t.Fatalf("balance %s != sum of amounts %s", e.Balance(), sum)
	}
	if total := e.Summary().Total(); total != e.Balance() {
		t.Fatalf("summary total %s != balance %s", total, e.Balance())
	}
}

func TestEngineEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	pay, err := e.AddTransaction(ctx, "Paycheck", mustMoney(t, "1000"), "Salary")
	if err != nil {
		t.Fatalf("add paycheck: %v", err)
	}
	if got := e.Balance().String(); got != "1000.00" {
		t.Fatalf("balance = %s, want 1000.00", got)
	}
	if got := e.Summary().Map(); !reflect.DeepEqual(got, map[string]core.Money{"Salary": core.NewMoney(100000)}) {
		t.Fatalf("summary = %v", got)
	}

	groceries, err := e.AddTransaction(ctx, "Groceries", mustMoney(t, "-150.50"), "Food")
	if err != nil {
		t.Fatalf("add groceries: %v", err)
	}
	if got := e.Balance().String(); got != "849.50" {
		t.Fatalf("balance = %s, want 849.50", got)
	}
	want := map[string]core.Money{"Salary": core.NewMoney(100000), "Food": core.NewMoney(-15050)}
	if got := e.Summary().Map(); !reflect.DeepEqual(got, want) {
		t.Fatalf("summary = %v, want %v", got, want)
	}

	if _, err := e.EditTransaction(ctx, groceries.ID, "Groceries", mustMoney(t, "-200"), "Food"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := e.Balance().String(); got != "800.00" {
		t.Fatalf("balance = %s, want 800.00", got)
	}
	want["Food"] = core.NewMoney(-20000)
	if got := e.Summary().Map(); !reflect.DeepEqual(got, want) {
		t.Fatalf("summary = %v, want %v", got, want)
	}

	if _, err := e.RemoveTransaction(ctx, pay.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := e.Balance().String(); got != "-200.00" {
		t.Fatalf("balance = %s, want -200.00", got)
	}
	if got := e.Summary().Map(); !reflect.DeepEqual(got, map[string]core.Money{"Food": core.NewMoney(-20000)}) {
		t.Fatalf("summary = %v", got)
	}

	if !e.RemoveCategory(ctx, "Food") {
		t.Fatal("expected Food to be removed")
	}
	for _, c := range e.Categories() {
		if c == "Food" {
			t.Fatal("Food still listed")
		}
	}
	txs := e.Transactions()
	if len(txs) != 1 || txs[0].Category != "Food" {
		t.Fatalf("transaction lost its label: %+v", txs)
	}
	if food, ok := e.Summary().Get("Food"); !ok || food.Cents != -20000 {
		t.Fatalf("dangling label must still be summarized, got %v %v", food, ok)
	}
	assertInvariants(t, e)
}

func TestEngineDefaultCategories(t *testing.T) {
	e := newTestEngine()
	if got := e.Categories(); !reflect.DeepEqual(got, core.DefaultCategories) {
		t.Fatalf("categories = %v, want defaults", got)
	}
}

func TestEngineFailedAddLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	e.AddTransaction(ctx, "Paycheck", mustMoney(t, "1000"), "Salary")

	before := e.Snapshot()
	beforeSummary := e.Summary()

	cases := []struct {
		desc, cat string
	}{
		{"", "Food"},
		{"   ", "Food"},
		{"Lunch", ""},
	}
	for _, tc := range cases {
		if _, err := e.AddTransaction(ctx, tc.desc, mustMoney(t, "-10"), tc.cat); !core.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
	if !reflect.DeepEqual(before, e.Snapshot()) {
		t.Fatalf("state changed: before=%+v after=%+v", before, e.Snapshot())
	}
	if !reflect.DeepEqual(beforeSummary, e.Summary()) {
		t.Fatal("summary changed after failed add")
	}
}

func TestEngineEditAndRemoveMissing(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	tx, _ := e.AddTransaction(ctx, "Coffee", mustMoney(t, "-3.20"), "Food")
	before := e.Snapshot()

	if _, err := e.EditTransaction(ctx, tx.ID+99, "x", mustMoney(t, "1"), "Food"); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := e.RemoveTransaction(ctx, tx.ID+99); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := e.EditTransaction(ctx, tx.ID, " ", mustMoney(t, "1"), "Food"); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("edit must validate like add, got %v", err)
	}
	if !reflect.DeepEqual(before, e.Snapshot()) {
		t.Fatal("failed edit/remove changed state")
	}
}

func TestEngineEditPreservesIdentity(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()
	a, _ := e.AddTransaction(ctx, "A", mustMoney(t, "10"), "Food")
	b, _ := e.AddTransaction(ctx, "B", mustMoney(t, "20"), "Food")
	c, _ := e.AddTransaction(ctx, "C", mustMoney(t, "30"), "Food")

	edited, err := e.EditTransaction(ctx, b.ID, "B!", mustMoney(t, "-5"), "Other")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.ID != b.ID || edited.Type() != core.Expense {
		t.Fatalf("unexpected edit result %+v", edited)
	}
	ids := []int64{}
	for _, tx := range e.Transactions() {
		ids = append(ids, tx.ID)
	}
	if !reflect.DeepEqual(ids, []int64{a.ID, b.ID, c.ID}) {
		t.Fatalf("order changed: %v", ids)
	}
	got, err := e.Transaction(b.ID)
	if err != nil || got.Description != "B!" || got.Category != "Other" {
		t.Fatalf("unexpected record %+v err=%v", got, err)
	}
	assertInvariants(t, e)
}

func TestEngineCategories(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine()

	if _, err := e.AddCategory(ctx, "Pets"); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := e.Categories()
	if _, err := e.AddCategory(ctx, "Pets"); !core.IsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if !reflect.DeepEqual(before, e.Categories()) {
		t.Fatal("duplicate add changed categories")
	}
	if _, err := e.AddCategory(ctx, ""); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if e.RemoveCategory(ctx, "Nope") {
		t.Fatal("absent label should report false")
	}
}

func TestEngineObserversSeeSettledState(t *testing.T) {
	ctx := context.Background()
	var events []Event
	e := newTestEngine(ObserverFunc(func(_ context.Context, ev Event) {
		events = append(events, ev)
	}))

	tx, _ := e.AddTransaction(ctx, "Paycheck", mustMoney(t, "1000"), "Salary")
	e.AddTransaction(ctx, "", mustMoney(t, "1"), "Salary")
	e.AddCategory(ctx, "Pets")
	e.RemoveCategory(ctx, "Missing")

	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	first := events[0]
	if first.Op != OpAddTransaction || first.Err != nil || first.Transaction.ID != tx.ID {
		t.Fatalf("unexpected first event %+v", first)
	}
	if first.State.Balance.Cents != 100000 || len(first.State.Transactions) != 1 {
		t.Fatalf("event state not settled: %+v", first.State)
	}
	if events[1].Err == nil || events[1].State.Balance.Cents != 100000 {
		t.Fatalf("failed add must report error with unchanged state: %+v", events[1])
	}
	if events[2].Op != OpAddCategory || events[2].Category != "Pets" {
		t.Fatalf("unexpected category event %+v", events[2])
	}
	if !core.IsNotFound(events[3].Err) {
		t.Fatalf("expected not found for missing category, got %v", events[3].Err)
	}
}

func TestEngineRejectEmitsWithoutMutating(t *testing.T) {
	ctx := context.Background()
	var events []Event
	e := newTestEngine(ObserverFunc(func(_ context.Context, ev Event) {
		events = append(events, ev)
	}))
	e.AddTransaction(ctx, "Paycheck", mustMoney(t, "1000"), "Salary")
	before := e.Snapshot()

	e.Reject(ctx, OpEditTransaction, core.ErrInvalidAmount)
	e.Reject(ctx, OpAddTransaction, nil)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	ev := events[1]
	if ev.Op != OpEditTransaction || !errors.Is(ev.Err, core.ErrInvalidAmount) {
		t.Fatalf("unexpected reject event %+v", ev)
	}
	if !reflect.DeepEqual(ev.State, before) || !reflect.DeepEqual(e.Snapshot(), before) {
		t.Fatalf("reject changed state: %+v", ev.State)
	}
}

func TestEngineRestoreRecomputesBalance(t *testing.T) {
	e := newTestEngine()
	e.Restore(Snapshot{
		Transactions: []core.Transaction{
			{ID: 1, Description: "Pay", Amount: core.NewMoney(100000), Category: "Salary"},
			{ID: 2, Description: "Rent", Amount: core.NewMoney(-50000), Category: "Housing"},
		},
		Categories: []string{},
		Balance:    core.NewMoney(1), // stale
	})
	if e.Balance().Cents != 50000 {
		t.Fatalf("balance = %d, want 50000", e.Balance().Cents)
	}
	if len(e.Categories()) != 0 {
		t.Fatalf("persisted empty category list must be kept, got %v", e.Categories())
	}
	assertInvariants(t, e)
}

// TestEngineInvariantsUnderRandomOperations drives random add/edit/remove
// sequences and checks balance and summary after every step.
func TestEngineInvariantsUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	cats := []string{"Food", "Salary", "Rent", "Fun"}

	for run := 0; run < 20; run++ {
		e := newTestEngine()
		for step := 0; step < 200; step++ {
			amount := core.NewMoney(rng.Int63n(200_000) - 100_000)
			txs := e.Transactions()
			switch op := rng.Intn(4); {
			case op <= 1 || len(txs) == 0:
				desc := "tx"
				if rng.Intn(10) == 0 {
					desc = " " // occasional invalid input
				}
				e.AddTransaction(ctx, desc, amount, cats[rng.Intn(len(cats))])
			case op == 2:
				target := txs[rng.Intn(len(txs))]
				e.EditTransaction(ctx, target.ID, "edited", amount, cats[rng.Intn(len(cats))])
			default:
				target := txs[rng.Intn(len(txs))]
				e.RemoveTransaction(ctx, target.ID)
			}
			if rng.Intn(20) == 0 {
				e.RemoveCategory(ctx, cats[rng.Intn(len(cats))])
			}
			assertInvariants(t, e)
		}
	}
}
