package service

import (
	"testing"

	"visadesk_backend/internal/billing/repository"
)

func TestComputeTotalsSumsLines(t *testing.T) {
	items := []repository.Item{
		{Quantity: 2, UnitPriceCents: 15000},
		{Quantity: 1, UnitPriceCents: 4999},
	}

	totals := ComputeTotals(items, 0)

	if totals.SubtotalCents != 34999 {
		t.Fatalf("expected subtotal 34999, got %d", totals.SubtotalCents)
	}
	if totals.TaxCents != 0 {
		t.Fatalf("expected zero tax, got %d", totals.TaxCents)
	}
	if totals.TotalCents != 34999 {
		t.Fatalf("expected total 34999, got %d", totals.TotalCents)
	}
}

func TestComputeTotalsAppliesTaxOnSubtotal(t *testing.T) {
	items := []repository.Item{
		{Quantity: 1, UnitPriceCents: 10000},
	}

	// 20% of 10000 = 2000.
	totals := ComputeTotals(items, 2000)

	if totals.TaxCents != 2000 {
		t.Fatalf("expected tax 2000, got %d", totals.TaxCents)
	}
	if totals.TotalCents != 12000 {
		t.Fatalf("expected total 12000, got %d", totals.TotalCents)
	}
}

func TestComputeTotalsRoundsTaxHalfUp(t *testing.T) {
	items := []repository.Item{
		{Quantity: 1, UnitPriceCents: 25},
	}

	// 20% of 25 = 5 exactly; 21% of 25 = 5.25 which rounds down to 5;
	// 22% of 25 = 5.5 which rounds up to 6.
	if got := ComputeTotals(items, 2100).TaxCents; got != 5 {
		t.Fatalf("expected 5.25 to round to 5, got %d", got)
	}
	if got := ComputeTotals(items, 2200).TaxCents; got != 6 {
		t.Fatalf("expected 5.5 to round to 6, got %d", got)
	}
}

func TestComputeTotalsEmptyInvoice(t *testing.T) {
	totals := ComputeTotals(nil, 2000)

	if totals.SubtotalCents != 0 || totals.TaxCents != 0 || totals.TotalCents != 0 {
		t.Fatalf("expected all-zero totals, got %+v", totals)
	}
}
