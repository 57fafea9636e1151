package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuoteTransitionTable(t *testing.T) {
	allowed := map[QuoteStatus][]QuoteAction{
		QuoteStatusInProgress: {QuoteActionUpdate, QuoteActionValidate, QuoteActionCancel, QuoteActionDelete},
		QuoteStatusValidated:  {QuoteActionCancel, QuoteActionConvert, QuoteActionDelete},
		QuoteStatusCancelled:  {QuoteActionCancel, QuoteActionDelete},
		QuoteStatusConverted:  {},
	}
	for _, st := range QuoteStatuses {
		for _, a := range QuoteActions {
			want := false
			for _, ok := range allowed[st] {
				if ok == a {
					want = true
				}
			}
			if got := QuoteTransitions.Allows(st, a); got != want {
				t.Errorf("%s on %s: got %v want %v", a, st, got, want)
			}
		}
	}
	if next, _ := QuoteTransitions.Next(QuoteStatusValidated, QuoteActionConvert); next != QuoteStatusConverted {
		t.Fatalf("convert leads to %s", next)
	}
}

func TestInvoiceTransitionTable(t *testing.T) {
	cases := []struct {
		from   InvoiceStatus
		action InvoiceAction
		ok     bool
	}{
		{InvoiceStatusUnpaid, InvoiceActionMarkPaid, true},
		{InvoiceStatusUnpaid, InvoiceActionCancel, true},
		{InvoiceStatusPartiallyPaid, InvoiceActionMarkPaid, true},
		{InvoiceStatusPartiallyPaid, InvoiceActionCancel, true},
		{InvoiceStatusPaid, InvoiceActionMarkPaid, true},
		{InvoiceStatusPaid, InvoiceActionCancel, false},
		{InvoiceStatusCancelled, InvoiceActionMarkPaid, false},
		{InvoiceStatusCancelled, InvoiceActionCancel, true},
	}
	for _, c := range cases {
		if got := InvoiceTransitions.Allows(c.from, c.action); got != c.ok {
			t.Errorf("%s on %s: got %v want %v", c.action, c.from, got, c.ok)
		}
	}
	for _, st := range InvoiceStatuses {
		if !InvoiceTransitions.Allows(st, InvoiceActionDelete) {
			t.Errorf("delete must be allowed on %s", st)
		}
	}
}

func TestStatusAndPaymentValidity(t *testing.T) {
	if QuoteStatus("DRAFT").Valid() || !QuoteStatusConverted.Valid() {
		t.Fatal("quote status validity")
	}
	if InvoiceStatus("LOST").Valid() || !InvoiceStatusPartiallyPaid.Valid() {
		t.Fatal("invoice status validity")
	}
	if PaymentMethod("BITCOIN").Valid() || !PaymentDirectDebit.Valid() {
		t.Fatal("payment method validity")
	}
}

func TestQuoteSetLinesRecomputes(t *testing.T) {
	q := &Quote{ID: 7}
	q.SetLines([]QuoteLine{
		{LinePricing: NewLinePricing(3, decimal.NewFromInt(100), nil)},
		{LinePricing: NewLinePricing(1, decimal.RequireFromString("10.00"), ptr(decimal.RequireFromString("5.5")))},
	})
	if q.Lines[0].QuoteID != 7 || q.Lines[1].Position != 2 {
		t.Fatalf("lines not attached: %+v", q.Lines)
	}
	if !q.TotalHT.Equal(decimal.NewFromInt(310)) || !q.TotalTTC.Equal(decimal.RequireFromString("370.55")) {
		t.Fatalf("totals: ht=%s ttc=%s", q.TotalHT, q.TotalTTC)
	}
	if !q.TotalTVA.Equal(decimal.RequireFromString("60.55")) {
		t.Fatalf("tva: %s", q.TotalTVA)
	}

	q.SetLines(nil)
	if !q.TotalHT.IsZero() || !q.TotalTTC.IsZero() {
		t.Fatalf("empty quote must total zero")
	}
}

func TestInvoiceSetLinesAndSettled(t *testing.T) {
	inv := &Invoice{ID: 3, Status: InvoiceStatusUnpaid}
	inv.SetLines([]InvoiceLine{{LinePricing: NewLinePricing(2, decimal.NewFromInt(50), nil)}})
	if inv.Lines[0].InvoiceID != 3 || !inv.MontantTTC.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected invoice: %+v", inv)
	}
	if inv.IsSettled() {
		t.Fatal("unpaid invoice reported as settled")
	}
	inv.Status = InvoiceStatusPaid
	if !inv.IsSettled() {
		t.Fatal("paid invoice not settled")
	}
}

func TestErrorKinds(t *testing.T) {
	stock := &StockError{ProductID: 1, ProductName: "Cable", Available: 1, Requested: 2}
	inc := &InconsistencyError{Step: "stock decrement", Cause: stock}
	if !errors.Is(inc, ErrInconsistent) || !errors.Is(inc, ErrInsufficientStock) {
		t.Fatalf("inconsistency must match both kinds")
	}
	if !errors.Is(NotFound("quote", 1), ErrNotFound) {
		t.Fatal("not found kind")
	}
	if !errors.Is(&StateError{Entity: "quote"}, ErrInvalidState) {
		t.Fatal("state kind")
	}
}

func TestProductPriceTTC(t *testing.T) {
	p := Product{UnitPriceHT: decimal.RequireFromString("12.34")}
	if got := p.PriceTTC(decimal.NewFromInt(20)); !got.Equal(decimal.RequireFromString("14.81")) {
		t.Fatalf("price ttc: %s", got)
	}
}

func ptr[T any](v T) *T { return &v }

func TestFullAddress(t *testing.T) {
	c := Client{Address: "1 rue Haute", PostalCode: "69001", City: "Lyon", Country: "France"}
	if got := c.FullAddress(); got != "1 rue Haute\n69001 Lyon\nFrance" {
		t.Fatalf("address: %q", got)
	}
	if got := (&Client{City: "Lyon"}).FullAddress(); got != "Lyon" {
		t.Fatalf("partial address: %q", got)
	}
}
