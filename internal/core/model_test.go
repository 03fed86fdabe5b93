package core_test

import (
	"testing"

	"trade-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestItemInput_LineTotal(t *testing.T) {
	in := core.ItemInput{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)}
	assert.Equal(t, "100", in.LineTotal().String())

	supplied := decimal.NewFromInt(90)
	in.Total = &supplied
	assert.Equal(t, "90", in.LineTotal().String(), "a supplied total is kept verbatim")

	zero := decimal.Zero
	in.Total = &zero
	assert.True(t, in.LineTotal().IsZero())
}

func TestItemInput_CurrencyOr(t *testing.T) {
	assert.Equal(t, "USD", core.ItemInput{Currency: "USD"}.CurrencyOr("INR"))
	assert.Equal(t, "EUR", core.ItemInput{Currency: "  "}.CurrencyOr("EUR"))
	assert.Equal(t, core.DefaultCurrency, core.ItemInput{}.CurrencyOr(""))
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, core.PurchaseStatus("approved").Valid())
	assert.False(t, core.PurchaseStatus("draft").Valid())
	assert.True(t, core.InvoiceStatus("overdue").Valid())
	assert.False(t, core.InvoiceStatus("pending").Valid())
	assert.True(t, core.ClientStatus("inactive").Valid())
	assert.True(t, core.FinanceType("tds").Valid())
	assert.False(t, core.FinanceType("income").Valid())
	assert.True(t, core.FinanceStatus("cancelled").Valid())
}

func TestInvoice_LegacyFields(t *testing.T) {
	inv := &core.Invoice{}
	assert.Equal(t, "", inv.PrimaryPurchaseID())
	assert.Equal(t, "", inv.PrimaryPONumber())

	first, second := uuid.New(), uuid.New()
	inv.PurchaseIDs = []uuid.UUID{first, second}
	inv.Items = []core.InvoiceItem{{PONumber: "PO-2024-007"}, {PONumber: "PO-2024-008"}}
	assert.Equal(t, first.String(), inv.PrimaryPurchaseID())
	assert.Equal(t, "PO-2024-007", inv.PrimaryPONumber())
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INV-2025-0001", core.FormatDocumentNumber(core.SchemeInvoice, 2025, 1))
	assert.Equal(t, "INV-2025-0123", core.FormatDocumentNumber(core.SchemeInvoice, 2025, 123))
	assert.Equal(t, "INV-2025-12345", core.FormatDocumentNumber(core.SchemeInvoice, 2025, 12345))
	assert.Equal(t, "PO-2025-007", core.FormatDocumentNumber(core.SchemePO, 2025, 7))
}
