package cli

import (
	"context"
	"fmt"

	"trade-ledger/internal/app"
	"trade-ledger/internal/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// SeedSummary lists what SeedDemoData created.
type SeedSummary struct {
	Clients   int      `json:"clients"`
	Purchases []string `json:"purchases"`
	Invoices  []string `json:"invoices"`
	Finance   int      `json:"financeRecords"`
}

func newSeedCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo data set",
		Long:  "Creates two clients with purchases, invoices and finance records. Document numbers come from the live sequences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withService(cmd.Context(), func(svc app.ApplicationService) error {
				sum, err := SeedDemoData(cmd.Context(), svc)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sum)
			})
		},
	}
}

func ptr[T any](v T) *T { return &v }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// SeedDemoData writes the demo data set through svc, so every row passes the
// same validation and numbering as API traffic.
func SeedDemoData(ctx context.Context, svc app.ApplicationService) (*SeedSummary, error) {
	sum := &SeedSummary{}

	acme, err := svc.CreateClient(ctx, app.ClientRequest{
		Company:       ptr("Acme Fabrication Pvt Ltd"),
		ContactPerson: ptr("R. Iyer"),
		Email:         ptr("accounts@acme.example"),
		Phone:         ptr("+91 22 4000 1000"),
		BillingAddress: &core.AddressPatch{
			Street: ptr("12 Dock Road"), City: ptr("Mumbai"), State: ptr("MH"),
			PostalCode: ptr("400001"), Country: ptr("India"),
		},
		GSTNumber:    ptr("27AAACA1234A1Z5"),
		BaseCurrency: ptr("INR"),
	})
	if err != nil {
		return nil, fmt.Errorf("seed client: %w", err)
	}
	northwind, err := svc.CreateClient(ctx, app.ClientRequest{
		Company:       ptr("Northwind Traders"),
		ContactPerson: ptr("J. Park"),
		Email:         ptr("billing@northwind.example"),
		BaseCurrency:  ptr("USD"),
	})
	if err != nil {
		return nil, fmt.Errorf("seed client: %w", err)
	}
	sum.Clients = 2

	bearings, err := svc.CreatePurchase(ctx, app.PurchaseRequest{
		ClientID: ptr(acme.ID.String()),
		Date:     ptr("2025-01-10"),
		Status:   ptr("approved"),
		Subtotal: ptr(money("1200")),
		Tax:      ptr(money("216")),
		Total:    ptr(money("1416")),
		Items: &[]app.ItemRequest{
			{Name: "Ball bearing 6204", Model: "6204-2RS", Supplier: "SKF", Quantity: money("100"), UnitPrice: money("8"), UOM: "pcs"},
			{Name: "Shaft seal", Model: "TC-25", Supplier: "NOK", Quantity: money("50"), UnitPrice: money("8"), UOM: "pcs"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed purchase: %w", err)
	}
	valves, err := svc.CreatePurchase(ctx, app.PurchaseRequest{
		ClientID:     ptr(northwind.ID.String()),
		Date:         ptr("2025-01-14"),
		Subtotal:     ptr(money("640")),
		Total:        ptr(money("640")),
		BaseCurrency: ptr("USD"),
		Items: &[]app.ItemRequest{
			{Name: "Ball valve 1in", Model: "BV-25", Quantity: money("16"), UnitPrice: money("40"), UOM: "pcs", Currency: "USD"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed purchase: %w", err)
	}
	sum.Purchases = []string{bearings.PONumber, valves.PONumber}

	sent, err := svc.CreateInvoice(ctx, app.InvoiceRequest{
		ClientID:     ptr(acme.ID.String()),
		PurchaseIDs:  &[]string{bearings.ID.String()},
		Date:         ptr("2025-01-20"),
		DueDate:      ptr("2025-02-19"),
		Status:       ptr("sent"),
		Subtotal:     ptr(money("1200")),
		Tax:          ptr(money("216")),
		Total:        ptr(money("1416")),
		PaymentTerms: ptr("Net 30"),
		Items: &[]app.ItemRequest{
			{Name: "Ball bearing 6204", Quantity: money("100"), UnitPrice: money("8"), UOM: "pcs",
				PurchaseID: bearings.ID.String(), PONumber: bearings.PONumber},
			{Name: "Shaft seal", Quantity: money("50"), UnitPrice: money("8"), UOM: "pcs",
				PurchaseID: bearings.ID.String(), PONumber: bearings.PONumber},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed invoice: %w", err)
	}
	paid, err := svc.CreateInvoice(ctx, app.InvoiceRequest{
		ClientID:     ptr(northwind.ID.String()),
		PurchaseIDs:  &[]string{valves.ID.String()},
		Date:         ptr("2025-01-22"),
		Status:       ptr("paid"),
		Subtotal:     ptr(money("640")),
		Total:        ptr(money("640")),
		BaseCurrency: ptr("USD"),
		Items: &[]app.ItemRequest{
			{Name: "Ball valve 1in", Quantity: money("16"), UnitPrice: money("40"), UOM: "pcs", Currency: "USD",
				PurchaseID: valves.ID.String(), PONumber: valves.PONumber},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed invoice: %w", err)
	}
	sum.Invoices = []string{sent.InvoiceNumber, paid.InvoiceNumber}

	records := []app.FinanceRequest{
		{Type: ptr("invested"), Category: ptr("Capital"), Amount: ptr(money("1000")), Date: ptr("2025-01-02"), Description: ptr("Owner contribution")},
		{Type: ptr("expense"), Category: ptr("Freight"), Amount: ptr(money("300")), Date: ptr("2025-01-15"), PaymentMethod: ptr("bank transfer")},
		{Type: ptr("tds"), Category: ptr("TDS 194C"), Amount: ptr(money("100")), Date: ptr("2025-01-31"), TaxYear: ptr("2024-25")},
		{Type: ptr("expense"), Category: ptr("Rent"), Amount: ptr(money("450")), Date: ptr("2025-02-01"), Status: ptr("pending")},
	}
	for _, r := range records {
		if _, err := svc.CreateFinanceRecord(ctx, r); err != nil {
			return nil, fmt.Errorf("seed finance record: %w", err)
		}
	}
	sum.Finance = len(records)

	return sum, nil
}
