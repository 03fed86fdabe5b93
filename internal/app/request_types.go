package app

import (
	"fmt"
	"strings"
	"time"

	"trade-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request types decode straight from JSON bodies. Pointer fields distinguish
// "absent" from "empty" so the same type serves create and partial update.

// ItemRequest is one line item on a purchase or invoice body.
type ItemRequest struct {
	Name      string           `json:"name"`
	Model     string           `json:"model"`
	Supplier  string           `json:"supplier"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	UOM       string           `json:"uom"`
	Currency  string           `json:"currency"`
	Total     *decimal.Decimal `json:"total"`

	// Invoice lines only.
	PurchaseID string `json:"purchaseId"`
	PONumber   string `json:"poNumber"`
}

// ClientRequest is the body of client create and update.
type ClientRequest struct {
	Company         *string            `json:"company"`
	ContactPerson   *string            `json:"contactPerson"`
	Email           *string            `json:"email"`
	Phone           *string            `json:"phone"`
	BillingAddress  *core.AddressPatch `json:"billingAddress"`
	ShippingAddress *core.AddressPatch `json:"shippingAddress"`
	GSTNumber       *string            `json:"gstNumber"`
	MSMENumber      *string            `json:"msmeNumber"`
	PANNumber       *string            `json:"panNumber"`
	Status          *string            `json:"status"`
	BaseCurrency    *string            `json:"baseCurrency"`
	Notes           *string            `json:"notes"`
}

// PurchaseRequest is the body of purchase create and update.
type PurchaseRequest struct {
	ClientID     *string          `json:"clientId"`
	PONumber     *string          `json:"poNumber"`
	Date         *string          `json:"date"`
	Status       *string          `json:"status"`
	Subtotal     *decimal.Decimal `json:"subtotal"`
	Tax          *decimal.Decimal `json:"tax"`
	Total        *decimal.Decimal `json:"total"`
	BaseCurrency *string          `json:"baseCurrency"`
	Notes        *string          `json:"notes"`
	Items        *[]ItemRequest   `json:"items"`
}

// InvoiceRequest is the body of invoice create and update. PurchaseID is the
// single-link form older clients send; PurchaseIDs wins when both are present.
type InvoiceRequest struct {
	InvoiceNumber *string          `json:"invoiceNumber"`
	ClientID      *string          `json:"clientId"`
	PurchaseIDs   *[]string        `json:"purchaseIds"`
	PurchaseID    *string          `json:"purchaseId"`
	Date          *string          `json:"date"`
	DueDate       *string          `json:"dueDate"`
	Status        *string          `json:"status"`
	Subtotal      *decimal.Decimal `json:"subtotal"`
	Tax           *decimal.Decimal `json:"tax"`
	Total         *decimal.Decimal `json:"total"`
	PaymentTerms  *string          `json:"paymentTerms"`
	Notes         *string          `json:"notes"`
	BaseCurrency  *string          `json:"baseCurrency"`
	Items         *[]ItemRequest   `json:"items"`
}

// FinanceRequest is the body of finance record create and update.
type FinanceRequest struct {
	Type          *string          `json:"type"`
	Category      *string          `json:"category"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description"`
	Date          *string          `json:"date"`
	PaymentMethod *string          `json:"paymentMethod"`
	Status        *string          `json:"status"`
	Reference     *string          `json:"reference"`
	TaxYear       *string          `json:"taxYear"`
}

// InvoiceStatsRequest bounds the stats window on creation time. Both ends are
// optional dates; an empty window means the last 30 days.
type InvoiceStatsRequest struct {
	DateFrom string
	DateTo   string
	ClientID string
}

// check accumulates field violations.
type check struct {
	v *core.ValidationError
}

func newCheck() *check { return &check{v: core.NewValidationError()} }

func (c *check) err() error { return c.v.Err() }

func (c *check) required(field string, s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		c.v.Add(field, "is required")
		return ""
	}
	return strings.TrimSpace(*s)
}

// notBlank rejects a present but empty value on update.
func (c *check) notBlank(field string, s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		c.v.Add(field, "must not be empty")
		return nil
	}
	return &trimmed
}

func (c *check) uuid(field, s string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		c.v.Add(field, "must be a valid UUID")
		return uuid.Nil
	}
	return id
}

func (c *check) optUUID(field string, s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id := c.uuid(field, *s)
	return &id
}

func (c *check) date(field string, s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d, ok := NormalizeDate(*s)
	if !ok {
		c.v.Add(field, "must be a date (YYYY-MM-DD)")
		return nil
	}
	return &d
}

func (c *check) nonNegative(field string, d *decimal.Decimal) {
	if d != nil && d.IsNegative() {
		c.v.Add(field, "must not be negative")
	}
}

func (c *check) email(field string, s *string) {
	if s != nil && *s != "" && !strings.Contains(*s, "@") {
		c.v.Add(field, "must be a valid email address")
	}
}

func (c *check) enum(field string, s *string, valid bool, allowed string) {
	if s != nil && !valid {
		c.v.Add(field, "must be one of: "+allowed)
	}
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02"), true
	}
	return "", false
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dec(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func addr(p *core.AddressPatch) core.Address {
	if p == nil {
		return core.Address{}
	}
	return core.Address{
		Street:     str(p.Street),
		City:       str(p.City),
		State:      str(p.State),
		PostalCode: str(p.PostalCode),
		Country:    str(p.Country),
	}
}

func (c *check) items(items []ItemRequest, sourced bool) []core.ItemInput {
	out := make([]core.ItemInput, 0, len(items))
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(it.Name) == "" {
			c.v.Add(prefix+"name", "is required")
		}
		c.nonNegative(prefix+"quantity", &it.Quantity)
		c.nonNegative(prefix+"unitPrice", &it.UnitPrice)

		in := core.ItemInput{
			Name:      strings.TrimSpace(it.Name),
			Model:     it.Model,
			Supplier:  it.Supplier,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			UOM:       it.UOM,
			Currency:  it.Currency,
			Total:     it.Total,
		}
		if sourced {
			if it.PurchaseID != "" {
				id := c.uuid(prefix+"purchaseId", it.PurchaseID)
				in.PurchaseID = &id
			}
			in.PONumber = it.PONumber
		}
		out = append(out, in)
	}
	return out
}

func (r ClientRequest) validate(c *check) {
	c.email("email", r.Email)
	if r.Status != nil {
		c.enum("status", r.Status, core.ClientStatus(*r.Status).Valid(), "active, inactive")
	}
}

// ToInput validates a create body.
func (r ClientRequest) ToInput() (core.ClientInput, error) {
	c := newCheck()
	company := c.required("company", r.Company)
	r.validate(c)
	if err := c.err(); err != nil {
		return core.ClientInput{}, err
	}
	return core.ClientInput{
		Company:         company,
		ContactPerson:   str(r.ContactPerson),
		Email:           str(r.Email),
		Phone:           str(r.Phone),
		BillingAddress:  addr(r.BillingAddress),
		ShippingAddress: addr(r.ShippingAddress),
		GSTNumber:       str(r.GSTNumber),
		MSMENumber:      str(r.MSMENumber),
		PANNumber:       str(r.PANNumber),
		Status:          core.ClientStatus(str(r.Status)),
		BaseCurrency:    str(r.BaseCurrency),
		Notes:           str(r.Notes),
	}, nil
}

// ToPatch validates an update body.
func (r ClientRequest) ToPatch() (core.ClientPatch, error) {
	c := newCheck()
	company := c.notBlank("company", r.Company)
	r.validate(c)
	if err := c.err(); err != nil {
		return core.ClientPatch{}, err
	}
	var status *core.ClientStatus
	if r.Status != nil {
		s := core.ClientStatus(*r.Status)
		status = &s
	}
	return core.ClientPatch{
		Company:         company,
		ContactPerson:   r.ContactPerson,
		Email:           r.Email,
		Phone:           r.Phone,
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
		GSTNumber:       r.GSTNumber,
		MSMENumber:      r.MSMENumber,
		PANNumber:       r.PANNumber,
		Status:          status,
		BaseCurrency:    r.BaseCurrency,
		Notes:           r.Notes,
	}, nil
}

func (r PurchaseRequest) validate(c *check) (date *string, items *[]core.ItemInput) {
	date = c.date("date", r.Date)
	if r.Status != nil {
		c.enum("status", r.Status, core.PurchaseStatus(*r.Status).Valid(), "pending, approved, rejected, completed")
	}
	c.nonNegative("subtotal", r.Subtotal)
	c.nonNegative("tax", r.Tax)
	c.nonNegative("total", r.Total)
	if r.Items != nil {
		in := c.items(*r.Items, false)
		items = &in
	}
	return date, items
}

// ToInput validates a create body.
func (r PurchaseRequest) ToInput() (core.PurchaseInput, error) {
	c := newCheck()
	clientID := c.uuid("clientId", c.required("clientId", r.ClientID))
	date, items := r.validate(c)
	if err := c.err(); err != nil {
		return core.PurchaseInput{}, err
	}
	in := core.PurchaseInput{
		ClientID:     clientID,
		PONumber:     str(r.PONumber),
		Date:         str(date),
		Status:       core.PurchaseStatus(str(r.Status)),
		Subtotal:     dec(r.Subtotal),
		Tax:          dec(r.Tax),
		Total:        dec(r.Total),
		BaseCurrency: str(r.BaseCurrency),
		Notes:        str(r.Notes),
	}
	if items != nil {
		in.Items = *items
	}
	return in, nil
}

// ToPatch validates an update body.
func (r PurchaseRequest) ToPatch() (core.PurchasePatch, error) {
	c := newCheck()
	clientID := c.optUUID("clientId", r.ClientID)
	date, items := r.validate(c)
	if err := c.err(); err != nil {
		return core.PurchasePatch{}, err
	}
	var status *core.PurchaseStatus
	if r.Status != nil {
		s := core.PurchaseStatus(*r.Status)
		status = &s
	}
	return core.PurchasePatch{
		ClientID:     clientID,
		PONumber:     r.PONumber,
		Date:         date,
		Status:       status,
		Subtotal:     r.Subtotal,
		Tax:          r.Tax,
		Total:        r.Total,
		BaseCurrency: r.BaseCurrency,
		Notes:        r.Notes,
		Items:        items,
	}, nil
}

// purchaseIDs resolves the link list from purchaseIds or the legacy purchaseId.
// nil means neither was sent.
func (r InvoiceRequest) purchaseIDs(c *check) *[]uuid.UUID {
	switch {
	case r.PurchaseIDs != nil:
		ids := make([]uuid.UUID, 0, len(*r.PurchaseIDs))
		for i, s := range *r.PurchaseIDs {
			ids = append(ids, c.uuid(fmt.Sprintf("purchaseIds[%d]", i), s))
		}
		return &ids
	case r.PurchaseID != nil:
		ids := []uuid.UUID{}
		if strings.TrimSpace(*r.PurchaseID) != "" {
			ids = append(ids, c.uuid("purchaseId", *r.PurchaseID))
		}
		return &ids
	}
	return nil
}

func (r InvoiceRequest) validate(c *check) (date, due *string, links *[]uuid.UUID, items *[]core.ItemInput) {
	date = c.date("date", r.Date)
	due = c.date("dueDate", r.DueDate)
	if r.Status != nil {
		c.enum("status", r.Status, core.InvoiceStatus(*r.Status).Valid(), "draft, sent, paid, overdue")
	}
	c.nonNegative("subtotal", r.Subtotal)
	c.nonNegative("tax", r.Tax)
	c.nonNegative("total", r.Total)
	links = r.purchaseIDs(c)
	if r.Items != nil {
		in := c.items(*r.Items, true)
		items = &in
	}
	return date, due, links, items
}

// ToInput validates a create body.
func (r InvoiceRequest) ToInput() (core.InvoiceInput, error) {
	c := newCheck()
	clientID := c.uuid("clientId", c.required("clientId", r.ClientID))
	date, due, links, items := r.validate(c)
	if err := c.err(); err != nil {
		return core.InvoiceInput{}, err
	}
	in := core.InvoiceInput{
		InvoiceNumber: strings.TrimSpace(str(r.InvoiceNumber)),
		ClientID:      clientID,
		Date:          str(date),
		DueDate:       str(due),
		Status:        core.InvoiceStatus(str(r.Status)),
		Subtotal:      dec(r.Subtotal),
		Tax:           dec(r.Tax),
		Total:         dec(r.Total),
		PaymentTerms:  str(r.PaymentTerms),
		Notes:         str(r.Notes),
		BaseCurrency:  str(r.BaseCurrency),
	}
	if links != nil {
		in.PurchaseIDs = *links
	}
	if items != nil {
		in.Items = *items
	}
	return in, nil
}

// ToPatch validates an update body.
func (r InvoiceRequest) ToPatch() (core.InvoicePatch, error) {
	c := newCheck()
	clientID := c.optUUID("clientId", r.ClientID)
	number := c.notBlank("invoiceNumber", r.InvoiceNumber)
	date, due, links, items := r.validate(c)
	if err := c.err(); err != nil {
		return core.InvoicePatch{}, err
	}
	var status *core.InvoiceStatus
	if r.Status != nil {
		s := core.InvoiceStatus(*r.Status)
		status = &s
	}
	return core.InvoicePatch{
		InvoiceNumber: number,
		ClientID:      clientID,
		Date:          date,
		DueDate:       due,
		Status:        status,
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		Total:         r.Total,
		PaymentTerms:  r.PaymentTerms,
		Notes:         r.Notes,
		BaseCurrency:  r.BaseCurrency,
		Items:         items,
		PurchaseIDs:   links,
	}, nil
}

// ParseInvoiceStatus validates the body of a status-only change.
func ParseInvoiceStatus(s string) (core.InvoiceStatus, error) {
	status := core.InvoiceStatus(strings.TrimSpace(s))
	if !status.Valid() {
		c := newCheck()
		c.v.Add("status", "must be one of: draft, sent, paid, overdue")
		return "", c.err()
	}
	return status, nil
}

func (r FinanceRequest) validate(c *check) *string {
	if r.Type != nil {
		c.enum("type", r.Type, core.FinanceType(*r.Type).Valid(), "invested, expense, tds")
	}
	if r.Status != nil {
		c.enum("status", r.Status, core.FinanceStatus(*r.Status).Valid(), "completed, pending, cancelled")
	}
	c.nonNegative("amount", r.Amount)
	return c.date("date", r.Date)
}

// ToInput validates a create body.
func (r FinanceRequest) ToInput() (core.FinanceInput, error) {
	c := newCheck()
	c.required("type", r.Type)
	category := c.required("category", r.Category)
	if r.Amount == nil {
		c.v.Add("amount", "is required")
	}
	date := r.validate(c)
	if err := c.err(); err != nil {
		return core.FinanceInput{}, err
	}
	return core.FinanceInput{
		Type:          core.FinanceType(*r.Type),
		Category:      category,
		Amount:        *r.Amount,
		Description:   str(r.Description),
		Date:          str(date),
		PaymentMethod: str(r.PaymentMethod),
		Status:        core.FinanceStatus(str(r.Status)),
		Reference:     str(r.Reference),
		TaxYear:       str(r.TaxYear),
	}, nil
}

// ToPatch validates an update body.
func (r FinanceRequest) ToPatch() (core.FinancePatch, error) {
	c := newCheck()
	category := c.notBlank("category", r.Category)
	date := r.validate(c)
	if err := c.err(); err != nil {
		return core.FinancePatch{}, err
	}
	p := core.FinancePatch{
		Category:      category,
		Amount:        r.Amount,
		Description:   r.Description,
		Date:          date,
		PaymentMethod: r.PaymentMethod,
		Reference:     r.Reference,
		TaxYear:       r.TaxYear,
	}
	if r.Type != nil {
		t := core.FinanceType(*r.Type)
		p.Type = &t
	}
	if r.Status != nil {
		s := core.FinanceStatus(*r.Status)
		p.Status = &s
	}
	return p, nil
}

// ParseIDs validates a list of UUID strings, reporting each bad entry.
func ParseIDs(field string, raw []string) ([]uuid.UUID, error) {
	c := newCheck()
	ids := make([]uuid.UUID, 0, len(raw))
	for i, s := range raw {
		ids = append(ids, c.uuid(fmt.Sprintf("%s[%d]", field, i), s))
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ParseID validates a single UUID, typically a path parameter.
func ParseID(field, raw string) (uuid.UUID, error) {
	c := newCheck()
	id := c.uuid(field, raw)
	return id, c.err()
}
