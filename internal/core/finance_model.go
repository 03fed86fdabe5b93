package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FinanceType string

const (
	FinanceInvested FinanceType = "invested"
	FinanceExpense  FinanceType = "expense"
	FinanceTDS      FinanceType = "tds"
)

func (t FinanceType) Valid() bool {
	return t == FinanceInvested || t == FinanceExpense || t == FinanceTDS
}

type FinanceStatus string

const (
	FinanceCompleted FinanceStatus = "completed"
	FinancePending   FinanceStatus = "pending"
	FinanceCancelled FinanceStatus = "cancelled"
)

func (s FinanceStatus) Valid() bool {
	return s == FinanceCompleted || s == FinancePending || s == FinanceCancelled
}

// FinanceRecord is a single money movement: capital invested, an expense or tax deducted at source.
type FinanceRecord struct {
	ID            uuid.UUID       `json:"id"`
	Type          FinanceType     `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          string          `json:"date"` // YYYY-MM-DD
	PaymentMethod string          `json:"paymentMethod"`
	Status        FinanceStatus   `json:"status"`
	Reference     string          `json:"reference"`
	TaxYear       string          `json:"taxYear"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type FinanceInput struct {
	Type          FinanceType
	Category      string
	Amount        decimal.Decimal
	Description   string
	Date          string // defaults to today
	PaymentMethod string
	Status        FinanceStatus // defaults to completed
	Reference     string
	TaxYear       string
}

type FinancePatch struct {
	Type          *FinanceType
	Category      *string
	Amount        *decimal.Decimal
	Description   *string
	Date          *string
	PaymentMethod *string
	Status        *FinanceStatus
	Reference     *string
	TaxYear       *string
}

// FinanceFilter is shared by the list and the stats fold.
type FinanceFilter struct {
	Type          FinanceType
	Category      string
	Status        FinanceStatus
	PaymentMethod string
	Search        string
}

type FinanceService interface {
	CreateRecord(ctx context.Context, in FinanceInput) (*FinanceRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*FinanceRecord, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, patch FinancePatch) (*FinanceRecord, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	ListRecords(ctx context.Context, f FinanceFilter, page PageRequest) (*Page[FinanceRecord], error)

	// Stats folds every record matching f; only completed records count toward the sums.
	Stats(ctx context.Context, f FinanceFilter) (*FinanceStats, error)
}
