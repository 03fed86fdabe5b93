package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const financeColumns = `
	id, type, category, amount, COALESCE(description, ''), date::text,
	COALESCE(payment_method, ''), status, COALESCE(reference, ''), COALESCE(tax_year, ''),
	created_at, updated_at`

var financeSorts = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"date":       "date",
	"amount":     "amount",
}

type financeService struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewFinanceService constructs a FinanceService backed by PostgreSQL.
func NewFinanceService(pool *pgxpool.Pool) FinanceService {
	return &financeService{pool: pool, now: time.Now}
}

func (s *financeService) CreateRecord(ctx context.Context, in FinanceInput) (*FinanceRecord, error) {
	status := in.Status
	if status == "" {
		status = FinanceCompleted
	}

	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO finance_records (type, category, amount, description, date, payment_method, status, reference, tax_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		string(in.Type), in.Category, in.Amount, nullIfEmpty(in.Description),
		orDefault(in.Date, today(s.now())), nullIfEmpty(in.PaymentMethod), string(status),
		nullIfEmpty(in.Reference), nullIfEmpty(in.TaxYear),
	).Scan(&id)
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("insert finance record: %w", err))
	}
	documentsWritten.WithLabelValues("finance", "create").Inc()
	return s.GetRecord(ctx, id)
}

func (s *financeService) GetRecord(ctx context.Context, id uuid.UUID) (*FinanceRecord, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+financeColumns+" FROM finance_records WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get finance record %s: %w", id, err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanFinanceRecord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("finance record", id)
		}
		return nil, fmt.Errorf("get finance record %s: %w", id, err)
	}
	return &rec, nil
}

func (s *financeService) UpdateRecord(ctx context.Context, id uuid.UUID, patch FinancePatch) (*FinanceRecord, error) {
	b := NewUpdate("finance_records")
	SetIf(b, "type", patch.Type)
	SetIf(b, "category", patch.Category)
	SetIf(b, "amount", patch.Amount)
	SetIf(b, "description", patch.Description)
	SetIf(b, "date", patch.Date)
	SetIf(b, "payment_method", patch.PaymentMethod)
	SetIf(b, "status", patch.Status)
	SetIf(b, "reference", patch.Reference)
	SetIf(b, "tax_year", patch.TaxYear)

	sql, args := b.Build("id", id)
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("update finance record %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound("finance record", id)
	}
	documentsWritten.WithLabelValues("finance", "update").Inc()
	return s.GetRecord(ctx, id)
}

func (s *financeService) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM finance_records WHERE id = $1", id)
	if err != nil {
		return ClassifyDBError(fmt.Errorf("delete finance record %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return notFound("finance record", id)
	}
	documentsWritten.WithLabelValues("finance", "delete").Inc()
	return nil
}

// ListRecords applies search inside the SQL predicate, so the page and total
// always describe the same filtered set.
func (s *financeService) ListRecords(ctx context.Context, f FinanceFilter, page PageRequest) (*Page[FinanceRecord], error) {
	offset, limit := page.window(FinanceLimits)
	pred := financePredicate(f)

	total, err := countRows(ctx, s.pool, "finance_records", pred)
	if err != nil {
		return nil, fmt.Errorf("count finance records: %w", err)
	}

	limitSQL, args := pageClause(pred, limit, offset)
	records, err := s.queryRecords(ctx,
		"SELECT "+financeColumns+" FROM finance_records"+pred.SQL()+orderBy("", page.Sort, page.Order, financeSorts)+limitSQL,
		args,
	)
	if err != nil {
		return nil, err
	}
	return NewPage(records, offset, limit, total), nil
}

func (s *financeService) Stats(ctx context.Context, f FinanceFilter) (*FinanceStats, error) {
	pred := financePredicate(f)
	records, err := s.queryRecords(ctx,
		"SELECT "+financeColumns+" FROM finance_records"+pred.SQL()+orderBy("", "created_at", SortDesc, financeSorts),
		pred.Args(),
	)
	if err != nil {
		return nil, err
	}
	stats := FoldFinance(records)
	return &stats, nil
}

func (s *financeService) queryRecords(ctx context.Context, sql string, args []any) ([]FinanceRecord, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list finance records: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanFinanceRecord)
	if err != nil {
		return nil, fmt.Errorf("scan finance records: %w", err)
	}
	return records, nil
}

func financePredicate(f FinanceFilter) *Predicate {
	pred := &Predicate{}
	pred.Eq("type", string(f.Type))
	pred.Eq("category", f.Category)
	pred.Eq("status", string(f.Status))
	pred.Eq("payment_method", f.PaymentMethod)
	pred.Search(f.Search, "description", "category", "payment_method", "reference")
	return pred
}

func scanFinanceRecord(row pgx.CollectableRow) (FinanceRecord, error) {
	var r FinanceRecord
	var typ, status string
	err := row.Scan(
		&r.ID, &typ, &r.Category, &r.Amount, &r.Description, &r.Date,
		&r.PaymentMethod, &status, &r.Reference, &r.TaxYear,
		&r.CreatedAt, &r.UpdatedAt,
	)
	r.Type = FinanceType(typ)
	r.Status = FinanceStatus(status)
	return r, err
}
