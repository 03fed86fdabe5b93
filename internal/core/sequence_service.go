package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Numbering schemes. Each keeps one counter per calendar year.
const (
	SchemeInvoice = "INV"
	SchemePO      = "PO"
)

var schemeWidth = map[string]int{
	SchemeInvoice: 4,
	SchemePO:      3,
}

// FormatDocumentNumber renders <scheme>-<year>-<n> with the scheme's zero padding.
func FormatDocumentNumber(scheme string, year int, n int64) string {
	width, ok := schemeWidth[scheme]
	if !ok {
		width = 4
	}
	return fmt.Sprintf("%s-%d-%0*d", scheme, year, width, n)
}

// SequenceService issues monotonically increasing document numbers.
type SequenceService interface {
	// NextTx increments and returns the counter for (scheme, year) inside tx. The counter
	// row stays locked until tx ends, so concurrent callers never share a value.
	NextTx(ctx context.Context, tx pgx.Tx, scheme string, year int) (int64, error)

	// NumberTx returns the next formatted number for scheme. When the counter cannot be
	// reached it returns the deterministic first number of the year instead of failing;
	// a collision then surfaces as a duplicate at insert time.
	NumberTx(ctx context.Context, tx pgx.Tx, scheme string) string

	// Peek previews the next number without consuming it.
	Peek(ctx context.Context, scheme string) (string, error)
}

type sequenceService struct {
	pool *pgxpool.Pool
	log  *zap.Logger
	now  func() time.Time
}

func NewSequenceService(pool *pgxpool.Pool, log *zap.Logger) SequenceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &sequenceService{pool: pool, log: log, now: time.Now}
}

func (s *sequenceService) NextTx(ctx context.Context, tx pgx.Tx, scheme string, year int) (int64, error) {
	var last int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (scheme, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (scheme, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`,
		scheme, year,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("increment %s sequence for %d: %w", scheme, year, err)
	}
	return last, nil
}

func (s *sequenceService) NumberTx(ctx context.Context, tx pgx.Tx, scheme string) string {
	year := s.now().Year()

	// The savepoint keeps a counter failure from aborting the caller's transaction.
	sp, err := tx.Begin(ctx)
	if err != nil {
		return s.fallback(scheme, year, err)
	}
	n, err := s.NextTx(ctx, sp, scheme, year)
	if err != nil {
		_ = sp.Rollback(ctx)
		return s.fallback(scheme, year, err)
	}
	if err := sp.Commit(ctx); err != nil {
		return s.fallback(scheme, year, err)
	}
	return FormatDocumentNumber(scheme, year, n)
}

func (s *sequenceService) fallback(scheme string, year int, cause error) string {
	sequenceFallbacks.WithLabelValues(scheme).Inc()
	number := FormatDocumentNumber(scheme, year, 1)
	s.log.Warn("document sequence unavailable, using fallback number",
		zap.String("scheme", scheme),
		zap.String("number", number),
		zap.Error(cause),
	)
	return number
}

func (s *sequenceService) Peek(ctx context.Context, scheme string) (string, error) {
	year := s.now().Year()
	var next int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT last_number FROM document_sequences WHERE scheme = $1 AND year = $2), 0
		) + 1`,
		scheme, year,
	).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("peek %s sequence: %w", scheme, err)
	}
	return FormatDocumentNumber(scheme, year, next), nil
}
