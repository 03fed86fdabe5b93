package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the read surface shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Predicate accumulates ANDed, parameterized WHERE clauses. Absent filters add nothing.
type Predicate struct {
	clauses []string
	args    []any
}

func (p *Predicate) placeholder(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

// Eq adds `column = value` when value is non-empty.
func (p *Predicate) Eq(column, value string) *Predicate {
	if value == "" {
		return p
	}
	p.clauses = append(p.clauses, column+" = "+p.placeholder(value))
	return p
}

// EqUUID adds `column = id` when id is set.
func (p *Predicate) EqUUID(column string, id *uuid.UUID) *Predicate {
	if id == nil {
		return p
	}
	p.clauses = append(p.clauses, column+" = "+p.placeholder(*id))
	return p
}

// Where adds a raw clause; each "?" in clause is bound to the next value in order.
func (p *Predicate) Where(clause string, values ...any) *Predicate {
	var b strings.Builder
	i := 0
	for _, r := range clause {
		if r == '?' && i < len(values) {
			b.WriteString(p.placeholder(values[i]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	p.clauses = append(p.clauses, b.String())
	return p
}

// Prefix adds `column LIKE 'value%'` with LIKE metacharacters escaped.
func (p *Predicate) Prefix(column, value string) *Predicate {
	if value == "" {
		return p
	}
	p.clauses = append(p.clauses, column+" LIKE "+p.placeholder(escapeLike(value)+"%"))
	return p
}

// Search adds a case-insensitive substring match across columns, ORed together.
func (p *Predicate) Search(term string, columns ...string) *Predicate {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return p
	}
	ph := p.placeholder("%" + escapeLike(term) + "%")
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = "COALESCE(" + c + ", '') ILIKE " + ph
	}
	p.clauses = append(p.clauses, "("+strings.Join(parts, " OR ")+")")
	return p
}

// SQL renders " WHERE ..." or "" when no clause was added.
func (p *Predicate) SQL() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

// Args returns the bound values in placeholder order.
func (p *Predicate) Args() []any {
	return p.args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SortOrder is the direction of a list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts asc/desc in any case; everything else is desc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// orderBy maps a whitelisted sort key to its column. Unknown keys use created_at.
// The id tie-breaker keeps offset paging stable across equal sort values.
func orderBy(alias, sortKey string, order SortOrder, allowed map[string]string) string {
	column, ok := allowed[sortKey]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if order == SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s%s %s, %sid %s", alias, column, dir, alias, dir)
}

// UpdateBuilder emits an UPDATE touching only the columns that were set.
// updated_at is always bumped.
type UpdateBuilder struct {
	table     string
	sets      []string
	args      []any
	returning []string
}

func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set binds column to value unconditionally.
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// SetExpr assigns a literal SQL expression (no bound value) to column.
func (b *UpdateBuilder) SetExpr(column, expr string) *UpdateBuilder {
	b.sets = append(b.sets, column+" = "+expr)
	return b
}

// Returning appends a RETURNING list to the statement.
func (b *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	b.returning = append(b.returning, columns...)
	return b
}

// Changed reports whether any column besides updated_at will be written.
func (b *UpdateBuilder) Changed() bool {
	return len(b.sets) > 0
}

// Build renders the statement filtered on idColumn = id.
func (b *UpdateBuilder) Build(idColumn string, id any) (string, []any) {
	sets := append(append([]string{}, b.sets...), "updated_at = NOW()")
	args := append(append([]any{}, b.args...), id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", b.table, strings.Join(sets, ", "), idColumn, len(args))
	if len(b.returning) > 0 {
		sql += " RETURNING " + strings.Join(b.returning, ", ")
	}
	return sql, args
}

// SetIf binds column only when v is present.
func SetIf[T any](b *UpdateBuilder, column string, v *T) *UpdateBuilder {
	if v == nil {
		return b
	}
	return b.Set(column, *v)
}

// countRows runs SELECT COUNT(*) under the same predicate as the page query.
func countRows(ctx context.Context, q Querier, from string, pred *Predicate) (int, error) {
	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+from+pred.SQL(), pred.Args()...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// pageClause appends LIMIT/OFFSET placeholders after the predicate's args.
func pageClause(pred *Predicate, limit, offset int) (string, []any) {
	args := append(append([]any{}, pred.Args()...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
