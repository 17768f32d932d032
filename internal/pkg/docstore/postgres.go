package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/logger"
)

const documentsTable = "documents"

// PostgresStore keeps documents as JSONB rows in the documents table
// (see migrations/001_init.sql).
type PostgresStore struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetDocument implements Store.
func (s *PostgresStore) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	sql, args, err := s.sb.Select("data", "created_at", "updated_at").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get document SQL")
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}

	doc := &Document{Collection: collection, ID: id}
	var raw []byte
	err = s.db.QueryRow(ctx, sql, args...).Scan(&raw, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
		}
		logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error fetching document")
		return nil, fmt.Errorf("error fetching document: %w", err)
	}

	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("corrupt document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// QueryDocuments implements Store.
func (s *PostgresStore) QueryDocuments(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	query := s.sb.Select("id", "data", "created_at", "updated_at").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("id")

	for _, f := range filters {
		cond, err := filterCondition(f)
		if err != nil {
			return nil, err
		}
		query = query.Where(cond)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building query documents SQL")
		return nil, fmt.Errorf("failed to build query documents query: %w", err)
	}

	return s.scanDocuments(ctx, collection, sql, args)
}

// SetDocument implements Store. Merge uses JSONB concatenation, which
// replaces top-level keys only.
func (s *PostgresStore) SetDocument(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	if data == nil {
		data = map[string]interface{}{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	onConflict := "ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at"
	if merge {
		onConflict = "ON CONFLICT (collection, id) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = EXCLUDED.updated_at"
	}

	now := time.Now()
	sql, args, err := s.sb.Insert(documentsTable).
		Columns("collection", "id", "data", "created_at", "updated_at").
		Values(collection, id, squirrel.Expr("?::jsonb", string(raw)), now, now).
		Suffix(onConflict).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building set document SQL")
		return fmt.Errorf("failed to build set document query: %w", err)
	}

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error writing document")
		return fmt.Errorf("error writing document: %w", err)
	}
	return nil
}

// ListDocuments implements Store.
func (s *PostgresStore) ListDocuments(ctx context.Context, collection string, offset uint64, limit int) ([]Document, int64, error) {
	total, err := s.CountDocuments(ctx, collection)
	if err != nil {
		return nil, 0, err
	}

	query := s.sb.Select("id", "data", "created_at", "updated_at").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("created_at", "id").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list documents SQL")
		return nil, 0, fmt.Errorf("failed to build list documents query: %w", err)
	}

	docs, err := s.scanDocuments(ctx, collection, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// CountDocuments implements Store.
func (s *PostgresStore) CountDocuments(ctx context.Context, collection string) (int64, error) {
	sql, args, err := s.sb.Select("COUNT(*)").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count documents query: %w", err)
	}

	var total int64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("collection", collection).Msg("Error counting documents")
		return 0, fmt.Errorf("error counting documents: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) scanDocuments(ctx context.Context, collection, sql string, args []interface{}) ([]Document, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("collection", collection).Msg("Error querying documents")
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc := Document{Collection: collection}
		var raw []byte
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("corrupt document %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

// filterCondition translates a Filter into a JSONB predicate. Equality uses
// containment so it can hit the GIN index; ordering extracts the field as text
// and casts it when the filter value is numeric.
func filterCondition(f Filter) (squirrel.Sqlizer, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	if f.Op == OpEqual || f.Op == OpNotEqual {
		raw, err := json.Marshal(nestValue(f.path(), f.Value))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		if f.Op == OpEqual {
			return squirrel.Expr("data @> ?::jsonb", string(raw)), nil
		}
		return squirrel.Expr("NOT (data @> ?::jsonb)", string(raw)), nil
	}

	pathLiteral := "{" + strings.Join(f.path(), ",") + "}"
	if _, numeric := toFloat(f.Value); numeric {
		return squirrel.Expr(fmt.Sprintf("(data #>> ?::text[])::numeric %s ?", f.Op), pathLiteral, f.Value), nil
	}
	return squirrel.Expr(fmt.Sprintf("(data #>> ?::text[]) %s ?", f.Op), pathLiteral, f.Value), nil
}

func nestValue(path []string, value interface{}) map[string]interface{} {
	out := map[string]interface{}{path[len(path)-1]: value}
	for i := len(path) - 2; i >= 0; i-- {
		out = map[string]interface{}{path[i]: out}
	}
	return out
}
