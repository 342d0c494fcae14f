package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/communityhub/member-qa/internal/core/domain"
)

// MemberSource derives known-member records from the archived messages
// table. Used by the namesync tool to (re)build the registry file.
type MemberSource struct {
	db *sql.DB
}

func NewMemberSource(db *sql.DB) *MemberSource {
	return &MemberSource{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const memberNamesQuery = `
SELECT DISTINCT TRIM(user_name) AS user_name
FROM messages
WHERE user_name IS NOT NULL AND TRIM(user_name) <> ''
ORDER BY LOWER(TRIM(user_name))
`

// Load lists every distinct member display name in the archive, ordered
// case-insensitively, paired with its normalized form. Duplicate
// normalized keys are kept; registry construction applies
// first-occurrence-wins.
func (s *MemberSource) Load(ctx context.Context) ([]domain.MemberRecord, error) {
	rows, err := s.db.QueryContext(ctx, memberNamesQuery)
	if err != nil {
		return nil, fmt.Errorf("query member names: %w", err)
	}
	defer rows.Close()

	var records []domain.MemberRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan member name: %w", err)
		}
		records = append(records, domain.MemberRecord{
			Normalized: domain.NormalizeName(raw),
			Raw:        raw,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member names: %w", err)
	}
	return records, nil
}
