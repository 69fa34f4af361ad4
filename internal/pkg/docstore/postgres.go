package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore grava cada coleção como uma linha da tabela collections
// (name, payload jsonb, version). O controle de concorrência otimista é o
// mesmo do ajuste de estoque: UPDATE ... WHERE version = $esperada.
type PostgresStore struct {
	DB        *sql.DB
	DBTimeout time.Duration
}

// NewPostgresStore cria o armazenamento sobre o pool de conexões.
func NewPostgresStore(db *sql.DB, dbTimeout time.Duration) *PostgresStore {
	return &PostgresStore{DB: db, DBTimeout: dbTimeout}
}

// Load lê o documento da coleção.
func (s *PostgresStore) Load(ctx context.Context, collection string) (Document, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, s.DBTimeout)
	defer cancel()

	const query = `SELECT payload, version FROM collections WHERE name = $1`

	var doc Document
	err := s.DB.QueryRowContext(ctxTimeout, query, collection).Scan(&doc.Payload, &doc.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("falha ao ler coleção %s: %w", collection, err)
	}
	return doc, nil
}

// Save grava a coleção inteira se a versão esperada conferir.
func (s *PostgresStore) Save(ctx context.Context, collection string, payload []byte, expectedVersion int64) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, s.DBTimeout)
	defer cancel()

	now := time.Now().UTC()

	var (
		result sql.Result
		err    error
	)
	if expectedVersion == 0 {
		// Primeira gravação: se outra operação criou a linha antes, não afeta nada.
		// O payload vai como texto; o lib/pq enviaria []byte como bytea.
		const insertSQL = `
			INSERT INTO collections (name, payload, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (name) DO NOTHING`
		result, err = s.DB.ExecContext(ctxTimeout, insertSQL, collection, string(payload), now)
	} else {
		const updateSQL = `
			UPDATE collections
			SET payload = $1, version = version + 1, updated_at = $2
			WHERE name = $3 AND version = $4`
		result, err = s.DB.ExecContext(ctxTimeout, updateSQL, string(payload), now, collection, expectedVersion)
	}
	if err != nil {
		return 0, fmt.Errorf("falha ao gravar coleção %s: %w", collection, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("falha ao verificar linhas afetadas da coleção %s: %w", collection, err)
	}
	if rowsAffected == 0 {
		return 0, ErrVersionConflict
	}
	return expectedVersion + 1, nil
}
