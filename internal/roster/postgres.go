package roster

import (
	"context"
	"fmt"

	"filmcraft-chat/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to roster database successfully")
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListCrew(ctx context.Context, projectID string) ([]CrewMember, error) {
	query := `
		SELECT id, name, role, department
		FROM crew_members
		WHERE project_id = $1
		ORDER BY name`

	rows, err := s.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew: %w", err)
	}
	defer rows.Close()

	var members []CrewMember
	for rows.Next() {
		var m CrewMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Department); err != nil {
			return nil, fmt.Errorf("failed to scan crew member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
