package store

import (
	"context"
	"fmt"
	"time"

	"agent-order-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Soft-delete / lifecycle predicates. Every query that reads catalog
// state goes through one of these fragments instead of repeating the
// filter ad hoc.
const (
	notDeleted     = "is_deleted = FALSE"
	activeProducts = "status = 'active' AND is_deleted = FALSE"
	activeGroups   = "status = 'active' AND is_deleted = FALSE"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetActiveProducts retrieves every active, non-deleted product ordered
// by id
func (s *Store) GetActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE "+activeProducts+" ORDER BY id")
	return products, err
}

// GetProductsByIDs retrieves non-deleted products by id set
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?) AND "+notDeleted, ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetActiveAgentGroups retrieves every active, non-deleted agent group
// ordered by id
func (s *Store) GetActiveAgentGroups(ctx context.Context) ([]models.AgentGroup, error) {
	var groups []models.AgentGroup
	err := s.db.SelectContext(ctx, &groups,
		"SELECT * FROM agent_groups WHERE "+activeGroups+" ORDER BY id")
	return groups, err
}

// GetAgentGroupsByIDs retrieves non-deleted agent groups by id set
func (s *Store) GetAgentGroupsByIDs(ctx context.Context, ids []int64) ([]models.AgentGroup, error) {
	if len(ids) == 0 {
		return []models.AgentGroup{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM agent_groups WHERE id IN (?) AND "+notDeleted, ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var groups []models.AgentGroup
	err = s.db.SelectContext(ctx, &groups, query, args...)
	return groups, err
}
