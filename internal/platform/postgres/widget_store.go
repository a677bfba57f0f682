package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/skeleton-api/internal/domain"
	"github.com/phrazzld/skeleton-api/internal/platform/logger"
	"github.com/phrazzld/skeleton-api/internal/store"
)

// PostgresWidgetStore implements the store.WidgetStore interface
// using a PostgreSQL database as the storage backend.
type PostgresWidgetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWidgetStore creates a new PostgreSQL implementation of the WidgetStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresWidgetStore(db store.DBTX, logger *slog.Logger) *PostgresWidgetStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWidgetStore{
		db:     db,
		logger: logger.With(slog.String("component", "widget_store")),
	}
}

// Ensure PostgresWidgetStore implements store.WidgetStore interface
var _ store.WidgetStore = (*PostgresWidgetStore)(nil)

// Create implements store.WidgetStore.Create.
func (s *PostgresWidgetStore) Create(ctx context.Context, widget *domain.Widget) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := widget.Validate(); err != nil {
		log.Debug("widget validation failed during create",
			slog.String("error", err.Error()),
			slog.String("widget_id", widget.ID.String()))
		return err
	}

	query := `
		INSERT INTO widgets (id, name, description, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		widget.ID,
		widget.Name,
		widget.Description,
		widget.Quantity,
		widget.CreatedAt,
		widget.UpdatedAt,
	)
	if IsUniqueViolation(err) {
		log.Warn("widget already exists", slog.String("widget_id", widget.ID.String()))
		return store.NewStoreError("widget", "create", "duplicate widget id", MapError(err))
	}
	if err != nil {
		log.Error("failed to create widget",
			slog.String("error", err.Error()),
			slog.String("widget_id", widget.ID.String()))
		return store.NewStoreError("widget", "create", "insert failed", MapError(err))
	}

	log.Info("widget created successfully", slog.String("widget_id", widget.ID.String()))
	return nil
}

// GetByID implements store.WidgetStore.GetByID.
func (s *PostgresWidgetStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Widget, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description, quantity, created_at, updated_at
		FROM widgets
		WHERE id = $1
	`

	var w domain.Widget
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID,
		&w.Name,
		&w.Description,
		&w.Quantity,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("widget not found", slog.String("widget_id", id.String()))
			return nil, store.NewNotFoundError("widget", id.String())
		}
		log.Error("failed to get widget by ID",
			slog.String("error", err.Error()),
			slog.String("widget_id", id.String()))
		return nil, store.NewStoreError("widget", "get", "query failed", MapError(err))
	}

	return &w, nil
}

// Count implements store.WidgetStore.Count.
func (s *PostgresWidgetStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM widgets`).Scan(&n); err != nil {
		return 0, store.NewStoreError("widget", "count", "query failed", MapError(err))
	}
	return n, nil
}

// List implements store.WidgetStore.List.
func (s *PostgresWidgetStore) List(ctx context.Context, offset, limit int) ([]*domain.Widget, error) {
	query := `
		SELECT id, name, description, quantity, created_at, updated_at
		FROM widgets
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, store.NewStoreError("widget", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	widgets := make([]*domain.Widget, 0, limit)
	for rows.Next() {
		var w domain.Widget
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Quantity, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, store.NewStoreError("widget", "list", "scan failed", err)
		}
		widgets = append(widgets, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("widget", "list", "iteration failed", err)
	}

	return widgets, nil
}
