package db

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"

	"vdi-cost/core/catalog"
	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the PostgreSQL-backed catalog and scenario store
type Store struct {
	db *sql.DB
}

// NewStore opens the database, verifies connectivity, and applies the
// schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Storage("failed to open database", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Storage("failed to ping database", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema, err := migrationsFS.ReadFile("migrations/001_schema.sql")
	if err != nil {
		return errors.Internal("failed to read schema", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return errors.Storage("failed to apply schema", err)
	}
	return nil
}

// Lookup implements catalog.Catalog
func (s *Store) Lookup(ctx context.Context, key catalog.Key) (*catalog.Entry, error) {
	query := `
		SELECT unit_price, unit_of_measure, service_name, product_name, meter_name, fetched_at
		FROM catalog_prices
		WHERE sku = $1 AND region = $2 AND term = $3 AND pricing_model = $4
	`

	entry := catalog.Entry{Key: key}
	err := s.db.QueryRowContext(ctx, query, key.SKU, key.Region, key.Term, string(key.Model)).Scan(
		&entry.UnitPrice, &entry.UnitOfMeasure,
		&entry.ServiceName, &entry.ProductName, &entry.MeterName,
		&entry.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Storage("price lookup failed", err)
	}
	return &entry, nil
}

// Upsert implements catalog.Writer. An existing key keeps its identity
// and row; only the price and descriptive fields are overwritten.
func (s *Store) Upsert(ctx context.Context, entry catalog.Entry) error {
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}

	query := `
		INSERT INTO catalog_prices (
			sku, region, term, pricing_model,
			unit_price, unit_of_measure, service_name, product_name, meter_name, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sku, region, term, pricing_model) DO UPDATE SET
			unit_price = EXCLUDED.unit_price,
			unit_of_measure = EXCLUDED.unit_of_measure,
			service_name = EXCLUDED.service_name,
			product_name = EXCLUDED.product_name,
			meter_name = EXCLUDED.meter_name,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.Key.SKU, entry.Key.Region, entry.Key.Term, string(entry.Key.Model),
		entry.UnitPrice, entry.UnitOfMeasure,
		entry.ServiceName, entry.ProductName, entry.MeterName, entry.FetchedAt,
	)
	if err != nil {
		return errors.Storage("price upsert failed", err)
	}
	return nil
}

// PricesByRegion returns all catalog entries for a region
func (s *Store) PricesByRegion(ctx context.Context, region string) ([]catalog.Entry, error) {
	query := `
		SELECT sku, region, term, pricing_model,
			unit_price, unit_of_measure, service_name, product_name, meter_name, fetched_at
		FROM catalog_prices
		WHERE region = $1
		ORDER BY sku, term, pricing_model
	`

	rows, err := s.db.QueryContext(ctx, query, region)
	if err != nil {
		return nil, errors.Storage("price listing failed", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var entry catalog.Entry
		var model string
		err := rows.Scan(
			&entry.Key.SKU, &entry.Key.Region, &entry.Key.Term, &model,
			&entry.UnitPrice, &entry.UnitOfMeasure,
			&entry.ServiceName, &entry.ProductName, &entry.MeterName,
			&entry.FetchedAt,
		)
		if err != nil {
			return nil, errors.Storage("price listing scan failed", err)
		}
		entry.Key.Model = catalog.PricingModel(model)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("price listing failed", err)
	}
	return entries, nil
}

// CreateScenario implements ScenarioStore
func (s *Store) CreateScenario(ctx context.Context, sc *types.Scenario) error {
	input, result, profit, err := marshalScenario(sc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scenarios (name, input, result, profit)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query, sc.Name, input, result, profit).
		Scan(&sc.ID, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return errors.Storage("scenario insert failed", err)
	}
	return nil
}

// GetScenario implements ScenarioStore
func (s *Store) GetScenario(ctx context.Context, id int64) (*types.Scenario, error) {
	query := `
		SELECT id, name, input, result, profit, created_at, updated_at
		FROM scenarios
		WHERE id = $1
	`

	sc, err := scanScenario(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("scenario", id)
	}
	if err != nil {
		return nil, errors.Storage("scenario lookup failed", err)
	}
	return sc, nil
}

// ListScenarios implements ScenarioStore
func (s *Store) ListScenarios(ctx context.Context) ([]*types.Scenario, error) {
	query := `
		SELECT id, name, input, result, profit, created_at, updated_at
		FROM scenarios
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Storage("scenario listing failed", err)
	}
	defer rows.Close()

	var scenarios []*types.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, errors.Storage("scenario listing scan failed", err)
		}
		scenarios = append(scenarios, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("scenario listing failed", err)
	}
	return scenarios, nil
}

// UpdateScenario implements ScenarioStore
func (s *Store) UpdateScenario(ctx context.Context, sc *types.Scenario) error {
	input, result, profit, err := marshalScenario(sc)
	if err != nil {
		return err
	}

	query := `
		UPDATE scenarios
		SET name = $1, input = $2, result = $3, profit = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query, sc.Name, input, result, profit, sc.ID).
		Scan(&sc.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("scenario", sc.ID)
	}
	if err != nil {
		return errors.Storage("scenario update failed", err)
	}
	return nil
}

// DeleteScenario implements ScenarioStore
func (s *Store) DeleteScenario(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return errors.Storage("scenario delete failed", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Storage("scenario delete failed", err)
	}
	if affected == 0 {
		return errors.NotFound("scenario", id)
	}
	return nil
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func marshalScenario(sc *types.Scenario) (input, result, profit []byte, err error) {
	input, err = json.Marshal(sc.Input)
	if err != nil {
		return nil, nil, nil, errors.Internal("scenario input marshal failed", err)
	}
	if sc.Result != nil {
		result, err = json.Marshal(sc.Result)
		if err != nil {
			return nil, nil, nil, errors.Internal("scenario result marshal failed", err)
		}
	}
	if sc.Profit != nil {
		profit, err = json.Marshal(sc.Profit)
		if err != nil {
			return nil, nil, nil, errors.Internal("scenario profit marshal failed", err)
		}
	}
	return input, result, profit, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScenario(row rowScanner) (*types.Scenario, error) {
	var sc types.Scenario
	var input, resultBuf, profitBuf []byte

	err := row.Scan(&sc.ID, &sc.Name, &input, &resultBuf, &profitBuf, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(input, &sc.Input); err != nil {
		return nil, err
	}
	if len(resultBuf) > 0 {
		sc.Result = &types.EstimateResult{}
		if err := json.Unmarshal(resultBuf, sc.Result); err != nil {
			return nil, err
		}
	}
	if len(profitBuf) > 0 {
		sc.Profit = &types.ProfitInputs{}
		if err := json.Unmarshal(profitBuf, sc.Profit); err != nil {
			return nil, err
		}
	}
	return &sc, nil
}
