package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ergowatches/served/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOutput persists emitted events to per-topic tables and can bulk
// load the menu catalog for downstream joins.
type PostgresOutput struct {
	pool *pgxpool.Pool
}

func NewPostgresOutput(config *models.DatabaseConfig) (*PostgresOutput, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.User, config.Password, config.Host, config.Port, config.DBName, config.SSLMode,
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	p := &PostgresOutput{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

var eventTables = []string{
	"table_seated",
	"order_placed",
	"split_updated",
	"bill_settled",
	"menu_rotation",
}

func (p *PostgresOutput) ensureSchema(ctx context.Context) error {
	for _, table := range eventTables {
		query := fmt.Sprintf(`
            CREATE TABLE IF NOT EXISTS %s (
                id BIGSERIAL PRIMARY KEY,
                event_time TIMESTAMPTZ NOT NULL,
                session_id TEXT,
                table_id TEXT,
                payload JSONB NOT NULL
            )
        `, table)
		if _, err := p.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	menuQuery := `
        CREATE TABLE IF NOT EXISTS menu_items (
            id TEXT PRIMARY KEY,
            category_id TEXT NOT NULL,
            name TEXT NOT NULL,
            description TEXT,
            price NUMERIC(10,2) NOT NULL,
            allergens TEXT[]
        )
    `
	if _, err := p.pool.Exec(ctx, menuQuery); err != nil {
		return fmt.Errorf("failed to create table menu_items: %w", err)
	}
	return nil
}

// topicToTable maps "bill_settled_events" to "bill_settled".
func topicToTable(topic string) string {
	return strings.TrimSuffix(topic, "_events")
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	eventTime := time.Now()
	if ts, ok := event["timestamp"].(float64); ok {
		eventTime = time.Unix(int64(ts), 0)
	}
	sessionID, _ := event["sessionId"].(string)
	tableID, _ := event["tableId"].(string)

	table := topicToTable(topic)
	query := fmt.Sprintf(
		"INSERT INTO %s (event_time, session_id, table_id, payload) VALUES ($1, $2, $3, $4)",
		table,
	)
	_, err := p.pool.Exec(context.Background(), query, eventTime, sessionID, tableID, msg)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// BulkInsertMenuItems loads the catalog into menu_items via COPY. The table
// is truncated first so repeated runs stay idempotent.
func (p *PostgresOutput) BulkInsertMenuItems(ctx context.Context, catalog *models.Catalog, locale string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE menu_items"); err != nil {
		return err
	}

	items := catalog.Items
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{"id", "category_id", "name", "description", "price", "allergens"},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			item := &items[i]
			return []interface{}{
				item.ID,
				item.CategoryID,
				item.Name.Resolve(locale),
				item.Description.Resolve(locale),
				item.Price,
				item.Allergens,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy menu items: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *PostgresOutput) Close() error {
	p.pool.Close()
	return nil
}
