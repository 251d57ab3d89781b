package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"media-etl/models"
	"media-etl/utils"
)

const (
	tableName = "user_interactions"
	batchSize = 100
)

// columns is the fixed insert column list, matching the table definition.
var columns = []string{
	"interaction_id", "user_id", "session_id", "timestamp", "page_url",
	"action", "device_type", "referrer", "event_date", "event_time",
	"event_hour", "event_day", "event_month", "event_year", "event_dayofweek",
	"is_weekend", "content_category", "article_id", "referrer_category",
	"time_spent_seconds", "scroll_depth",
}

// PostgresWriter persists enriched interactions to PostgreSQL.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection to PostgreSQL and verifies it with a
// ping. Connectivity errors are fatal to the caller; there is no retry.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	logger.Info("[postgres] Connected to PostgreSQL database")
	return &PostgresWriter{db: db, logger: logger}, nil
}

// EnsureSchema creates the partitioned user_interactions table and its
// secondary indexes if they do not exist. Safe to call on every run.
func (pw *PostgresWriter) EnsureSchema() error {
	pw.logger.Info("[postgres] Creating database schema if not exists")

	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS user_interactions (
			interaction_id     VARCHAR(255) NOT NULL,
			user_id            VARCHAR(255) NOT NULL,
			session_id         VARCHAR(255) NOT NULL,
			timestamp          TIMESTAMP    NOT NULL,
			page_url           TEXT         NOT NULL,
			action             VARCHAR(50)  NOT NULL,
			device_type        VARCHAR(50),
			referrer           TEXT,
			event_date         DATE         NOT NULL,
			event_time         TIME         NOT NULL,
			event_hour         TEXT,
			event_day          TEXT,
			event_month        TEXT,
			event_year         TEXT,
			event_dayofweek    TEXT,
			is_weekend         BOOLEAN,
			content_category   VARCHAR(100),
			article_id         VARCHAR(100),
			referrer_category  VARCHAR(50),
			time_spent_seconds TEXT,
			scroll_depth       TEXT,
			PRIMARY KEY (interaction_id, event_date)
		) PARTITION BY RANGE (event_date);

		CREATE INDEX IF NOT EXISTS idx_user_interactions_user_id          ON user_interactions(user_id);
		CREATE INDEX IF NOT EXISTS idx_user_interactions_event_date       ON user_interactions(event_date);
		CREATE INDEX IF NOT EXISTS idx_user_interactions_content_category ON user_interactions(content_category);
		CREATE INDEX IF NOT EXISTS idx_user_interactions_article_id       ON user_interactions(article_id);
	`)
	if err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}

	return nil
}

// Write loads interactions in batches inside a single transaction.
// Partitions covering the data are ensured first; duplicate rows on
// (interaction_id, event_date) are silently skipped. Any error rolls the
// whole load back — there is no partial commit of earlier batches.
func (pw *PostgresWriter) Write(interactions []*models.Interaction) (models.InsertSummary, error) {
	var summary models.InsertSummary
	if len(interactions) == 0 {
		pw.logger.Warn("[postgres] No data to load")
		return summary, nil
	}

	pw.logger.Info("[postgres] Starting data load into %s table", tableName)

	if err := pw.ensurePartitions(interactions); err != nil {
		return summary, err
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return summary, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	for i := 0; i < len(interactions); i += batchSize {
		end := i + batchSize
		if end > len(interactions) {
			end = len(interactions)
		}
		n, err := insertBatch(tx, interactions[i:end])
		if err != nil {
			return summary, fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("postgres: commit: %w", err)
	}

	summary.Inserted = int(inserted)
	summary.Skipped = len(interactions) - summary.Inserted
	pw.logger.Info("[postgres] Successfully loaded %d new records (skipped %d duplicates)",
		summary.Inserted, summary.Skipped)
	return summary, nil
}

// ensurePartitions creates a monthly partition for every distinct month in
// the data being loaded, prior to any insert attempt.
func (pw *PostgresWriter) ensurePartitions(interactions []*models.Interaction) error {
	for _, month := range coveredMonths(interactions) {
		name, from, to := partitionFor(month)

		var exists bool
		err := pw.db.QueryRow(
			`SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = $1)`, name,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("postgres: check partition %s: %w", name, err)
		}
		if exists {
			continue
		}

		pw.logger.Info("[postgres] Creating partition %s for [%s, %s)",
			name, from.Format("2006-01-02"), to.Format("2006-01-02"))

		_, err = pw.db.Exec(fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES FROM ('%s') TO ('%s')`,
			name, tableName, from.Format("2006-01-02"), to.Format("2006-01-02"),
		))
		if err != nil {
			return fmt.Errorf("postgres: create partition %s: %w", name, err)
		}
	}
	return nil
}

// partitionFor maps the first-of-month date to its covering partition name
// and date range [from, to).
func partitionFor(month time.Time) (name string, from, to time.Time) {
	from = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0)
	name = fmt.Sprintf("%s_%04d_%02d", tableName, from.Year(), int(from.Month()))
	return name, from, to
}

// coveredMonths returns the distinct first-of-month dates of all event
// dates, in ascending order.
func coveredMonths(interactions []*models.Interaction) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, in := range interactions {
		m := time.Date(in.EventDate.Year(), in.EventDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		seen[m] = struct{}{}
	}

	months := make([]time.Time, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}

func insertBatch(tx *sql.Tx, batch []*models.Interaction) (int64, error) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(columns))

	for idx, in := range batch {
		placeholders := make([]string, len(columns))
		for c := range columns {
			placeholders[c] = fmt.Sprintf("$%d", idx*len(columns)+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			in.InteractionID, in.UserID, in.SessionID, in.Timestamp, in.PageURL,
			in.Action, in.DeviceType, in.Referrer, in.EventDate, in.EventTime,
			in.EventHour, in.EventDay, in.EventMonth, in.EventYear, in.EventDayOfWeek,
			in.IsWeekend, in.ContentCategory, in.ArticleID, in.ReferrerCategory,
			in.TimeSpentSeconds, in.ScrollDepth)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES %s
		ON CONFLICT (interaction_id, event_date) DO NOTHING
	`, tableName, strings.Join(columns, ", "), strings.Join(valueStrings, ","))

	res, err := tx.Exec(query, valueArgs...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close releases the database handle.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
