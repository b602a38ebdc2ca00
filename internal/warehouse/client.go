// Package warehouse provides write-only connectivity to the MS SQL Server
// reporting warehouse. The nightly snapshot job pushes per-work performance
// rows here; nothing in the request path reads from or writes to it.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/mesterwork/worksite-api/internal/config"
	"go.uber.org/zap"
)

const (
	// Default retry configuration for connection attempts
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	// Default health check timeout
	defaultHealthCheckTimeout = 5 * time.Second

	snapshotTable = "dbo.worksite_performance_snapshot"
)

// Snapshot is one per-work performance row as pushed to the warehouse.
// Expected values come from the tenant's plan; actuals are computed from
// the diary at snapshot time.
type Snapshot struct {
	TenantEmail           string
	WorkID                uuid.UUID
	WorkTitle             string
	WorkProgress          float64
	ExpectedProfitPercent float64
	OfferPrice            float64
	OwnCosts              float64
	ActualRevenue         float64
	ActualCost            float64
	ActualProfit          float64
	ProfitMargin          float64
	SnapshotDate          time.Time
}

// Client provides write-only access to the MS SQL Server reporting warehouse.
// It manages connection pooling and pushes performance snapshots.
type Client struct {
	db           *sql.DB
	config       *config.WarehouseConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the warehouse connection
type HealthStatus struct {
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	MaxOpen    int           `json:"max_open_connections"`
	Open       int           `json:"open_connections"`
	InUse      int           `json:"in_use"`
	Idle       int           `json:"idle"`
	WaitCount  int64         `json:"wait_count"`
	WaitTimeMs int64         `json:"wait_time_ms"`
}

// NewClient creates a new warehouse client with the given configuration.
// Returns nil if the warehouse is not enabled or not configured.
// The client establishes a connection pool with retry logic for transient failures.
func NewClient(cfg *config.WarehouseConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Warehouse connection disabled")
		return nil, nil
	}

	// Validate required configuration
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Warehouse enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	logger.Info("Initializing warehouse connection",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.ConnMaxLifetime),
		zap.Int("query_timeout_seconds", cfg.QueryTimeout),
	)

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	// Attempt connection with retry logic
	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		logger.Info("Attempting warehouse connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", defaultMaxRetries),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("Failed to open warehouse connection",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.Warn("Warehouse ping failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		logger.Info("Warehouse connection established successfully",
			zap.Int("attempts_taken", attempt),
		)

		return &Client{
			db:           db,
			config:       cfg,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to warehouse after %d attempts: %w", defaultMaxRetries, err)
}

// buildConnectionString constructs a SQL Server connection string from the config.
// URL format expected: host:port/database or host:port (uses default database)
func buildConnectionString(cfg *config.WarehouseConfig) (string, error) {
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433" // Default SQL Server port
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// Close gracefully closes the warehouse connection.
// Should be called during application shutdown.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing warehouse connection")

	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close warehouse connection", zap.Error(err))
		return fmt.Errorf("failed to close warehouse connection: %w", err)
	}

	c.logger.Info("Warehouse connection closed successfully")
	return nil
}

// HealthCheck performs a health check on the warehouse connection.
// Returns detailed status including connection pool statistics.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{
			Status: "disabled",
		}
	}

	start := time.Now()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency:    latency,
		MaxOpen:    stats.MaxOpenConnections,
		Open:       stats.OpenConnections,
		InUse:      stats.InUse,
		Idle:       stats.Idle,
		WaitCount:  stats.WaitCount,
		WaitTimeMs: stats.WaitDuration.Milliseconds(),
	}

	if err != nil {
		c.logger.Warn("Warehouse health check failed",
			zap.Error(err),
			zap.Duration("latency", latency),
		)
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}

	return status
}

// WriteSnapshots upserts one row per (work, snapshot date). Re-running the
// job on the same day overwrites that day's rows instead of duplicating
// them. Rows are written one by one inside a transaction; a single bad row
// aborts the whole batch so a partial day never lands in the warehouse.
func (c *Client) WriteSnapshots(ctx context.Context, snapshots []Snapshot) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("warehouse client not initialized")
	}
	if len(snapshots) == 0 {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	start := time.Now()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin warehouse transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt := fmt.Sprintf(`MERGE %s AS target
USING (SELECT @p1 AS tenant_email, @p2 AS work_id, @p3 AS snapshot_date) AS source
ON target.tenant_email = source.tenant_email
   AND target.work_id = source.work_id
   AND target.snapshot_date = source.snapshot_date
WHEN MATCHED THEN UPDATE SET
    work_title = @p4,
    work_progress = @p5,
    expected_profit_percent = @p6,
    offer_price = @p7,
    own_costs = @p8,
    actual_revenue = @p9,
    actual_cost = @p10,
    actual_profit = @p11,
    profit_margin = @p12,
    updated_at = SYSUTCDATETIME()
WHEN NOT MATCHED THEN INSERT
    (tenant_email, work_id, snapshot_date, work_title, work_progress,
     expected_profit_percent, offer_price, own_costs,
     actual_revenue, actual_cost, actual_profit, profit_margin, updated_at)
    VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11, @p12, SYSUTCDATETIME());`,
		snapshotTable)

	for i := range snapshots {
		s := &snapshots[i]
		_, err := tx.ExecContext(ctx, stmt,
			s.TenantEmail,
			s.WorkID.String(),
			s.SnapshotDate.UTC().Format("2006-01-02"),
			s.WorkTitle,
			s.WorkProgress,
			s.ExpectedProfitPercent,
			s.OfferPrice,
			s.OwnCosts,
			s.ActualRevenue,
			s.ActualCost,
			s.ActualProfit,
			s.ProfitMargin,
		)
		if err != nil {
			c.logger.Error("Warehouse snapshot write failed",
				zap.String("work_id", s.WorkID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("failed to write snapshot for work %s: %w", s.WorkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit warehouse snapshots: %w", err)
	}

	c.logger.Info("Warehouse snapshots written",
		zap.Int("rows", len(snapshots)),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// IsEnabled returns true if the client is initialized and ready for writes.
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}
