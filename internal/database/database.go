// Package database contains the logic for establishing
// the connection to MongoDB.
//
// It handles:
//   - resolving the connection URI from config
//   - creating the mongo client and pinging the primary
//   - wiring a command monitor that logs slow commands through zerolog
//   - recording store segments on the request's New Relic transaction
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/natours/internal/config"
	loggerConfig "github.com/deppfellow/natours/internal/logger"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database wraps the mongo client, the application database and a logger.
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *zerolog.Logger
}

// DatabasePingTimeout defines the number of seconds to wait for a ping
// before considering the database "unreachable".
const DatabasePingTimeout = 10

// New connects to MongoDB with instrumentation.
//
// Behavior:
//   - Resolve the URI (password placeholder swapped for database.password)
//   - Attach the command monitor
//   - Connect, ping the primary, and return Database
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.Database.ConnectionURI()).
		SetConnectTimeout(cfg.Database.ConnectTimeout).
		SetMonitor(newCommandMonitor(logger, cfg, loggerService != nil && loggerService.GetApplication() != nil))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("database", cfg.Database.Name).Msg("DB connection successful!")

	return &Database{
		Client: client,
		DB:     client.Database(cfg.Database.Name),
		log:    logger,
	}, nil
}

// Ping checks that the primary is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting for in-use connections up to ctx's deadline.
func (db *Database) Close(ctx context.Context) error {
	db.log.Info().Msg("closing database connection")
	return db.Client.Disconnect(ctx)
}

// commandMonitor logs slow and failed commands and, when New Relic is on,
// records each command as a datastore segment of the caller's transaction.
type commandMonitor struct {
	logger    *zerolog.Logger
	threshold time.Duration
	logAll    bool
	tracing   bool

	mu       sync.Mutex
	segments map[int64]*newrelic.DatastoreSegment
}

func newCommandMonitor(logger *zerolog.Logger, cfg *config.Config, tracing bool) *event.CommandMonitor {
	m := &commandMonitor{
		logger:    logger,
		threshold: cfg.Observability.Logging.SlowQueryThreshold,
		logAll:    cfg.Primary.IsDevelopment(),
		tracing:   tracing,
		segments:  make(map[int64]*newrelic.DatastoreSegment),
	}

	return &event.CommandMonitor{
		Started:   m.started,
		Succeeded: m.succeeded,
		Failed:    m.failed,
	}
}

func (m *commandMonitor) started(ctx context.Context, evt *event.CommandStartedEvent) {
	if !m.tracing {
		return
	}

	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return
	}

	seg := &newrelic.DatastoreSegment{
		StartTime:    txn.StartSegmentNow(),
		Product:      newrelic.DatastoreMongoDB,
		Operation:    evt.CommandName,
		DatabaseName: evt.DatabaseName,
	}

	m.mu.Lock()
	m.segments[evt.RequestID] = seg
	m.mu.Unlock()
}

func (m *commandMonitor) succeeded(_ context.Context, evt *event.CommandSucceededEvent) {
	m.endSegment(evt.RequestID)

	slow := m.threshold > 0 && evt.Duration >= m.threshold
	if !slow && !m.logAll {
		return
	}

	logEvt := m.logger.Debug()
	if slow {
		logEvt = m.logger.Warn()
	}
	logEvt.
		Str("command", evt.CommandName).
		Str("database", evt.DatabaseName).
		Dur("duration", evt.Duration).
		Bool("slow", slow).
		Msg("mongo command")
}

func (m *commandMonitor) failed(_ context.Context, evt *event.CommandFailedEvent) {
	m.endSegment(evt.RequestID)

	m.logger.Warn().
		Str("command", evt.CommandName).
		Str("database", evt.DatabaseName).
		Dur("duration", evt.Duration).
		Str("failure", evt.Failure).
		Msg("mongo command failed")
}

func (m *commandMonitor) endSegment(requestID int64) {
	if !m.tracing {
		return
	}

	m.mu.Lock()
	seg, ok := m.segments[requestID]
	delete(m.segments, requestID)
	m.mu.Unlock()

	if ok {
		seg.End()
	}
}
