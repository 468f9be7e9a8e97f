// Package app runs one metadata dump: collect parameters, connect,
// introspect, write.
package app

import (
	"context"
	"fmt"

	"github.com/koustreak/metadump/internal/catalog"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/database/mysql"
	"github.com/koustreak/metadump/internal/database/postgres"
	"github.com/koustreak/metadump/internal/database/sqlserver"
	"github.com/koustreak/metadump/internal/errs"
	"github.com/koustreak/metadump/internal/filestore"
	"github.com/koustreak/metadump/internal/logger"
)

// Collector produces a complete connection configuration.
type Collector interface {
	Collect(ctx context.Context) (*database.Config, error)
}

// SinkOpener opens an output destination. Openers run only after the
// catalog has been read, so a failed connection never touches a sink.
type SinkOpener func(ctx context.Context) (filestore.Sink, error)

// State is the phase a Runner is in.
type State int

const (
	AwaitingConfig State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "awaiting_config"
}

// Connectors returns the adapters for every supported engine.
func Connectors() map[database.Engine]database.Connector {
	return map[database.Engine]database.Connector{
		database.EngineMySQL:     mysql.Connect,
		database.EnginePostgres:  postgres.Connect,
		database.EngineSQLServer: sqlserver.Connect,
	}
}

// Options configures a Runner.
type Options struct {
	Collector  Collector
	Connectors map[database.Engine]database.Connector

	// Sinks receive the dump in order; the local file comes first.
	Sinks []SinkOpener

	// Name is the document name, filestore.DefaultName when empty.
	Name string

	Logger *logger.Logger
}

// Result describes a finished dump.
type Result struct {
	Engine    database.Engine
	Records   int
	Locations []string
}

// Runner performs a single dump. It keeps nothing between runs.
type Runner struct {
	opts   Options
	state  State
	engine database.Engine
}

// New returns a Runner in the AwaitingConfig state.
func New(opts Options) *Runner {
	if opts.Connectors == nil {
		opts.Connectors = Connectors()
	}
	if opts.Name == "" {
		opts.Name = filestore.DefaultName
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Runner{opts: opts, state: AwaitingConfig}
}

// State reports the current phase and, while Running, the engine.
func (r *Runner) State() (State, database.Engine) {
	return r.state, r.engine
}

// Run collects the configuration, dumps the catalog and writes it to every
// sink. The first failure aborts the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.state, r.engine = AwaitingConfig, ""

	cfg, err := r.opts.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect configuration: %w", err)
	}

	connect, ok := r.opts.Connectors[cfg.Engine]
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database engine %q", cfg.Engine))
	}

	r.state, r.engine = Running, cfg.Engine

	log := r.opts.Logger.With().
		Str("engine", string(cfg.Engine)).
		Str("target", cfg.String()).
		Logger()
	ctx = log.WithContext(ctx)

	log.Debug("connecting")
	db, err := connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg, err)
	}
	defer func() {
		db.Close()
		log.Debug("connection closed")
	}()
	log.Info("connected")

	records, err := catalog.Introspect(ctx, db, cfg.Engine, cfg.Database)
	if err != nil {
		return nil, err
	}

	res := &Result{Engine: cfg.Engine, Records: len(records)}
	for _, open := range r.opts.Sinks {
		sink, err := open(ctx)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		if err := filestore.WriteRecords(ctx, sink, r.opts.Name, records); err != nil {
			return nil, err
		}

		loc := sink.Location(r.opts.Name)
		log.InfoWith("metadata written", map[string]interface{}{"location": loc, "records": len(records)})
		res.Locations = append(res.Locations, loc)
	}
	return res, nil
}
