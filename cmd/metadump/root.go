package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/koustreak/metadump/internal/app"
	"github.com/koustreak/metadump/internal/config"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
	"github.com/koustreak/metadump/internal/filestore"
	"github.com/koustreak/metadump/internal/filestore/local"
	"github.com/koustreak/metadump/internal/filestore/minio"
	"github.com/koustreak/metadump/internal/logger"
	"github.com/koustreak/metadump/internal/prompt"
	"github.com/spf13/cobra"
)

// importHint follows every successful dump.
const importHint = "Import it into the SQL Wizard assistant (https://chat.openai.com/g/g-b6NBRSd47-sql-wizard) to start generating queries."

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type flags struct {
	engine         string
	host           string
	port           int
	user           string
	password       string
	database       string
	sslmode        string
	connectTimeout time.Duration

	output     string
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	uploadBucket    string
	uploadEndpoint  string
	uploadAccessKey string
	uploadSecretKey string
	uploadSSL       bool
}

// newRootCmd builds the metadump command. A nil connectors map selects
// the real engine adapters.
func newRootCmd(s streams, connectors map[database.Engine]database.Connector) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "metadump",
		Short: "Dump a database's table and column catalog to metadata.json",
		Long: `metadump

Connects to a MySQL, Postgres or SQL Server database, reads table, column
and constraint metadata from its system catalog and writes it as a JSON
array. Parameters missing from flags, METADUMP_* variables and the config
file are prompted for.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return report(newLogger(&f, nil, s.err), errs.Wrap(errs.ErrKindInvalidInput, "invalid arguments", err))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &f, s, connectors)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.engine, "engine", "e", "", "database engine: mysql, postgres or sqlserver")
	fl.StringVarP(&f.host, "host", "H", "", "database host (default: localhost)")
	fl.IntVarP(&f.port, "port", "P", 0, "database port (default: engine's well-known port)")
	fl.StringVarP(&f.user, "user", "u", "", "database user")
	fl.StringVarP(&f.password, "password", "p", "", "database password")
	fl.StringVarP(&f.database, "database", "d", "", "database name")
	fl.StringVar(&f.sslmode, "sslmode", "", "postgres sslmode (default: disable)")
	fl.DurationVar(&f.connectTimeout, "connect-timeout", 0, "connection timeout (default: 10s)")
	fl.StringVarP(&f.output, "output", "o", "", "output file (default: metadata.json)")
	fl.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	fl.StringVar(&f.envFile, "env-file", ".env", "path to a .env file")
	fl.StringVarP(&f.logLevel, "log-level", "l", "", "log level: debug, info, warn, error (default: info)")
	fl.StringVar(&f.logFormat, "log-format", "", "log format: console or json (default: console)")
	fl.StringVar(&f.uploadBucket, "upload-bucket", "", "also upload the dump to this MinIO/S3 bucket")
	fl.StringVar(&f.uploadEndpoint, "upload-endpoint", "", "MinIO/S3 endpoint host:port")
	fl.StringVar(&f.uploadAccessKey, "upload-access-key", "", "MinIO/S3 access key")
	fl.StringVar(&f.uploadSecretKey, "upload-secret-key", "", "MinIO/S3 secret key")
	fl.BoolVar(&f.uploadSSL, "upload-ssl", false, "use TLS for the upload")

	// Errors are silenced above, so parse failures are reported here.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return report(newLogger(&f, nil, s.err), errs.Wrap(errs.ErrKindInvalidInput, "invalid flags", err))
	})

	return cmd
}

func run(cmd *cobra.Command, f *flags, s streams, connectors map[database.Engine]database.Connector) error {
	ctx := cmd.Context()

	file, err := config.LoadFile(f.configPath)
	log := newLogger(f, file, s.err)
	if err != nil {
		return report(log, err)
	}

	if err := config.LoadDotEnv(f.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return report(log, err)
	}

	known, err := knownParams(cmd, f, file)
	if err != nil {
		return report(log, err)
	}

	output := firstNonEmpty(f.output, file.Output, filestore.DefaultName)
	sinks, err := sinkOpeners(f, file, output)
	if err != nil {
		return report(log, err)
	}

	runner := app.New(app.Options{
		Collector:  prompt.NewCollector(known, s.in, s.out),
		Connectors: connectors,
		Sinks:      sinks,
		Name:       filepath.Base(output),
		Logger:     log,
	})

	res, err := runner.Run(ctx)
	if err != nil {
		return report(log, err)
	}

	for _, loc := range res.Locations {
		fmt.Fprintf(s.out, "✅ Saved %d records to %s\n", res.Records, loc)
	}
	fmt.Fprintln(s.out, "🪄 "+importHint)
	return nil
}

func newLogger(f *flags, file *config.File, out io.Writer) *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = out
	if file != nil {
		cfg.Level = firstNonEmpty(f.logLevel, file.Log.Level, cfg.Level)
		cfg.Format = firstNonEmpty(f.logFormat, file.Log.Format, cfg.Format)
	} else {
		cfg.Level = firstNonEmpty(f.logLevel, cfg.Level)
		cfg.Format = firstNonEmpty(f.logFormat, cfg.Format)
	}
	return logger.New(cfg)
}

// knownParams layers config file < environment < flags.
func knownParams(cmd *cobra.Command, f *flags, file *config.File) (config.Partial, error) {
	fromFile, err := file.Partial()
	if err != nil {
		return config.Partial{}, err
	}
	fromEnv, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return config.Partial{}, err
	}

	var fromFlags config.Partial
	changed := cmd.Flags().Changed
	if changed("engine") {
		engine, err := database.ParseEngine(f.engine)
		if err != nil {
			return config.Partial{}, err
		}
		fromFlags.Engine = engine
	}
	if changed("port") && (f.port <= 0 || f.port > 65535) {
		return config.Partial{}, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid port %d", f.port))
	}
	if changed("password") {
		fromFlags.Password = &f.password
	}
	fromFlags.Host = f.host
	fromFlags.Port = f.port
	fromFlags.User = f.user
	fromFlags.Database = f.database
	fromFlags.SSLMode = f.sslmode
	fromFlags.ConnectTimeout = f.connectTimeout

	return fromFile.Merge(fromEnv).Merge(fromFlags), nil
}

func sinkOpeners(f *flags, file *config.File, output string) ([]app.SinkOpener, error) {
	dir := filepath.Dir(output)
	sinks := []app.SinkOpener{
		func(context.Context) (filestore.Sink, error) {
			return local.New(dir)
		},
	}

	upload := file.Upload.
		Merge(config.UploadFromEnv(os.LookupEnv)).
		Merge(config.Upload{
			Endpoint:  f.uploadEndpoint,
			AccessKey: f.uploadAccessKey,
			SecretKey: f.uploadSecretKey,
			Bucket:    f.uploadBucket,
			UseSSL:    f.uploadSSL,
		})
	store := upload.Store()
	if !store.Enabled() {
		return sinks, nil
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}

	return append(sinks, func(ctx context.Context) (filestore.Sink, error) {
		return minio.New(ctx, &store)
	}), nil
}

// report logs err once with its kind and hands it back to cobra.
func report(log *logger.Logger, err error) error {
	log.ErrorWith("metadump failed", err, map[string]interface{}{"kind": errs.KindOf(err).String()})
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
