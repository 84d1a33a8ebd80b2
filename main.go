package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"climagraph/internal/api"
	apihttp "climagraph/internal/api/interfaces/http"
	"climagraph/internal/audit"
	"climagraph/internal/charts"
	"climagraph/internal/config"
	"climagraph/internal/eventing"
	"climagraph/internal/ingest"
	"climagraph/internal/observability/metrics"
	"climagraph/internal/sensor/application"
	sensor "climagraph/internal/sensor/domain"
	"climagraph/internal/sensor/infrastructure/memory"
	sensorpg "climagraph/internal/sensor/infrastructure/postgres"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "climagraph",
	Short: "Environmental sensor time-series pipeline",
	Long: `climagraph ingests environmental logger exports (xlsx, csv, HOBO),
maps their columns onto a canonical schema, normalizes the time series and
renders derived-metric charts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP shell API",
	RunE:  runServe,
}

var renderCmd = &cobra.Command{
	Use:   "render [file...]",
	Short: "Render every chart type for the given data files headlessly",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRender,
}

var renderOutDir string

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "", "output directory (defaults to configured export dir)")
	rootCmd.AddCommand(serveCmd, renderCmd)
}

type app struct {
	cfg      config.Config
	cache    *ingest.Cache
	sensors  *application.Service
	service  *api.Service
	recorder *audit.Recorder
	db       *sql.DB
}

func buildApp(cfg config.Config) (*app, error) {
	metrics.Init()

	parserOpts := []ingest.Option{}
	if cfg.MaxRows > 0 {
		parserOpts = append(parserOpts, ingest.WithMaxRows(cfg.MaxRows))
	}
	if cfg.MaxFileBytes > 0 {
		parserOpts = append(parserOpts, ingest.WithMaxBytes(cfg.MaxFileBytes))
	}
	cache := ingest.NewCache(ingest.NewParser(parserOpts...), logger.Named("ingest"))

	bus := eventing.NewInMemoryBus(logger.Named("events"))

	var (
		repo sensor.Repository = memory.NewSensorRepository()
		db   *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		repo = sensorpg.NewSensorRepository(db)
	}

	sensors, err := application.NewService(repo, cache, bus,
		application.WithLogger(logger.Named("sensors")))
	if err != nil {
		return nil, err
	}

	engineOpts := []charts.EngineOption{charts.WithLogger(logger.Named("charts"))}
	if len(cfg.ExteriorMarkers) > 0 {
		engineOpts = append(engineOpts, charts.WithExteriorMarkers(cfg.ExteriorMarkers))
	}
	engine := charts.NewEngine(engineOpts...)

	service, err := api.NewService(sensors, engine, charts.NewExporter(cfg.ExportDir), bus, logger.Named("api"))
	if err != nil {
		return nil, err
	}

	store, err := audit.NewFileStore(cfg.HistoryFile)
	if err != nil {
		return nil, err
	}
	recorder := audit.NewRecorder(store, logger.Named("audit"))
	recorder.Subscribe(bus)

	return &app{
		cfg:      cfg,
		cache:    cache,
		sensors:  sensors,
		service:  service,
		recorder: recorder,
		db:       db,
	}, nil
}

func (a *app) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	handler, err := apihttp.NewHandler(a.service, a.recorder, logger.Named("http"))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	return http.ListenAndServe(cfg.HTTPAddr, mux)
}

// runRender registers one sensor per input file, binds and infers, then
// renders the full catalog into the output directory. A failing chart type
// or file is reported and skipped, like the API's generate-all.
func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if renderOutDir != "" {
		cfg.ExportDir = renderOutDir
	}
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	var ids []string
	for _, path := range args {
		name := baseName(path)
		id, fault := a.service.AddSensor(ctx, api.AddSensorRequest{Name: name})
		if fault != nil {
			logger.Warn("skipping file", zap.String("path", path), zap.String("fault", fault.Error()))
			continue
		}
		res, fault := a.service.BindFile(ctx, api.BindFileRequest{ID: id, Path: path})
		if fault != nil {
			logger.Warn("skipping file", zap.String("path", path), zap.String("fault", fault.Error()))
			continue
		}
		if res.NeedsMapping {
			logger.Warn("skipping file: columns could not be inferred", zap.String("path", path))
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no usable input files")
	}

	outcomes, fault := a.service.GenerateAllGraphs(ctx, api.GenerateAllGraphsRequest{SensorIDs: ids})
	if fault != nil {
		return fmt.Errorf("%s", fault.Error())
	}

	var rendered int
	for _, outcome := range outcomes {
		if outcome.Fault != nil {
			logger.Warn("chart type failed",
				zap.String("type", outcome.TypeID),
				zap.String("fault", outcome.Fault.Error()))
			continue
		}
		path, fault := a.service.ExportImage(ctx, api.ExportImageRequest{
			PNG:      outcome.Graph.PNG,
			Filename: outcome.TypeID,
			Format:   "png",
			Title:    outcome.Graph.Title,
		})
		if fault != nil {
			logger.Warn("export failed",
				zap.String("type", outcome.TypeID),
				zap.String("fault", fault.Error()))
			continue
		}
		logger.Info("chart written", zap.String("path", path))
		rendered++
	}
	logger.Info("render finished",
		zap.Int("charts", rendered),
		zap.Int("failed", len(outcomes)-rendered))
	return nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
