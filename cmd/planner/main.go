package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/demandplan/internal/config"
	"github.com/andresuchdata/demandplan/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Configure(cfg.Server.LogLevel, cfg.Server.LogFormat)

	if err := newApp(cfg).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("planner failed")
	}
}

func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:  "planner",
		Usage: "Forecast demand and derive inventory policy from sales extracts",
		Flags: storageFlags(cfg),
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Run the full forecast and inventory policy analysis",
				Flags:  append(inputFlags(), analysisFlags(cfg)...),
				Action: func(c *cli.Context) error { return runAnalyze(c, cfg) },
			},
			{
				Name:   "by-sku",
				Usage:  "Run an independent analysis per SKU",
				Flags:  append(inputFlags(), analysisFlags(cfg)...),
				Action: func(c *cli.Context) error { return runBySKU(c, cfg) },
			},
			{
				Name:  "backtest",
				Usage: "Compare every forecast method on the held-out tail of the series",
				Flags: append(inputFlags(), &cli.IntFlag{
					Name:  "holdout",
					Usage: "Number of trailing periods held out for scoring",
					Value: cfg.Planning.HoldoutPeriods,
				}),
				Action: func(c *cli.Context) error { return runBacktest(c, cfg) },
			},
			{
				Name:   "pareto",
				Usage:  "Classify SKUs into ABC classes by sales volume",
				Flags:  inputFlags(),
				Action: func(c *cli.Context) error { return runPareto(c, cfg) },
			},
		},
	}
}

func storageFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "storage-endpoint",
			Usage:   "S3-compatible endpoint for --source-prefix and --upload-key",
			Value:   cfg.Storage.Endpoint,
			EnvVars: []string{"STORAGE_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "storage-access-key",
			Value:   cfg.Storage.AccessKey,
			EnvVars: []string{"STORAGE_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "storage-secret-key",
			Value:   cfg.Storage.SecretKey,
			EnvVars: []string{"STORAGE_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "storage-bucket",
			Value:   cfg.Storage.Bucket,
			EnvVars: []string{"STORAGE_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "storage-region",
			Value:   cfg.Storage.Region,
			EnvVars: []string{"STORAGE_REGION"},
		},
		&cli.BoolFlag{
			Name:    "storage-use-ssl",
			Value:   cfg.Storage.UseSSL,
			EnvVars: []string{"STORAGE_USE_SSL"},
		},
		&cli.StringFlag{
			Name:  "storage-local-dir",
			Usage: "Use a local directory as the object store instead of S3",
		},
		&cli.StringFlag{
			Name:  "download-dir",
			Usage: "Where fetched input objects are written",
			Value: cfg.App.DataDir + "/tmp/inputs",
		},
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "sales",
			Usage:    "Sales observations (.csv or .xlsx)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "attributes",
			Usage: "Product attributes (.csv or .xlsx)",
		},
		&cli.StringFlag{
			Name:  "inventory",
			Usage: "Inventory levels (.csv or .xlsx)",
		},
		&cli.StringFlag{
			Name:  "source-prefix",
			Usage: "Fetch the input files from object storage under this prefix",
		},
		&cli.StringSliceFlag{
			Name:  "sku",
			Usage: "Restrict to these SKUs (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "category",
			Usage: "Restrict to these categories (repeatable)",
		},
		&cli.TimestampFlag{
			Name:   "from",
			Usage:  "Earliest observation date (inclusive)",
			Layout: "2006-01-02",
		},
		&cli.TimestampFlag{
			Name:   "to",
			Usage:  "Latest observation date (inclusive)",
			Layout: "2006-01-02",
		},
		&cli.BoolFlag{
			Name:  "clean-anomalies",
			Usage: "Replace outliers with the series mean before forecasting",
		},
	}
}

func analysisFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "horizon",
			Usage: "Number of monthly periods to forecast",
			Value: cfg.Planning.DefaultHorizon,
		},
		&cli.Float64Flag{
			Name:  "confidence",
			Usage: "Confidence level in percent for the forecast bands",
			Value: cfg.Planning.DefaultConfidence,
		},
		&cli.StringFlag{
			Name:  "method",
			Usage: "holt_winters, prophet, arima or linear_regression",
			Value: "holt_winters",
		},
		&cli.Float64Flag{
			Name:  "volatility",
			Usage: "Lead-time volatility multiplier",
		},
		&cli.BoolFlag{
			Name:  "lead-time-offset",
			Usage: "Shift forecast dates back by the lead time",
		},
		&cli.StringSliceFlag{
			Name:  "scenario",
			Usage: "Demand multiplier for a forecast month, as month:multiplier (repeatable)",
		},
		&cli.IntFlag{
			Name:  "holdout",
			Usage: "Number of trailing periods held out for backtesting",
			Value: cfg.Planning.HoldoutPeriods,
		},
		&cli.StringFlag{
			Name:  "export",
			Usage: "Write decision points as CSV to this path",
		},
		&cli.StringFlag{
			Name:  "upload-key",
			Usage: "Upload the CSV export to object storage under this key",
		},
	}
}
