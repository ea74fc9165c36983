// Management Console
package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/regorov/pixcc"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

// EnvVarPrefix holds environment variables prefix related to application.
const (
	EnvVarPrefix = "PIXCC_"
)

// analysisFlags are shared by start and analyze commands.
var analysisFlags = []cli.Flag{
	cli.IntFlag{
		Name:   "top, k",
		Value:  pixcc.DefaultTopK,
		Usage:  "amount of most prevalent colors to report (e.g. 10 or 25)",
		EnvVar: EnvVarPrefix + "TOP",
	},
	cli.StringFlag{
		Name:   "mode, m",
		Value:  "full",
		Usage:  "rendering mode: full (original, quantized, white) or metrics (original only)",
		EnvVar: EnvVarPrefix + "MODE",
	},
	cli.StringFlag{
		Name:   "counter",
		Value:  "sort",
		Usage:  "distinct color counter: sort or map",
		EnvVar: EnvVarPrefix + "COUNTER",
	},
	cli.StringFlag{
		Name:   "images",
		Usage:  "directory to save rendered PNG images to, images are not saved if empty",
		EnvVar: EnvVarPrefix + "IMAGES",
	},
	cli.StringFlag{
		Name:   "compression",
		Value:  "default",
		Usage:  "rendered PNG compression: default, none, speed or best",
		EnvVar: EnvVarPrefix + "COMPRESSION",
	},
	cli.IntFlag{
		Name:   "max-pixels",
		Value:  pixcc.DefaultMaxPixels,
		Usage:  "maximum image area in pixels, checked before decoding, 0 disables the limit",
		EnvVar: EnvVarPrefix + "MAX_PIXELS",
	},
	cli.IntFlag{
		Name:   "max-size-mb",
		Value:  pixcc.DefaultMaxSizeMB,
		Usage:  "maximum image size in megabytes, 0 disables the limit",
		EnvVar: EnvVarPrefix + "MAX_SIZE_MB",
	},
}

func main() {

	app := cli.NewApp()
	app.Name = "pixcc"
	app.Usage = "image pixel color counter"
	app.Version = BuildNumber
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:   "debug, d",
			Usage:  "debug mode activation",
			EnvVar: EnvVarPrefix + "DEBUG",
		},
		cli.StringFlag{
			Name:   "pl",
			Usage:  "pprof HTTP listener",
			EnvVar: EnvVarPrefix + "PPROF_LISTENER",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:    "start",
			Aliases: []string{"s"},
			Usage:   "start batch processing of images listed in input file",

			Action: start,
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:   "dworkers, dw",
					Value:  runtime.NumCPU(),
					Usage:  "amount of parallel download goroutines",
					EnvVar: EnvVarPrefix + "DWORKERS",
				},
				cli.IntFlag{
					Name:   "pworkers, pw",
					Value:  runtime.NumCPU(),
					Usage:  "amount of parallel image processing goroutines",
					EnvVar: EnvVarPrefix + "PWORKERS",
				},
				cli.IntFlag{
					Name:   "conns",
					Value:  pixcc.DefaultMaxConnsPerHost,
					Usage:  "maximum parallel http connections per host",
					EnvVar: EnvVarPrefix + "CONNS",
				},
				cli.DurationFlag{
					Name:   "timeout",
					Value:  pixcc.DefaultReadTimeout,
					Usage:  "maximum duration of image download",
					EnvVar: EnvVarPrefix + "TIMEOUT",
				},
				cli.StringFlag{
					Name:   "input, i",
					Value:  "input.txt",
					Usage:  "input file name, one image URL or file path per line",
					EnvVar: EnvVarPrefix + "INPUT",
				},
				cli.StringFlag{
					Name:   "output, o",
					Value:  "result.csv",
					Usage:  "output file name",
					EnvVar: EnvVarPrefix + "OUTPUT",
				},
			}, analysisFlags...),
		},
		{
			Name:      "analyze",
			Aliases:   []string{"a"},
			Usage:     "analyze single image file and print report",
			ArgsUsage: "<file>",

			Action: analyze,
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "print report as JSON",
				},
			}, analysisFlags...),
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// newLogger prepares logger format and level.
func newLogger(c *cli.Context) zerolog.Logger {

	zerolog.TimeFieldFormat = "20060102T150405.999Z07:00"
	zerolog.TimestampFieldName = "t"
	zerolog.MessageFieldName = "msg"
	zerolog.LevelFieldName = "lvl"

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if c.GlobalBool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// newAnalyzer builds Analyzer from command flags.
func newAnalyzer(c *cli.Context) (*pixcc.Analyzer, error) {

	mode, err := pixcc.ParseMode(c.String("mode"))
	if err != nil {
		return nil, err
	}

	counter, err := newCounter(c.String("counter"))
	if err != nil {
		return nil, err
	}

	compression, err := pixcc.ParseCompression(c.String("compression"))
	if err != nil {
		return nil, err
	}

	return pixcc.NewAnalyzer(pixcc.Options{
		TopK:        c.Int("top"),
		Mode:        mode,
		Counter:     counter,
		Compression: compression,
		MaxPixels:   c.Int("max-pixels"),
	}), nil
}

func newCounter(name string) (pixcc.Counter, error) {
	switch name {
	case "", "sort":
		return pixcc.NewCounterSort(), nil
	case "map":
		return pixcc.NewCounterMap(), nil
	}
	return nil, cli.NewExitError("unknown counter "+name, 2)
}

func start(c *cli.Context) error {

	logger := newLogger(c)

	logger.Info().Str("version", BuildNumber).Msg("application started")

	logger.Info().
		Bool("debug", c.GlobalBool("debug")).
		Str("input", c.String("input")).
		Str("output", c.String("output")).
		Str("images", c.String("images")).
		Str("mode", c.String("mode")).
		Int("top", c.Int("top")).
		Int("max-size-mb", c.Int("max-size-mb")).
		Int("max-pixels", c.Int("max-pixels")).
		Str("compression", c.String("compression")).
		Int("pworkers", c.Int("pworkers")).
		Int("dworkers", c.Int("dworkers")).
		Msg("launching params")

	// 1. runtime profiling activation.
	if c.GlobalIsSet("pl") {
		go func(listen string) {
			logger.Info().Str("pl", listen).Msg("start pprof http listener")
			if err := http.ListenAndServe(listen, nil); err != nil {
				logger.Error().Str("errmsg", err.Error()).Msg("pprof listener starting failed")
			}
		}(c.GlobalString("pl"))
	}

	// 2. SIGINT capture.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-stop
		logger.Info().Msg("signal SIGINT captured")
		cancel()
	}()

	// 3. Create objects.
	analyzer, err := newAnalyzer(c)
	if err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("invalid analysis params")
		return err
	}

	var store pixcc.ImageStore
	if dir := c.String("images"); dir != "" {
		if store, err = pixcc.NewDirImageStore(dir); err != nil {
			logger.Error().Str("errmsg", err.Error()).Msg("images directory creation failed")
			return err
		}
	}

	input := pixcc.NewPlainTextFileInput(logger)
	downloader := pixcc.NewMediaDownloader(logger, input)
	downloader.SetMaxSize(c.Int("max-size-mb") * 1024 * 1024)
	downloader.SetMaxConnsPerHost(c.Int("conns"))
	downloader.SetReadTimeout(c.Duration("timeout"))
	output := pixcc.NewBufferedCSV(10)
	imgproc := pixcc.NewImageProcessor(logger, downloader, output, store, analyzer)

	if err := output.Open(c.String("output")); err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("output file open/create failed")
		return err
	}

	// 4. Start processes.
	downloader.Start(ctx, c.Int("dworkers"))

	if err := input.Start(ctx, c.String("input")); err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("input file open failed")
		_ = output.Close()
		return err
	}

	started := time.Now()
	logger.Info().Msg("processing started")
	imgproc.Start(ctx, c.Int("pworkers"))

	if err := output.Close(); err != nil {
		logger.Error().Str("errmsg", err.Error()).Msg("output file flush/close failed")
	}

	logger.Info().
		Int("processed", imgproc.Processed()).
		Int("failed", imgproc.Failed()).
		Str("dur", time.Since(started).String()).Msg("completed")
	return nil
}
