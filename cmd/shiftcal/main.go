package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"shiftcal/internal/config"
	"shiftcal/internal/convert"
	"shiftcal/internal/ics"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/schedule"
	"shiftcal/internal/web"
)

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	configPath     string
	outputDir      string
	reminders      string
	include        string
	exclude        string
	includeSpecial bool
	mergeOut       string
	serve          bool
	watch          bool
	verbose        bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			appLog.Error("failed to load config", err, "config_path", flags.configPath)
			os.Exit(1)
		}
		appLog.Warn("could not write default config; using defaults", "config_path", flags.configPath, "error", err.Error())
	}
	applyFlags(conf, flags)

	level, ok := appLog.ParseLevel(conf.LogLevel)
	if !ok {
		appLog.Warn("unknown log level; using info", "log_level", conf.LogLevel)
	}
	if flags.verbose {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	appLog.Debug("effective config",
		"output_dir", conf.OutputDir,
		"timezone", conf.Timezone,
		"reminders", len(conf.Reminders),
		"include", len(conf.Include),
		"exclude", len(conf.Exclude),
		"include_special", conf.IncludeSpecial,
		"merge", flags.mergeOut,
		"serve", flags.serve,
		"watch", flags.watch,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, conf, flags, flag.Args()); err != nil {
		appLog.Error("shiftcal failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *config.Config, flags flagConfig, args []string) error {
	switch {
	case flags.mergeOut != "":
		if len(args) == 0 {
			return errors.New("merge needs at least one .ics input")
		}
		n, err := ics.MergeFiles(flags.mergeOut, args, conf.Timezone)
		if err != nil {
			return err
		}
		fmt.Printf("Merged %d events into %s\n", n, flags.mergeOut)
		return nil

	case flags.serve:
		return web.StartServer(ctx, conf)

	case flags.watch:
		inputs := args
		if len(inputs) == 0 {
			inputs = conf.Inputs
		}
		if len(inputs) == 0 {
			return errors.New("watch mode needs input files")
		}
		runner, err := schedule.New(conf.Schedule, func(context.Context) error {
			res, err := convert.Run(inputs, convertOptions(conf))
			if err != nil {
				return err
			}
			appLog.Info("calendar regenerated", "path", res.Path, "shift_count", len(res.Shifts))
			return nil
		})
		if err != nil {
			return err
		}
		return runner.Run(ctx)

	default:
		if len(args) == 0 {
			flag.Usage()
			return errors.New("no input files")
		}
		res, err := convert.Run(args, convertOptions(conf))
		if err != nil {
			return err
		}
		fmt.Println(res.Path)
		fmt.Printf("%d shifts spanning %d days\n", len(res.Shifts), res.Days())
		return nil
	}
}

func convertOptions(conf *config.Config) convert.Options {
	return convert.Options{
		OutputDir: conf.OutputDir,
		Reminders: ics.NewReminderSet(conf.Reminders...),
		Filter: convert.Filter{
			Include:        conf.Include,
			Exclude:        conf.Exclude,
			IncludeSpecial: conf.IncludeSpecial,
		},
		Location: conf.Location(),
	}
}

func applyFlags(conf *config.Config, flags flagConfig) {
	if flags.outputDir != "" {
		conf.OutputDir = flags.outputDir
	}
	if flags.reminders != "" {
		conf.Reminders = config.SplitList(flags.reminders)
	}
	if flags.include != "" {
		conf.Include = config.SplitList(flags.include)
	}
	if flags.exclude != "" {
		conf.Exclude = config.SplitList(flags.exclude)
	}
	if flags.includeSpecial {
		conf.IncludeSpecial = true
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "shiftcal.yaml", "Path to config file")
	flag.StringVar(&cfg.outputDir, "o", "", "Output directory (overrides config if set)")
	flag.StringVar(&cfg.reminders, "r", "", "Comma-separated names that get a 1h reminder")
	flag.StringVar(&cfg.include, "i", "", "Comma-separated names to keep")
	flag.StringVar(&cfg.exclude, "e", "", "Comma-separated names to drop")
	flag.BoolVar(&cfg.includeSpecial, "s", false, "Keep special (*) shifts when -i is set")
	flag.StringVar(&cfg.mergeOut, "merge", "", "Merge the given .ics files into this file")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the HTTP API on the configured listen address")
	flag.BoolVar(&cfg.watch, "watch", false, "Regenerate the calendar on the configured schedule")
	flag.BoolVar(&cfg.verbose, "v", false, "Verbose (debug) logging")

	flag.Parse()

	return cfg
}
