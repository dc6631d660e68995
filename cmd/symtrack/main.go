package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/viper"
	"github.com/symtrack/symtrack"
	"github.com/symtrack/symtrack/internal/runsdb"
	"gopkg.in/natefinch/lumberjack.v2"
)

var githash = "githash not computed"
var buildDate = "build date not computed"

// makeFileExist checks that dir/filename exists, and creates the directory
// and file if it doesn't.
func makeFileExist(dir, filename string) (string, error) {
	if strings.Contains(dir, "$HOME") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = strings.Replace(dir, "$HOME", home, 1)
	}
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err2 := os.MkdirAll(dir, 0775); err2 != nil {
			return "", err2
		}
	}
	fullname := path.Join(dir, filename)
	_, err := os.Stat(fullname)
	if os.IsNotExist(err) {
		f, err2 := os.OpenFile(fullname, os.O_WRONLY|os.O_CREATE, 0664)
		if err2 != nil {
			return "", err2
		}
		f.Close()
	}
	return fullname, nil
}

// setupViper sets up the viper configuration manager: where to find config
// files, the filename and suffix, and the defaults.
func setupViper() error {
	viper.SetDefault("samples_per_symbol", 4.0)
	viper.SetDefault("alpha", 0.3)
	viper.SetDefault("beta", 0.0)
	viper.SetDefault("sum_clamp", 0.0)
	viper.SetDefault("ted_variant", "mm")
	viper.SetDefault("interpolator", "nearest")
	viper.SetDefault("history_depth", 3)
	viper.SetDefault("lookahead", symtrack.DefaultLookaheadMargin)
	viper.SetDefault("publish_port", symtrack.Ports.Symbols)

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Error finding user home dir: %s\n", err)
	}
	dotSymtrack := filepath.Join(home, ".symtrack")
	const filename string = "config"
	const suffix string = ".yaml"
	if _, err := makeFileExist(dotSymtrack, filename+suffix); err != nil {
		return err
	}

	viper.SetConfigName(filename)
	viper.AddConfigPath(filepath.FromSlash("/etc/symtrack"))
	viper.AddConfigPath(dotSymtrack)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %s", err)
	}
	return nil
}

func startLogger(pfname string) *log.Logger {
	probFile, err := os.OpenFile(pfname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		panic(fmt.Sprintf("Could not open log file '%s'", pfname))
	}
	probLogger := log.New(probFile, "", log.LstdFlags)
	probLogger.SetOutput(&lumberjack.Logger{
		Filename:   pfname,
		MaxSize:    10,   // megabytes after which new file is created
		MaxBackups: 4,    // number of backups
		MaxAge:     180,  // days
		Compress:   true, // whether to gzip the backups
	})
	return probLogger
}

func loopConfigFromViper() (symtrack.LoopConfig, error) {
	var cfg symtrack.LoopConfig
	cfg.SamplesPerSymbol = viper.GetFloat64("samples_per_symbol")
	cfg.Alpha = viper.GetFloat64("alpha")
	cfg.Beta = viper.GetFloat64("beta")
	cfg.SumClamp = viper.GetFloat64("sum_clamp")
	cfg.HistoryDepth = viper.GetInt("history_depth")
	cfg.Lookahead = viper.GetInt("lookahead")

	ted, err := symtrack.ParseTEDVariant(viper.GetString("ted_variant"))
	if err != nil {
		return cfg, err
	}
	cfg.TED = ted

	interp, err := symtrack.ParseInterpolator(viper.GetString("interpolator"))
	if err != nil {
		return cfg, err
	}
	cfg.Interp = interp
	return cfg, nil
}

func main() {
	symtrack.Build.Githash = githash
	symtrack.Build.Date = buildDate

	printVersion := flag.Bool("version", false, "print version and quit")
	verbose := flag.Bool("verbose", false, "dump the effective configuration before running")
	inputFile := flag.String("in", "", "input file of interleaved float32 I/Q samples")
	outputFile := flag.String("out", "", "output file for recovered symbols (same format)")
	simulate := flag.Int("simulate", 0, "instead of recovering, synthesize this many QPSK symbols into -out")
	simDelay := flag.Float64("sim-delay", 0, "sampling-grid offset in samples for -simulate")
	simNoise := flag.Float64("sim-noise", 0, "per-axis noise sigma for -simulate")
	errTrace := flag.String("err-npy", "", "write the timing-error trace to this .npy file")
	muTrace := flag.String("mu-npy", "", "write the fractional-phase trace to this .npy file")
	publish := flag.Bool("publish", false, "publish recovered symbols on a ZMQ PUB socket")
	useDB := flag.Bool("db", false, "record run metadata to the ClickHouse database")
	flag.Parse()

	if *printVersion {
		fmt.Printf("This is symtrack version %s\n", symtrack.Build.Version)
		fmt.Printf("Git commit hash: %s\n", githash)
		fmt.Printf("Build time: %s\n", buildDate)
		fmt.Printf("Built on go version %s\n", runtime.Version())
		os.Exit(0)
	}

	// Log problems to a rotating file.
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	logdir := filepath.Join(home, ".symtrack", "logs")
	problemname, err := makeFileExist(logdir, "problems.log")
	if err != nil {
		panic(err)
	}
	symtrack.ProblemLogger = startLogger(problemname)

	if err := setupViper(); err != nil {
		panic(err)
	}
	cfg, err := loopConfigFromViper()
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		fmt.Println("Effective loop configuration:")
		spew.Dump(cfg)
	}

	if *simulate > 0 {
		if *outputFile == "" {
			log.Fatal("-simulate requires -out")
		}
		src, _ := symtrack.SimulateQPSK(symtrack.SimQPSKConfig{
			Nsym:         *simulate,
			SPS:          cfg.SamplesPerSymbol,
			DelaySamples: *simDelay,
			NoiseStd:     *simNoise,
			Seed:         time.Now().UnixNano(),
		})
		if err := symtrack.WriteIQFile(*outputFile, src); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Wrote %d samples (%d symbols at SPS %g) to %s\n",
			src.Len(), *simulate, cfg.SamplesPerSymbol, *outputFile)
		return
	}

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "symtrack: need -in FILE (or -simulate N -out FILE)")
		flag.Usage()
		os.Exit(1)
	}

	samples, err := symtrack.ReadIQFile(*inputFile)
	if err != nil {
		symtrack.ProblemLogger.Print(err)
		log.Fatal(err)
	}

	loop, err := symtrack.NewTimingLoop(cfg)
	if err != nil {
		log.Fatal(err)
	}
	trace := loop.EnableTrace()

	abort := make(chan struct{})
	var db *runsdb.Connection
	if *useDB {
		db = runsdb.Start(abort)
	}
	start := time.Now()

	var symbols []complex128
	src := symtrack.SliceSource(samples)
	if *publish {
		// Stream through the publisher while collecting for the output
		// file.
		sink := make(chan complex128, 1024)
		tee := make(chan complex128, 1024)
		go func() {
			if err := symtrack.PublishSymbols(sink, viper.GetInt("publish_port"), abort); err != nil {
				symtrack.ProblemLogger.Print("publisher:", err)
				for range sink { // keep the pipeline draining
				}
			}
		}()
		go loop.Stream(src, tee, abort)
		for x := range tee {
			symbols = append(symbols, x)
			sink <- x
		}
		close(sink)
	} else {
		symbols = loop.Run(src, nil)
	}

	fmt.Printf("Recovered %d symbols from %d input samples.\n", len(symbols), len(samples))
	if *outputFile != "" {
		if err := symtrack.WriteIQFile(*outputFile, symbols); err != nil {
			log.Fatal(err)
		}
	}
	if err := trace.WriteNPY(*errTrace, *muTrace); err != nil {
		symtrack.ProblemLogger.Print(err)
	}

	report := trace.AnalyzeLock(64, 1e-2)
	if report.Locked {
		fmt.Printf("Loop locked by tick %d (final mean |e| %.3g).\n", report.LockTick, report.FinalMean)
	} else {
		fmt.Printf("Loop did not lock (final mean |e| %.3g).\n", report.FinalMean)
	}

	if db.IsConnected() {
		hostname, _ := os.Hostname()
		db.RecordRun(&runsdb.RunMessage{
			ID:               runsdb.NewRunID(),
			Hostname:         hostname,
			Version:          symtrack.Build.Version,
			InputFile:        *inputFile,
			OutputFile:       *outputFile,
			SamplesPerSymbol: cfg.SamplesPerSymbol,
			Alpha:            cfg.Alpha,
			Beta:             cfg.Beta,
			TED:              cfg.TED.String(),
			Interpolator:     viper.GetString("interpolator"),
			InputSamples:     len(samples),
			SymbolsEmitted:   len(symbols),
			Locked:           report.Locked,
			FinalMeanErr:     report.FinalMean,
			Start:            start,
			End:              time.Now(),
		})
	}
	close(abort)
	if db != nil {
		db.Wait()
	}
}
