package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/tuannm99/verticareader/internal"
	"github.com/tuannm99/verticareader/internal/alias/util"
	"github.com/tuannm99/verticareader/internal/catalog"
	"github.com/tuannm99/verticareader/internal/metrics"
	"github.com/tuannm99/verticareader/internal/native"
	"github.com/tuannm99/verticareader/internal/render"
	"github.com/tuannm99/verticareader/internal/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		slog.Error("verticareader failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := internal.NewFlagSet("verticareader")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Convert Vertica native binary files to CSV/JSON")
		fmt.Fprintln(os.Stderr, "\nusage: verticareader [flags] <input|-|s3://bucket/key>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	configPath, _ := fs.GetString("config")
	cfg, err := internal.LoadConfig(configPath, fs)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one input")
	}
	if cfg.Types == "" {
		return errors.New("no column types file given (--types)")
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	stats, err := convert(ctx, cfg, fs.Arg(0))
	if err != nil {
		m.ObserveError(err)
	} else {
		m.Record(cfg.RenderOptions().Format.String(), stats)
	}
	if cfg.MetricsFile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsFile, reg); werr != nil {
			slog.Warn("write metrics", "path", cfg.MetricsFile, "err", werr)
		}
	}
	return err
}

func setupLogging(cfg *internal.Config) {
	lvl, _ := cfg.SlogLevel()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// convert decodes input and writes it in the configured format. Rows
// written before a decode failure stay in the output.
func convert(ctx context.Context, cfg *internal.Config, input string) (native.Stats, error) {
	schema, err := catalog.LoadSchemaFile(cfg.Types)
	if err != nil {
		return native.Stats{}, fmt.Errorf("parsing column types: %w", err)
	}
	opts := cfg.RenderOptions()
	if opts.Format != render.FormatCSV && !schema.HasNames() {
		return native.Stats{}, render.ErrNamesRequired
	}

	in, err := source.OpenInput(ctx, input)
	if err != nil {
		return native.Stats{}, err
	}
	dec, err := native.Open(in, schema, cfg.DecodeOptions())
	if err != nil {
		util.CloseFunc(in, input)
		return native.Stats{}, err
	}
	defer util.CloseFunc(dec, input)

	slog.Debug("opened native file",
		"input", input,
		"columns", dec.Header().NumCols(),
		"header_bytes", dec.Header().Size(),
	)

	comp := cfg.OutputCompression()
	outName := cfg.Output
	if outName == "" {
		outName = source.DefaultOutputName(input, opts.Format.Ext()+comp.Ext())
	}
	out, err := source.OpenOutput(outName, input)
	if err != nil {
		return native.Stats{}, err
	}

	err = writeRows(ctx, dec, out, comp, opts)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close output: %w", cerr)
	}

	st := dec.Stats()
	slog.Info("converted",
		"input", input,
		"output", outName,
		"rows", st.Rows,
		"row_groups", st.RowGroups,
		"nulls", st.Nulls,
		"bytes", st.Bytes,
	)
	return st, err
}

func writeRows(ctx context.Context, dec *native.Decoder, out io.Writer, comp render.Compression, opts render.Options) error {
	cw, err := render.Compress(out, comp)
	if err != nil {
		return err
	}
	schema := dec.Schema()
	w, err := render.New(cw, schema, opts)
	if err != nil {
		return errors.Join(err, cw.Close())
	}

	err = w.WriteHeader(schema)
	if err == nil {
		err = dec.Scan(func(row native.Row) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return w.WriteRow(row)
		})
	}
	// flush what was written even when decoding failed
	return errors.Join(err, w.Close(), cw.Close())
}
