// plyconv re-encodes a PLY file into another body format, keeping every
// element, property, comment and value.
//
//	plyconv --format ascii in.ply out.ply
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/tuannm99/plyfile"
	"github.com/tuannm99/plyfile/internal"
	"github.com/tuannm99/plyfile/internal/alias/util"
	"github.com/tuannm99/plyfile/internal/ply"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "plyconv: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath string
		format     string
		comments   []string
	)
	flagSet := pflag.NewFlagSet("plyconv", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "YAML config file")
	flagSet.StringVarP(&format, "format", "f", "", "ascii, binary_little_endian or binary_big_endian (default from config)")
	flagSet.StringArrayVarP(&comments, "comment", "c", nil, "comment line to add (repeatable)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 2 {
		return fmt.Errorf("usage: plyconv [flags] IN OUT")
	}
	in, out := flagSet.Arg(0), flagSet.Arg(1)

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if format != "" {
		cfg.Encode.Format = format
	}
	to, err := cfg.Format()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	opts, err := cfg.Options(logger)
	if err != nil {
		return err
	}

	w, err := transcode(in, to, opts)
	if err != nil {
		return err
	}
	for _, c := range append(cfg.Encode.Comments, comments...) {
		w.AddComment(c)
	}
	if err := plyfile.WriteFile(out, w); err != nil {
		return err
	}
	slog.Info("converted", "in", in, "out", out, "format", to.String())
	return nil
}

func transcode(path string, to ply.Format, opts ply.Options) (*ply.Writer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer util.CloseFunc(f, path)

	dec, err := ply.NewDecoder(bufio.NewReader(f), opts)
	if err != nil {
		return nil, err
	}
	slog.Debug("input", "file", path, "format", dec.Schema().Format.String(), "elements", len(dec.Schema().Elements))
	return ply.Transcode(dec, to)
}
