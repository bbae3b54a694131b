// plyinfo prints the header of a PLY file and, on request, the values of
// selected properties.
//
//	plyinfo mesh.ply
//	plyinfo -e vertex:x,y,z -e face:vertex_indices --as float64 -o json mesh.ply
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tuannm99/plyfile/internal"
	"github.com/tuannm99/plyfile/internal/alias/util"
	"github.com/tuannm99/plyfile/internal/export"
	"github.com/tuannm99/plyfile/internal/ply"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "plyinfo: %v\n", err)
		os.Exit(1)
	}
}

type extract struct {
	element string
	names   []string
}

func parseExtract(s string) (extract, error) {
	element, props, ok := strings.Cut(s, ":")
	if !ok || element == "" || props == "" {
		return extract{}, fmt.Errorf("bad --extract %q, want element:prop[,prop...]", s)
	}
	return extract{element: element, names: strings.Split(props, ",")}, nil
}

func run(args []string, stdout io.Writer) error {
	var (
		configPath string
		output     string
		extracts   []string
		as         string
	)
	flagSet := pflag.NewFlagSet("plyinfo", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "YAML config file")
	flagSet.StringVarP(&output, "output", "o", "yaml", "output encoding: yaml, json or cbor")
	flagSet.StringArrayVarP(&extracts, "extract", "e", nil, "element:prop[,prop...] to decode (repeatable)")
	flagSet.StringVar(&as, "as", "", "destination type for extracted values (default: declared type of the first property)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: plyinfo [flags] FILE")
	}
	path := flagSet.Arg(0)

	enc, err := export.ParseEncoding(output)
	if err != nil {
		return err
	}
	var target ply.ScalarType
	if as != "" {
		t, ok := ply.ParseScalarType(as)
		if !ok {
			return fmt.Errorf("unknown type %q", as)
		}
		target = t
	}

	cfg, err := internal.LoadConfig(configPath)
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

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer util.CloseFunc(f, path)

	dec, err := ply.NewDecoder(bufio.NewReader(f), opts)
	if err != nil {
		return err
	}
	if len(extracts) == 0 {
		return export.Write(stdout, enc, export.Describe(dec.Schema()))
	}

	counts := make([]int, 0, len(extracts))
	for _, s := range extracts {
		x, err := parseExtract(s)
		if err != nil {
			return err
		}
		t := target
		if t == ply.Invalid {
			t = declaredType(dec.Schema(), x)
		}
		n, err := dec.Request(x.element, x.names, ply.NewBuffer(t))
		if err != nil {
			return err
		}
		counts = append(counts, n)
	}
	if err := dec.Decode(); err != nil {
		return err
	}

	dump := export.Dump{Schema: export.Describe(dec.Schema())}
	for i, b := range dec.Bindings() {
		dump.Columns = append(dump.Columns, export.ColumnOf(b, counts[i]))
	}
	slog.Debug("extracted", "file", path, "columns", len(dump.Columns))
	return export.Write(stdout, enc, dump)
}

// declaredType is the item type of the first requested property, or
// float64 when it does not exist; Request then reports the missing name.
func declaredType(s *ply.Schema, x extract) ply.ScalarType {
	if e, ok := s.Element(x.element); ok {
		if i, ok := e.Property(x.names[0]); ok {
			return e.Properties[i].ItemType
		}
	}
	return ply.Float64
}
