package plyfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/tuannm99/plyfile/internal/alias/util"
	"github.com/tuannm99/plyfile/internal/ply"
)

const FileMode0644 = 0o644

// Request names the properties of one element to read into Dst.
type Request struct {
	Element    string
	Properties []string
	Dst        Buffer
}

// ReadFile decodes the file at path, filling every request, and returns the
// file's schema.
func ReadFile(path string, opts Options, requests ...Request) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer util.CloseFunc(f, path)

	dec, err := ply.NewDecoder(bufio.NewReader(f), opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for _, r := range requests {
		if _, err := dec.Request(r.Element, r.Properties, r.Dst); err != nil {
			return nil, err
		}
	}
	if err := dec.Decode(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return dec.Schema(), nil
}

// WriteFile writes w to path, replacing any existing file.
func WriteFile(path string, w *Writer) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, FileMode0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := w.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
