package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/tuannm99/plyfile/internal/alias/bx"
)

// cursor is a forward-only reader over the body. pos is the absolute
// offset of the next unread byte; at is where the last read started.
type cursor struct {
	r     *bufio.Reader
	ascii bool
	order binary.ByteOrder
	pos   int64
	at    int64
	buf   [8]byte
	tok   []byte
}

func newCursor(r *bufio.Reader, f Format, pos int64) *cursor {
	return &cursor{
		r:     r,
		ascii: f == FormatASCII,
		order: bx.Order(f == FormatBinaryBigEndian),
		pos:   pos,
		tok:   make([]byte, 0, 32),
	}
}

// read returns the next value of type t.
func (c *cursor) read(t ScalarType) (float64, error) {
	c.at = c.pos
	if c.ascii {
		return c.readToken(t)
	}
	return c.readBinary(t)
}

// skip advances past n values of type t.
func (c *cursor) skip(t ScalarType, n int) error {
	c.at = c.pos
	if c.ascii {
		for i := 0; i < n; i++ {
			if _, err := c.token(); err != nil {
				return err
			}
		}
		return nil
	}
	d, err := c.r.Discard(n * t.Size())
	c.pos += int64(d)
	if err != nil {
		return unexpected(err)
	}
	return nil
}

func (c *cursor) readBinary(t ScalarType) (float64, error) {
	b := c.buf[:t.Size()]
	n, err := io.ReadFull(c.r, b)
	c.pos += int64(n)
	if err != nil {
		return 0, unexpected(err)
	}
	switch {
	case t == Float32:
		return float64(math.Float32frombits(uint32(bx.Uint(c.order, b)))), nil
	case t == Float64:
		return math.Float64frombits(bx.Uint(c.order, b)), nil
	case t.IsSigned():
		return float64(bx.Int(c.order, b)), nil
	default:
		return float64(bx.Uint(c.order, b)), nil
	}
}

func (c *cursor) readToken(t ScalarType) (float64, error) {
	tok, err := c.token()
	if err != nil {
		return 0, err
	}
	s := string(tok)
	bits := t.Size() * 8
	switch {
	case t.IsFloat():
		v, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return 0, fmt.Errorf("%w: %q as %s", ErrBadToken, s, t)
		}
		return v, nil
	case t.IsSigned():
		v, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return 0, fmt.Errorf("%w: %q as %s", ErrBadToken, s, t)
		}
		return float64(v), nil
	default:
		v, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return 0, fmt.Errorf("%w: %q as %s", ErrBadToken, s, t)
		}
		return float64(v), nil
	}
}

// token returns the next whitespace-delimited token. The slice is reused
// by the following call.
func (c *cursor) token() ([]byte, error) {
	c.tok = c.tok[:0]
	for {
		ch, err := c.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(c.tok) > 0 {
				return c.tok, nil
			}
			return nil, unexpected(err)
		}
		c.pos++
		if isSpace(ch) {
			if len(c.tok) > 0 {
				return c.tok, nil
			}
			c.at = c.pos
			continue
		}
		c.tok = append(c.tok, ch)
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

// unexpected reports a short body as io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
