package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Framing errors. Each one ends the connection after a 400 reply.
var (
	ErrHeaderTooLarge   = errors.New("header block exceeds limit")
	ErrBodyTooLarge     = errors.New("body exceeds limit")
	ErrBadContentLength = errors.New("invalid Content-Length")
)

// Default framing limits.
const (
	DefaultReadChunk = 1024
	DefaultMaxHeader = 8 << 10
	DefaultMaxBody   = 64 << 10
)

// Limits bounds what a Reader accepts.
type Limits struct {
	ReadChunk int // bytes per Read call
	MaxHeader int // request line + headers + blank line
	MaxBody   int
}

func DefaultLimits() Limits {
	return Limits{ReadChunk: DefaultReadChunk, MaxHeader: DefaultMaxHeader, MaxBody: DefaultMaxBody}
}

// withDefaults fills zero fields.
func (l Limits) withDefaults() Limits {
	if l.ReadChunk <= 0 {
		l.ReadChunk = DefaultReadChunk
	}
	if l.MaxHeader <= 0 {
		l.MaxHeader = DefaultMaxHeader
	}
	if l.MaxBody <= 0 {
		l.MaxBody = DefaultMaxBody
	}
	return l
}

// IsFramingError reports whether err came from a limit or length check.
func IsFramingError(err error) bool {
	return errors.Is(err, ErrHeaderTooLarge) || errors.Is(err, ErrBodyTooLarge) || errors.Is(err, ErrBadContentLength)
}

// Reader cuts a byte stream into raw messages.
//
// Headers are read incrementally until the blank line. With a Content-Length
// exactly that many body bytes follow and anything beyond stays buffered for
// the next message. Without one, a GET or DELETE ends at the blank line. A
// POST or PUT without one takes a JSON value as its body: reading continues
// until the value is complete, the peer closes, or MaxBody is passed, so an
// empty undeclared body ends only with the stream. Bytes that are not JSON
// are taken as the body as far as they have arrived. An
// empty line or NUL padding between messages is skipped. A stream that ends
// before the blank line yields its buffered bytes as a final message.
type Reader struct {
	src    io.Reader
	limits Limits
	buf    []byte
	chunk  []byte
}

func NewReader(src io.Reader, limits Limits) *Reader {
	limits = limits.withDefaults()
	return &Reader{
		src:    src,
		limits: limits,
		chunk:  make([]byte, limits.ReadChunk),
	}
}

// Next returns the next raw message, io.EOF once the peer has closed and
// nothing is buffered, or a framing/transport error.
func (r *Reader) Next() ([]byte, error) {
	for {
		r.buf = bytes.TrimLeftFunc(r.buf, isPadding)
		if i := bytes.Index(r.buf, []byte(headerBoundary)); i >= 0 {
			return r.cut(i)
		}
		if len(r.buf) > r.limits.MaxHeader {
			return nil, ErrHeaderTooLarge
		}
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) && len(r.buf) > 0 {
				return r.take(len(r.buf)), nil
			}
			return nil, err
		}
	}
}

// cut frames a message whose header block ends at boundary.
func (r *Reader) cut(boundary int) ([]byte, error) {
	headerEnd := boundary + len(headerBoundary)
	if headerEnd > r.limits.MaxHeader {
		return nil, ErrHeaderTooLarge
	}

	n, declared, err := contentLength(r.buf[:boundary])
	if err != nil {
		return nil, err
	}
	if !declared {
		if !carriesBody(r.buf[:boundary]) {
			return r.take(headerEnd), nil
		}
		return r.cutJSONBody(headerEnd)
	}
	if n > r.limits.MaxBody {
		return nil, fmt.Errorf("%w: declared %d, max %d", ErrBodyTooLarge, n, r.limits.MaxBody)
	}
	for len(r.buf) < headerEnd+n {
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
	return r.take(headerEnd + n), nil
}

// cutJSONBody frames an undeclared body that starts at headerEnd.
func (r *Reader) cutJSONBody(headerEnd int) ([]byte, error) {
	for {
		n, complete := jsonExtent(r.buf[headerEnd:])
		if complete && n <= r.limits.MaxBody {
			return r.take(headerEnd + n), nil
		}
		if n > r.limits.MaxBody {
			return nil, fmt.Errorf("%w: undeclared body over %d bytes", ErrBodyTooLarge, r.limits.MaxBody)
		}
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				return r.take(len(r.buf)), nil
			}
			return nil, err
		}
	}
}

// jsonExtent reports how many bytes of body form its leading JSON value and
// whether that value is complete. Non-JSON input is complete as is; empty
// input is not.
func jsonExtent(body []byte) (int, bool) {
	start := len(body) - len(bytes.TrimLeftFunc(body, isPadding))
	if start == len(body) {
		return len(body), false
	}
	dec := json.NewDecoder(bytes.NewReader(body[start:]))
	var v json.RawMessage
	switch err := dec.Decode(&v); {
	case err == nil:
		return start + int(dec.InputOffset()), true
	case errors.Is(err, io.ErrUnexpectedEOF):
		return len(body), false
	default:
		return len(body), true
	}
}

// carriesBody reports whether the request line names a method that may
// send a body without declaring its length.
func carriesBody(block []byte) bool {
	line, _, _ := strings.Cut(string(block), lineTerminator)
	method, _, _ := strings.Cut(line, " ")
	return method == "POST" || method == "PUT"
}

func isPadding(r rune) bool {
	return r == 0 || r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// take detaches the first n buffered bytes.
func (r *Reader) take(n int) []byte {
	msg := make([]byte, n)
	copy(msg, r.buf[:n])
	rest := r.buf[n:]
	if len(rest) == 0 {
		r.buf = nil
	} else {
		r.buf = append([]byte(nil), rest...)
	}
	return msg
}

// fill performs one Read, appending whatever it returned.
func (r *Reader) fill() error {
	n, err := r.src.Read(r.chunk)
	r.buf = append(r.buf, r.chunk[:n]...)
	if n > 0 {
		return nil
	}
	if err == nil {
		return nil
	}
	return err
}

// contentLength scans the header lines for Content-Length, matching the
// name case-insensitively.
func contentLength(block []byte) (int, bool, error) {
	lines := strings.Split(string(block), lineTerminator)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(strings.TrimSuffix(line, "\r"), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return 0, false, fmt.Errorf("%w: %q", ErrBadContentLength, value)
		}
		return n, true, nil
	}
	return 0, false, nil
}
