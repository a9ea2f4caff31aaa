package protocol

import (
	"encoding/json"
	"strings"
)

const (
	lineTerminator = "\n"
	headerBoundary = "\r\n\r\n"
)

// Request is the structured form of one framed message.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    string
	// JSON is the body decoded speculatively; nil when the body is empty or
	// not valid JSON.
	JSON any
}

// ParseRequest applies the literal framing rules: the request line ends at
// the first '\n', the header block ends at the first blank line, and
// everything after it is the body. It never fails; missing pieces are empty.
func ParseRequest(raw []byte) Request {
	s := string(raw)

	bodyStart := len(s)
	if i := strings.Index(s, headerBoundary); i >= 0 {
		bodyStart = i + len(headerBoundary)
	}

	req := Request{
		Headers: parseHeaders(s[:bodyStart]),
		Body:    trimBody(s[bodyStart:]),
	}

	var requestLine string
	if i := strings.Index(s, lineTerminator); i >= 0 {
		requestLine = s[:i]
	}
	if method, rest, ok := strings.Cut(requestLine, " "); ok {
		req.Method = method
		if path, _, ok := strings.Cut(rest, " "); ok {
			req.Path = path
		}
	}

	if req.Body != "" {
		var v any
		if err := json.Unmarshal([]byte(req.Body), &v); err == nil {
			req.JSON = v
		}
	}
	return req
}

// parseHeaders splits every line after the request line once on ':'.
// Lines without a colon are ignored and later names overwrite earlier ones.
func parseHeaders(block string) map[string]string {
	headers := make(map[string]string)
	lines := strings.Split(block, lineTerminator)
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}

// trimBody strips NUL padding from both ends, then surrounding whitespace.
// NULs inside the whitespace survive: "x\x00 \x00" becomes "x\x00".
func trimBody(body string) string {
	return strings.TrimSpace(strings.Trim(body, "\x00"))
}

// Header looks a header up by its exact name as sent.
func (r Request) Header(name string) (string, bool) {
	v, ok := r.Headers[name]
	return v, ok
}

// StringField returns a string member of a JSON object body. A member of any
// other type counts as absent.
func (r Request) StringField(key string) (string, bool) {
	obj, ok := r.JSON.(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := obj[key].(string)
	return v, ok
}

// BoolField is StringField for booleans.
func (r Request) BoolField(key string) (bool, bool) {
	obj, ok := r.JSON.(map[string]any)
	if !ok {
		return false, false
	}
	v, ok := obj[key].(bool)
	return v, ok
}
