package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is a complete status segment of the response line, code and reason.
type Status string

const (
	StatusOK           Status = "200 OK"
	StatusBadRequest   Status = "400 BAD REQUEST"
	StatusUnauthorized Status = "401 UNAUTHORIZED"
	StatusNotFound     Status = "404 NOT FOUND"
	StatusConflict     Status = "409 CONFLICT"
)

// ContentTypeJSON is the only content type the JSON helpers emit.
const ContentTypeJSON = "application/json"

// Literal error bodies. The space after the colon is part of the wire format
// clients already match against, so these are never produced by the encoder.
const (
	notFoundBody     = `{"error": "Not Found"}`
	unauthorizedBody = `{"error": "Unauthorized"}`
)

// Code returns the numeric part of the status, 0 if it has none.
func (s Status) Code() int {
	var code int
	if _, err := fmt.Sscanf(string(s), "%d", &code); err != nil {
		return 0
	}
	return code
}

// Response is a hand-serialized reply.
type Response struct {
	Status      Status
	ContentType string
	Body        string
}

func New(status Status, contentType, body string) Response {
	return Response{Status: status, ContentType: contentType, Body: body}
}

// JSON is a 200 response carrying v encoded as compact JSON.
func JSON(v any) Response {
	return New(StatusOK, ContentTypeJSON, encodeJSON(v))
}

func BadRequest(v any) Response {
	return New(StatusBadRequest, ContentTypeJSON, encodeJSON(v))
}

func Conflict(v any) Response {
	return New(StatusConflict, ContentTypeJSON, encodeJSON(v))
}

func NotFound() Response {
	return New(StatusNotFound, ContentTypeJSON, notFoundBody)
}

func Unauthorized() Response {
	return New(StatusUnauthorized, ContentTypeJSON, unauthorizedBody)
}

// ErrorBody and StatusBody are the two payload shapes used by the router.
func ErrorBody(msg string) map[string]string { return map[string]string{"error": msg} }
func StatusBody(msg string) map[string]string { return map[string]string{"status": msg} }

// Build renders the response exactly as written to the socket.
func (r Response) Build() string {
	return "HTTP/1.1 " + string(r.Status) + "\r\nContent-Type: " + r.ContentType + "\r\n\r\n" + r.Body
}

// encodeJSON marshals without HTML escaping and without the encoder's
// trailing newline. Values that cannot be encoded render as null.
func encodeJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "null"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
