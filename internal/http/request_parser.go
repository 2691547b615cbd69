package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// maxBodyBytes bounds a submission body.
const maxBodyBytes = 64 << 10

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields by name.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

func (p *RequestBodyParser) isJSON() bool {
	if mt, _, err := mime.ParseMediaType(p.contentType); err == nil && mt == "application/json" {
		return true
	}
	trimmed := bytes.TrimSpace(p.body)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Parse decodes the body. An empty body parses as no fields.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	if len(bytes.TrimSpace(p.body)) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.isJSON() {
		dec := json.NewDecoder(bytes.NewReader(p.body))
		dec.UseNumber()
		p.jsonData = map[string]any{}
		p.err = dec.Decode(&p.jsonData)
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns the trimmed, sanitized value of key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON reports whether the body was decoded as JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Submission builds the submission from the parsed fields.
func (p *RequestBodyParser) Submission() core.Submission {
	return core.Submission{
		Type:     p.Get("type"),
		Amount:   p.Get("amount"),
		Date:     p.Get("date"),
		Category: p.Get("category"),
	}
}

// stringValue renders a decoded JSON scalar. Objects, arrays, booleans and
// null count as absent.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}

// parseYear reads the year query parameter. Absent or unparseable values
// return 0, which selects the current year.
func parseYear(query url.Values) int {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return 0
	}
	y, err := strconv.Atoi(v)
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
