package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        core.Submission
		wantJSON    bool
	}{
		{
			name:        "json body",
			contentType: "application/json",
			body:        `{"type":"Weekly shop","amount":"42.50","date":"2024-03-01","category":"Grocery"}`,
			want:        core.Submission{Type: "Weekly shop", Amount: "42.50", Date: "2024-03-01", Category: "Grocery"},
			wantJSON:    true,
		},
		{
			name:        "json numeric amount keeps its digits",
			contentType: "application/json",
			body:        `{"type":"Pay","amount":3000.10,"date":"2024-03-01","category":"Monthly Salary/General"}`,
			want:        core.Submission{Type: "Pay", Amount: "3000.10", Date: "2024-03-01", Category: "Monthly Salary/General"},
			wantJSON:    true,
		},
		{
			name:     "json detected without content type",
			body:     ` {"type":"x","amount":"1","date":"2024-01-01","category":"General"}`,
			want:     core.Submission{Type: "x", Amount: "1", Date: "2024-01-01", Category: "General"},
			wantJSON: true,
		},
		{
			name:        "form body is trimmed and sanitized",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"type": {"  Dinner\x00 "}, "amount": {"12,5"}, "date": {"2024-02-02"}, "category": {"Restaurant"}}.Encode(),
			want:        core.Submission{Type: "Dinner", Amount: "12,5", Date: "2024-02-02", Category: "Restaurant"},
		},
		{
			name:        "null and boolean json fields count as missing",
			contentType: "application/json",
			body:        `{"type":null,"amount":true,"date":"2024-01-01","category":"General"}`,
			want:        core.Submission{Date: "2024-01-01", Category: "General"},
			wantJSON:    true,
		},
		{
			name: "empty body",
			want: core.Submission{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/add", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(httptest.NewRecorder(), req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Submission(); got != tt.want {
				t.Errorf("Submission() = %+v, want %+v", got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParserRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/add", strings.NewReader(`{"type":`))
	req.Header.Set("Content-Type", "application/json")
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected an error for truncated JSON")
	}
	// Parse is idempotent.
	if err := p.Parse(); err == nil {
		t.Fatal("expected the same error on a second Parse")
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"year=2023", 2023},
		{"year=%202024%20", 2024},
		{"", 0},
		{"year=abc", 0},
		{"year=-5", 0},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := parseYear(q); got != tt.want {
			t.Errorf("parseYear(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\tb\r\nc\x07 "); got != "a\tbc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
