package responseformat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type sample struct {
	Stage string  `json:"stage"`
	LAI   float64 `json:"lai"`
}

func TestWriteResponseFormats(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		accept      string
		contentType string
	}{
		{"default", "/latest", "", ContentTypeJSON},
		{"query", "/latest?format=msgpack", "", ContentTypeMsgPack},
		{"accept header", "/latest", ContentTypeMsgPack, ContentTypeMsgPack},
		{"other format", "/latest?format=xml", "", ContentTypeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			if err := NewFormatter().WriteResponse(rec, req, sample{"Emerged", 1.5}, nil); err != nil {
				t.Fatal(err)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Fatalf("Content-Type = %q, want %q", got, tt.contentType)
			}

			var got sample
			if tt.contentType == ContentTypeJSON {
				err := json.Unmarshal(rec.Body.Bytes(), &got)
				if err != nil {
					t.Fatal(err)
				}
			} else {
				d := msgpack.NewDecoder(rec.Body)
				d.SetCustomStructTag("json")
				if err := d.Decode(&got); err != nil {
					t.Fatal(err)
				}
			}
			if got != (sample{"Emerged", 1.5}) {
				t.Errorf("decoded %+v", got)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/latest", nil)
	rec := httptest.NewRecorder()
	if err := NewFormatter().WriteError(rec, req, http.StatusServiceUnavailable, "no data yet"); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "no data yet" {
		t.Errorf("body %v", body)
	}
}
