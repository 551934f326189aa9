package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespond(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Message != "I need a budget plan" {
			t.Errorf("message = %q", req.Message)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "Let's start with your income."})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	reply, err := client.Respond(context.Background(), "I need a budget plan", false)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if reply != "Let's start with your income." {
		t.Errorf("reply = %q", reply)
	}
}

func TestRespondErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "empty response body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"response": ""}`))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL)
			if _, err := client.Respond(context.Background(), "hi", false); err == nil {
				t.Error("Respond succeeded, want error")
			}
		})
	}
}
