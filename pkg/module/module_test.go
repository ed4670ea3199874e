package module_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/vetter/pkg/module"
)

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		wantErr bool
	}{
		{"api", "/api", false},
		{"metrics", "/metrics", false},
		{"empty", "", true},
		{"no leading slash", "api", true},
		{"nested path", "/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := module.ValidatePrefix(tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePrefix(%q) = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, module.ErrInvalidPrefix) {
				t.Errorf("error should wrap ErrInvalidPrefix: %v", err)
			}
		})
	}
}

func TestNewInvalidPrefixPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, module.ErrInvalidPrefix) {
			t.Errorf("panic value: got %v, want ErrInvalidPrefix", r)
		}
	}()
	module.New("/api/v1", http.NewServeMux())
}

func TestServePrefixStripping(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantPath string
	}{
		{"child path", "/api/outcomes", "/outcomes"},
		{"root", "/api", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received string
			mux := http.NewServeMux()
			mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
				received = r.URL.Path
			})

			m := module.New("/api", mux)
			m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

			if received != tt.wantPath {
				t.Errorf("inner path: got %s, want %s", received, tt.wantPath)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {})

	m := module.New("/api", mux)

	var called bool
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	})

	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if !called {
		t.Error("module middleware should have been called")
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /outcomes", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", apiMux))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Handle("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	}))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"api module", "/api/outcomes", http.StatusOK, "api"},
		{"trailing slash", "/api/outcomes/", http.StatusOK, "api"},
		{"native func", "/healthz", http.StatusOK, "ok"},
		{"native handler", "/metrics", http.StatusOK, "metrics"},
		{"unknown", "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
