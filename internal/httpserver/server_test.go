package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/robalobadob/wordle-api/internal/game"
	"github.com/robalobadob/wordle-api/internal/metrics"
	"github.com/robalobadob/wordle-api/internal/service"
	"github.com/robalobadob/wordle-api/internal/store"
)

func newTestServer(t *testing.T, maxAttempts int, opts Options) *Server {
	t.Helper()
	repo, err := store.NewMemory(maxAttempts)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	opts.MaxAttempts = maxAttempts
	return New(service.New(repo, service.Options{}), opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type attemptJSON struct {
	Solved  bool `json:"solved"`
	Letters []struct {
		Letter string `json:"letter"`
		State  string `json:"state"`
	} `json:"letters"`
}

type gameJSON struct {
	ID          string        `json:"id"`
	Attempts    []attemptJSON `json:"attempts"`
	Finished    bool          `json:"finished"`
	MaxAttempts int           `json:"maxAttempts"`
	WordLength  int           `json:"wordLength"`
}

func createGame(t *testing.T, h http.Handler) gameJSON {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/game", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /game = %d %s", rec.Code, rec.Body)
	}
	return decode[gameJSON](t, rec)
}

func TestCreateAndGetGame(t *testing.T) {
	h := newTestServer(t, 6, Options{}).Router()

	rec := do(t, h, http.MethodPost, "/game", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	raw := decode[map[string]any](t, rec)
	if _, ok := raw["target"]; ok {
		t.Fatal("response exposes the target")
	}
	created := decode[gameJSON](t, rec)
	if created.ID == "" || created.Finished || len(created.Attempts) != 0 {
		t.Fatalf("created = %+v", created)
	}
	if created.MaxAttempts != 6 || created.WordLength != 5 {
		t.Fatalf("maxAttempts=%d wordLength=%d", created.MaxAttempts, created.WordLength)
	}

	rec = do(t, h, http.MethodGet, "/game/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if got := decode[gameJSON](t, rec); got.ID != created.ID {
		t.Fatalf("got id %s, want %s", got.ID, created.ID)
	}
}

func TestGuessFlow(t *testing.T) {
	h := newTestServer(t, 6, Options{}).Router()
	g := createGame(t, h)
	path := "/game/" + g.ID + "/guess"

	rec := do(t, h, http.MethodPost, path, `{"letters":["x","x","x","x","x"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("miss: %d %s", rec.Code, rec.Body)
	}
	got := decode[gameJSON](t, rec)
	if got.Finished || len(got.Attempts) != 1 || got.Attempts[0].Letters[0].State != "Incorrect" {
		t.Fatalf("after miss: %+v", got)
	}

	rec = do(t, h, http.MethodPost, path, `{"letters":["s","t","a","v","e"]}`)
	got = decode[gameJSON](t, rec)
	if rec.Code != http.StatusOK || !got.Finished || !got.Attempts[1].Solved {
		t.Fatalf("win: %d %+v", rec.Code, got)
	}
	if l := got.Attempts[1].Letters[0]; l.Letter != "s" || l.State != "Correct" {
		t.Fatalf("first letter = %+v", l)
	}
}

func TestErrorMapping(t *testing.T) {
	h := newTestServer(t, 6, Options{}).Router()
	g := createGame(t, h)
	finished := createGame(t, h)
	do(t, h, http.MethodPost, "/game/"+finished.ID+"/guess", `{"letters":["s","t","a","v","e"]}`)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown game", http.MethodGet, "/game/nope", "", 404, "NOT_FOUND"},
		{"guess unknown game", http.MethodPost, "/game/nope/guess", `{"letters":["s","t","a","v","e"]}`, 404, "NOT_FOUND"},
		{"upper case letter", http.MethodPost, "/game/" + g.ID + "/guess", `{"letters":["S","t","a","v","e"]}`, 400, "INVALID_LETTER"},
		{"multi-char token", http.MethodPost, "/game/" + g.ID + "/guess", `{"letters":["st","a","v","e","x"]}`, 400, "INVALID_LETTER"},
		{"short guess", http.MethodPost, "/game/" + g.ID + "/guess", `{"letters":["s","t"]}`, 400, "INVALID_LENGTH"},
		{"missing letters", http.MethodPost, "/game/" + g.ID + "/guess", `{}`, 400, "INVALID_LENGTH"},
		{"finished game", http.MethodPost, "/game/" + finished.ID + "/guess", `{"letters":["x","x","x","x","x"]}`, 400, "GAME_FINISHED"},
		{"malformed json", http.MethodPost, "/game/" + g.ID + "/guess", `{"letters":`, 400, "BAD_JSON"},
		{"unknown route", http.MethodGet, "/nope", "", 404, "NOT_FOUND"},
		{"wrong method", http.MethodDelete, "/game/" + g.ID, "", 405, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if body := decode[errorBody](t, rec); body.Code != tt.wantCode || body.Message == "" {
				t.Fatalf("body = %+v, want code %s", body, tt.wantCode)
			}
		})
	}

	stored := decode[gameJSON](t, do(t, h, http.MethodGet, "/game/"+finished.ID, ""))
	if len(stored.Attempts) != 1 {
		t.Fatalf("finished game has %d attempts, want 1", len(stored.Attempts))
	}
}

type failingService struct{}

func (failingService) CreateGame(context.Context) (game.Game, error) {
	return game.Game{}, errors.New("disk on fire")
}

func (failingService) GetGame(context.Context, game.ID) (game.Game, error) {
	return game.Game{}, errors.New("disk on fire")
}

func (failingService) Guess(context.Context, game.ID, []string) (game.Game, error) {
	return game.Game{}, errors.New("disk on fire")
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	h := New(failingService{}, Options{}).Router()
	rec := do(t, h, http.MethodPost, "/game", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[errorBody](t, rec)
	if body.Code != "INTERNAL" || strings.Contains(body.Message, "disk") {
		t.Fatalf("body = %+v", body)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, 6, Options{RateLimitRPS: 0.001, RateLimitBurst: 1}).Router()
	if rec := do(t, h, http.MethodPost, "/game", ""); rec.Code != http.StatusCreated {
		t.Fatalf("first request = %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/game", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", rec.Code)
	}
	if decode[errorBody](t, rec).Code != "RATE_LIMITED" {
		t.Fatalf("body = %s", rec.Body)
	}
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health is limited: %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, 6, Options{ClientOrigin: "https://play.example"}).Router()
	rec := do(t, h, http.MethodOptions, "/game", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://play.example" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	repo, _ := store.NewMemory(6)
	h := New(service.New(repo, service.Options{Observer: m}), Options{Metrics: m, MaxAttempts: 6}).Router()

	createGame(t, h)
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"wordle_games_created_total 1",
		`http_requests_total{method="POST",route="/game`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHealthAndIndex(t *testing.T) {
	h := newTestServer(t, 6, Options{}).Router()
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != 200 || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, http.MethodGet, "/", ""); rec.Code != 200 || !strings.Contains(rec.Body.String(), "wordle-api") {
		t.Fatalf("index = %d %s", rec.Code, rec.Body)
	}
}

func TestShutdownStopsStart(t *testing.T) {
	srv := newTestServer(t, 6, Options{})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := srv.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start after Shutdown = %v, want nil", err)
	}
}
