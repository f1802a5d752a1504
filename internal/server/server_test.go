package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"studyhub/internal/video"
	"studyhub/pkg/ai"
	"studyhub/pkg/domain"
	"studyhub/pkg/storage"
	"studyhub/pkg/store"
)

// fakeGen scripts provider replies for both the relay and the generation
// helpers.
type fakeGen struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []string
}

func (f *fakeGen) GenerateText(_ context.Context, _, _, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGen) setReply(reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeGen) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeGen) prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type testEnv struct {
	server  *httptest.Server
	store   *store.MemoryStore
	openai  *fakeGen
	claude  *fakeGen
	token   string
	user    domain.User
	baseURL string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	sessions, err := store.NewJWTSessionStore("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTSessionStore: %v", err)
	}
	openai := &fakeGen{reply: "hi from openai"}
	claude := &fakeGen{reply: "hi from claude"}
	router := ai.NewRouter(ai.NewRegistry(), openai, claude)

	uploads, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	renderer := video.NewRenderer(st, 20*time.Millisecond, nil)

	srv := New(Config{
		Store:           st,
		Sessions:        sessions,
		Chat:            router,
		Generator:       ai.NewGenerator(router, "gpt-4o-mini"),
		Uploads:         uploads,
		VideoDispatcher: video.NewLocalDispatcher(renderer, nil),
		MaxUploadBytes:  1 << 20,
		ChatTimeout:     time.Second,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	env := &testEnv{server: ts, store: st, openai: openai, claude: claude, baseURL: ts.URL}
	env.user, env.token = env.signup(t, "alice", "password1")
	return env
}

func (e *testEnv) signup(t *testing.T, username, password string) (domain.User, string) {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("signup status = %d body %s", status, body)
	}
	var resp struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	return resp.User, resp.Token
}

// do performs a JSON request and returns status and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func decodeAs[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %T: %v (body %s)", out, err, raw)
	}
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := decodeAs[map[string]string](t, body)["status"]; got != "ok" {
		t.Fatalf("status body = %q", got)
	}
}

func TestSignupRejectsDuplicateAndWeakPassword(t *testing.T) {
	env := newTestEnv(t)
	if status, _ := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "alice", "password": "password1",
	}); status != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d", status)
	}
	if status, _ := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "bob", "password": "123",
	}); status != http.StatusBadRequest {
		t.Fatalf("weak password status = %d", status)
	}
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "password1",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d body %s", status, body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		t.Fatalf("missing token in %s", body)
	}

	status, body = env.do(t, http.MethodGet, "/api/users/me", resp.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	if me := decodeAs[domain.User](t, body); me.Username != "alice" {
		t.Fatalf("me username = %q", me.Username)
	}

	if status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	}); status != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", status)
	}
}

func TestSeededDemoUserCanLogin(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": store.DemoUsername, "password": store.DemoPassword,
	})
	if status != http.StatusOK {
		t.Fatalf("demo login status = %d", status)
	}
}

func TestResourceRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/conversations", "/api/notes", "/api/quizzes", "/api/videos", "/api/flashcard-sets"} {
		if status, _ := env.do(t, http.MethodGet, path, "", nil); status != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d", path, status)
		}
		if status, _ := env.do(t, http.MethodGet, path, "not-a-token", nil); status != http.StatusUnauthorized {
			t.Errorf("%s with bad token: status = %d", path, status)
		}
	}
}

func TestErrorBodyShape(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.do(t, http.MethodGet, "/api/conversations", "", nil)
	resp := decodeAs[map[string]string](t, body)
	if resp["message"] == "" {
		t.Fatalf("error body missing message: %s", body)
	}
}

var errProviderDown = errors.New("upstream returned status 500")

func conversationPath(id string) string {
	return fmt.Sprintf("/api/conversations/%s", id)
}
