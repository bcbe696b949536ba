package devserver_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"airpulse/internal/devserver"
)

const secret = "test-secret"

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newServer(t *testing.T, mutate func(*devserver.Config)) (*httptest.Server, *stepClock) {
	t.Helper()
	clk := &stepClock{now: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	cfg := devserver.Config{Secret: secret, Clock: clk}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := devserver.New(cfg)
	if err != nil {
		t.Fatalf("new devserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, clk
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func register(t *testing.T, base, email string) {
	t.Helper()
	resp, body := postJSON(t, base+"/api/auth/register", map[string]string{
		"name": "Ada", "email": email, "password": "secret1", "userType": "Doctor",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d body %v", resp.StatusCode, body)
	}
}

func login(t *testing.T, base, email string) string {
	t.Helper()
	resp, body := postJSON(t, base+"/api/auth/login", map[string]string{"email": email, "password": "secret1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d body %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	return token
}

func TestRegisterThenLoginIssuesSignedToken(t *testing.T) {
	t.Parallel()
	ts, _ := newServer(t, nil)
	register(t, ts.URL, "Ada@Example.com ")

	resp, body := postJSON(t, ts.URL+"/api/auth/login", map[string]string{"email": "ada@example.com", "password": "secret1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "ada@example.com" || user["role"] != "Doctor" || user["_id"] == "" {
		t.Fatalf("unexpected user payload: %v", user)
	}

	claims := &devserver.Claims{}
	_, err := jwt.ParseWithClaims(body["token"].(string), claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "ada@example.com" || claims.UserID != user["_id"] {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterAndLoginRejections(t *testing.T) {
	t.Parallel()
	ts, _ := newServer(t, nil)
	register(t, ts.URL, "ada@example.com")

	cases := []struct {
		name    string
		path    string
		body    map[string]string
		status  int
		message string
	}{
		{"duplicate", "/api/auth/register", map[string]string{"name": "A", "email": "ada@example.com", "password": "secret1"}, 400, "User already exists"},
		{"short password", "/api/auth/register", map[string]string{"name": "A", "email": "b@example.com", "password": "123"}, 400, "Password must be at least 6 characters"},
		{"missing field", "/api/auth/register", map[string]string{"email": "c@example.com", "password": "secret1"}, 400, "All fields are required"},
		{"bad user type", "/api/auth/register", map[string]string{"name": "A", "email": "d@example.com", "password": "secret1", "userType": "Admin"}, 400, "User type must be Normal or Doctor"},
		{"wrong password", "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "nope12"}, 401, "Invalid credentials"},
		{"unknown user", "/api/auth/login", map[string]string{"email": "who@example.com", "password": "secret1"}, 401, "Invalid credentials"},
	}
	for _, tc := range cases {
		resp, body := postJSON(t, ts.URL+tc.path, tc.body)
		if resp.StatusCode != tc.status || body["message"] != tc.message {
			t.Fatalf("%s: expected %d %q, got %d %v", tc.name, tc.status, tc.message, resp.StatusCode, body)
		}
	}
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	t.Parallel()
	ts, _ := newServer(t, func(c *devserver.Config) {
		c.LoginRate = 0.001
		c.LoginBurst = 2
	})
	creds := map[string]string{"email": "x@example.com", "password": "secret1"}
	for i := 0; i < 2; i++ {
		if resp, _ := postJSON(t, ts.URL+"/api/auth/login", creds); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, resp.StatusCode)
		}
	}
	if resp, _ := postJSON(t, ts.URL+"/api/auth/login", creds); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", resp.StatusCode)
	}
}

func upload(t *testing.T, base, title string) map[string]any {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", title)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("RIFF....WAVE"))
	_ = w.WriteField("title", title)
	_ = w.WriteField("duration", "45")
	_ = w.Close()

	resp, err := http.Post(base+"/api/recordings", w.FormDataContentType(), buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status %d", resp.StatusCode)
	}
	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	return out
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestRecordingLifecycle(t *testing.T) {
	t.Parallel()
	ts, _ := newServer(t, nil)

	first := upload(t, ts.URL, "rec_1780300846000.wav")
	second := upload(t, ts.URL, "rec_1780300846000.wav")
	if first["_id"] != "rec_1780300846000.wav" || second["_id"] != "rec_1780300846000.wav-2" {
		t.Fatalf("unexpected ids: %v %v", first["_id"], second["_id"])
	}
	if first["duration"] != float64(45) {
		t.Fatalf("expected duration 45, got %v", first["duration"])
	}

	var list []map[string]any
	if status := getJSON(t, ts.URL+"/api/recordings", &list); status != http.StatusOK || len(list) != 2 {
		t.Fatalf("list: status %d len %d", status, len(list))
	}
	if list[0]["_id"] != second["_id"] {
		t.Fatalf("expected newest first, got %v", list[0]["_id"])
	}

	var a, b struct {
		BPM    float64   `json:"bpm"`
		ECG    []float64 `json:"ecg"`
		Status string    `json:"status"`
	}
	getJSON(t, ts.URL+"/api/recordings/analyze/rec_1780300846000.wav", &a)
	getJSON(t, ts.URL+"/api/recordings/analyze/rec_1780300846000.wav", &b)
	if a.BPM < 58 || a.BPM > 102 || len(a.ECG) != 120 || a.Status == "" {
		t.Fatalf("unexpected analysis: %+v", a)
	}
	if a.BPM != b.BPM || a.Status != b.Status || a.ECG[10] != b.ECG[10] {
		t.Fatalf("analysis must be deterministic")
	}
	if status := getJSON(t, ts.URL+"/api/recordings/analyze/missing", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown analysis, got %d", status)
	}
	if status := getJSON(t, ts.URL+"/api/files/rec_1780300846000.wav", nil); status != http.StatusOK {
		t.Fatalf("expected audio file, got %d", status)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/recordings/rec_1780300846000.wav", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete again: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestBulkUploadImportsInboxOnce(t *testing.T) {
	t.Parallel()
	inbox := t.TempDir()
	for _, name := range []string{"a.wav", "b.m4a", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(inbox, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	ts, _ := newServer(t, func(c *devserver.Config) { c.InboxDir = inbox })

	resp, body := postJSON(t, ts.URL+"/api/recordings/bulk-upload", map[string]string{})
	if resp.StatusCode != http.StatusOK || body["count"] != float64(2) {
		t.Fatalf("first bulk: %d %v", resp.StatusCode, body)
	}
	_, body = postJSON(t, ts.URL+"/api/recordings/bulk-upload", map[string]string{})
	if body["count"] != float64(0) {
		t.Fatalf("second bulk should import nothing, got %v", body)
	}
}

func TestConcurrentBulkUploadsImportEachFileOnce(t *testing.T) {
	t.Parallel()
	inbox := t.TempDir()
	const files = 20
	for i := 0; i < files; i++ {
		name := filepath.Join(inbox, "rec_"+string(rune('a'+i))+".wav")
		if err := os.WriteFile(name, []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("write inbox file: %v", err)
		}
	}
	ts, _ := newServer(t, func(c *devserver.Config) { c.InboxDir = inbox })

	const callers = 8
	counts := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/api/recordings/bulk-upload", "application/json", nil)
			if err != nil {
				t.Errorf("bulk upload: %v", err)
				return
			}
			defer resp.Body.Close()
			var body struct {
				Count int `json:"count"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Errorf("decode bulk upload: %v", err)
				return
			}
			counts[i] = body.Count
		}(i)
	}
	wg.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	if total != files {
		t.Fatalf("expected %d imports across callers, got %d (%v)", files, total, counts)
	}
	var listed []map[string]any
	if status := getJSON(t, ts.URL+"/api/recordings", &listed); status != http.StatusOK || len(listed) != files {
		t.Fatalf("expected %d listed recordings, got %d (status %d)", files, len(listed), status)
	}
}

func TestRecordingsAcceptAnonymousButRejectBadTokens(t *testing.T) {
	t.Parallel()
	ts, clk := newServer(t, func(c *devserver.Config) { c.TokenTTL = time.Hour })
	register(t, ts.URL, "ada@example.com")
	token := login(t, ts.URL, "ada@example.com")

	do := func(auth string) int {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/recordings", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if got := do(""); got != http.StatusOK {
		t.Fatalf("anonymous list: %d", got)
	}
	if got := do("Bearer " + token); got != http.StatusOK {
		t.Fatalf("authorized list: %d", got)
	}
	if got := do("Bearer garbage"); got != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", got)
	}
	clk.Advance(2 * time.Hour)
	if got := do("Bearer " + token); got != http.StatusUnauthorized {
		t.Fatalf("expired token: %d", got)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	t.Parallel()
	ts, _ := newServer(t, nil)
	var health map[string]string
	if status := getJSON(t, ts.URL+"/api/health", &health); status != http.StatusOK || health["status"] != "ok" {
		t.Fatalf("health: %d %v", status, health)
	}
	if status := getJSON(t, ts.URL+"/api/nope", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestNewRequiresSecret(t *testing.T) {
	t.Parallel()
	if _, err := devserver.New(devserver.Config{}); err == nil {
		t.Fatalf("expected error without secret")
	}
}
