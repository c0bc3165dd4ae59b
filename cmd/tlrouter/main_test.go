package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/tlrouter/keystore"
	"github.com/ZaguanLabs/tlrouter/provider"
)

// isolate points config discovery and the auth file at a temp dir and
// clears vendor key variables.
func isolate(t *testing.T, configYAML string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	for _, name := range []string{"OPENAI_API_KEY", "GROQ_API_KEY", "CEREBRAS_API_KEY", "XAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(name, "")
	}

	path := filepath.Join(dir, "tlrouter.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TLROUTER_CONFIG", path)
	return dir
}

func runCLI(t *testing.T, ctx context.Context, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(ctx, args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, context.Background(), "", "version")

	if code != exitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if !strings.HasPrefix(stdout, "tlrouter ") {
		t.Errorf("expected version output, got: %s", stdout)
	}
	if !strings.Contains(stdout, "github.com/ZaguanLabs/tlrouter") {
		t.Errorf("expected repository in version output, got: %s", stdout)
	}
}

func TestRun_MissingTarget(t *testing.T) {
	isolate(t, "")
	code, _, stderr := runCLI(t, context.Background(), "", "translate", "Hello")

	if code != exitError {
		t.Fatalf("expected exit code %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr, `"to" not set`) {
		t.Errorf("expected required flag error, got: %s", stderr)
	}
}

func TestRun_DryRun(t *testing.T) {
	isolate(t, "")
	code, stdout, stderr := runCLI(t, context.Background(), "", "translate", "--dry-run", "--to", "es", "Hello")

	if code != exitOK {
		t.Fatalf("dry-run failed (%d): %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "Hola" {
		t.Errorf("expected 'Hola', got: %q", stdout)
	}
	if !strings.Contains(stderr, "via mock/mock") {
		t.Errorf("expected routing details on stderr, got: %q", stderr)
	}
}

func TestRun_DryRunStdinJSON(t *testing.T) {
	isolate(t, "")
	code, stdout, stderr := runCLI(t, context.Background(), "Hello World\n", "translate", "--dry-run", "--to", "es", "--json", "--analysis", "grammar", "-")

	if code != exitOK {
		t.Fatalf("dry-run failed (%d): %s", code, stderr)
	}

	var out struct {
		Result struct {
			Translation string `json:"translation"`
			Grammar     *struct {
				Structure string `json:"structure"`
			} `json:"grammar"`
		} `json:"result"`
		Provider  string `json:"provider"`
		Attempts  int    `json:"attempts"`
		ElapsedMs *int64 `json:"elapsed_ms"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if out.Result.Translation != "Hola Mundo" {
		t.Errorf("expected 'Hola Mundo', got %q", out.Result.Translation)
	}
	if out.Result.Grammar == nil {
		t.Error("expected grammar analysis in output")
	}
	if out.Provider != "mock" || out.Attempts != 1 || out.ElapsedMs == nil {
		t.Errorf("unexpected routing fields: %+v", out)
	}
}

func TestRun_Analyze(t *testing.T) {
	isolate(t, "")
	code, stdout, stderr := runCLI(t, context.Background(), "", "analyze", "--dry-run", "--from", "en", "--to", "es", "--kind", "vocabulary", "--translation", "Hola", "-q", "Hello")

	if code != exitOK {
		t.Fatalf("analyze failed (%d): %s", code, stderr)
	}
	if !strings.Contains(stdout, "Vocabulary:") || !strings.Contains(stdout, "Hello -> Hola") {
		t.Errorf("unexpected output: %s", stdout)
	}
	if stderr != "" {
		t.Errorf("--quiet should silence stderr, got %q", stderr)
	}
}

func TestRun_NoKeys(t *testing.T) {
	isolate(t, "keys:\n  env: false\n  file: \"-\"\n")
	code, _, stderr := runCLI(t, context.Background(), "", "translate", "--to", "es", "Hello")

	if code != exitError {
		t.Fatalf("expected exit code %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr, "no usable provider configuration") {
		t.Errorf("expected no-key error, got: %s", stderr)
	}
}

func TestRun_Aborted(t *testing.T) {
	isolate(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, stdout, stderr := runCLI(t, ctx, "", "translate", "--dry-run", "--to", "es", "Hello")

	if code != exitAborted {
		t.Fatalf("expected exit code %d, got %d", exitAborted, code)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("aborted run should be silent, got stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestRun_FallbackOnCongestion(t *testing.T) {
	var groqCalls, openaiCalls atomic.Int32

	groq := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		groqCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"Rate limit reached"}}`)
	}))
	defer groq.Close()

	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		openaiCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"translation\":\"Hallo\"}"}}]}`)
	}))
	defer openai.Close()

	isolate(t, `
plan:
  - provider: groq
    endpoint: `+groq.URL+`
  - provider: openai
    endpoint: `+openai.URL+`
depth: 2
keys:
  env: false
  file: "-"
  static:
    groq: gsk-test
    openai: sk-test
`)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"translate", "--from", "en", "--to", "de", "Hello"},
		strings.NewReader(""), &stdout, &stderr, provider.WithHTTPClient(http.DefaultClient))

	if code != exitOK {
		t.Fatalf("translate failed (%d): %s", code, stderr.String())
	}
	if strings.TrimSpace(stdout.String()) != "Hallo" {
		t.Errorf("expected 'Hallo', got %q", stdout.String())
	}
	if groqCalls.Load() != 1 || openaiCalls.Load() != 1 {
		t.Errorf("expected one call per step, got groq=%d openai=%d", groqCalls.Load(), openaiCalls.Load())
	}
	if !strings.Contains(stderr.String(), "via openai/gpt-4o-mini") || !strings.Contains(stderr.String(), "step 2") {
		t.Errorf("expected second step to answer, got: %s", stderr.String())
	}
}

func TestRun_UnknownProvider(t *testing.T) {
	isolate(t, "keys:\n  static:\n    openai: sk\n")
	code, _, stderr := runCLI(t, context.Background(), "", "translate", "--provider", "deepl", "--to", "es", "Hello")

	if code != exitError {
		t.Fatalf("expected exit code %d, got %d", exitError, code)
	}
	if !strings.Contains(stderr, "no usable provider configuration") && !strings.Contains(stderr, "unsupported provider") {
		t.Errorf("expected provider error, got: %s", stderr)
	}
}

func TestRun_Keys(t *testing.T) {
	dir := isolate(t, "")
	authFile := filepath.Join(dir, "auth.json")

	code, stdout, stderr := runCLI(t, context.Background(), "", "keys", "--file", authFile, "set", "groq", "gsk-1234567890")
	if code != exitOK {
		t.Fatalf("keys set failed (%d): %s", code, stderr)
	}
	if strings.Contains(stdout, "gsk-1234567890") {
		t.Errorf("keys set must not echo the full key: %s", stdout)
	}

	code, stdout, _ = runCLI(t, context.Background(), "", "keys", "--file", authFile, "list")
	if code != exitOK || !strings.Contains(stdout, "groq\t****7890") {
		t.Errorf("unexpected keys list output (%d): %q", code, stdout)
	}

	for _, id := range []string{"deepl", "mock"} {
		code, _, stderr = runCLI(t, context.Background(), "", "keys", "--file", authFile, "set", id, "k")
		if code != exitError || !strings.Contains(stderr, "unknown provider") {
			t.Errorf("keys set %s: expected unknown provider error, got (%d) %s", id, code, stderr)
		}
	}
}

func TestRun_Providers(t *testing.T) {
	isolate(t, "plan:\n  - provider: gemini\ndepth: 1\nkeys:\n  env: false\n  file: \"-\"\n  static:\n    gemini: AIza-123456789\n")
	code, stdout, stderr := runCLI(t, context.Background(), "", "providers")

	if code != exitOK {
		t.Fatalf("providers failed (%d): %s", code, stderr)
	}
	for _, want := range []string{"openai", "groq", "cerebras", "xai", "gemini-2.0-flash", "****6789", "step 1"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "AIza-123456789") {
		t.Error("providers must not print full keys")
	}
}

func TestRun_ProvidersRateLimit(t *testing.T) {
	isolate(t, "rate_limit:\n  requests_per_minute: 60\n  burst: 4\nkeys:\n  env: false\n  file: \"-\"\n")
	code, stdout, stderr := runCLI(t, context.Background(), "", "providers")

	if code != exitOK {
		t.Fatalf("providers failed (%d): %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if !strings.Contains(lines[0], "TOKENS") {
		t.Errorf("expected TOKENS column, got header %q", lines[0])
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if fields[len(fields)-1] != "4" {
			t.Errorf("expected a full bucket of 4 tokens, got %q", line)
		}
	}
}

func TestRun_KeysRedis(t *testing.T) {
	isolate(t, "keys:\n  redis:\n    url: redis://127.0.0.1:6379/3\n    prefix: \"team:\"\n")

	tests := []struct {
		name   string
		args   []string
		expect func(mock redismock.ClientMock)
		want   string
	}{
		{
			name:   "set",
			args:   []string{"keys", "--redis", "set", "groq", "gsk-1234567890"},
			expect: func(mock redismock.ClientMock) { mock.ExpectSet("team:groq", "gsk-1234567890", 0).SetVal("OK") },
			want:   "Stored groq key ****7890 in redis",
		},
		{
			name:   "remove",
			args:   []string{"keys", "--redis", "remove", "groq"},
			expect: func(mock redismock.ClientMock) { mock.ExpectDel("team:groq").SetVal(1) },
			want:   "Removed groq key from redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				stdout, stderr bytes.Buffer
				mock           redismock.ClientMock
				gotURL         string
			)
			a := &app{
				stdin:  strings.NewReader(""),
				stdout: &stdout,
				stderr: &stderr,
				newRedis: func(_ context.Context, cfg keystore.RedisConfig) (*keystore.Redis, error) {
					gotURL = cfg.URL
					var db *redis.Client
					db, mock = redismock.NewClientMock()
					tt.expect(mock)
					return keystore.NewRedisFromClient(db, cfg.KeyPrefix), nil
				},
			}

			if code := a.execute(context.Background(), tt.args); code != exitOK {
				t.Fatalf("exit code %d: %s", code, stderr.String())
			}
			if gotURL != "redis://127.0.0.1:6379/3" {
				t.Errorf("connected to %q, want the configured URL", gotURL)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("expected %q, got %q", tt.want, stdout.String())
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestRun_KeysRedisNotConfigured(t *testing.T) {
	isolate(t, "")
	code, _, stderr := runCLI(t, context.Background(), "", "keys", "--redis", "list")

	if code != exitError || !strings.Contains(stderr, "keys.redis.url") {
		t.Errorf("expected missing redis config error, got (%d) %s", code, stderr)
	}
}
