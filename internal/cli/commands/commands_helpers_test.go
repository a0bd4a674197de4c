package commands

import (
	"FieldScribe/internal/config"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// testConfig направляет клиента на тестовый сервер, токен хранится в temp.
func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	return &config.Config{ServerURL: serverURL, TokenFile: filepath.Join(t.TempDir(), "token")}
}

func writeToken(t *testing.T, cfg *config.Config, token string) {
	t.Helper()
	if err := os.WriteFile(cfg.TokenFile, []byte(token), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}
