package commands

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/webimpactuw/workshop-calendar/internal/app"
)

// secrets returns a readSecret func answering with the given values in order
func secrets(values ...string) func(string) string {
	return func(string) string {
		if len(values) == 0 {
			return ""
		}
		v := values[0]
		values = values[1:]
		return v
	}
}

func TestPromptCredentials(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		secrets  []string
		wantUser string
		wantErr  error
	}{
		{name: "Valid", input: "admin\n", secrets: []string{"pw123456", "pw123456"}, wantUser: "admin"},
		{name: "Trims username", input: "  admin  \n", secrets: []string{"pw123456", "pw123456"}, wantUser: "admin"},
		{name: "Empty username", input: "\n", wantErr: errEmptyUsername},
		{name: "Empty password", input: "admin\n", secrets: []string{"", ""}, wantErr: errEmptyPassword},
		{name: "Mismatch", input: "admin\n", secrets: []string{"pw123456", "pw654321"}, wantErr: errMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bufio.NewReader(strings.NewReader(tt.input))
			user, password, err := promptCredentials(io.Discard, in, secrets(tt.secrets...))

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("promptCredentials() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if user != tt.wantUser || password != tt.secrets[0] {
				t.Errorf("promptCredentials() = %q, %q", user, password)
			}
		})
	}
}

func TestPromptCredentials_ClosedInput(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	if _, _, err := promptCredentials(io.Discard, in, secrets()); err == nil {
		t.Error("Expected an error on closed input")
	}
}

func TestWriteAuthFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.secret")

	if err := writeAuthFile(path, "admin", "first-password", false, io.Discard, bufio.NewReader(strings.NewReader(""))); err != nil {
		t.Fatalf("writeAuthFile() failed: %v", err)
	}

	t.Run("Declined overwrite", func(t *testing.T) {
		err := writeAuthFile(path, "other", "second-password", false, io.Discard, bufio.NewReader(strings.NewReader("n\n")))
		if !errors.Is(err, errAborted) {
			t.Fatalf("Expected errAborted, got %v", err)
		}
		assertAuthUser(t, path, "admin")
	})

	t.Run("Confirmed overwrite", func(t *testing.T) {
		err := writeAuthFile(path, "other", "second-password", false, io.Discard, bufio.NewReader(strings.NewReader("YES\n")))
		if err != nil {
			t.Fatalf("writeAuthFile() failed: %v", err)
		}
		assertAuthUser(t, path, "other")
	})

	t.Run("Overwrite flag", func(t *testing.T) {
		err := writeAuthFile(path, "third", "third-password", true, io.Discard, bufio.NewReader(strings.NewReader("")))
		if err != nil {
			t.Fatalf("writeAuthFile() failed: %v", err)
		}
		assertAuthUser(t, path, "third")
	})
}

func assertAuthUser(t *testing.T, path, want string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read auth file: %v", err)
	}
	if !strings.HasPrefix(string(content), want+":") {
		t.Errorf("Expected auth file for %s, got %q", want, content)
	}

	auth, err := app.LoadAuthenticator(path)
	if err != nil {
		t.Fatalf("LoadAuthenticator() failed: %v", err)
	}
	if auth.User != want || !auth.Enabled() {
		t.Errorf("Authenticator user = %q, enabled = %v", auth.User, auth.Enabled())
	}
}
