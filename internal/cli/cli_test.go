package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskdesk/internal/authz"
	"taskdesk/internal/models"
	"taskdesk/internal/session"
)

type harness struct {
	t   *testing.T
	cfg string
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`database:
  driver: sqlite
  url: %s
session:
  secret: test-secret
  ttl: 1h
  file: %s
reports:
  dir: %s
`, filepath.Join(dir, "tasks.db"), filepath.Join(dir, "session"), filepath.Join(dir, "reports"))
	if err := os.WriteFile(cfg, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return &harness{t: t, cfg: cfg, dir: dir}
}

func (h *harness) run(args ...string) (int, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), append([]string{"--config", h.cfg}, args...), &out, &errOut)
	return code, out.String() + errOut.String()
}

func (h *harness) expect(code int, contains string, args ...string) string {
	h.t.Helper()
	got, out := h.run(args...)
	if got != code {
		h.t.Fatalf("%v: exit %d, want %d\n%s", args, got, code, out)
	}
	if !strings.Contains(out, contains) {
		h.t.Fatalf("%v: output %q lacks %q", args, out, contains)
	}
	return out
}

func TestCLI_OwnerWorkflow(t *testing.T) {
	h := newHarness(t)

	h.expect(ExitOK, "store ready", "init")
	h.expect(ExitOK, "registered alice@x.com", "register", "--name", "Alice", "--email", "alice@x.com", "--password", "pw1")
	h.expect(ExitRefused, "already registered", "register", "--name", "Other", "--email", "alice@x.com", "--password", "pw2")
	h.expect(ExitRefused, "invalid email", "register", "--name", "Bad", "--email", "not an email", "--password", "x")

	h.expect(ExitRefused, "not logged in", "task", "list")
	h.expect(ExitRefused, "wrong email or password", "login", "--email", "alice@x.com", "--password", "PW1")
	h.expect(ExitOK, "welcome, Alice", "login", "--email", "alice@x.com", "--password", "pw1")
	h.expect(ExitOK, "alice@x.com (padrao)", "whoami")

	h.expect(ExitOK, "task 1 created", "task", "add", "--title", "Buy milk", "--desc", "2 liters")
	h.expect(ExitRefused, "title is required", "task", "add", "--title", "  ")
	h.expect(ExitRefused, "unknown status", "task", "add", "--title", "x", "--status", "Archived")

	h.expect(ExitRefused, "no column", "task", "move", "1", "prev")
	h.expect(ExitOK, "status updated", "task", "move", "1", "next")
	h.expect(ExitOK, "priority updated", "task", "priority", "1", "on")
	out := h.expect(ExitOK, "moves: ToDo, Done", "task", "show", "1")
	if !strings.Contains(out, "status: InProgress  priority: true") {
		t.Fatalf("unexpected show output:\n%s", out)
	}
	h.expect(ExitOK, "Buy milk", "task", "list")
	h.expect(ExitOK, "== InProgress (1)", "board", "show")

	h.expect(ExitRefused, "administrator session required", "users", "list")
	h.expect(ExitRefused, "no permission", "board", "show", "--owner", "admin")

	h.expect(ExitOK, "", "logout")
	h.expect(ExitRefused, "not logged in", "whoami")
}

func TestCLI_AdministratorWorkflow(t *testing.T) {
	h := newHarness(t)

	h.expect(ExitOK, "registered", "register", "--name", "Alice", "--email", "alice@x.com", "--password", "pw1")
	h.expect(ExitOK, "welcome, Alice", "login", "--email", "alice@x.com", "--password", "pw1")
	h.expect(ExitOK, "task 1 created", "task", "add", "--title", "Buy milk")

	h.expect(ExitOK, "welcome, Administrador", "login", "--email", "admin", "--password", "admin")
	h.expect(ExitOK, "admin (administrador)", "whoami")
	h.expect(ExitOK, "status updated", "task", "status", "1", "Em Progresso")
	h.expect(ExitOK, "Buy milk", "board", "show", "--owner", "alice@x.com")

	out := h.expect(ExitOK, "Alice", "users", "list")
	if strings.Index(out, "Administrador") > strings.Index(out, "Alice") {
		t.Fatalf("accounts not sorted by name:\n%s", out)
	}

	path := strings.TrimSpace(h.expect(ExitOK, ".pdf", "board", "export", "--owner", "alice@x.com"))
	if b, err := os.ReadFile(path); err != nil || !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("board export %s: err=%v", path, err)
	}
	h.expect(ExitOK, "accounts.pdf", "users", "export")

	h.expect(ExitRefused, "administrator account", "users", "delete", "admin")
	h.expect(ExitRefused, "not found", "users", "delete", "ghost@x.com")
	h.expect(ExitOK, "deleted alice@x.com", "users", "delete", "alice@x.com")
	h.expect(ExitRefused, "not found", "task", "show", "1")
}

func TestCLI_StaleSessionAfterAccountDeletion(t *testing.T) {
	h := newHarness(t)

	h.expect(ExitOK, "registered", "register", "--name", "Bob", "--email", "bob@x.com", "--password", "pw")
	h.expect(ExitOK, "welcome, Bob", "login", "--email", "bob@x.com", "--password", "pw")
	bobToken, err := os.ReadFile(filepath.Join(h.dir, "session"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	h.expect(ExitOK, "welcome", "login", "--email", "admin", "--password", "admin")
	h.expect(ExitOK, "deleted bob@x.com", "users", "delete", "bob@x.com")

	if err := os.WriteFile(filepath.Join(h.dir, "session"), bobToken, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	h.expect(ExitRefused, "no longer exists", "task", "list")
}

func TestCLI_RoleComesFromStoreNotToken(t *testing.T) {
	h := newHarness(t)
	h.expect(ExitOK, "registered", "register", "--name", "Mallory", "--email", "mallory@x.com", "--password", "pw")

	forged, err := session.NewManager("test-secret", time.Hour).Issue(models.Account{
		Email: "mallory@x.com",
		Role:  authz.RoleAdministrator,
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := session.Save(filepath.Join(h.dir, "session"), forged); err != nil {
		t.Fatalf("Save: %v", err)
	}

	h.expect(ExitOK, "mallory@x.com (padrao)", "whoami")
	h.expect(ExitRefused, "administrator session required", "users", "list")
	h.expect(ExitRefused, "no permission", "board", "show", "--owner", "admin")
}

func TestCLI_UsageErrors(t *testing.T) {
	h := newHarness(t)
	if code, _ := h.run("frobnicate"); code != ExitUsage {
		t.Fatalf("unknown command: exit %d, want %d", code, ExitUsage)
	}

	bad := filepath.Join(h.dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("database:\n  driver: mysql\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	var out, errOut bytes.Buffer
	if code := Execute(context.Background(), []string{"--config", bad, "init"}, &out, &errOut); code != ExitUsage {
		t.Fatalf("invalid config: exit %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(errOut.String(), "database.driver") {
		t.Fatalf("unexpected error output %q", errOut.String())
	}
}
