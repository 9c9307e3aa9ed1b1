package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskdesk/internal/models"
)

func readPDF(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("%s is not a PDF", path)
	}
	return b
}

func TestBoardReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	g := NewReportGenerator(dir, "")
	g.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	board := models.Board{
		OwnerEmail: "joão@x.com",
		Columns: []models.Column{
			{Status: models.StatusToDo, Tasks: []models.Task{
				{ID: 2, Title: "Comprar pão", Description: "padaria às 8h", Priority: true, Status: models.StatusToDo},
			}},
			{Status: models.StatusInProgress, Tasks: []models.Task{}},
			{Status: models.StatusDone, Tasks: []models.Task{{ID: 1, Title: "Feito", Status: models.StatusDone}}},
		},
	}

	path, err := g.BoardReport(board, "")
	if err != nil {
		t.Fatalf("BoardReport: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Fatalf("expected absolute path, got %s", path)
	}
	if filepath.Base(path) != "board_jo_o_x.com.pdf" {
		t.Fatalf("unexpected default name %s", filepath.Base(path))
	}
	readPDF(t, path)
}

func TestAccountsReport_NameStaysInsideRoot(t *testing.T) {
	dir := t.TempDir()
	g := NewReportGenerator(dir, "")

	path, err := g.AccountsReport([]models.AccountSummary{
		{ID: 1, Name: "Administrador", Email: "admin"},
		{ID: 2, Name: "Ana Silva", Email: "ana@x.com"},
	}, "../../escape.pdf")
	if err != nil {
		t.Fatalf("AccountsReport: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report written outside root: %s", path)
	}
	readPDF(t, path)
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"alice@x.com": "alice_x.com",
		"a b/c":       "a_b_c",
		"ok-1.2":      "ok-1.2",
	}
	for in, want := range cases {
		if got := safeName(in); got != want {
			t.Fatalf("safeName(%q) = %q, want %q", in, got, want)
		}
	}
}
