package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskdesk/internal/models"
)

// Generator is implemented by ReportGenerator; front ends depend on this.
type Generator interface {
	BoardReport(board models.Board, filename string) (string, error)
	AccountsReport(accounts []models.AccountSummary, filename string) (string, error)
}

type ReportGenerator struct {
	RootDir  string // output directory, e.g. "./reports"
	FontPath string // optional TTF; empty uses the core Helvetica font
	fontName string
	now      func() time.Time
}

func NewReportGenerator(rootDir, fontPath string) *ReportGenerator {
	return &ReportGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
		now:      time.Now,
	}
}

// page wraps a document together with the text encoder for its font.
type page struct {
	*gofpdf.Fpdf
	font string
	tr   func(string) string
}

func (g *ReportGenerator) newPage(title string) *page {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetAuthor("taskdesk", false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)

	p := &page{Fpdf: doc, font: g.fontName, tr: func(s string) string { return s }}
	if g.FontPath != "" {
		doc.AddUTF8Font(g.fontName, "", g.FontPath)
		doc.AddUTF8Font(g.fontName, "B", g.FontPath)
	} else {
		p.font = "Helvetica"
		p.tr = doc.UnicodeTranslatorFromDescriptor("")
	}

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(p.font, "", 9)
		doc.CellFormat(0, 10, fmt.Sprintf("%d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()
	return p
}

func (g *ReportGenerator) BoardReport(board models.Board, filename string) (string, error) {
	if filename == "" {
		filename = "board_" + safeName(board.OwnerEmail) + ".pdf"
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	p := g.newPage("Board " + board.OwnerEmail)
	g.heading(p, "Quadro de tarefas", fmt.Sprintf("%s  -  %s  -  %d",
		board.OwnerEmail, g.now().Format("02.01.2006 15:04"), board.Count()))

	for _, col := range board.Columns {
		g.sectionTitle(p, fmt.Sprintf("%s (%d)", col.Status.Label(), len(col.Tasks)))
		if len(col.Tasks) == 0 {
			p.SetFont(p.font, "", 10)
			p.CellFormat(0, 6, "-", "", 1, "L", false, 0, "")
		}
		for _, t := range col.Tasks {
			title := fmt.Sprintf("#%d  %s", t.ID, t.Title)
			if t.Priority {
				title = "[!] " + title
			}
			p.SetFont(p.font, "B", 11)
			p.MultiCell(0, 6, p.tr(title), "", "L", false)
			if t.Description != "" {
				p.SetFont(p.font, "", 10)
				p.SetX(26)
				p.MultiCell(0, 5, p.tr(t.Description), "", "L", false)
			}
			p.Ln(1)
		}
		g.hr(p)
	}

	if err := p.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write board report: %w", err)
	}
	return absPath, nil
}

func (g *ReportGenerator) AccountsReport(accounts []models.AccountSummary, filename string) (string, error) {
	if filename == "" {
		filename = "accounts.pdf"
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	p := g.newPage("Accounts")
	g.heading(p, "Usuários", fmt.Sprintf("%s  -  %d", g.now().Format("02.01.2006 15:04"), len(accounts)))

	p.SetFont(p.font, "B", 11)
	p.CellFormat(15, 7, "ID", "B", 0, "L", false, 0, "")
	p.CellFormat(70, 7, p.tr("Nome"), "B", 0, "L", false, 0, "")
	p.CellFormat(0, 7, "Email", "B", 1, "L", false, 0, "")
	p.SetFont(p.font, "", 10)
	for _, a := range accounts {
		p.CellFormat(15, 6, fmt.Sprintf("%d", a.ID), "", 0, "L", false, 0, "")
		p.CellFormat(70, 6, p.tr(a.Name), "", 0, "L", false, 0, "")
		p.CellFormat(0, 6, p.tr(a.Email), "", 1, "L", false, 0, "")
	}

	if err := p.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write accounts report: %w", err)
	}
	return absPath, nil
}

// ===== helpers =====

func (g *ReportGenerator) heading(p *page, title, sub string) {
	p.SetFont(p.font, "B", 18)
	p.CellFormat(0, 10, p.tr(title), "", 1, "C", false, 0, "")
	p.SetFont(p.font, "", 11)
	p.CellFormat(0, 7, p.tr(sub), "", 1, "C", false, 0, "")
	g.hr(p)
	p.Ln(2)
}

func (g *ReportGenerator) sectionTitle(p *page, s string) {
	p.SetFont(p.font, "B", 13)
	p.CellFormat(0, 8, p.tr(s), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(p *page) {
	y := p.GetY() + 1.5
	p.SetLineWidth(0.2)
	p.Line(20, y, 190, y)
	p.SetY(y + 2)
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	return filepath.Abs(filepath.Join(g.RootDir, filepath.Base(filename)))
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
}
