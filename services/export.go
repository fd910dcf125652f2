package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"

	"kanzlei_app_go/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Export artifact names written into the case directory at close time
const (
	MasterDataExportName    = "stammdaten.json"
	ClosingReportExportName = "abschlussbericht.pdf"
)

// Exporter is the global export collaborator invoked after a close
var Exporter CaseExporter

// CaseExporter produces the derived artifacts for a freshly closed case.
// The frozen snapshot fields are the durable guarantee; exporters may fail
// and be re-run later without affecting the close transition.
type CaseExporter interface {
	ExportClosedCase(db *gorm.DB, kase *models.Case) error
}

// FileExporter writes a structured master-data export and a rendered closing
// report into the case directory on the storage root
type FileExporter struct {
	store      *DocumentStore
	pdfEnabled bool
	sanitizer  *bluemonday.Policy
}

// NewFileExporter creates the default exporter. With pdfEnabled false only
// the JSON export is produced (for hosts without a Chrome binary).
func NewFileExporter(store *DocumentStore, pdfEnabled bool) *FileExporter {
	return &FileExporter{
		store:      store,
		pdfEnabled: pdfEnabled,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// masterDataExport is the shape of stammdaten.json
type masterDataExport struct {
	FileNumber   string          `json:"file_number"`
	CreatedAt    string          `json:"created_at"`
	ClosedAt     string          `json:"closed_at,omitempty"`
	Status       string          `json:"status"`
	Client       json.RawMessage `json:"client"`
	Opponent     json.RawMessage `json:"opponent"`
	ThirdParties json.RawMessage `json:"third_parties"`
	ExtraData    json.RawMessage `json:"extra_data"`
}

// ExportClosedCase writes stammdaten.json and the closing-report PDF from
// the case's frozen state
func (e *FileExporter) ExportClosedCase(db *gorm.DB, kase *models.Case) error {
	dir, err := e.store.EnsureDirectory(kase.FileNumber)
	if err != nil {
		return err
	}

	if err := e.writeMasterData(dir, kase); err != nil {
		return err
	}

	if !e.pdfEnabled {
		return nil
	}
	if err := e.writeClosingReport(dir, kase); err != nil {
		// The JSON export is already durable; report rendering can always be
		// re-run once Chrome is available again
		log.Printf("[WARNING] Closing report for case %s not rendered: %v", kase.FileNumber, err)
	}
	return nil
}

func (e *FileExporter) writeMasterData(dir string, kase *models.Case) error {
	export := masterDataExport{
		FileNumber:   kase.FileNumber,
		CreatedAt:    kase.CreatedAt.Format("2006-01-02 15:04:05"),
		Status:       kase.Status,
		Client:       rawOrEmptyObject(kase.ClientSnapshot),
		Opponent:     rawOrEmptyObject(kase.OpponentSnapshot),
		ThirdParties: rawOrEmptyList(kase.ThirdPartySnapshot),
		ExtraData:    rawOrEmptyObject(kase.ExtraData),
	}
	if kase.ClosedAt != nil {
		export.ClosedAt = kase.ClosedAt.Format("2006-01-02 15:04:05")
	}

	encoded, err := json.MarshalIndent(export, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode master data export: %w", err)
	}

	target := filepath.Join(dir, MasterDataExportName)
	if err := os.WriteFile(target, encoded, StorageFilePerm); err != nil {
		return &StorageError{Op: "failed to write master data export", Err: err}
	}
	if err := os.Chmod(target, StorageFilePerm); err != nil {
		return &StorageError{Op: "failed to set export permissions", Err: err}
	}
	return nil
}

var closingReportTemplate = template.Must(template.New("closing_report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Georgia, serif; font-size: 12pt; color: #111; }
h1 { font-size: 16pt; border-bottom: 2px solid #111; padding-bottom: 6px; }
h2 { font-size: 13pt; margin-top: 24px; }
table { border-collapse: collapse; width: 100%; }
td { padding: 4px 8px; vertical-align: top; }
td.label { width: 30%; color: #555; }
</style>
</head>
<body>
<h1>Abschlussbericht Akte {{.FileNumber}}</h1>
<p>Status: {{.Status}}{{if .ClosedAt}} | Geschlossen am {{.ClosedAt}}{{end}}</p>

<h2>Mandant</h2>
<table>
<tr><td class="label">Name</td><td>{{.Client.Name}}</td></tr>
<tr><td class="label">Adresse</td><td>{{.Client.Address}}</td></tr>
<tr><td class="label">Telefon</td><td>{{.Client.Phone}}</td></tr>
<tr><td class="label">E-Mail</td><td>{{.Client.Email}}</td></tr>
<tr><td class="label">Typ</td><td>{{.Client.Type}}</td></tr>
</table>

<h2>Gegner</h2>
<table>
<tr><td class="label">Name</td><td>{{.Opponent.Name}}</td></tr>
<tr><td class="label">Adresse</td><td>{{.Opponent.Address}}</td></tr>
<tr><td class="label">Telefon</td><td>{{.Opponent.Phone}}</td></tr>
<tr><td class="label">E-Mail</td><td>{{.Opponent.Email}}</td></tr>
<tr><td class="label">Typ</td><td>{{.Opponent.Type}}</td></tr>
</table>

{{if .ThirdParties}}
<h2>Drittbeteiligte</h2>
<table>
{{range .ThirdParties}}
<tr><td class="label">{{.Role}}</td><td>{{.Name}} ({{.Type}})<br>{{.Address}}<br>{{.Phone}} {{.Email}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>`))

type closingReportData struct {
	FileNumber   string
	Status       string
	ClosedAt     string
	Client       ContactSnapshot
	Opponent     ContactSnapshot
	ThirdParties []ThirdPartySnapshot
}

func (e *FileExporter) writeClosingReport(dir string, kase *models.Case) error {
	data := closingReportData{
		FileNumber: kase.FileNumber,
		Status:     kase.Status,
	}
	if kase.ClosedAt != nil {
		data.ClosedAt = kase.ClosedAt.Format("02.01.2006")
	}
	if err := json.Unmarshal(rawOrEmptyObject(kase.ClientSnapshot), &data.Client); err != nil {
		return fmt.Errorf("failed to decode client snapshot: %w", err)
	}
	if err := json.Unmarshal(rawOrEmptyObject(kase.OpponentSnapshot), &data.Opponent); err != nil {
		return fmt.Errorf("failed to decode opponent snapshot: %w", err)
	}
	if err := json.Unmarshal(rawOrEmptyList(kase.ThirdPartySnapshot), &data.ThirdParties); err != nil {
		return fmt.Errorf("failed to decode third-party snapshot: %w", err)
	}

	// Contact fields are user-entered free text; strip any markup before it
	// reaches the renderer
	data.Client = e.sanitizeContact(data.Client)
	data.Opponent = e.sanitizeContact(data.Opponent)
	for i := range data.ThirdParties {
		data.ThirdParties[i] = e.sanitizeThirdParty(data.ThirdParties[i])
	}

	var html bytes.Buffer
	if err := closingReportTemplate.Execute(&html, data); err != nil {
		return fmt.Errorf("failed to render closing report: %w", err)
	}

	pdf, err := GeneratePDF(html.String(), DefaultPDFOptions())
	if err != nil {
		return err
	}

	target := filepath.Join(dir, ClosingReportExportName)
	if err := os.WriteFile(target, pdf, StorageFilePerm); err != nil {
		return &StorageError{Op: "failed to write closing report", Err: err}
	}
	if err := os.Chmod(target, StorageFilePerm); err != nil {
		return &StorageError{Op: "failed to set export permissions", Err: err}
	}
	return nil
}

func (e *FileExporter) sanitizeContact(c ContactSnapshot) ContactSnapshot {
	c.Name = e.sanitizer.Sanitize(c.Name)
	c.Address = e.sanitizer.Sanitize(c.Address)
	c.Phone = e.sanitizer.Sanitize(c.Phone)
	c.Email = e.sanitizer.Sanitize(c.Email)
	c.Type = e.sanitizer.Sanitize(c.Type)
	return c
}

func (e *FileExporter) sanitizeThirdParty(tp ThirdPartySnapshot) ThirdPartySnapshot {
	tp.Name = e.sanitizer.Sanitize(tp.Name)
	tp.Role = e.sanitizer.Sanitize(tp.Role)
	tp.Type = e.sanitizer.Sanitize(tp.Type)
	tp.Address = e.sanitizer.Sanitize(tp.Address)
	tp.Phone = e.sanitizer.Sanitize(tp.Phone)
	tp.Email = e.sanitizer.Sanitize(tp.Email)
	tp.Notes = e.sanitizer.Sanitize(tp.Notes)
	return tp
}

func rawOrEmptyObject(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(s)
}

func rawOrEmptyList(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("[]")
	}
	return json.RawMessage(s)
}
