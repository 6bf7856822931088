package importers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/fixbot/internal/audit"
	"github.com/ziadkadry99/fixbot/internal/db"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/storage"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(setupTestDB(t))
}

func setupKnowledge(t *testing.T) *knowledge.Store {
	t.Helper()
	kb, err := knowledge.NewStore(context.Background(), storage.NewMemory())
	if err != nil {
		t.Fatalf("knowledge.NewStore: %v", err)
	}
	return kb
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const yamlCatalog = `problems:
  - problem: Printer jams
    solution: Open tray B and remove the stuck sheet.
  - problem: Keyboard not typing
    solution: Reconnect the keyboard.
    submitted_by: sam
  - problem: "   "
    solution: dropped
`

const jsonCatalog = `[
  {"problem": "VPN drops", "solution": "Switch to the TCP profile."},
  {"problem": "No solution here", "solution": ""}
]`

const markdownCatalog = `# Office catalog

## Projector shows no signal

Press the input button until HDMI is selected.

## Mouse lagging

Replace the batteries.

## Empty section
`

// --- Parser Tests ---

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.yml", FormatYAML},
		{"a.YAML", FormatYAML},
		{"dir/b.json", FormatJSON},
		{"c.md", FormatMarkdown},
		{"c.markdown", FormatMarkdown},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.path)
		if err != nil {
			t.Errorf("FormatFor(%q) error: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FormatFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	if _, err := FormatFor("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseYAML(t *testing.T) {
	entries, err := Parse([]byte(yamlCatalog), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Problem != "Printer jams" {
		t.Errorf("unexpected problem %q", entries[0].Problem)
	}
	if entries[1].SubmittedBy != "sam" {
		t.Errorf("expected submitter sam, got %q", entries[1].SubmittedBy)
	}
}

func TestParseYAMLList(t *testing.T) {
	data := "- problem: Fan noise\n  solution: Clean the fan.\n"
	entries, err := Parse([]byte(data), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Problem != "Fan noise" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestParseYAMLInvalid(t *testing.T) {
	if _, err := Parse([]byte("problems: ["), FormatYAML); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestParseJSON(t *testing.T) {
	entries, err := Parse([]byte(jsonCatalog), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Solution != "Switch to the TCP profile." {
		t.Errorf("unexpected solution %q", entries[0].Solution)
	}

	doc := `{"problems":[{"problem":"Disk full","solution":"Empty the trash."}]}`
	entries, err = Parse([]byte(doc), FormatJSON)
	if err != nil {
		t.Fatalf("Parse document: %v", err)
	}
	if len(entries) != 1 || entries[0].Problem != "Disk full" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestParseSections(t *testing.T) {
	sections := ParseSections(markdownCatalog)
	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}
	if sections[0].Heading != "Office catalog" || sections[0].Level != 1 {
		t.Errorf("unexpected first section %+v", sections[0])
	}
	if sections[1].Content != "Press the input button until HDMI is selected." {
		t.Errorf("unexpected content %q", sections[1].Content)
	}
}

func TestParseMarkdown(t *testing.T) {
	entries := ParseMarkdown(markdownCatalog)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Problem != "Projector shows no signal" {
		t.Errorf("unexpected problem %q", entries[0].Problem)
	}
	if entries[1].Solution != "Replace the batteries." {
		t.Errorf("unexpected solution %q", entries[1].Solution)
	}
}

// --- Glob Tests ---

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yml", yamlCatalog)
	b := writeFile(t, dir, "nested/deep/b.json", jsonCatalog)
	writeFile(t, dir, "nested/skip.txt", "x")

	files, err := Expand([]string{
		filepath.Join(dir, "**", "*.json"),
		filepath.Join(dir, "*.yml"),
		a,
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	want := map[string]bool{a: true, b: true}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected file %q", f)
		}
	}
}

func TestExpandKeepsLiteralPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yml")
	files, err := Expand([]string{missing})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(files) != 1 || files[0] != missing {
		t.Errorf("expected literal path kept, got %v", files)
	}
}

// --- Importer Tests ---

func TestImport(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	store := NewStore(database)
	auditStore := audit.NewStore(database)
	kb := setupKnowledge(t)

	dir := t.TempDir()
	writeFile(t, dir, "a.yml", yamlCatalog)
	writeFile(t, dir, "b.json", jsonCatalog)
	writeFile(t, dir, "c.md", markdownCatalog)
	writeFile(t, dir, "bad.yml", "problems: [")

	imp := NewImporter(kb, WithStore(store), WithAudit(auditStore))
	res, err := imp.Import(ctx, []string{filepath.Join(dir, "*")}, "dana")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if res.Files != 3 {
		t.Errorf("expected 3 imported files, got %d", res.Files)
	}
	if res.Entries != 5 {
		t.Errorf("expected 5 entries, got %d", res.Entries)
	}
	if len(res.Failures) != 1 {
		t.Errorf("expected 1 failure, got %v", res.Failures)
	}

	entry, ok := kb.Lookup("printer JAMS")
	if !ok {
		t.Fatal("expected imported entry")
	}
	if entry.SubmittedBy != "dana" {
		t.Errorf("expected submitter dana, got %q", entry.SubmittedBy)
	}
	if entry.Layer != knowledge.LayerUser {
		t.Errorf("expected user layer, got %q", entry.Layer)
	}
	if kbEntry, _ := kb.Lookup("Keyboard not typing"); kbEntry.SubmittedBy != "sam" {
		t.Errorf("expected file submitter sam, got %q", kbEntry.SubmittedBy)
	}

	sources, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sources) != 4 {
		t.Fatalf("expected 4 recorded sources, got %d", len(sources))
	}
	failed := 0
	for _, s := range sources {
		if s.Status == StatusFailed {
			failed++
			if s.Error == "" {
				t.Error("failed source should carry its error")
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed source, got %d", failed)
	}

	entries, err := auditStore.Query(ctx, audit.QueryFilter{Action: audit.ActionCatalogImported})
	if err != nil {
		t.Fatalf("audit Query: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 audit entries, got %d", len(entries))
	}
}

func TestImportSkipsUnsupportedFiles(t *testing.T) {
	kb := setupKnowledge(t)
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "x")

	res, err := NewImporter(kb).Import(context.Background(), []string{filepath.Join(dir, "*")}, "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Files != 0 || len(res.Sources) != 0 {
		t.Errorf("unsupported file should not be imported: %+v", res)
	}
	if len(res.Failures) != 1 || !strings.Contains(res.Failures[0], "unsupported") {
		t.Errorf("expected unsupported failure, got %v", res.Failures)
	}
}

func TestImportNoFiles(t *testing.T) {
	kb := setupKnowledge(t)
	_, err := NewImporter(kb).Import(context.Background(), []string{filepath.Join(t.TempDir(), "*.yml")}, "")
	if !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}
}

func TestImportDefaultsToSystemAuthor(t *testing.T) {
	kb := setupKnowledge(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", jsonCatalog)

	if _, err := NewImporter(kb).Import(context.Background(), []string{path}, ""); err != nil {
		t.Fatalf("Import: %v", err)
	}
	entry, ok := kb.Lookup("vpn drops")
	if !ok {
		t.Fatal("expected imported entry")
	}
	if entry.SubmittedBy != knowledge.SystemAuthor {
		t.Errorf("expected %q, got %q", knowledge.SystemAuthor, entry.SubmittedBy)
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yml", yamlCatalog)
	writeFile(t, dir, "bad.yml", "problems: [")

	entries, err := LoadCatalog([]string{filepath.Join(dir, "*.yml")}, nil)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	kb, err := knowledge.NewStore(context.Background(), storage.NewMemory(), knowledge.WithCatalog(entries))
	if err != nil {
		t.Fatalf("knowledge.NewStore: %v", err)
	}
	entry, ok := kb.Lookup("printer jams")
	if !ok {
		t.Fatal("expected catalog entry in default layer")
	}
	if entry.Layer != knowledge.LayerDefault {
		t.Errorf("expected default layer, got %q", entry.Layer)
	}
}

// --- Store Tests ---

func TestStoreRecordAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Record(ctx, Source{Path: "catalogs/a.yml", Format: FormatYAML, Entries: 3})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if created.ID == "" {
		t.Error("expected non-empty ID")
	}
	if created.Status != StatusCompleted {
		t.Errorf("expected default status completed, got %q", created.Status)
	}

	sources, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].Path != "catalogs/a.yml" || sources[0].Entries != 3 {
		t.Errorf("unexpected source %+v", sources[0])
	}
}

func TestStoreRejectsUnknownFormat(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Record(context.Background(), Source{Path: "a.txt", Format: "txt"}); err == nil {
		t.Error("expected constraint error for unknown format")
	}
}

func TestStoreGetByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, _ := store.Record(ctx, Source{Path: "faq.md", Format: FormatMarkdown})

	fetched, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Path != "faq.md" || fetched.Format != FormatMarkdown {
		t.Errorf("unexpected source %+v", fetched)
	}
}

func TestStoreDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, _ := store.Record(ctx, Source{Path: "a.json", Format: FormatJSON})
	store.Delete(ctx, created.ID)

	fetched, _ := store.GetByID(ctx, created.ID)
	if fetched != nil {
		t.Error("expected nil after delete")
	}
}

// --- HTTP Route Tests ---

func setupRouter(t *testing.T) (chi.Router, *Store, *knowledge.Store) {
	t.Helper()
	store := setupTestStore(t)
	kb := setupKnowledge(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store, NewImporter(kb, WithStore(store)))
	return r, store, kb
}

func TestRoute_ListSources(t *testing.T) {
	r, store, _ := setupRouter(t)
	store.Record(context.Background(), Source{Path: "a.yml", Format: FormatYAML})

	req := httptest.NewRequest("GET", "/api/imports/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var sources []Source
	json.Unmarshal(w.Body.Bytes(), &sources)
	if len(sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(sources))
	}
}

func TestRoute_Import(t *testing.T) {
	r, _, kb := setupRouter(t)
	path := writeFile(t, t.TempDir(), "a.json", jsonCatalog)

	body, _ := json.Marshal(importRequest{Patterns: []string{path}, User: "dana"})
	req := httptest.NewRequest("POST", "/api/imports/", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Entries != 1 || len(res.Sources) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if _, ok := kb.Lookup("VPN drops"); !ok {
		t.Error("expected entry to be taught")
	}
}

func TestRoute_ImportValidation(t *testing.T) {
	r, _, _ := setupRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid body", "{", http.StatusBadRequest},
		{"no patterns", `{"patterns":["  "]}`, http.StatusBadRequest},
		{"no match", `{"patterns":["/nonexistent/dir/*.yml"]}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/imports/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRoute_GetNotFound(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest("GET", "/api/imports/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRoute_Delete(t *testing.T) {
	r, store, _ := setupRouter(t)
	created, _ := store.Record(context.Background(), Source{Path: "a.yml", Format: FormatYAML})

	req := httptest.NewRequest("DELETE", "/api/imports/"+created.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
