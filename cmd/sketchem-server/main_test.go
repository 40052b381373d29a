package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvasquez/sketchem/internal/mol"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(NewLogger("error"))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *Server, handler func(http.ResponseWriter, *http.Request), path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func mustCreateSession(t *testing.T, srv *Server, id string) {
	t.Helper()
	w := postJSON(t, srv, srv.handleSessions, "/sessions", createSessionRequest{ID: id})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create session: status %d: %s", w.Code, w.Body.String())
	}
}

func sendEdit(t *testing.T, srv *Server, sessionID string, req editRequest) (*httptest.ResponseRecorder, editResponse) {
	t.Helper()
	w := postJSON(t, srv, srv.handleSessionRoutes, "/sessions/"+sessionID+"/edit", req)
	var resp editResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to parse edit response: %v", err)
		}
	}
	return w, resp
}

func TestServer_HandleCreateSession(t *testing.T) {
	srv := newTestServer(t)

	mustCreateSession(t, srv, "bench")

	// Duplicate ID is a conflict
	w := postJSON(t, srv, srv.handleSessions, "/sessions", createSessionRequest{ID: "bench"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	// Missing ID is a bad request
	w = postJSON(t, srv, srv.handleSessions, "/sessions", createSessionRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_HandleCreateSession_WithDocument(t *testing.T) {
	srv := newTestServer(t)

	doc := &mol.MoleculeDocument{
		Name: "water",
		Atoms: []mol.AtomConfig{
			{AtomicNumber: 8},
			{AtomicNumber: 1},
			{AtomicNumber: 1},
		},
		Bonds: []mol.BondConfig{
			{A: 0, B: 1, Order: 1},
			{A: 0, B: 2, Order: 1},
		},
	}

	w := postJSON(t, srv, srv.handleSessions, "/sessions", createSessionRequest{ID: "water", Document: doc})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/water/status", nil)
	rec := httptest.NewRecorder()
	srv.handleSessionRoutes(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to parse status response: %v", err)
	}
	if status.Atoms != 3 {
		t.Errorf("Expected 3 atoms, got %d", status.Atoms)
	}
	if status.Bonds != 2 {
		t.Errorf("Expected 2 bonds, got %d", status.Bonds)
	}
}

func TestServer_HandleCreateSession_InvalidDocument(t *testing.T) {
	srv := newTestServer(t)

	doc := &mol.MoleculeDocument{
		Name:  "bad",
		Atoms: []mol.AtomConfig{{AtomicNumber: 200}},
	}

	w := postJSON(t, srv, srv.handleSessions, "/sessions", createSessionRequest{ID: "bad", Document: doc})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_HandleListSessions(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "s1")
	mustCreateSession(t, srv, "s2")

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	w := httptest.NewRecorder()
	srv.handleSessions(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp["sessions"]) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(resp["sessions"]))
	}
}

func TestServer_HandleDeleteSession(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "doomed")

	req := httptest.NewRequest(http.MethodDelete, "/sessions/doomed", nil)
	w := httptest.NewRecorder()
	srv.handleSessionRoutes(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Deleting again is 404
	req = httptest.NewRequest(http.MethodDelete, "/sessions/doomed", nil)
	w = httptest.NewRecorder()
	srv.handleSessionRoutes(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_HandleEdit_AddAtomAndBond(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "bench")

	z := uint8(6)
	w, resp := sendEdit(t, srv, "bench", editRequest{Kind: "add_atom", AtomicNumber: &z})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.UID == nil {
		t.Fatal("Expected a UID for the created atom")
	}
	if resp.Atoms != 1 {
		t.Errorf("Expected 1 atom, got %d", resp.Atoms)
	}
	a := *resp.UID

	w, resp = sendEdit(t, srv, "bench", editRequest{Kind: "add_atom", AtomicNumber: &z})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	b := *resp.UID

	w, resp = sendEdit(t, srv, "bench", editRequest{Kind: "add_bond", A: &a, B: &b})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.UID == nil {
		t.Fatal("Expected a UID for the created bond")
	}
	if resp.Bonds != 1 {
		t.Errorf("Expected 1 bond, got %d", resp.Bonds)
	}
}

func TestServer_HandleEdit_MissingField(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "bench")

	// add_atom without atomicNumber
	w, _ := sendEdit(t, srv, "bench", editRequest{Kind: "add_atom"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	// unknown kind
	w, _ = sendEdit(t, srv, "bench", editRequest{Kind: "transmute"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown kind, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_HandleEdit_DomainError(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "bench")

	// Removing an atom that never existed is a domain error, not a bad request
	uid := mol.UID(42)
	w, _ := sendEdit(t, srv, "bench", editRequest{Kind: "remove_atom", UID: &uid})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_HandleEdit_SessionNotFound(t *testing.T) {
	srv := newTestServer(t)

	z := uint8(6)
	w, _ := sendEdit(t, srv, "missing", editRequest{Kind: "add_atom", AtomicNumber: &z})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_HandleUndoRedo(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "bench")

	// Nothing to undo yet
	w := postJSON(t, srv, srv.handleSessionRoutes, "/sessions/bench/undo", struct{}{})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	z := uint8(6)
	sendEdit(t, srv, "bench", editRequest{Kind: "add_atom", AtomicNumber: &z})

	w = postJSON(t, srv, srv.handleSessionRoutes, "/sessions/bench/undo", struct{}{})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp editResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse undo response: %v", err)
	}
	if resp.Atoms != 0 {
		t.Errorf("Expected 0 atoms after undo, got %d", resp.Atoms)
	}

	w = postJSON(t, srv, srv.handleSessionRoutes, "/sessions/bench/redo", struct{}{})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse redo response: %v", err)
	}
	if resp.Atoms != 1 {
		t.Errorf("Expected 1 atom after redo, got %d", resp.Atoms)
	}

	// Nothing left to redo
	w = postJSON(t, srv, srv.handleSessionRoutes, "/sessions/bench/redo", struct{}{})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_HandleInteraction(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "bench")

	z := uint8(6)
	_, resp := sendEdit(t, srv, "bench", editRequest{Kind: "add_atom", AtomicNumber: &z})
	uid := *resp.UID

	w := postJSON(t, srv, srv.handleSessionRoutes, "/sessions/bench/interaction/begin", struct{}{})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Consecutive moves of the same atom coalesce into one undo step
	for i := 0; i < 4; i++ {
		pos := mol.Vector3{X: float64(i)}
		sendEdit(t, srv, "bench", editRequest{Kind: "set_position", UID: &uid, Position: &pos})
	}

	w = postJSON(t, srv, srv.handleSessionRoutes, "/sessions/bench/interaction/end", struct{}{})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/bench/status", nil)
	rec := httptest.NewRecorder()
	srv.handleSessionRoutes(rec, req)

	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to parse status response: %v", err)
	}
	if status.UndoDepth != 2 {
		t.Errorf("Expected undo depth 2 (add + merged moves), got %d", status.UndoDepth)
	}
	if status.Interactive {
		t.Error("Expected interactive to be false after interaction/end")
	}
}

func TestServer_HandleDocumentRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	mustCreateSession(t, srv, "bench")

	doc := &mol.MoleculeDocument{
		Name: "ethane",
		Atoms: []mol.AtomConfig{
			{AtomicNumber: 6},
			{AtomicNumber: 6},
		},
		Bonds: []mol.BondConfig{{A: 0, B: 1, Order: 1}},
	}

	data, _ := json.Marshal(doc)
	req := httptest.NewRequest(http.MethodPut, "/sessions/bench/document", bytes.NewReader(data))
	w := httptest.NewRecorder()
	srv.handleSessionRoutes(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/bench/document", nil)
	w = httptest.NewRecorder()
	srv.handleSessionRoutes(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	var got mol.MoleculeDocument
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	if len(got.Atoms) != 2 {
		t.Errorf("Expected 2 atoms, got %d", len(got.Atoms))
	}
	if len(got.Bonds) != 1 {
		t.Errorf("Expected 1 bond, got %d", len(got.Bonds))
	}

	// The replacement must be undoable back to the empty molecule
	resp := postJSON(t, srv, srv.handleSessionRoutes, "/sessions/bench/undo", struct{}{})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var undone editResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &undone); err != nil {
		t.Fatalf("Failed to parse undo response: %v", err)
	}
	if undone.Atoms != 0 {
		t.Errorf("Expected 0 atoms after undoing replace, got %d", undone.Atoms)
	}
}

func TestServer_HandleNotifiers(t *testing.T) {
	srv := newTestServer(t)

	// The ws notifier is always registered
	req := httptest.NewRequest(http.MethodGet, "/notifiers", nil)
	w := httptest.NewRecorder()
	srv.handleNotifiersRoutes(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var listResp map[string][]map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(listResp["notifiers"]) != 1 {
		t.Fatalf("Expected 1 notifier, got %d", len(listResp["notifiers"]))
	}
	if listResp["notifiers"][0]["type"] != "websocket" {
		t.Errorf("Expected websocket notifier, got %s", listResp["notifiers"][0]["type"])
	}

	// Register a webhook
	w = postJSON(t, srv, srv.handleNotifiersRoutes, "/notifiers", registerNotifierRequest{
		Type:   "webhook",
		ID:     "hook-1",
		Config: map[string]any{"url": "http://localhost:9999/hook"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Missing URL is rejected
	w = postJSON(t, srv, srv.handleNotifiersRoutes, "/notifiers", registerNotifierRequest{
		Type: "webhook", ID: "hook-2", Config: map[string]any{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown type is rejected
	w = postJSON(t, srv, srv.handleNotifiersRoutes, "/notifiers", registerNotifierRequest{
		Type: "carrier-pigeon", ID: "hook-3", Config: map[string]any{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	// Unregister
	req = httptest.NewRequest(http.MethodDelete, "/notifiers/hook-1", nil)
	w = httptest.NewRecorder()
	srv.handleNotifiersRoutes(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/notifiers/hook-1", nil)
	w = httptest.NewRecorder()
	srv.handleNotifiersRoutes(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		path     string
		wantID   mol.SessionID
		wantRest string
	}{
		{"/sessions/bench/edit", "bench", "/edit"},
		{"/sessions/bench", "bench", ""},
		{"/sessions/bench/interaction/begin", "bench", "/interaction/begin"},
		{"/other/bench", "", ""},
	}

	for _, tt := range tests {
		id, rest := extractSessionID(tt.path)
		if id != tt.wantID || rest != tt.wantRest {
			t.Errorf("extractSessionID(%q): expected (%q, %q), got (%q, %q)", tt.path, tt.wantID, tt.wantRest, id, rest)
		}
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	origAddr := os.Getenv("SKETCHEM_ADDR")
	origSession := os.Getenv("SKETCHEM_SESSION_ID")
	origLogLevel := os.Getenv("SKETCHEM_LOG_LEVEL")

	os.Unsetenv("SKETCHEM_ADDR")
	os.Unsetenv("SKETCHEM_SESSION_ID")
	os.Unsetenv("SKETCHEM_LOG_LEVEL")

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	os.Args = []string{"sketchem-server"}

	defer func() {
		if origAddr != "" {
			os.Setenv("SKETCHEM_ADDR", origAddr)
		}
		if origSession != "" {
			os.Setenv("SKETCHEM_SESSION_ID", origSession)
		}
		if origLogLevel != "" {
			os.Setenv("SKETCHEM_LOG_LEVEL", origLogLevel)
		}
	}()

	cfg := loadServerConfig()

	if cfg.Addr != ":8080" {
		t.Errorf("Expected Addr to be ':8080', got '%s'", cfg.Addr)
	}
	if cfg.DefaultSession != "default" {
		t.Errorf("Expected DefaultSession to be 'default', got '%s'", cfg.DefaultSession)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MoleculeFile != "" {
		t.Errorf("Expected MoleculeFile to be empty, got '%s'", cfg.MoleculeFile)
	}
}

func TestLoadServerConfig_EnvVars(t *testing.T) {
	origAddr := os.Getenv("SKETCHEM_ADDR")
	origSession := os.Getenv("SKETCHEM_SESSION_ID")

	os.Setenv("SKETCHEM_ADDR", ":9090")
	os.Setenv("SKETCHEM_SESSION_ID", "env-session")

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	os.Args = []string{"sketchem-server"}

	defer func() {
		if origAddr != "" {
			os.Setenv("SKETCHEM_ADDR", origAddr)
		} else {
			os.Unsetenv("SKETCHEM_ADDR")
		}
		if origSession != "" {
			os.Setenv("SKETCHEM_SESSION_ID", origSession)
		} else {
			os.Unsetenv("SKETCHEM_SESSION_ID")
		}
	}()

	cfg := loadServerConfig()

	if cfg.Addr != ":9090" {
		t.Errorf("Expected Addr to be ':9090', got '%s'", cfg.Addr)
	}
	if cfg.DefaultSession != "env-session" {
		t.Errorf("Expected DefaultSession to be 'env-session', got '%s'", cfg.DefaultSession)
	}
}

func TestLoadServerConfig_FlagsOverrideEnvVars(t *testing.T) {
	origAddr := os.Getenv("SKETCHEM_ADDR")
	os.Setenv("SKETCHEM_ADDR", ":9090")

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	os.Args = []string{"sketchem-server", "-addr", ":7070"}

	defer func() {
		if origAddr != "" {
			os.Setenv("SKETCHEM_ADDR", origAddr)
		} else {
			os.Unsetenv("SKETCHEM_ADDR")
		}
	}()

	cfg := loadServerConfig()

	if cfg.Addr != ":7070" {
		t.Errorf("Expected Addr to be ':7070' (from flag), got '%s'", cfg.Addr)
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")

	yamlData := `logLevel: debug
webhooks:
  - id: hook-1
    url: http://localhost:9999/hook
    headers:
      Authorization: Bearer token-123
`
	if err := os.WriteFile(tmpFile, []byte(yamlData), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := loadFileConfig(tmpFile)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected logLevel 'debug', got '%s'", cfg.LogLevel)
	}
	if len(cfg.Webhooks) != 1 {
		t.Fatalf("Expected 1 webhook, got %d", len(cfg.Webhooks))
	}
	if cfg.Webhooks[0].ID != "hook-1" {
		t.Errorf("Expected webhook ID 'hook-1', got '%s'", cfg.Webhooks[0].ID)
	}
	if cfg.Webhooks[0].Headers["Authorization"] != "Bearer token-123" {
		t.Errorf("Expected Authorization header, got '%s'", cfg.Webhooks[0].Headers["Authorization"])
	}
}

func TestLoadFileConfig_MissingFile(t *testing.T) {
	_, err := loadFileConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error when loading missing file")
	}
}

func TestLoadFileConfig_InvalidYAML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(tmpFile, []byte("logLevel: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write invalid YAML file: %v", err)
	}

	_, err := loadFileConfig(tmpFile)
	if err == nil {
		t.Error("Expected error when loading invalid YAML")
	}
}

func TestLoadInitialMoleculeFromFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "molecule.json")

	doc := &mol.MoleculeDocument{
		Name: "water",
		Atoms: []mol.AtomConfig{
			{AtomicNumber: 8},
			{AtomicNumber: 1},
			{AtomicNumber: 1},
		},
		Bonds: []mol.BondConfig{
			{A: 0, B: 1, Order: 1},
			{A: 0, B: 2, Order: 1},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document: %v", err)
	}
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		t.Fatalf("Failed to write molecule file: %v", err)
	}

	gotDoc, m, err := loadInitialMoleculeFromFile(tmpFile)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotDoc.Name != "water" {
		t.Errorf("Expected document name 'water', got '%s'", gotDoc.Name)
	}
	if m.AtomCount() != 3 {
		t.Errorf("Expected 3 atoms, got %d", m.AtomCount())
	}
	if m.BondCount() != 2 {
		t.Errorf("Expected 2 bonds, got %d", m.BondCount())
	}
}

func TestLoadInitialMoleculeFromFile_MissingFile(t *testing.T) {
	_, _, err := loadInitialMoleculeFromFile("/nonexistent/molecule.json")
	if err == nil {
		t.Error("Expected error when loading missing file")
	}
}

func TestLoadInitialMoleculeFromFile_InvalidDocument(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(tmpFile, []byte(`{"atoms":[{"atomicNumber":300}]}`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, _, err := loadInitialMoleculeFromFile(tmpFile)
	if err == nil {
		t.Error("Expected error when loading invalid document")
	}
}

func TestLogger_Levels(t *testing.T) {
	logger := NewLogger("DEBUG")
	if logger.level != LogLevelDebug {
		t.Errorf("Expected DEBUG to parse as LogLevelDebug, got %v", logger.level)
	}

	logger = NewLogger("INFO")
	if logger.level != LogLevelInfo {
		t.Errorf("Expected INFO to parse as LogLevelInfo, got %v", logger.level)
	}

	logger = NewLogger("WARN")
	if logger.level != LogLevelWarn {
		t.Errorf("Expected WARN to parse as LogLevelWarn, got %v", logger.level)
	}

	logger = NewLogger("ERROR")
	if logger.level != LogLevelError {
		t.Errorf("Expected ERROR to parse as LogLevelError, got %v", logger.level)
	}

	// Invalid level defaults to info
	logger = NewLogger("invalid")
	if logger.level != LogLevelInfo {
		t.Errorf("Expected invalid level to default to LogLevelInfo, got %v", logger.level)
	}

	// SetLevel swaps the level in place
	logger.SetLevel("error")
	if logger.level != LogLevelError {
		t.Errorf("Expected SetLevel to switch to LogLevelError, got %v", logger.level)
	}
}
