package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dvasquez/sketchem/internal/mol"
	molnotifiers "github.com/dvasquez/sketchem/internal/mol/notifiers"
)

// extractSessionID extracts the session ID from a path like "/sessions/{id}/..."
// Returns the session ID and the remaining path, or empty string if not found
func extractSessionID(path string) (mol.SessionID, string) {
	if !strings.HasPrefix(path, "/sessions/") {
		return "", ""
	}

	// Remove "/sessions/" prefix
	rest := path[10:]

	// Find the next "/"
	idx := strings.Index(rest, "/")
	if idx == -1 {
		// No more path segments, the whole thing is the session ID
		return mol.SessionID(rest), ""
	}

	sessionID := mol.SessionID(rest[:idx])
	remainingPath := rest[idx:]
	return sessionID, remainingPath
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /sessions
// Body: { "id": "...", "document": { ... } }
// Creates a new session, optionally seeding it from a molecule document
type createSessionRequest struct {
	ID       string                `json:"id"`
	Document *mol.MoleculeDocument `json:"document,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "session ID is required", http.StatusBadRequest)
		return
	}

	var m *mol.Molecule
	if req.Document != nil {
		built, err := mol.BuildMolecule(req.Document)
		if err != nil {
			http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
			return
		}
		m = built
	}

	if _, err := s.sessions.CreateSession(mol.SessionID(req.ID), m); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("session created"))
}

// GET /sessions
// List all session IDs
func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	sessionIDs := s.sessions.ListSessions()

	// Convert to strings for JSON encoding
	ids := make([]string, len(sessionIDs))
	for i, id := range sessionIDs {
		ids[i] = string(id)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"sessions": ids}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// DELETE /sessions/{id}
// Delete a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := extractSessionID(r.URL.Path)
	if sessionID == "" {
		http.Error(w, "session ID is required in path: /sessions/{id}", http.StatusBadRequest)
		return
	}

	if err := s.sessions.DeleteSession(sessionID); err != nil {
		s.logger.Warnf("Failed to delete session: session_id=%s error=%v", sessionID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("session deleted"))
}

// GET /sessions/{id}/document
// Export the session's molecule as a JSON document
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request, session *mol.Session, id mol.SessionID) {
	var doc *mol.MoleculeDocument
	_ = session.Do(func(ed *mol.Editor) error {
		doc = ed.Molecule().Document(string(id))
		return nil
	})

	w.Header().Set("Content-Type", "application/json")
	if err := mol.EncodeDocument(w, doc); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// PUT /sessions/{id}/document
// Replace the session's molecule from a JSON document, as one undoable step
func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request, session *mol.Session, id mol.SessionID) {
	defer r.Body.Close()

	doc, err := mol.DecodeDocument(r.Body)
	if err != nil {
		http.Error(w, "invalid document json: "+err.Error(), http.StatusBadRequest)
		return
	}

	next, err := mol.BuildMolecule(doc)
	if err != nil {
		http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
		return
	}

	var resp editResponse
	_ = session.Do(func(ed *mol.Editor) error {
		ed.ReplaceMolecule(next)
		resp = newEditResponse(ed, nil)
		return nil
	})

	s.logger.Infof("Document replaced: session_id=%s atoms=%d bonds=%d", id, resp.Atoms, resp.Bonds)
	writeJSON(w, resp)
}

// editRequest is the wire form of a single edit. Kind selects the
// operation; the other fields are read as that kind requires.
type editRequest struct {
	Kind          string           `json:"kind"`
	UID           *mol.UID         `json:"uid,omitempty"`
	A             *mol.UID         `json:"a,omitempty"`
	B             *mol.UID         `json:"b,omitempty"`
	AtomicNumber  *uint8           `json:"atomicNumber,omitempty"`
	AtomicNumbers []uint8          `json:"atomicNumbers,omitempty"`
	Position      *mol.Vector3     `json:"position,omitempty"`
	Positions     []mol.Vector3    `json:"positions,omitempty"`
	Hybridization *int8            `json:"hybridization,omitempty"`
	FormalCharge  *int8            `json:"formalCharge,omitempty"`
	Color         *mol.Color       `json:"color,omitempty"`
	Force         *mol.Vector3     `json:"force,omitempty"`
	Order         *uint8           `json:"order,omitempty"`
	Orders        []uint8          `json:"orders,omitempty"`
	Pairs         []mol.BondPair   `json:"pairs,omitempty"`
	Cell          *mol.UnitCellConfig `json:"cell,omitempty"`
}

type editResponse struct {
	UID       *mol.UID `json:"uid,omitempty"`
	Atoms     int      `json:"atoms"`
	Bonds     int      `json:"bonds"`
	UndoDepth int      `json:"undoDepth"`
}

func newEditResponse(ed *mol.Editor, uid *mol.UID) editResponse {
	return editResponse{
		UID:       uid,
		Atoms:     ed.Molecule().AtomCount(),
		Bonds:     ed.Molecule().BondCount(),
		UndoDepth: ed.UndoDepth(),
	}
}

type fieldError struct{ msg string }

func (e fieldError) Error() string { return e.msg }

func missing(field string) error {
	return fieldError{msg: "field '" + field + "' is required for this kind"}
}

// applyEdit dispatches one edit request against the editor. Returns the UID
// of a created atom or bond, when the kind creates one.
func applyEdit(ed *mol.Editor, req editRequest) (*mol.UID, error) {
	switch req.Kind {
	case "add_atom":
		if req.AtomicNumber == nil {
			return nil, missing("atomicNumber")
		}
		uid := ed.AddAtom(*req.AtomicNumber)
		return &uid, nil

	case "remove_atom":
		if req.UID == nil {
			return nil, missing("uid")
		}
		return nil, ed.RemoveAtom(*req.UID)

	case "set_atomic_number":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.AtomicNumber == nil {
			return nil, missing("atomicNumber")
		}
		return nil, ed.SetAtomicNumber(*req.UID, *req.AtomicNumber)

	case "set_atomic_numbers":
		return nil, ed.SetAtomicNumbers(req.AtomicNumbers)

	case "set_position":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.Position == nil {
			return nil, missing("position")
		}
		return nil, ed.SetPosition(*req.UID, *req.Position)

	case "set_positions":
		return nil, ed.SetPositions(req.Positions)

	case "set_hybridization":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.Hybridization == nil {
			return nil, missing("hybridization")
		}
		return nil, ed.SetHybridization(*req.UID, mol.Hybridization(*req.Hybridization))

	case "set_formal_charge":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.FormalCharge == nil {
			return nil, missing("formalCharge")
		}
		return nil, ed.SetFormalCharge(*req.UID, *req.FormalCharge)

	case "set_color":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.Color == nil {
			return nil, missing("color")
		}
		return nil, ed.SetColor(*req.UID, *req.Color)

	case "set_force_vector":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.Force == nil {
			return nil, missing("force")
		}
		return nil, ed.SetForceVector(*req.UID, *req.Force)

	case "add_bond":
		if req.A == nil || req.B == nil {
			return nil, missing("a/b")
		}
		order := uint8(1)
		if req.Order != nil {
			order = *req.Order
		}
		uid, err := ed.AddBond(*req.A, *req.B, order)
		if err != nil {
			return nil, err
		}
		return &uid, nil

	case "remove_bond":
		if req.UID == nil {
			return nil, missing("uid")
		}
		return nil, ed.RemoveBond(*req.UID)

	case "set_bond_order":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.Order == nil {
			return nil, missing("order")
		}
		return nil, ed.SetBondOrder(*req.UID, *req.Order)

	case "set_bond_orders":
		return nil, ed.SetBondOrders(req.Orders)

	case "set_bond_pair":
		if req.UID == nil {
			return nil, missing("uid")
		}
		if req.A == nil || req.B == nil {
			return nil, missing("a/b")
		}
		return nil, ed.SetBondPair(*req.UID, *req.A, *req.B)

	case "set_bond_pairs":
		return nil, ed.SetBondPairs(req.Pairs)

	case "add_unit_cell":
		if req.Cell == nil {
			return nil, missing("cell")
		}
		return nil, ed.AddUnitCell(mol.UnitCell{A: req.Cell.A, B: req.Cell.B, C: req.Cell.C})

	case "remove_unit_cell":
		return nil, ed.RemoveUnitCell()

	default:
		return nil, fieldError{msg: "unknown edit kind: " + req.Kind}
	}
}

// POST /sessions/{id}/edit
// Body: editRequest JSON
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request, session *mol.Session, id mol.SessionID) {
	defer r.Body.Close()

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	var resp editResponse
	err := session.Do(func(ed *mol.Editor) error {
		uid, err := applyEdit(ed, req)
		if err != nil {
			return err
		}
		resp = newEditResponse(ed, uid)
		return nil
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if _, ok := err.(fieldError); ok {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, resp)
}

// POST /sessions/{id}/undo
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request, session *mol.Session, id mol.SessionID) {
	var done bool
	var resp editResponse
	_ = session.Do(func(ed *mol.Editor) error {
		done = ed.Undo()
		resp = newEditResponse(ed, nil)
		return nil
	})
	if !done {
		http.Error(w, "nothing to undo", http.StatusConflict)
		return
	}
	writeJSON(w, resp)
}

// POST /sessions/{id}/redo
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request, session *mol.Session, id mol.SessionID) {
	var done bool
	var resp editResponse
	_ = session.Do(func(ed *mol.Editor) error {
		done = ed.Redo()
		resp = newEditResponse(ed, nil)
		return nil
	})
	if !done {
		http.Error(w, "nothing to redo", http.StatusConflict)
		return
	}
	writeJSON(w, resp)
}

// POST /sessions/{id}/interaction/begin
// POST /sessions/{id}/interaction/end
func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request, session *mol.Session, id mol.SessionID, begin bool) {
	_ = session.Do(func(ed *mol.Editor) error {
		if begin {
			ed.BeginInteraction()
		} else {
			ed.EndInteraction()
		}
		return nil
	})
	w.WriteHeader(http.StatusOK)
	if begin {
		_, _ = w.Write([]byte("interaction started"))
	} else {
		_, _ = w.Write([]byte("interaction ended"))
	}
}

// statusResponse reports a session's current editing state
type statusResponse struct {
	Atoms       int  `json:"atoms"`
	Bonds       int  `json:"bonds"`
	CanUndo     bool `json:"canUndo"`
	CanRedo     bool `json:"canRedo"`
	UndoDepth   int  `json:"undoDepth"`
	Interactive bool `json:"interactive"`
	GraphDirty  bool `json:"graphDirty"`
	HasUnitCell bool `json:"hasUnitCell"`
}

// GET /sessions/{id}/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, session *mol.Session, id mol.SessionID) {
	var resp statusResponse
	_ = session.Do(func(ed *mol.Editor) error {
		m := ed.Molecule()
		resp = statusResponse{
			Atoms:       m.AtomCount(),
			Bonds:       m.BondCount(),
			CanUndo:     ed.CanUndo(),
			CanRedo:     ed.CanRedo(),
			UndoDepth:   ed.UndoDepth(),
			Interactive: ed.Interactive(),
			GraphDirty:  m.GraphDirty(),
			HasUnitCell: m.HasUnitCell(),
		}
		return nil
	})
	writeJSON(w, resp)
}

// handleSessionRoutes routes requests to session-specific handlers
// Handles paths like /sessions/{id}/edit, /sessions/{id}/document, etc.
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	sessionID, remainingPath := extractSessionID(r.URL.Path)
	if sessionID == "" {
		http.Error(w, "session ID is required in path: /sessions/{id}/...", http.StatusBadRequest)
		return
	}

	if remainingPath == "" && r.Method == http.MethodDelete {
		s.handleDeleteSession(w, r)
		return
	}

	session, exists := s.sessions.GetSession(sessionID)
	if !exists {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	switch {
	case remainingPath == "/document" && r.Method == http.MethodGet:
		s.handleGetDocument(w, r, session, sessionID)
	case remainingPath == "/document" && r.Method == http.MethodPut:
		s.handleReplaceDocument(w, r, session, sessionID)
	case remainingPath == "/edit" && r.Method == http.MethodPost:
		s.handleEdit(w, r, session, sessionID)
	case remainingPath == "/undo" && r.Method == http.MethodPost:
		s.handleUndo(w, r, session, sessionID)
	case remainingPath == "/redo" && r.Method == http.MethodPost:
		s.handleRedo(w, r, session, sessionID)
	case remainingPath == "/interaction/begin" && r.Method == http.MethodPost:
		s.handleInteraction(w, r, session, sessionID, true)
	case remainingPath == "/interaction/end" && r.Method == http.MethodPost:
		s.handleInteraction(w, r, session, sessionID, false)
	case remainingPath == "/status" && r.Method == http.MethodGet:
		s.handleStatus(w, r, session, sessionID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleSessions routes the /sessions collection endpoints
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSessions(w, r)
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.globalNotifierMgr.ListNotifiers()

	// Get notifier types
	list := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.globalNotifierMgr.GetNotifier(id)
		if exists {
			list = append(list, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"notifiers": list}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /notifiers
// Register a new notifier
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier mol.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := molnotifiers.NewWebhookNotifier(req.ID, url)

		// Set custom headers if provided
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.globalNotifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	// Extract notifier ID from path
	path := r.URL.Path
	if !strings.HasPrefix(path, "/notifiers/") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	notifierID := strings.TrimPrefix(path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.globalNotifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws
// Upgrades the connection and streams edit events until the client leaves
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.wsNotifier.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	s.wsNotifier.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: remote=%s", conn.RemoteAddr())

	// Drain reads so close frames are processed; unregister on error/close
	go func() {
		defer s.wsNotifier.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}
