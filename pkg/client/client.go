package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/dvasquez/sketchem/internal/mol"
)

// Client is a typed HTTP client for a sketchem server.
// All methods address one named editing session on the server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL
// (e.g., "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// EditRequest is the wire form of a single edit. Kind selects the
// operation; fill only the fields that kind reads. The convenience
// methods below build these for the common operations.
type EditRequest struct {
	Kind          string              `json:"kind"`
	UID           *mol.UID            `json:"uid,omitempty"`
	A             *mol.UID            `json:"a,omitempty"`
	B             *mol.UID            `json:"b,omitempty"`
	AtomicNumber  *uint8              `json:"atomicNumber,omitempty"`
	AtomicNumbers []uint8             `json:"atomicNumbers,omitempty"`
	Position      *mol.Vector3        `json:"position,omitempty"`
	Positions     []mol.Vector3       `json:"positions,omitempty"`
	Hybridization *int8               `json:"hybridization,omitempty"`
	FormalCharge  *int8               `json:"formalCharge,omitempty"`
	Color         *mol.Color          `json:"color,omitempty"`
	Force         *mol.Vector3        `json:"force,omitempty"`
	Order         *uint8              `json:"order,omitempty"`
	Orders        []uint8             `json:"orders,omitempty"`
	Pairs         []mol.BondPair      `json:"pairs,omitempty"`
	Cell          *mol.UnitCellConfig `json:"cell,omitempty"`
}

// EditResult reports the outcome of an edit, undo or redo.
type EditResult struct {
	UID       *mol.UID `json:"uid,omitempty"`
	Atoms     int      `json:"atoms"`
	Bonds     int      `json:"bonds"`
	UndoDepth int      `json:"undoDepth"`
}

// Status reports a session's current editing state.
type Status struct {
	Atoms       int  `json:"atoms"`
	Bonds       int  `json:"bonds"`
	CanUndo     bool `json:"canUndo"`
	CanRedo     bool `json:"canRedo"`
	UndoDepth   int  `json:"undoDepth"`
	Interactive bool `json:"interactive"`
	GraphDirty  bool `json:"graphDirty"`
	HasUnitCell bool `json:"hasUnitCell"`
}

// CreateSession creates a session on the server, optionally seeded from a
// molecule document built with MoleculeBuilder.
func (c *Client) CreateSession(ctx context.Context, id string, doc *mol.MoleculeDocument) error {
	body := map[string]any{"id": id}
	if doc != nil {
		body["document"] = doc
	}
	return c.do(ctx, http.MethodPost, "/sessions", body, nil)
}

// DeleteSession removes a session and its undo history.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil)
}

// ListSessions returns the IDs of all sessions on the server.
func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	var out struct {
		Sessions []string `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// Document fetches the session's molecule as a document.
func (c *Client) Document(ctx context.Context, session string) (*mol.MoleculeDocument, error) {
	var doc mol.MoleculeDocument
	if err := c.do(ctx, http.MethodGet, c.sessionPath(session, "document"), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReplaceDocument swaps the session's molecule for the given document as a
// single undoable step.
func (c *Client) ReplaceDocument(ctx context.Context, session string, doc *mol.MoleculeDocument) (EditResult, error) {
	var res EditResult
	err := c.do(ctx, http.MethodPut, c.sessionPath(session, "document"), doc, &res)
	return res, err
}

// Edit applies one edit request against the session.
func (c *Client) Edit(ctx context.Context, session string, req EditRequest) (EditResult, error) {
	var res EditResult
	err := c.do(ctx, http.MethodPost, c.sessionPath(session, "edit"), req, &res)
	return res, err
}

// AddAtom adds an atom with the given atomic number and returns its UID.
func (c *Client) AddAtom(ctx context.Context, session string, atomicNumber uint8) (mol.UID, error) {
	res, err := c.Edit(ctx, session, EditRequest{Kind: "add_atom", AtomicNumber: &atomicNumber})
	if err != nil {
		return mol.InvalidUID, err
	}
	if res.UID == nil {
		return mol.InvalidUID, fmt.Errorf("server did not return an atom UID")
	}
	return *res.UID, nil
}

// RemoveAtom removes the atom with the given UID, along with its bonds.
func (c *Client) RemoveAtom(ctx context.Context, session string, uid mol.UID) error {
	_, err := c.Edit(ctx, session, EditRequest{Kind: "remove_atom", UID: &uid})
	return err
}

// AddBond bonds two atoms and returns the bond's UID.
func (c *Client) AddBond(ctx context.Context, session string, a, b mol.UID, order uint8) (mol.UID, error) {
	res, err := c.Edit(ctx, session, EditRequest{Kind: "add_bond", A: &a, B: &b, Order: &order})
	if err != nil {
		return mol.InvalidUID, err
	}
	if res.UID == nil {
		return mol.InvalidUID, fmt.Errorf("server did not return a bond UID")
	}
	return *res.UID, nil
}

// SetPosition moves one atom. Inside an interaction, consecutive moves
// coalesce into a single undo step.
func (c *Client) SetPosition(ctx context.Context, session string, uid mol.UID, pos mol.Vector3) error {
	_, err := c.Edit(ctx, session, EditRequest{Kind: "set_position", UID: &uid, Position: &pos})
	return err
}

// Undo reverts the session's most recent edit.
func (c *Client) Undo(ctx context.Context, session string) (EditResult, error) {
	var res EditResult
	err := c.do(ctx, http.MethodPost, c.sessionPath(session, "undo"), nil, &res)
	return res, err
}

// Redo re-applies the session's most recently undone edit.
func (c *Client) Redo(ctx context.Context, session string) (EditResult, error) {
	var res EditResult
	err := c.do(ctx, http.MethodPost, c.sessionPath(session, "redo"), nil, &res)
	return res, err
}

// BeginInteraction puts the session in merging mode for a gesture.
func (c *Client) BeginInteraction(ctx context.Context, session string) error {
	return c.do(ctx, http.MethodPost, c.sessionPath(session, "interaction/begin"), nil, nil)
}

// EndInteraction leaves merging mode.
func (c *Client) EndInteraction(ctx context.Context, session string) error {
	return c.do(ctx, http.MethodPost, c.sessionPath(session, "interaction/end"), nil, nil)
}

// Status fetches the session's current editing state.
func (c *Client) Status(ctx context.Context, session string) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, c.sessionPath(session, "status"), nil, &st)
	return st, err
}

// Subscription is a live edit-event stream from the server.
type Subscription struct {
	conn *websocket.Conn
}

// Close terminates the stream.
func (s *Subscription) Close() error {
	return s.conn.Close()
}

// Subscribe opens a WebSocket to the server and calls handler for every
// edit event until the context is done or the subscription is closed.
func (c *Client) Subscribe(ctx context.Context, handler func(mol.EditEvent)) (*Subscription, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	sub := &Subscription{conn: conn}
	go func() {
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var event mol.EditEvent
			if err := json.Unmarshal(data, &event); err != nil {
				continue
			}
			handler(event)
		}
	}()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	return sub, nil
}

func (c *Client) sessionPath(session, op string) string {
	return "/sessions/" + url.PathEscape(session) + "/" + op
}

// do sends one JSON request and decodes the JSON response into out, when
// out is non-nil. Non-2xx responses become errors carrying the body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
