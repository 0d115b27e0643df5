package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pivot2ai/jobplans/internal/plan"
	"github.com/pivot2ai/jobplans/internal/store"
)

const maxEditorMessageSize = 64 * 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client runs on a different origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EditorOp is one structural mutation sent by the editor client.
type EditorOp struct {
	Op    string `json:"op"`
	Field string `json:"field,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Index int    `json:"index"`
	Value string `json:"value,omitempty"`
}

// EditorReply carries the post-op snapshot back to the client.
type EditorReply struct {
	Plan  *plan.Document `json:"plan,omitempty"`
	Saved bool           `json:"saved,omitempty"`
	Error string         `json:"error,omitempty"`
}

// editPlan upgrades to a websocket and runs an interactive edit session over
// one draft. A single read loop owns the draft, so no locking is needed: ops
// are applied strictly in arrival order and each reply carries the full
// snapshot the client should render.
func (r *Router) editPlan(w http.ResponseWriter, req *http.Request) {
	id, ok := planID(w, req)
	if !ok {
		return
	}

	row, err := r.store.GetPlan(req.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Job plan not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to retrieve job plan")
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("⚠️ Editor upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxEditorMessageSize)

	draft := plan.NewDraft(row.Document())

	// Initial snapshot so the client renders the current state.
	if err := writeSnapshot(conn, draft); err != nil {
		return
	}

	for {
		var op EditorOp
		if err := conn.ReadJSON(&op); err != nil {
			return
		}

		if op.Op == "save" {
			r.saveDraft(req, conn, id, draft)
			continue
		}

		if err := applyEditorOp(draft, op); err != nil {
			if werr := conn.WriteJSON(EditorReply{Error: err.Error()}); werr != nil {
				return
			}
			continue
		}
		if err := writeSnapshot(conn, draft); err != nil {
			return
		}
	}
}

// saveDraft persists the current snapshot through the store. Last write wins.
func (r *Router) saveDraft(req *http.Request, conn *websocket.Conn, id uint, draft *plan.Draft) {
	snapshot := draft.Snapshot()
	if err := snapshot.Validate(); err != nil {
		conn.WriteJSON(EditorReply{Error: err.Error()})
		return
	}

	patch, err := json.Marshal(snapshot)
	if err != nil {
		conn.WriteJSON(EditorReply{Error: "failed to encode draft"})
		return
	}

	row, err := r.store.UpdatePlan(req.Context(), id, patch)
	if err != nil {
		conn.WriteJSON(EditorReply{Error: "failed to save job plan"})
		return
	}

	saved := row.Document()
	conn.WriteJSON(EditorReply{Plan: &saved, Saved: true})
}

// applyEditorOp dispatches one mutation onto the draft. Unknown operations
// are rejected; out-of-range indices are no-ops inside the draft itself.
func applyEditorOp(draft *plan.Draft, op EditorOp) error {
	switch op.Op {
	case "setField":
		return draft.SetField(op.Field, op.Value)
	case "appendListItem":
		return draft.AppendListItem(op.Field, op.Value)
	case "removeListItem":
		return draft.RemoveListItem(op.Field, op.Index)
	case "appendStep":
		draft.AppendStep()
		return nil
	case "removeStep":
		draft.RemoveStep(op.Index)
		return nil
	case "appendRecommendation":
		return draft.AppendRecommendation(op.Kind, op.Value)
	case "removeRecommendation":
		return draft.RemoveRecommendation(op.Kind, op.Index)
	}
	return errors.New("unknown editor operation: " + op.Op)
}

func writeSnapshot(conn *websocket.Conn, draft *plan.Draft) error {
	snapshot := draft.Snapshot()
	return conn.WriteJSON(EditorReply{Plan: &snapshot})
}
