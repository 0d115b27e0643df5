package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot2ai/jobplans/internal/models"
)

func dialEditor(t *testing.T, server *httptest.Server, planID uint, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + fmt.Sprintf("/api/job-plans/%d/edit", planID)
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) EditorReply {
	t.Helper()
	var reply EditorReply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestEditorSession(t *testing.T) {
	h := newHarness(t)
	_, token := h.addUser(t, models.UserAuth{Email: "tech@example.com", Name: "Tech"})

	row, err := h.store.CreatePlan(context.Background(), sampleDocument())
	require.NoError(t, err)

	server := httptest.NewServer(h.router)
	defer server.Close()

	conn := dialEditor(t, server, row.ID, token)

	// Initial snapshot reflects the stored plan.
	reply := readReply(t, conn)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, "Centrifugal Pump P-101", reply.Plan.EquipmentName)
	assert.Len(t, reply.Plan.JobSteps, 2)

	// Scalar edit by field path.
	require.NoError(t, conn.WriteJSON(EditorOp{Op: "setField", Field: "notes", Value: "Check alignment after reassembly"}))
	reply = readReply(t, conn)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, "Check alignment after reassembly", reply.Plan.Notes)

	// Nested step edit.
	require.NoError(t, conn.WriteJSON(EditorOp{Op: "setField", Field: "jobSteps.1.description", Value: "Inspect and measure bearing clearance"}))
	reply = readReply(t, conn)
	require.NotNil(t, reply.Plan)
	assert.Equal(t, "Inspect and measure bearing clearance", reply.Plan.JobSteps[1].Description)

	// List append and step append.
	require.NoError(t, conn.WriteJSON(EditorOp{Op: "appendListItem", Field: "toolsRequired", Value: "Dial indicator"}))
	reply = readReply(t, conn)
	assert.Equal(t, []string{"Torque wrench", "Dial indicator"}, reply.Plan.ToolsRequired)

	require.NoError(t, conn.WriteJSON(EditorOp{Op: "appendStep"}))
	reply = readReply(t, conn)
	require.Len(t, reply.Plan.JobSteps, 3)
	assert.Equal(t, 3, reply.Plan.JobSteps[2].StepNumber)

	// Out-of-range removal is a no-op, not an error.
	require.NoError(t, conn.WriteJSON(EditorOp{Op: "removeListItem", Field: "toolsRequired", Index: 99}))
	reply = readReply(t, conn)
	assert.Empty(t, reply.Error)
	assert.Len(t, reply.Plan.ToolsRequired, 2)

	// Unknown op reports an error and keeps the session alive.
	require.NoError(t, conn.WriteJSON(EditorOp{Op: "frobnicate"}))
	reply = readReply(t, conn)
	assert.Contains(t, reply.Error, "unknown editor operation")

	// Save persists the draft through the store.
	require.NoError(t, conn.WriteJSON(EditorOp{Op: "save"}))
	reply = readReply(t, conn)
	require.True(t, reply.Saved)
	require.NotNil(t, reply.Plan)

	stored, err := h.store.GetPlan(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Check alignment after reassembly", stored.Notes)
	assert.Len(t, stored.JobSteps, 3)
}

func TestEditorRejectsMissingPlanAndToken(t *testing.T) {
	h := newHarness(t)
	_, token := h.addUser(t, models.UserAuth{Email: "tech@example.com", Name: "Tech"})

	server := httptest.NewServer(h.router)
	defer server.Close()

	t.Run("missing plan", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/job-plans/9999/edit"
		header := http.Header{"Authorization": []string{"Bearer " + token}}
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/job-plans/1/edit"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
