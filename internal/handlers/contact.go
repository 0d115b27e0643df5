package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// contact relays a contact form submission to the support mailbox.
func (r *Router) contact(w http.ResponseWriter, req *http.Request) {
	if r.mailer == nil {
		respondError(w, http.StatusInternalServerError, "Contact form is not configured")
		return
	}

	var c ContactRequest
	if err := json.NewDecoder(req.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Message) == "" {
		respondError(w, http.StatusBadRequest, "Email and message are required")
		return
	}

	if err := r.mailer.Send(c.Name, c.Email, c.Message); err != nil {
		log.Printf("⚠️ Contact form delivery failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Message received"})
}
