package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/pivot2ai/jobplans/internal/models"
)

// subscribe creates a checkout session for the subscription upgrade and
// returns its URL for the client to redirect to.
func (r *Router) subscribe(w http.ResponseWriter, req *http.Request) {
	if r.payments == nil {
		respondError(w, http.StatusInternalServerError, "Payment system not properly configured")
		return
	}

	if _, err := r.currentUser(req); err != nil {
		respondError(w, http.StatusUnauthorized, "User not found")
		return
	}

	successURL := r.cfg.BaseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := r.cfg.BaseURL + "/payment/cancel"

	url, err := r.payments.CreateCheckoutSession(req.Context(), successURL, cancelURL)
	if err != nil {
		log.Printf("⚠️ Payment session creation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Payment session creation failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// paymentWebhook consumes signed events from the payment collaborator and
// flips the paying user's subscription state.
func (r *Router) paymentWebhook(w http.ResponseWriter, req *http.Request) {
	if r.payments == nil {
		respondError(w, http.StatusInternalServerError, "Payment system not properly configured")
		return
	}

	payload, err := io.ReadAll(req.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read webhook payload")
		return
	}

	event, err := r.payments.VerifyWebhook(payload, req.Header.Get("Stripe-Signature"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		if event.CustomerEmail != "" {
			if err := r.store.SetSubscriptionStatus(req.Context(), event.CustomerEmail, models.SubscriptionActive); err != nil {
				log.Printf("⚠️ Failed to activate subscription for %s: %v", event.CustomerEmail, err)
			}
		}
	case "invoice.paid":
		// Renewal keeps the subscription active, nothing to change.
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
