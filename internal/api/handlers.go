package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// Nonce endpoint error messages.
const (
	msgEmptyBody       = "Empty request body"
	msgInvalidJSON     = "Invalid JSON in request body"
	msgAddressRequired = "Wallet address is required."
	msgNonceFailed     = "Failed to generate nonce."
)

type errorResponse struct {
	Error string `json:"error"`
}

type nonceResponse struct {
	Nonce string `json:"nonce"`
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) handleNonce(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		a.logger.Error("reading nonce request: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
		return
	}
	if len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgEmptyBody})
		return
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		a.logger.Debug("parsing nonce request: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
		return
	}

	address, ok := req["address"].(string)
	if !ok || strings.TrimSpace(address) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgAddressRequired})
		return
	}

	n, err := a.issuer.Issue(r.Context(), address)
	if err != nil {
		a.logger.Error("generating nonce: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgNonceFailed})
		return
	}
	writeJSON(w, http.StatusOK, nonceResponse{Nonce: n.Value})
}

func (a *API) handlePayableTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.tasks.ListPayable(r.Context())
	if err != nil {
		a.logger.Error("listing payable tasks: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to list tasks."})
		return
	}
	if tasks == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *API) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.metrics.Snapshot())
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type verifyRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleVerify exchanges a signed login message for a session token.
func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	var req verifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgAddressRequired})
		return
	}
	if strings.TrimSpace(req.Signature) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Signature is required."})
		return
	}

	if err := a.issuer.Verify(r.Context(), req.Address, req.Signature); err != nil {
		a.logger.Debug("sign-in for %s failed: %v", req.Address, err)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid or expired signature."})
		return
	}

	token, expires, err := a.opts.Tokens.Sign(req.Address)
	if err != nil {
		a.logger.Error("signing session token: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create session."})
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Token: token, Address: strings.ToLower(req.Address), ExpiresAt: expires.UTC()})
}

// requireToken rejects requests without a valid bearer token when sign-in
// is enabled.
func (a *API) requireToken(next http.Handler) http.Handler {
	if a.opts.Tokens == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Missing bearer token."})
			return
		}
		if _, err := a.opts.Tokens.Parse(token); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid or expired token."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
