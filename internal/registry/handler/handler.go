// Package handler is the thin HTTP layer over the registry service. It
// decodes requests, resolves the caller identity from the auth middleware,
// and maps coded domain errors onto HTTP statuses. No business logic here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"carehub/internal/platform/middleware"
	"carehub/internal/registry/models"
	"carehub/internal/registry/service"
	id "carehub/pkg/domain"
	dErrors "carehub/pkg/domain-errors"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the mutating routes on r. Callers wrap r with the
// request-ID and auth middleware so every mutation has a caller identity.
func (h *Handler) Register(r chi.Router) {
	r.Post("/profiles", h.registerProfile)
	r.Patch("/profiles/me", h.updateProfile)
	r.Post("/profiles/me/certifications", h.addCertification)
	r.Delete("/profiles/me/certifications/{index}", h.removeCertification)

	r.Post("/profiles/{identity}/verify", h.verifyProfile)
	r.Post("/profiles/{identity}/reputation", h.updateReputation)

	r.Post("/platform/admin", h.transferAdmin)
	r.Put("/platform/reputation-updater", h.setReputationUpdater)
	r.Put("/platform/pause", h.setPaused)
}

// RegisterReads mounts the read-only routes. These never mutate and serve
// unauthenticated consumers (service matching, escrow, dispute resolution).
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/profiles/{identity}", h.getProfile)
	r.Get("/profiles/{identity}/reputation", h.getReputation)
	r.Get("/platform", h.getPlatform)
}

func (h *Handler) registerProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req RegisterProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.RegisterProfile(r.Context(), caller, req.Name, req.Bio, req.ExperienceYears, req.Certifications, req.IsAvailable)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) addCertification(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req AddCertificationRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.AddCertification(r.Context(), caller, req.Certification)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) removeCertification(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeInvalidInput, "certification index must be an integer"))
		return
	}
	p, err := h.svc.RemoveCertification(r.Context(), caller, index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}
	p, found, err := h.svc.GetProfile(r.Context(), identity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeError(w, r, dErrors.New(dErrors.CodeNotFound, "profile not found"))
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getReputation(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}
	score, err := h.svc.ReputationScore(r.Context(), identity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ReputationResponse{
		Identity:        identity.String(),
		ReputationScore: score,
	})
}

func (h *Handler) verifyProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	caregiver, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}
	p, err := h.svc.VerifyProfile(r.Context(), caller, caregiver)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) updateReputation(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	caregiver, ok := h.pathIdentity(w, r)
	if !ok {
		return
	}
	var req UpdateReputationRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ReviewAdd < 0 {
		h.writeError(w, r, dErrors.New(dErrors.CodeInvalidInput, "review increment cannot be negative"))
		return
	}
	p, err := h.svc.UpdateReputation(r.Context(), caller, caregiver, req.ScoreAdd, uint64(req.ReviewAdd))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) getPlatform(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, PlatformResponse{
		Admin:             h.svc.Admin().String(),
		Paused:            h.svc.Paused(),
		ReputationUpdater: h.svc.ReputationUpdater().String(),
	})
}

func (h *Handler) transferAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req TransferAdminRequest
	if !h.decode(w, r, &req) {
		return
	}
	next, err := id.Parse(req.NewAdmin)
	if err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeZeroAddress, "new admin must be a valid identity"))
		return
	}
	if err := h.svc.TransferAdmin(r.Context(), caller, next); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setReputationUpdater(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req SetReputationUpdaterRequest
	if !h.decode(w, r, &req) {
		return
	}
	updater := id.Zero
	if req.Updater != "" {
		parsed, err := id.Parse(req.Updater)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		updater = parsed
	}
	if err := h.svc.SetReputationUpdater(r.Context(), caller, updater); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setPaused(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req SetPausedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.SetPaused(r.Context(), caller, req.Paused); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.Identity, bool) {
	caller := middleware.GetIdentity(r.Context())
	if caller.IsZero() {
		h.writeStatus(w, http.StatusUnauthorized, "unauthorized", "caller identity missing from request context")
		return id.Zero, false
	}
	return caller, true
}

func (h *Handler) pathIdentity(w http.ResponseWriter, r *http.Request) (id.Identity, bool) {
	identity, err := id.Parse(chi.URLParam(r, "identity"))
	if err != nil {
		h.writeError(w, r, err)
		return id.Zero, false
	}
	return identity, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeValidation, "invalid request body"))
		return false
	}
	return true
}
