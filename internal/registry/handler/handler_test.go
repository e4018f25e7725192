package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carehub/internal/platform/middleware"
	"carehub/internal/registry/gate"
	"carehub/internal/registry/handler"
	"carehub/internal/registry/models"
	"carehub/internal/registry/service"
	"carehub/internal/registry/store/profile"
	id "carehub/pkg/domain"
)

const signingKey = "handler-test-signing-key"

type env struct {
	router chi.Router
	svc    *service.Service
}

// newEnv builds the router the same way cmd/server does: public reads,
// then request-ID plus JWT auth in front of the mutating routes.
func newEnv(t *testing.T) *env {
	t.Helper()

	g, err := gate.New("0xadmin")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(profile.NewInMemory(), g,
		service.WithLogger(logger),
		service.WithClock(func() uint64 { return 42 }),
	)
	h := handler.New(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Group(h.RegisterReads)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(middleware.NewHMACValidator(signingKey), logger))
		h.Register(r)
	})
	return &env{router: r, svc: svc}
}

func token(t *testing.T, identity id.Identity) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   identity.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return signed
}

func (e *env) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeProfile(t *testing.T, rec *httptest.ResponseRecorder) models.Profile {
	t.Helper()
	var p models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func registerAda(t *testing.T, e *env, bearer string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/profiles", bearer, map[string]any{
		"name":             "Ada",
		"bio":              []byte("ten years of elder care"),
		"experience_years": 10,
		"certifications":   []string{"First Aid", "CPR"},
		"is_available":     true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRegisterProfile(t *testing.T) {
	e := newEnv(t)
	bearer := token(t, "0xada")

	rec := e.do(t, http.MethodPost, "/profiles", bearer, map[string]any{
		"name":             "Ada",
		"experience_years": 10,
		"is_available":     true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	p := decodeProfile(t, rec)
	assert.Equal(t, id.Identity("0xada"), p.Identity)
	assert.Equal(t, "Ada", p.Name)
	assert.False(t, p.IsVerified)
	assert.Zero(t, p.ReputationScore)
	assert.Equal(t, uint64(42), p.LastUpdated)

	t.Run("second registration conflicts", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/profiles", bearer, map[string]any{"name": "Again"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "profile_exists", decodeError(t, rec))
	})

	t.Run("over-limit name is a bad request", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/profiles", token(t, "0xother"), map[string]any{
			"name": strings.Repeat("n", models.MaxNameLen+1),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader("{not json"))
		req.Header.Set("Authorization", "Bearer "+bearer)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthentication(t *testing.T) {
	e := newEnv(t)

	t.Run("mutations without a token are unauthorized", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/profiles", "", map[string]any{"name": "Ada"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("a token signed with the wrong key is unauthorized", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: "0xada"}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-key"))
		require.NoError(t, err)
		rec := e.do(t, http.MethodPost, "/profiles", forged, map[string]any{"name": "Ada"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reads are public", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/platform", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	bearer := token(t, "0xada")
	registerAda(t, e, bearer)

	rec := e.do(t, http.MethodPatch, "/profiles/me", bearer, map[string]any{
		"is_available": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := decodeProfile(t, rec)
	assert.False(t, p.IsAvailable)
	assert.Equal(t, "Ada", p.Name, "omitted fields keep their values")

	t.Run("updating a missing profile is not found", func(t *testing.T) {
		rec := e.do(t, http.MethodPatch, "/profiles/me", token(t, "0xnobody"), map[string]any{})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCertificationRoutes(t *testing.T) {
	e := newEnv(t)
	bearer := token(t, "0xada")
	registerAda(t, e, bearer)

	rec := e.do(t, http.MethodPost, "/profiles/me/certifications", bearer, map[string]any{
		"certification": "Dementia Care",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"First Aid", "CPR", "Dementia Care"}, decodeProfile(t, rec).Certifications)

	t.Run("delete by index keeps order", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/profiles/me/certifications/1", bearer, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []string{"First Aid", "Dementia Care"}, decodeProfile(t, rec).Certifications)
	})

	t.Run("non-integer index is a bad request", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/profiles/me/certifications/first", bearer, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out-of-range index is a bad request", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/profiles/me/certifications/99", bearer, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVerification(t *testing.T) {
	e := newEnv(t)
	registerAda(t, e, token(t, "0xada"))
	admin := token(t, "0xadmin")

	t.Run("non-admin is forbidden", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/profiles/0xada/verify", token(t, "0xada"), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "not_authorized", decodeError(t, rec))
	})

	rec := e.do(t, http.MethodPost, "/profiles/0xada/verify", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeProfile(t, rec).IsVerified)

	t.Run("second verification conflicts", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/profiles/0xada/verify", admin, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "already_verified", decodeError(t, rec))
	})
}

func TestReputationRoutes(t *testing.T) {
	e := newEnv(t)
	registerAda(t, e, token(t, "0xada"))
	admin := token(t, "0xadmin")

	t.Run("accrual on an unverified profile conflicts", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/profiles/0xada/reputation", token(t, "0xplatform"), map[string]any{
			"score_add": 5, "review_add": 1,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "not_verified", decodeError(t, rec))
	})

	rec := e.do(t, http.MethodPost, "/profiles/0xada/verify", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/profiles/0xada/reputation", token(t, "0xplatform"), map[string]any{
		"score_add": 5, "review_add": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decodeProfile(t, rec)
	assert.Equal(t, uint64(5), p.ReputationScore)
	assert.Equal(t, uint64(1), p.ReviewCount)

	t.Run("score read is public and reflects accrual", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/profiles/0xada/reputation", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body handler.ReputationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, uint64(5), body.ReputationScore)
	})

	t.Run("unknown identity reads a zero score", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/profiles/0xnobody/reputation", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body handler.ReputationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Zero(t, body.ReputationScore)
	})

	t.Run("non-positive increments are bad requests", func(t *testing.T) {
		for _, scoreAdd := range []int{0, -3} {
			rec := e.do(t, http.MethodPost, "/profiles/0xada/reputation", token(t, "0xplatform"), map[string]any{
				"score_add": scoreAdd, "review_add": 1,
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("negative review increment is a bad request", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/profiles/0xada/reputation", token(t, "0xplatform"), map[string]any{
			"score_add": 5, "review_add": -1,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)
	registerAda(t, e, token(t, "0xada"))

	rec := e.do(t, http.MethodGet, "/profiles/0xada", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", decodeProfile(t, rec).Name)

	t.Run("missing profile is not found", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/profiles/0xnobody", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPlatformRoutes(t *testing.T) {
	e := newEnv(t)
	admin := token(t, "0xadmin")

	t.Run("pause blocks mutations until unpaused", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/platform/pause", admin, map[string]any{"paused": true})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = e.do(t, http.MethodPost, "/profiles", token(t, "0xada"), map[string]any{"name": "Ada"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "paused", decodeError(t, rec))

		rec = e.do(t, http.MethodPut, "/platform/pause", admin, map[string]any{"paused": false})
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("reputation updater set and cleared", func(t *testing.T) {
		rec := e.do(t, http.MethodPut, "/platform/reputation-updater", admin, map[string]any{"updater": "0xplatform"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = e.do(t, http.MethodGet, "/platform", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body handler.PlatformResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "0xplatform", body.ReputationUpdater)

		rec = e.do(t, http.MethodPut, "/platform/reputation-updater", admin, map[string]any{"updater": ""})
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("admin transfer moves the role", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/platform/admin", admin, map[string]any{"new_admin": "0xnext"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = e.do(t, http.MethodGet, "/platform", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body handler.PlatformResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "0xnext", body.Admin)

		rec = e.do(t, http.MethodPost, "/platform/admin", admin, map[string]any{"new_admin": "0xelse"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("transfer to an empty identity is a bad request", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/platform/admin", token(t, "0xnext"), map[string]any{"new_admin": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
