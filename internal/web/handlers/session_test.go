package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/dosimetria-portal/internal/access"
	"github.com/blockedby/dosimetria-portal/internal/web"
)

func TestSession_ReturnsProfileAndModules(t *testing.T) {
	srv := web.NewServer(&web.Config{JWTSecret: testSecret, Profiles: staffProfiles()})
	srv.RegisterSessionHandler(NewSessionHandler(access.Default()))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", bearer(t, "op"))
	rec := do(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Profile struct {
			ID       string `json:"id"`
			FullName string `json:"full_name"`
			Role     string `json:"role"`
		} `json:"profile"`
		Modules []string `json:"modules"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Oscar", resp.Profile.FullName)
	assert.Equal(t, "operario", resp.Profile.Role)
	assert.Equal(t, []string{"despacho", "perfil"}, resp.Modules)
}

func TestSession_WithoutProfile(t *testing.T) {
	h := NewSessionHandler(access.Default())
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
