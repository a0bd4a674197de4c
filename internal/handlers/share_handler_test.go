package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shareJSON struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

func TestShare_PublishViewRevoke(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice", false)
	bob := s.user(t, "bob", false)

	body, ct := multipartBody(t, map[string]string{
		"project": "Field", "title": "Public", "observation": "open to all", "tags": "birds",
	}, "heron.png", []byte("\x89PNG fake"))
	rr := s.do(t, http.MethodPost, "/api/entries", body, ct, alice.ID)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	e := decode[entryJSON](t, rr)
	sharePath := fmt.Sprintf("/api/entries/%d/share", e.ID)

	rr = s.doJSON(t, http.MethodPost, sharePath, "", bob.ID)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.doJSON(t, http.MethodPost, sharePath, "", alice.ID)
	require.Equal(t, http.StatusOK, rr.Code)
	first := decode[shareJSON](t, rr)
	assert.Len(t, first.Token, 22)
	assert.Equal(t, "http://example.test/api/shared/"+first.Token, first.URL)

	// анонимный просмотр
	rr = s.doJSON(t, http.MethodGet, "/api/shared/"+first.Token, "", 0)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}](t, rr)
	assert.Equal(t, "Public", view.Title)
	assert.Equal(t, []string{"birds"}, view.Tags)
	assert.NotContains(t, rr.Body.String(), "user_id")

	rr = s.doJSON(t, http.MethodGet, "/api/shared/"+first.Token+"/export", "", 0)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))

	rr = s.doJSON(t, http.MethodGet, fmt.Sprintf("/api/shared/%s/media/%d", first.Token, e.Media[0].ID), "", 0)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	// владелец видит ссылку в записи
	rr = s.doJSON(t, http.MethodGet, fmt.Sprintf("/api/entries/%d", e.ID), "", alice.ID)
	got := decode[entryJSON](t, rr)
	assert.True(t, got.Shared)
	assert.Equal(t, first.URL, got.ShareURL)

	// повторная публикация делает старый токен недействительным
	rr = s.doJSON(t, http.MethodPost, sharePath, "", alice.ID)
	second := decode[shareJSON](t, rr)
	assert.NotEqual(t, first.Token, second.Token)
	rr = s.doJSON(t, http.MethodGet, "/api/shared/"+first.Token, "", 0)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.doJSON(t, http.MethodDelete, sharePath, "", alice.ID)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.doJSON(t, http.MethodGet, "/api/shared/"+second.Token, "", 0)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = s.doJSON(t, http.MethodGet, "/api/shared/"+second.Token+"/export", "", 0)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShare_UnknownToken(t *testing.T) {
	s := newTestServer(t)
	rr := s.doJSON(t, http.MethodGet, "/api/shared/does-not-exist", "", 0)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = s.doJSON(t, http.MethodGet, "/api/shared/does-not-exist/media/abc", "", 0)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
