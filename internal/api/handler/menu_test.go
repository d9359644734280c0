package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/rollbowl_go_server/internal/pkg/response"
)

func TestMenuHandler_PublishAndRead(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	body := map[string]interface{}{"date": "2026-10-20", "items": []string{" Paneer Roll ", "", "Veg Bowl"}}
	resp := parseResponse(t, s.do("PUT", "/api/v1/admin/menu", body, token))
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, []interface{}{"Paneer Roll", "Veg Bowl"}, dataMap(t, resp)["items"])

	resp = parseResponse(t, s.do("GET", "/api/v1/menu/today", nil, ""))
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, "2026-10-20", dataMap(t, resp)["date"])

	resp = parseResponse(t, s.do("GET", "/api/v1/menu/2026-10-20", nil, ""))
	require.Equal(t, response.CodeSuccess, resp.Code)
}

func TestMenuHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	resp := parseResponse(t, s.do("GET", "/api/v1/menu/2026-10-25", nil, ""))
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)

	resp = parseResponse(t, s.do("GET", "/api/v1/menu/tomorrow", nil, ""))
	assert.Equal(t, response.CodeParamError, resp.Code)

	resp = parseResponse(t, s.do("PUT", "/api/v1/admin/menu", map[string]interface{}{"date": "2026-10-20", "items": []string{" "}}, token))
	assert.Equal(t, response.CodeInvalidSelection, resp.Code)

	resp = parseResponse(t, s.do("PUT", "/api/v1/admin/menu", map[string]interface{}{"date": "2026-10-20"}, token))
	assert.Equal(t, response.CodeParamError, resp.Code)
}
