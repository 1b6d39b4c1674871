package attendance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/backend/internal/models"
)

func newConfirmRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(store, nil, nil)
	h := NewHandler(svc, nil, nil, nil, "", nil)
	r := gin.New()
	r.POST("/api/attendance/confirm", h.Confirm)
	return r
}

func postConfirm(t *testing.T, r *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/confirm", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestConfirmEndpointSuccess(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateOpen)
	r := newConfirmRouter(store)

	w := postConfirm(t, r, map[string]string{
		"access_code":       "ABCD1234",
		"participant_name":  "Jane Doe",
		"participant_email": "jane@example.com",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Team Standup", data["event_name"])
	assert.Equal(t, "jane@example.com", data["participant_email"])
}

func TestConfirmEndpointUnknownCode(t *testing.T) {
	r := newConfirmRouter(newFakeStore())

	w := postConfirm(t, r, map[string]string{
		"access_code":       "ZZZZ9999",
		"participant_name":  "Jane Doe",
		"participant_email": "jane@example.com",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid access code", body["error"])
}

func TestConfirmEndpointClosedEvent(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateClosed)
	r := newConfirmRouter(store)

	w := postConfirm(t, r, map[string]string{
		"access_code":       "ABCD1234",
		"participant_name":  "Jane Doe",
		"participant_email": "jane@example.com",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "CLOSED", data["event_state"])
}

func TestConfirmEndpointDuplicate(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateOpen)
	r := newConfirmRouter(store)

	req := map[string]string{
		"access_code":       "ABCD1234",
		"participant_name":  "Jane Doe",
		"participant_email": "jane@example.com",
	}
	require.Equal(t, http.StatusCreated, postConfirm(t, r, req).Code)

	w := postConfirm(t, r, req)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["confirmed_at"])
}

func TestConfirmEndpointValidation(t *testing.T) {
	r := newConfirmRouter(newFakeStore())

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing access code", map[string]string{
			"participant_name":  "Jane Doe",
			"participant_email": "jane@example.com",
		}},
		{"short access code", map[string]string{
			"access_code":       "ABC",
			"participant_name":  "Jane Doe",
			"participant_email": "jane@example.com",
		}},
		{"bad email", map[string]string{
			"access_code":       "ABCD1234",
			"participant_name":  "Jane Doe",
			"participant_email": "not-an-email",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postConfirm(t, r, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
