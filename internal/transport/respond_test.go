package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusOK, "Order deleted successfully")

	assert.JSONEq(t, `{"message":"Order deleted successfully"}`, rec.Body.String())
}

func TestServerError(t *testing.T) {
	rec := httptest.NewRecorder()
	ServerError(rec)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Server error"}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Croissant"}`))

	var dst struct {
		Name string `json:"name"`
	}
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "Croissant", dst.Name)

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
	assert.Error(t, Decode(bad, &dst))
}
