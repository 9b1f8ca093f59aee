package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/M0chiIron/ProjetL3/internal/auth"
)

type testServer struct {
	router *gin.Engine
	db     *sql.DB
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	createUser(t, db, "u1")

	sessions := auth.NewSessionStore(db, time.Hour)
	sess, err := sessions.Create(context.Background(), "u1")
	require.NoError(t, err)

	router := gin.New()
	h := NewHandler(NewRepo(db), nil, zap.NewNop())
	api := router.Group("/api")
	h.RegisterPublicRoutes(api)
	protected := api.Group("", auth.RequireSession(sessions))
	h.RegisterRoutes(protected)

	return &testServer{router: router, db: db, token: sess.Token}
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return w, payload
}

func TestAddToLibraryRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	w, payload := ts.do(t, http.MethodPost, "/api/add-to-library", ts.token,
		`{"key":"/works/OL45804W","title":"Dune","author_name":["Frank Herbert"],"cover_i":11481354,"type_library":"read","rating":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, payload["success"])

	book, ok := payload["book"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "OL45804W", book["key"]) // key stored in normalized form
	require.Equal(t, "read", book["type_library"])
	require.EqualValues(t, 5, book["rating"])
}

func TestAddToLibraryTwiceKeepsOneEntry(t *testing.T) {
	ts := newTestServer(t)

	_, _ = ts.do(t, http.MethodPost, "/api/add-to-library", ts.token,
		`{"key":"OL1W","title":"A","type_library":"to_read"}`)
	_, _ = ts.do(t, http.MethodPost, "/api/add-to-library", ts.token,
		`{"key":"OL1W","title":"A","type_library":"read","rating":4}`)

	require.Equal(t, 1, countBooks(t, ts.db, "u1", "OL1W"))

	_, payload := ts.do(t, http.MethodGet, "/api/book/OL1W", ts.token, "")
	require.Equal(t, true, payload["isInLibrary"])
	book := payload["book"].(map[string]any)
	require.Equal(t, "read", book["type_library"])
	require.EqualValues(t, 4, book["rating"])
}

func TestAddToLibraryRejectsBadStatus(t *testing.T) {
	ts := newTestServer(t)

	w, payload := ts.do(t, http.MethodPost, "/api/add-to-library", ts.token,
		`{"key":"OL1W","title":"A","type_library":"abandoned"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, false, payload["success"])
}

func TestAddToLibraryRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	w, payload := ts.do(t, http.MethodPost, "/api/add-to-library", "",
		`{"key":"OL1W","title":"A"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, false, payload["success"])
}

func TestRemoveFromLibraryUnknownIDIsSilentSuccess(t *testing.T) {
	ts := newTestServer(t)

	w, payload := ts.do(t, http.MethodPost, "/api/remove-from-library", ts.token,
		`{"bookId":999999}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, payload["success"])
}

func TestGetBookNotInLibrary(t *testing.T) {
	ts := newTestServer(t)

	w, payload := ts.do(t, http.MethodGet, "/api/book/OL99999W", ts.token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, payload["isInLibrary"])
	_, hasBook := payload["book"]
	require.False(t, hasBook)
}

func TestLibraryListShape(t *testing.T) {
	ts := newTestServer(t)

	_, _ = ts.do(t, http.MethodPost, "/api/add-to-library", ts.token,
		`{"key":"OL1W","title":"A","type_library":"reading"}`)

	w, payload := ts.do(t, http.MethodGet, "/api/library", ts.token, "")
	require.Equal(t, http.StatusOK, w.Code)
	books, ok := payload["books"].([]any)
	require.True(t, ok)
	require.Len(t, books, 1)
}

func TestPopularBooksIsPublic(t *testing.T) {
	ts := newTestServer(t)

	_, _ = ts.do(t, http.MethodPost, "/api/add-to-library", ts.token,
		`{"key":"OL1W","title":"A"}`)

	w, payload := ts.do(t, http.MethodGet, "/api/popular-books", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, payload["success"])
	books := payload["books"].([]any)
	require.Len(t, books, 1)
}
