package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"freightsnap/internal/config"
	"freightsnap/internal/domain"
	"freightsnap/internal/handler"
	"freightsnap/internal/middleware"
	"freightsnap/internal/pdftext"
	"freightsnap/internal/pipeline"
	"freightsnap/internal/port"
	"freightsnap/internal/router"
	"freightsnap/internal/session"
	"freightsnap/internal/usage"
	"freightsnap/mocks"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupAPI(t *testing.T, verifier port.LicenseVerifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Session:  config.SessionConfig{TTL: time.Hour, SweepInterval: time.Minute, MaxFileSizeMB: 5},
		FreeTier: config.FreeTierConfig{DailyLimit: 3},
	}

	// The AI normalizer is never reached by these tests; spreadsheet
	// uploads take the deterministic path.
	processor := pipeline.NewRouter(pdftext.NewExtractor(), new(mocks.MockNormalizer))
	meter := usage.NewMeter(cfg.FreeTier.DailyLimit)
	manager := session.NewManager(processor, meter, cfg.Session)

	if verifier == nil {
		verifier = new(mocks.MockLicenseVerifier)
	}

	return router.Setup(
		cfg,
		manager,
		handler.NewSessionHandler(manager, cfg.Session),
		handler.NewFileHandler(cfg.Session),
		handler.NewExportHandler(),
		handler.NewLicenseHandler(verifier),
		handler.NewUsageHandler(meter, cfg.FreeTier.DailyLimit),
		handler.NewHealthHandler(),
	)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func createSession(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/session", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var data struct {
		SessionID string `json:"session_id"`
	}
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.SessionID)
	return data.SessionID
}

func doRequest(engine *gin.Engine, method, path, sessionID string, body []byte, contentType string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func uploadCSV(t *testing.T, engine *gin.Engine, sessionID, fileName, content string) envelope {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := doRequest(engine, http.MethodPost, "/api/v1/files/upload", sessionID, buf.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}

// sessionData fetches the snapshot and reports whether every file is
// terminal.
func sessionData(t *testing.T, engine *gin.Engine, sessionID string) (map[string]interface{}, bool) {
	t.Helper()
	w := doRequest(engine, http.MethodGet, "/api/v1/session/data", sessionID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]interface{}
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))

	files, _ := data["files"].([]interface{})
	for _, f := range files {
		status := f.(map[string]interface{})["status"].(string)
		if status != "done" && status != "error" {
			return data, false
		}
	}
	return data, true
}

func waitForProcessing(t *testing.T, engine *gin.Engine, sessionID string) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.Eventually(t, func() bool {
		var settled bool
		data, settled = sessionData(t, engine, sessionID)
		return settled
	}, 2*time.Second, 10*time.Millisecond)
	return data
}

func TestUploadFlow(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	env := uploadCSV(t, engine, sid, "loads.csv", "Tracking,Origin,Destination\n1Z9,Chicago,Denver\n1A4,Dallas,Reno\n")
	var file struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &file))
	assert.Equal(t, "pending", file.Status)

	data := waitForProcessing(t, engine, sid)

	doc := data["document"].(map[string]interface{})
	assert.Equal(t, []interface{}{"tracking", "origin", "destination"}, doc["columns"])
	assert.Len(t, doc["rows"], 2)

	files := data["files"].([]interface{})
	require.Len(t, files, 1)
	assert.Equal(t, "done", files[0].(map[string]interface{})["status"])
	assert.Equal(t, float64(2), files[0].(map[string]interface{})["row_count"])
}

func TestUploadRequiresSession(t *testing.T) {
	engine := setupAPI(t, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/session/data", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/session/data", "11111111-2222-3333-4444-555555555555", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadMissingFileField(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	w := doRequest(engine, http.MethodPost, "/api/v1/files/upload", sid, buf.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decode(t, w).Error.Code)
}

func TestUploadUnsupportedType(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := doRequest(engine, http.MethodPost, "/api/v1/files/upload", sid, buf.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decode(t, w).Error.Code)
}

func TestDailyLimit(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	for i := 0; i < 3; i++ {
		uploadCSV(t, engine, sid, "loads.csv", "a,b\n1,2\n")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "loads.csv")
	fw.Write([]byte("a,b\n1,2\n"))
	mw.Close()

	w := doRequest(engine, http.MethodPost, "/api/v1/files/upload", sid, buf.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "DAILY_LIMIT_REACHED", decode(t, w).Error.Code)
}

func TestEditAndDeleteRows(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	uploadCSV(t, engine, sid, "loads.csv", "Tracking,Origin\n1Z9,Chicago\n1A4,Dallas\n")
	waitForProcessing(t, engine, sid)

	body, _ := json.Marshal(map[string]string{"field": "origin", "value": "Detroit"})
	w := doRequest(engine, http.MethodPatch, "/api/v1/session/rows/0", sid, body, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(engine, http.MethodDelete, "/api/v1/session/rows/1", sid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	data, _ := sessionData(t, engine, sid)
	doc := data["document"].(map[string]interface{})
	rows := doc["rows"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Detroit", rows[0].(map[string]interface{})["origin"])
	summary := doc["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["total_rows"])
}

func TestEditRowErrors(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	uploadCSV(t, engine, sid, "loads.csv", "a,b\n1,2\n")
	waitForProcessing(t, engine, sid)

	body, _ := json.Marshal(map[string]string{"field": "a", "value": "x"})
	w := doRequest(engine, http.MethodPatch, "/api/v1/session/rows/9", sid, body, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ROW_INDEX_OUT_OF_RANGE", decode(t, w).Error.Code)

	body, _ = json.Marshal(map[string]string{"field": "nope", "value": "x"})
	w = doRequest(engine, http.MethodPatch, "/api/v1/session/rows/0", sid, body, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_COLUMN", decode(t, w).Error.Code)

	w = doRequest(engine, http.MethodPatch, "/api/v1/session/rows/abc", sid, body, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ROW_INDEX", decode(t, w).Error.Code)
}

func TestExportCSV(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	uploadCSV(t, engine, sid, "loads.csv", "Tracking,Origin\n1Z9,Chicago\n")
	waitForProcessing(t, engine, sid)

	w := doRequest(engine, http.MethodGet, "/api/v1/session/export?format=csv", sid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "FreightSnap_")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "tracking,origin")
}

func TestExportWithoutData(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	w := doRequest(engine, http.MethodGet, "/api/v1/session/export?format=csv", sid, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_DATA", decode(t, w).Error.Code)
}

func TestExportProGating(t *testing.T) {
	verifier := new(mocks.MockLicenseVerifier)
	verifier.On("Verify", mock.Anything, "GOOD-KEY").Return(2, nil)

	engine := setupAPI(t, verifier)
	sid := createSession(t, engine)

	uploadCSV(t, engine, sid, "loads.csv", "Invoice Number,Amount\nINV-1,450\n")
	waitForProcessing(t, engine, sid)

	w := doRequest(engine, http.MethodGet, "/api/v1/session/export?format=quickbooks", sid, nil, "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "PRO_REQUIRED", decode(t, w).Error.Code)

	body, _ := json.Marshal(map[string]string{"license_key": "GOOD-KEY"})
	w = doRequest(engine, http.MethodPost, "/api/v1/license/activate", sid, body, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(engine, http.MethodGet, "/api/v1/session/export?format=quickbooks", sid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "*InvoiceNo"))
}

func TestLicenseActivateInvalidKey(t *testing.T) {
	verifier := new(mocks.MockLicenseVerifier)
	verifier.On("Verify", mock.Anything, "BAD-KEY").Return(0, domain.ErrInvalidLicense)

	engine := setupAPI(t, verifier)
	sid := createSession(t, engine)

	body, _ := json.Marshal(map[string]string{"license_key": "BAD-KEY"})
	w := doRequest(engine, http.MethodPost, "/api/v1/license/activate", sid, body, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_LICENSE", decode(t, w).Error.Code)
}

func TestUsageEndpoint(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	uploadCSV(t, engine, sid, "loads.csv", "a,b\n1,2\n")
	waitForProcessing(t, engine, sid)

	w := doRequest(engine, http.MethodGet, "/api/v1/usage", sid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		DailyLimit int  `json:"daily_limit"`
		Remaining  int  `json:"remaining"`
		Pro        bool `json:"pro"`
	}
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.DailyLimit)
	assert.Equal(t, 2, data.Remaining)
	assert.False(t, data.Pro)
}

func TestClearSession(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	uploadCSV(t, engine, sid, "loads.csv", "a,b\n1,2\n")
	waitForProcessing(t, engine, sid)

	w := doRequest(engine, http.MethodPost, "/api/v1/session/clear", sid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	data, _ := sessionData(t, engine, sid)
	assert.Nil(t, data["document"])
	assert.Empty(t, data["files"])
}

func TestEndSession(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	w := doRequest(engine, http.MethodDelete, "/api/v1/session", sid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/session/data", sid, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFile(t *testing.T) {
	engine := setupAPI(t, nil)
	sid := createSession(t, engine)

	env := uploadCSV(t, engine, sid, "loads.csv", "a,b\n1,2\n")
	var file struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &file))
	waitForProcessing(t, engine, sid)

	w := doRequest(engine, http.MethodDelete, "/api/v1/files/"+file.ID, sid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	data, _ := sessionData(t, engine, sid)
	assert.Empty(t, data["files"])

	w = doRequest(engine, http.MethodDelete, "/api/v1/files/"+file.ID, sid, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	engine := setupAPI(t, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
