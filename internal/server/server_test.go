package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/bpdmkit/partnerfile/internal/config"
	"github.com/bpdmkit/partnerfile/internal/job"
)

// fakeAPI serves the token endpoint and a minimal partner API.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	})
	mux.HandleFunc("/api/input/business-partners", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/output/business-partners/search", func(w http.ResponseWriter, r *http.Request) {
		var content []map[string]any
		if r.URL.Query().Get("page") == "0" {
			content = []map[string]any{
				{"externalId": "A", "nameParts": []any{"Acme"}, "isOwnCompanyData": true},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"content": content})
	})
	mux.HandleFunc("/api/sharing-state", func(w http.ResponseWriter, r *http.Request) {
		var content []map[string]any
		for _, id := range r.URL.Query()["externalIds"] {
			content = append(content, map[string]any{"externalId": id, "sharingStateType": "Success"})
		}
		json.NewEncoder(w).Encode(map[string]any{"content": content})
	})
	return httptest.NewServer(mux)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	api := fakeAPI(t)
	t.Cleanup(api.Close)
	cfg := config.Default()
	cfg.BaseURL = api.URL + "/api/"
	cfg.AuthURL = api.URL + "/token"
	s := New(cfg, config.Credentials{ClientID: "id", ClientSecret: "secret"}, nil)
	t.Cleanup(func() { s.jobs.Close() })
	return s
}

func multipartBody(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func startJob(t *testing.T, s *Server, method, url string, body *bytes.Buffer, contentType string) string {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func waitDone(t *testing.T, s *Server, id string) job.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		j, ok := s.jobs.Get(id)
		require.True(t, ok)
		snap := j.Snapshot()
		if snap.Done {
			return snap
		}
		require.True(t, time.Now().Before(deadline), "job did not finish")
		time.Sleep(10 * time.Millisecond)
	}
}

func eventTexts(snap job.Snapshot) string {
	var b strings.Builder
	for _, e := range snap.Events {
		b.WriteString(e.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func TestUploadFlow(t *testing.T) {
	s := newTestServer(t)
	csv := "externalId;name1;isOwnCompanyData\nA;Acme GmbH;true\n"
	body, ct := multipartBody(t, "file", "partners.csv", csv)
	id := startJob(t, s, http.MethodPost, "/upload", body, ct)

	snap := waitDone(t, s, id)
	texts := eventTexts(snap)
	require.Contains(t, texts, "Converted 1 records")
	require.Contains(t, texts, "Upload complete")
}

func TestUploadReportsIssues(t *testing.T) {
	s := newTestServer(t)
	csv := "externalId;name1;isOwnCompanyData\nA;;true\n"
	body, ct := multipartBody(t, "file", "partners.csv", csv)
	id := startJob(t, s, http.MethodPost, "/upload", body, ct)

	snap := waitDone(t, s, id)
	texts := eventTexts(snap)
	require.Contains(t, texts, "required field is missing or empty")
	require.Contains(t, texts, "nothing uploaded")
}

func TestUploadMissingFile(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadFlow(t *testing.T) {
	s := newTestServer(t)
	id := startJob(t, s, http.MethodPost, "/download/output", nil, "")

	snap := waitDone(t, s, id)
	require.True(t, snap.HasResult)

	req := httptest.NewRequest(http.MethodGet, "/result/"+id, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "output.csv")
	data := rec.Body.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	require.Contains(t, string(data), "Acme")
}

func TestDownloadUnknownStage(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/download/staging", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSharingStateFlow(t *testing.T) {
	s := newTestServer(t)
	csv := "externalId;name1\nA;Acme\nA;\nB;Best\n"
	body, ct := multipartBody(t, "file", "ids.csv", csv)
	id := startJob(t, s, http.MethodPost, "/sharing-state", body, ct)

	snap := waitDone(t, s, id)
	require.True(t, snap.HasResult)
	texts := eventTexts(snap)
	require.Contains(t, texts, "Checking 2 identifiers")

	j, _ := s.jobs.Get(id)
	name, data, ok := j.Result()
	require.True(t, ok)
	require.Equal(t, "sharing-state.csv", name)
	require.Contains(t, string(data), "sharingStateType")
	require.Contains(t, string(data), "Success")
}

func TestProgressNotFound(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/progress/nope", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/result/nope", nil)
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexRenders(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "externalId")
}
