package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/roomplants/internal/db"
	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/photostore/local"
	"github.com/vbonduro/roomplants/internal/service"
	"github.com/vbonduro/roomplants/internal/store"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type stubUploader struct {
	locator string
	err     error
	path    string
	existed bool
}

func (s *stubUploader) Upload(_ context.Context, localPath string) (string, error) {
	s.path = localPath
	_, statErr := os.Stat(localPath)
	s.existed = statErr == nil
	return s.locator, s.err
}

type stubAnalyzer struct {
	raw string
	err error
	ctx domain.Context
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string, c domain.Context) (string, error) {
	s.ctx = c
	return s.raw, s.err
}

type stubClock struct{}

func (stubClock) Month() string { return "April" }
func (stubClock) Hour() string  { return "09 AM" }

type testEnv struct {
	server   *Server
	uploader *stubUploader
	analyzer *stubAnalyzer
	plants   *store.PlantStore
	photoDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, database.Close()) })

	photoDir := t.TempDir()
	photos, err := local.NewLocalPhotoStore(photoDir)
	require.NoError(t, err)

	env := &testEnv{
		uploader: &stubUploader{locator: "https://cdn.example.com/a.jpg"},
		analyzer: &stubAnalyzer{},
		plants:   store.NewPlantStore(database),
		photoDir: photoDir,
	}
	svc := service.NewRecommendationService(service.Options{
		Uploader:    env.uploader,
		Analyzer:    env.analyzer,
		Catalog:     env.plants,
		Clock:       stubClock{},
		DefaultCity: "Tehran",
		Logger:      logging.Discard(),
	})
	env.server = NewServer(svc, photos, logging.Discard())
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func buildMultipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "photo.jpg")
	require.NoError(t, err)
	_, err = io.Copy(fw, bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func stagedFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}
