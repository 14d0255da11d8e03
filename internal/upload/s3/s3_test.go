package s3

import (
	"context"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/upload"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	status  int
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.status != 0 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(b.status)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.objects[r.URL.Path] = data
	b.mu.Unlock()
	w.Header().Set("ETag", `"abc"`)
	w.WriteHeader(http.StatusOK)
}

func newTestUploader(t *testing.T, server *httptest.Server, prefix string) *Uploader {
	t.Helper()
	u, err := NewUploader(context.Background(), Config{
		Bucket:          "plants",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		KeyPrefix:       prefix,
		ForcePathStyle:  true,
		AccessKeyID:     "AKIDTEST",
		SecretAccessKey: "secret",
	}, server.Client(), logging.Discard())
	require.NoError(t, err)
	return u
}

func writePhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "room.JPG")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0600))
	return path
}

func TestNewUploaderRequiresBucket(t *testing.T) {
	_, err := NewUploader(context.Background(), Config{Region: "us-east-1"}, nil, logging.Discard())
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}}
	server := httptest.NewServer(bucket)
	defer server.Close()

	u := newTestUploader(t, server, "/rooms/")
	locator, err := u.Upload(context.Background(), writePhoto(t))
	require.NoError(t, err)

	prefix := server.URL + "/plants/rooms/"
	assert.True(t, strings.HasPrefix(locator, prefix), locator)
	assert.True(t, strings.HasSuffix(locator, ".jpg"), locator)

	objectPath := strings.TrimPrefix(locator, server.URL)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	require.Contains(t, bucket.objects, objectPath)
	assert.Contains(t, string(bucket.objects[objectPath]), "jpeg-bytes")
}

func TestUploadNotFound(t *testing.T) {
	server := httptest.NewServer(&fakeBucket{objects: map[string][]byte{}})
	defer server.Close()

	u := newTestUploader(t, server, "")
	_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.jpg"))

	assert.Equal(t, upload.KindNotFound, upload.KindOf(err))
}

func TestUploadRejected(t *testing.T) {
	server := httptest.NewServer(&fakeBucket{status: http.StatusForbidden})
	defer server.Close()

	u := newTestUploader(t, server, "")
	_, err := u.Upload(context.Background(), writePhoto(t))

	var ue *upload.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, upload.KindRejected, ue.Kind)
	assert.Equal(t, http.StatusForbidden, ue.Status)
	assert.Contains(t, ue.Body, "AccessDenied")
}

func TestUploadTransportError(t *testing.T) {
	server := httptest.NewServer(&fakeBucket{objects: map[string][]byte{}})
	u := newTestUploader(t, server, "")
	server.Close()

	_, err := u.Upload(context.Background(), writePhoto(t))

	assert.Equal(t, upload.KindTransport, upload.KindOf(err))
}

func TestClassify(t *testing.T) {
	u := &Uploader{logger: logging.Discard()}

	tests := []struct {
		name   string
		err    error
		want   upload.Kind
		status int
	}{
		{
			name: "send failure wrapped in response error",
			err: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{}},
				Err:      &smithyhttp.RequestSendError{Err: errors.New("connection refused")},
			},
			want: upload.KindTransport,
		},
		{
			name: "response error without response",
			err:  &smithyhttp.ResponseError{Err: errors.New("eof")},
			want: upload.KindTransport,
		},
		{
			name: "status from server",
			err: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusForbidden}},
				Err:      errors.New("access denied"),
			},
			want:   upload.KindRejected,
			status: http.StatusForbidden,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: upload.KindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ue *upload.Error
			require.ErrorAs(t, u.classify(tt.err), &ue)
			assert.Equal(t, tt.want, ue.Kind)
			assert.Equal(t, tt.status, ue.Status)
		})
	}
}

func TestUploadWithCABundle(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}}
	server := httptest.NewTLSServer(bucket)
	defer server.Close()

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, certPEM, 0600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	u := newTestUploader(t, server, "")
	locator, err := u.Upload(context.Background(), writePhoto(t))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(locator, server.URL+"/plants/"), locator)
}

func TestObjectURL(t *testing.T) {
	u := &Uploader{bucket: "plants", region: "eu-west-1"}
	assert.Equal(t, "https://plants.s3.eu-west-1.amazonaws.com/a.jpg", u.objectURL("a.jpg"))

	u.baseURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/a.jpg", u.objectURL("a.jpg"))
}
