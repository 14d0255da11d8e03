package s3

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/google/uuid"

	"github.com/vbonduro/roomplants/internal/upload"
)

// Config holds the settings for S3 or an S3-compatible API.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PublicURL       string
	KeyPrefix       string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
}

type Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
	prefix  string
	logger  *slog.Logger
}

// NewUploader builds an S3 client for cfg. The SDK retryer is limited to a
// single attempt; failed uploads are surfaced to the caller.
func NewUploader(ctx context.Context, cfg Config, httpClient *http.Client, logger *slog.Logger) (*Uploader, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.New("s3 bucket and region are required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	// The shared client is set on the service options rather than the loader,
	// which rejects a plain *http.Client when AWS_CA_BUNDLE is set.
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if httpClient != nil {
			o.HTTPClient = httpClient
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})

	// S3-compatible storage without a CDN still serves objects path-style.
	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" && cfg.Endpoint != "" && cfg.ForcePathStyle {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}

	return &Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: publicURL,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
		logger:  logger,
	}, nil
}

func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &upload.Error{Kind: upload.KindNotFound, Err: err}
		}
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer func() {
		if err := f.Close(); err != nil {
			u.logger.Error("failed to close upload source", "path", localPath, "error", err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return "", &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to stat file: %w", err)}
	}

	key := u.buildKey(localPath)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath))); ct != "" {
		input.ContentType = aws.String(ct)
	}

	u.logger.Info("uploading file to s3", "bucket", u.bucket, "key", key, "bytes", info.Size())
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", u.classify(err)
	}

	locator := u.objectURL(key)
	u.logger.Info("file uploaded", "path", localPath, "url", locator)
	return locator, nil
}

// classify maps a PutObject failure to an upload.Error. Send failures are
// wrapped in a ResponseError with no response, so they are checked first.
func (u *Uploader) classify(err error) error {
	var sendErr *smithyhttp.RequestSendError
	var respErr *smithyhttp.ResponseError
	if !errors.As(err, &sendErr) && errors.As(err, &respErr) && statusOf(respErr) != 0 {
		body := respErr.Error()
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			body = fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		u.logger.Error("upload rejected", "status", respErr.HTTPStatusCode(), "body", body)
		return &upload.Error{Kind: upload.KindRejected, Status: respErr.HTTPStatusCode(), Body: body, Err: err}
	}
	u.logger.Error("upload failed", "error", err)
	return &upload.Error{Kind: upload.KindTransport, Err: fmt.Errorf("failed to put object: %w", err)}
}

func statusOf(respErr *smithyhttp.ResponseError) int {
	if respErr.Response == nil || respErr.Response.Response == nil {
		return 0
	}
	return respErr.HTTPStatusCode()
}

func (u *Uploader) buildKey(localPath string) string {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(localPath))
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

func (u *Uploader) objectURL(key string) string {
	if u.baseURL != "" {
		return fmt.Sprintf("%s/%s", u.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
