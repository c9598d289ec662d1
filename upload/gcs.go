package upload

import (
	"context"
	"io"
	"net/url"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
	"github.com/niftyshare/nifty/internal/validation"
)

// GCSGateway uploads to Google Cloud Storage and mints V4 signed GET links.
type GCSGateway struct {
	client *storage.Client
	cfg    config.GoogleConfig
}

// NewGCSGateway creates the GCS-backed gateway from configuration. When a
// credentials path is set it is used for both uploads and URL signing;
// otherwise application default credentials apply.
func NewGCSGateway(cfg config.GoogleConfig) (*GCSGateway, error) {
	opts := []option.ClientOption{}
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, errors.New("gcs gateway", err)
	}

	return &GCSGateway{client: client, cfg: cfg}, nil
}

// RootFolder implements Gateway.
func (g *GCSGateway) RootFolder() string {
	return g.cfg.RootFolder
}

// Upload implements Gateway by streaming the file through an object writer.
func (g *GCSGateway) Upload(ctx context.Context, localPath, key string, opts ...Option) (*Result, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	optCfg := applyOptions(opts)

	info, err := statLocal("upload", localPath)
	if err != nil {
		return nil, err
	}
	size := info.Size()

	contentType := optCfg.ContentType
	if contentType == "" {
		contentType = detectContentType(localPath)
	}

	logrus.WithFields(logrus.Fields{
		"provider": "google",
		"path":     localPath,
		"key":      key,
		"bytes":    size,
	}).Info("uploading to Google Cloud Storage")

	start := time.Now()

	file, err := os.Open(localPath)
	if err != nil {
		return nil, errors.New("upload", err).WithPath(localPath).WithKey(key)
	}
	defer file.Close()

	var body io.Reader = file
	if optCfg.ProgressTracker != nil {
		body = &progressReader{r: file, total: size, tracker: optCfg.ProgressTracker}
	}

	w := g.client.Bucket(g.cfg.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.PredefinedACL = "publicRead"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		if optCfg.ProgressTracker != nil {
			optCfg.ProgressTracker.Error(err)
		}
		return nil, errors.New("upload", errors.ErrUpload).
			WithPath(localPath).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := w.Close(); err != nil {
		if optCfg.ProgressTracker != nil {
			optCfg.ProgressTracker.Error(err)
		}
		return nil, errors.New("upload", errors.ErrUpload).
			WithPath(localPath).
			WithKey(key).
			WithMessage(err.Error())
	}

	if optCfg.ProgressTracker != nil {
		optCfg.ProgressTracker.Complete()
	}

	return &Result{
		Key:      key,
		Size:     size,
		ETag:     w.Attrs().Etag,
		Duration: time.Since(start),
	}, nil
}

// ShareableLink implements Gateway using V4 signed URLs. The signed URL
// forces a download through the response content disposition.
func (g *GCSGateway) ShareableLink(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"provider": "google",
		"key":      key,
	}).Info("retrieving GCS shareable link")

	link, err := g.client.Bucket(g.cfg.Bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiry),
		QueryParameters: url.Values{
			"response-content-disposition": {"attachment"},
		},
	})
	if err != nil {
		return "", errors.New("link", errors.ErrLinkUnavailable).
			WithKey(key).
			WithMessage(err.Error())
	}

	return link, nil
}
