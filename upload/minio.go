package upload

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
	"github.com/niftyshare/nifty/internal/validation"
)

// MinioGateway uploads to any S3-compatible endpoint through the MinIO
// client and mints presigned GET links.
type MinioGateway struct {
	client *minio.Client
	cfg    config.MinioConfig
}

// NewMinioGateway creates the MinIO-backed gateway from configuration.
func NewMinioGateway(cfg config.MinioConfig) (*MinioGateway, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.New("minio gateway", err)
	}

	return &MinioGateway{client: client, cfg: cfg}, nil
}

// RootFolder implements Gateway.
func (g *MinioGateway) RootFolder() string {
	return g.cfg.RootFolder
}

// Upload implements Gateway. FPutObject handles multipart chunking
// internally for large files.
func (g *MinioGateway) Upload(ctx context.Context, localPath, key string, opts ...Option) (*Result, error) {
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
		"provider": "minio",
		"endpoint": g.cfg.Endpoint,
		"path":     localPath,
		"key":      key,
		"bytes":    size,
	}).Info("uploading to S3-compatible storage")

	start := time.Now()

	upload, err := g.client.FPutObject(ctx, g.cfg.Bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		if optCfg.ProgressTracker != nil {
			optCfg.ProgressTracker.Error(err)
		}
		return nil, errors.New("upload", errors.ErrUpload).
			WithPath(localPath).
			WithKey(key).
			WithMessage(err.Error())
	}

	if optCfg.ProgressTracker != nil {
		optCfg.ProgressTracker.Update(size, size)
		optCfg.ProgressTracker.Complete()
	}

	return &Result{
		Key:      key,
		Size:     upload.Size,
		ETag:     upload.ETag,
		Duration: time.Since(start),
	}, nil
}

// ShareableLink implements Gateway using presigned GET URLs.
func (g *MinioGateway) ShareableLink(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"provider": "minio",
		"key":      key,
	}).Info("retrieving presigned shareable link")

	reqParams := url.Values{
		"response-content-disposition": {"attachment"},
	}
	link, err := g.client.PresignedGetObject(ctx, g.cfg.Bucket, key, expiry, reqParams)
	if err != nil {
		return "", errors.New("link", errors.ErrLinkUnavailable).
			WithKey(key).
			WithMessage(err.Error())
	}

	return link.String(), nil
}
