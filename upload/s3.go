package upload

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
	"github.com/niftyshare/nifty/internal/pool"
	"github.com/niftyshare/nifty/internal/s3api"
	"github.com/niftyshare/nifty/internal/validation"
)

const (
	// defaultPartSize is the chunk size for multipart uploads (8MB)
	defaultPartSize = 8 * 1024 * 1024

	// defaultMultipartThreshold is the file size above which uploads switch
	// to multipart (100MB)
	defaultMultipartThreshold = 100 * 1024 * 1024

	// defaultConcurrency bounds the multipart worker pool
	defaultConcurrency = 5
)

// S3Gateway uploads to S3 or an S3-compatible endpoint and mints presigned
// GET links.
type S3Gateway struct {
	api       s3api.S3API
	presigner s3api.PresignAPI
	cfg       config.AWSConfig

	partSize           int64
	multipartThreshold int64
	concurrency        int
	buffers            *pool.BufferPool
}

// NewS3Gateway creates the S3-backed gateway from configuration. Static
// credentials are used when provided; otherwise the default AWS credential
// chain applies. An endpoint override switches the client to path-style
// addressing for S3-compatible backends.
func NewS3Gateway(cfg config.AWSConfig) (*S3Gateway, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, errors.New("s3 gateway", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Gateway(client, s3.NewPresignClient(client), cfg), nil
}

// NewS3GatewayWithAPI creates an S3 gateway with custom API implementations.
// This is primarily used for testing with mocked clients.
func NewS3GatewayWithAPI(api s3api.S3API, presigner s3api.PresignAPI, cfg config.AWSConfig) *S3Gateway {
	return newS3Gateway(api, presigner, cfg)
}

func newS3Gateway(api s3api.S3API, presigner s3api.PresignAPI, cfg config.AWSConfig) *S3Gateway {
	return &S3Gateway{
		api:                api,
		presigner:          presigner,
		cfg:                cfg,
		partSize:           defaultPartSize,
		multipartThreshold: defaultMultipartThreshold,
		concurrency:        defaultConcurrency,
		buffers:            pool.New(defaultPartSize),
	}
}

// RootFolder implements Gateway.
func (g *S3Gateway) RootFolder() string {
	return g.cfg.RootFolder
}

// Upload implements Gateway. Files above the multipart threshold are split
// into parts and uploaded through a bounded worker pool with pooled part
// buffers; smaller files go up in a single PutObject.
func (g *S3Gateway) Upload(ctx context.Context, localPath, key string, opts ...Option) (*Result, error) {
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

	region := optCfg.Region
	if region == "" {
		region = g.cfg.Region
	}

	logrus.WithFields(logrus.Fields{
		"provider": "aws",
		"path":     localPath,
		"key":      key,
		"bytes":    size,
	}).Info("uploading to S3 storage")

	start := time.Now()

	var etag string
	if size > g.multipartThreshold {
		etag, err = g.uploadMultipart(ctx, localPath, key, size, contentType, region, optCfg.ProgressTracker)
	} else {
		etag, err = g.uploadSimple(ctx, localPath, key, size, contentType, region, optCfg.ProgressTracker)
	}
	if err != nil {
		if optCfg.ProgressTracker != nil {
			optCfg.ProgressTracker.Error(err)
		}
		return nil, err
	}

	if optCfg.ProgressTracker != nil {
		optCfg.ProgressTracker.Complete()
	}

	return &Result{
		Key:      key,
		Size:     size,
		ETag:     etag,
		Duration: time.Since(start),
	}, nil
}

func (g *S3Gateway) uploadSimple(
	ctx context.Context,
	localPath, key string,
	size int64,
	contentType, region string,
	tracker ProgressTracker,
) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", errors.New("upload", err).WithPath(localPath).WithKey(key)
	}
	defer file.Close()

	var body io.Reader = file
	if tracker != nil {
		body = &progressReader{r: file, total: size, tracker: tracker}
	}

	out, err := g.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, withRegion(region))
	if err != nil {
		return "", errors.New("upload", errors.ErrUpload).
			WithPath(localPath).
			WithKey(key).
			WithMessage(err.Error())
	}

	return aws.ToString(out.ETag), nil
}

func (g *S3Gateway) uploadMultipart(
	ctx context.Context,
	localPath, key string,
	size int64,
	contentType, region string,
	tracker ProgressTracker,
) (string, error) {
	create, err := g.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(g.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, withRegion(region))
	if err != nil {
		return "", errors.New("upload", errors.ErrUpload).
			WithPath(localPath).
			WithKey(key).
			WithMessage(err.Error())
	}
	uploadID := aws.ToString(create.UploadId)

	file, err := os.Open(localPath)
	if err != nil {
		g.abortMultipart(key, uploadID, region)
		return "", errors.New("upload", err).WithPath(localPath).WithKey(key)
	}
	defer file.Close()

	partCount := int((size + g.partSize - 1) / g.partSize)
	completed := make([]types.CompletedPart, partCount)

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.concurrency)

	// Parts are read sequentially into pooled buffers and uploaded by the
	// worker pool; completed slots are indexed by part number so no
	// ordering coordination is needed.
	for part := 0; part < partCount; part++ {
		length := g.partSize
		if remaining := size - int64(part)*g.partSize; remaining < length {
			length = remaining
		}

		buf := g.buffers.Get()
		chunk := buf[:length]
		if _, err := io.ReadFull(file, chunk); err != nil {
			g.buffers.Put(buf)
			_ = grp.Wait()
			g.abortMultipart(key, uploadID, region)
			return "", errors.New("upload", err).WithPath(localPath).WithKey(key)
		}

		partNumber := int32(part + 1)
		slot := part
		grp.Go(func() error {
			defer g.buffers.Put(buf)

			out, err := g.api.UploadPart(gctx, &s3.UploadPartInput{
				Bucket:        aws.String(g.cfg.Bucket),
				Key:           aws.String(key),
				UploadId:      aws.String(uploadID),
				PartNumber:    aws.Int32(partNumber),
				Body:          bytes.NewReader(chunk),
				ContentLength: aws.Int64(int64(len(chunk))),
			}, withRegion(region))
			if err != nil {
				return err
			}

			completed[slot] = types.CompletedPart{
				ETag:       out.ETag,
				PartNumber: aws.Int32(partNumber),
			}
			if tracker != nil {
				tracker.Update(int64(len(chunk)), size)
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		g.abortMultipart(key, uploadID, region)
		return "", errors.New("upload", errors.ErrUpload).
			WithPath(localPath).
			WithKey(key).
			WithMessage(err.Error())
	}

	out, err := g.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(g.cfg.Bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	}, withRegion(region))
	if err != nil {
		g.abortMultipart(key, uploadID, region)
		return "", errors.New("upload", errors.ErrUpload).
			WithPath(localPath).
			WithKey(key).
			WithMessage(err.Error())
	}

	return aws.ToString(out.ETag), nil
}

// abortMultipart abandons a failed multipart upload so the provider does
// not keep billing for orphaned parts. Failures here are logged, not
// propagated; the upload error is what the caller needs to see.
func (g *S3Gateway) abortMultipart(key, uploadID, region string) {
	_, err := g.api.AbortMultipartUpload(context.Background(), &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(g.cfg.Bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	}, withRegion(region))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"key":       key,
			"upload_id": uploadID,
			"error":     err,
		}).Warn("could not abort multipart upload")
	}
}

// ShareableLink implements Gateway using S3 presigned GET URLs with an
// attachment content disposition.
func (g *S3Gateway) ShareableLink(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"provider": "aws",
		"key":      key,
	}).Info("retrieving S3 shareable link")

	req, err := g.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(g.cfg.Bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String("attachment"),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", errors.New("link", errors.ErrLinkUnavailable).
			WithKey(key).
			WithMessage(err.Error())
	}

	return req.URL, nil
}

// withRegion produces a per-call region override for SDK operations.
func withRegion(region string) func(*s3.Options) {
	return func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	}
}
