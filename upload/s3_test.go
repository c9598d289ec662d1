package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
	"github.com/niftyshare/nifty/internal/pool"
	"github.com/niftyshare/nifty/internal/testutil"
)

func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func testGateway(api *testutil.MockS3Client, presigner *testutil.MockPresignClient) *S3Gateway {
	return NewS3GatewayWithAPI(api, presigner, config.AWSConfig{
		Bucket:     "test-bucket",
		Region:     "us-east-1",
		RootFolder: "testfolder",
	})
}

func TestS3UploadSimple(t *testing.T) {
	content := bytes.Repeat([]byte("a"), 10240)
	path := writeTestFile(t, t.TempDir(), "report.txt", content)

	var gotBucket, gotKey string
	var gotBody []byte
	api := &testutil.MockS3Client{
		PutObjectFunc: func(
			ctx context.Context,
			params *s3.PutObjectInput,
			optFns ...func(*s3.Options),
		) (*s3.PutObjectOutput, error) {
			gotBucket = aws.ToString(params.Bucket)
			gotKey = aws.ToString(params.Key)
			var err error
			gotBody, err = io.ReadAll(params.Body)
			require.NoError(t, err)
			return &s3.PutObjectOutput{ETag: aws.String(`"etag-1"`)}, nil
		},
	}
	gw := testGateway(api, &testutil.MockPresignClient{})

	result, err := gw.Upload(context.Background(), path, "testfolder/report.txt")
	require.NoError(t, err)

	assert.Equal(t, "test-bucket", gotBucket)
	assert.Equal(t, "testfolder/report.txt", gotKey)
	assert.Equal(t, content, gotBody)
	assert.Equal(t, int64(10240), result.Size)
	assert.Equal(t, `"etag-1"`, result.ETag)
	assert.Equal(t, 0, api.Calls("CreateMultipartUpload"))
}

func TestS3UploadFileNotFound(t *testing.T) {
	api := &testutil.MockS3Client{}
	gw := testGateway(api, &testutil.MockPresignClient{})

	_, err := gw.Upload(context.Background(), "/nonexistent/report.txt", "testfolder/report.txt")
	require.Error(t, err)
	assert.True(t, errors.IsFileNotFound(err))
	assert.Equal(t, 0, api.Calls("PutObject"))
}

func TestS3UploadInvalidKey(t *testing.T) {
	api := &testutil.MockS3Client{}
	gw := testGateway(api, &testutil.MockPresignClient{})

	_, err := gw.Upload(context.Background(), "report.txt", "../escape.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
	assert.Equal(t, 0, api.Calls("PutObject"))
}

func TestS3UploadProviderError(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "report.txt", []byte("data"))

	api := &testutil.MockS3Client{
		PutObjectFunc: func(
			ctx context.Context,
			params *s3.PutObjectInput,
			optFns ...func(*s3.Options),
		) (*s3.PutObjectOutput, error) {
			return nil, fmt.Errorf("InternalError: status 500")
		},
	}
	gw := testGateway(api, &testutil.MockPresignClient{})

	_, err := gw.Upload(context.Background(), path, "testfolder/report.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUpload)
	assert.Contains(t, err.Error(), "status 500")
}

func TestS3UploadMultipart(t *testing.T) {
	// 5 one-KB parts, last one partial
	content := bytes.Repeat([]byte("b"), 4*1024+512)
	path := writeTestFile(t, t.TempDir(), "big.bin", content)

	api := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(
			ctx context.Context,
			params *s3.CreateMultipartUploadInput,
			optFns ...func(*s3.Options),
		) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
		},
		UploadPartFunc: func(
			ctx context.Context,
			params *s3.UploadPartInput,
			optFns ...func(*s3.Options),
		) (*s3.UploadPartOutput, error) {
			assert.Equal(t, "upload-1", aws.ToString(params.UploadId))
			etag := fmt.Sprintf(`"part-%d"`, aws.ToInt32(params.PartNumber))
			return &s3.UploadPartOutput{ETag: aws.String(etag)}, nil
		},
		CompleteMultipartUploadFunc: func(
			ctx context.Context,
			params *s3.CompleteMultipartUploadInput,
			optFns ...func(*s3.Options),
		) (*s3.CompleteMultipartUploadOutput, error) {
			require.Len(t, params.MultipartUpload.Parts, 5)
			for i, part := range params.MultipartUpload.Parts {
				assert.Equal(t, int32(i+1), aws.ToInt32(part.PartNumber))
				assert.Equal(t, fmt.Sprintf(`"part-%d"`, i+1), aws.ToString(part.ETag))
			}
			return &s3.CompleteMultipartUploadOutput{ETag: aws.String(`"final"`)}, nil
		},
	}
	gw := testGateway(api, &testutil.MockPresignClient{})
	gw.partSize = 1024
	gw.multipartThreshold = 2048
	gw.buffers = pool.New(1024)

	progress := NewConsoleProgress("big.bin", io.Discard)
	result, err := gw.Upload(context.Background(), path, "testfolder/big.bin", WithProgress(progress))
	require.NoError(t, err)

	assert.Equal(t, `"final"`, result.ETag)
	assert.Equal(t, int64(len(content)), result.Size)
	assert.Equal(t, int64(len(content)), progress.Transferred())
	assert.Equal(t, 5, api.Calls("UploadPart"))
	assert.Equal(t, 0, api.Calls("PutObject"))
	assert.Equal(t, 0, api.Calls("AbortMultipartUpload"))
}

func TestS3UploadMultipartAbortsOnFailure(t *testing.T) {
	content := bytes.Repeat([]byte("c"), 4*1024)
	path := writeTestFile(t, t.TempDir(), "big.bin", content)

	api := &testutil.MockS3Client{
		CreateMultipartUploadFunc: func(
			ctx context.Context,
			params *s3.CreateMultipartUploadInput,
			optFns ...func(*s3.Options),
		) (*s3.CreateMultipartUploadOutput, error) {
			return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-2")}, nil
		},
		UploadPartFunc: func(
			ctx context.Context,
			params *s3.UploadPartInput,
			optFns ...func(*s3.Options),
		) (*s3.UploadPartOutput, error) {
			return nil, fmt.Errorf("RequestTimeout")
		},
	}
	gw := testGateway(api, &testutil.MockPresignClient{})
	gw.partSize = 1024
	gw.multipartThreshold = 2048
	gw.buffers = pool.New(1024)

	_, err := gw.Upload(context.Background(), path, "testfolder/big.bin")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUpload)
	assert.Equal(t, 1, api.Calls("AbortMultipartUpload"))
	assert.Equal(t, 0, api.Calls("CompleteMultipartUpload"))
}

func TestS3ShareableLink(t *testing.T) {
	var gotKey, gotDisposition string
	var gotExpiry time.Duration
	presigner := &testutil.MockPresignClient{
		PresignGetObjectFunc: func(
			ctx context.Context,
			params *s3.GetObjectInput,
			optFns ...func(*s3.PresignOptions),
		) (*v4.PresignedHTTPRequest, error) {
			gotKey = aws.ToString(params.Key)
			gotDisposition = aws.ToString(params.ResponseContentDisposition)
			opts := &s3.PresignOptions{}
			for _, fn := range optFns {
				fn(opts)
			}
			gotExpiry = opts.Expires
			return &v4.PresignedHTTPRequest{
				URL: "https://test-bucket.s3.amazonaws.com/testfolder/report.txt?X-Amz-Signature=abc",
			}, nil
		},
	}
	gw := testGateway(&testutil.MockS3Client{}, presigner)

	link, err := gw.ShareableLink(context.Background(), "testfolder/report.txt", LinkExpiry)
	require.NoError(t, err)

	assert.Contains(t, link, "X-Amz-Signature")
	assert.Equal(t, "testfolder/report.txt", gotKey)
	assert.Equal(t, "attachment", gotDisposition)
	assert.Equal(t, 7*24*time.Hour, gotExpiry)
}

func TestS3ShareableLinkFailure(t *testing.T) {
	presigner := &testutil.MockPresignClient{
		PresignGetObjectFunc: func(
			ctx context.Context,
			params *s3.GetObjectInput,
			optFns ...func(*s3.PresignOptions),
		) (*v4.PresignedHTTPRequest, error) {
			return nil, fmt.Errorf("signing failed")
		},
	}
	gw := testGateway(&testutil.MockS3Client{}, presigner)

	link, err := gw.ShareableLink(context.Background(), "testfolder/report.txt", LinkExpiry)
	require.Error(t, err)
	assert.Empty(t, link)
	assert.ErrorIs(t, err, errors.ErrLinkUnavailable)
}
