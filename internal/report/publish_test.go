package report

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePublisher_Publish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	p := FilePublisher{Dir: dir}

	target, err := p.Publish(context.Background(), Document{Name: "r.html", Body: []byte("<h1>hi</h1>")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "r.html"), target)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", string(b))
}

func TestFilePublisher_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	target, err := FilePublisher{Dir: dir}.Publish(context.Background(), Document{Name: "../../escape.html"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.html"), target)
}

func stubS3(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
		presignGetObject = origPresign
	})
}

func TestS3Publisher_Publish(t *testing.T) {
	stubS3(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var endpoint string
	var pathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		endpoint = aws.ToString(o.BaseEndpoint)
		pathStyle = o.UsePathStyle
		return &s3.Client{}
	}

	var putKey, putBody, putType string
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		putKey = aws.ToString(in.Key)
		putType = aws.ToString(in.ContentType)
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		putBody = string(b)
		return &s3.PutObjectOutput{}, nil
	}

	var ttl time.Duration
	presignGetObject = func(_ *s3.Client, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		ttl = po.Expires
		return &v4.PresignedHTTPRequest{URL: "https://example.test/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
	}

	p := NewS3Publisher(S3Options{
		Region:    "eu-central-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Endpoint:  "http://127.0.0.1:9000",
		Bucket:    "reports",
		Prefix:    "caregiver",
	})

	url, err := p.Publish(context.Background(), Document{Name: "r.html", ContentType: "text/html", Body: []byte("body")})
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/reports/caregiver/r.html", url)
	assert.Equal(t, "http://127.0.0.1:9000", endpoint)
	assert.True(t, pathStyle)
	assert.Equal(t, "caregiver/r.html", putKey)
	assert.Equal(t, "body", putBody)
	assert.Equal(t, "text/html", putType)
	assert.Equal(t, DefaultLinkTTL, ttl)
}

func TestS3Publisher_Errors(t *testing.T) {
	stubS3(t)

	boom := errors.New("boom")
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, boom
	}
	_, err := NewS3Publisher(S3Options{Bucket: "b"}).Publish(context.Background(), Document{Name: "r.html"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to load aws config")

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(aws.Config, ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, boom
	}
	_, err = NewS3Publisher(S3Options{Bucket: "b"}).Publish(context.Background(), Document{Name: "r.html"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to upload report")
}

type recordingPublisher struct{ doc Document }

func (r *recordingPublisher) Publish(_ context.Context, doc Document) (string, error) {
	r.doc = doc
	return "memory://" + doc.Name, nil
}
