package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/rxkeeper/internal/filex"
)

// Publisher stores a document and returns where it can be read.
type Publisher interface {
	Publish(ctx context.Context, doc Document) (string, error)
}

// FilePublisher writes documents into a local directory.
type FilePublisher struct {
	Dir string
}

func (p FilePublisher) Publish(_ context.Context, doc Document) (string, error) {
	dir, err := filex.EnsureDir(p.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	target := filepath.Join(dir, filepath.Base(doc.Name))
	if err := os.WriteFile(target, doc.Body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return target, nil
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}
)

// DefaultLinkTTL bounds the lifetime of presigned report links.
const DefaultLinkTTL = 24 * time.Hour

// S3Options configures S3Publisher. Endpoint is optional and targets
// S3-compatible servers such as MinIO.
type S3Options struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Bucket    string
	Prefix    string
	LinkTTL   time.Duration
}

// S3Publisher uploads documents to a bucket and returns a presigned GET URL
// that can be handed to a caregiver.
type S3Publisher struct {
	opts S3Options
}

func NewS3Publisher(opts S3Options) *S3Publisher {
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = DefaultLinkTTL
	}
	return &S3Publisher{opts: opts}
}

func (p *S3Publisher) client(ctx context.Context) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(p.opts.Region)}
	if p.opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.opts.AccessKey, p.opts.SecretKey, ""),
		))
	}
	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (p *S3Publisher) Publish(ctx context.Context, doc Document) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.opts.Bucket
	key := path.Join(p.opts.Prefix, doc.Name)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(doc.Body),
		ContentType: aws.String(doc.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	req, err := presignGetObject(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.opts.LinkTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign report link: %w", err)
	}

	return req.URL, nil
}
