// Package s3 implements storage.Storage on Cloudflare R2, Amazon S3 and
// other S3-compatible object stores.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(ctx context.Context, cfg storage.Config, log *logger.Logger) (storage.Storage, error) {
		return New(ctx, cfg.S3, log)
	})
}

// Storage talks to one bucket.
type Storage struct {
	client *awss3.Client
	bucket string
	log    *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// New builds a client for cfg. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg storage.S3Config, log *logger.Logger) (*Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// R2 and most S3 clones reject virtual-hosted requests on custom endpoints.
			o.UsePathStyle = true
		}
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		// R2 does not implement the SDK's default flexible checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Storage{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Put uploads body in a single PutObject call. Non-seekable bodies need a
// known Size.
func (s *Storage) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) (*storage.Object, error) {
	contentType := storage.ContentTypeOrDefault(opts.ContentType)
	in := &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata:    opts.Metadata,
	}
	if opts.Size >= 0 {
		in.ContentLength = aws.Int64(opts.Size)
	}

	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("s3: put %s: %w", key, err)
	}
	return &storage.Object{
		Key:         key,
		Size:        opts.Size,
		ETag:        unquote(aws.ToString(out.ETag)),
		ContentType: contentType,
		Uploaded:    time.Now().UTC(),
		Metadata:    opts.Metadata,
	}, nil
}

func (s *Storage) Get(ctx context.Context, key string) (*storage.Object, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil, storage.ErrNotFound
		}
		return nil, nil, fmt.Errorf("s3: get %s: %w", key, err)
	}
	return &storage.Object{
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        unquote(aws.ToString(out.ETag)),
		ContentType: storage.ContentTypeOrDefault(aws.ToString(out.ContentType)),
		Uploaded:    aws.ToTime(out.LastModified).UTC(),
		Metadata:    normalizeMetadata(out.Metadata),
	}, out.Body, nil
}

func (s *Storage) Head(ctx context.Context, key string) (*storage.Object, error) {
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("s3: head %s: %w", key, err)
	}
	return &storage.Object{
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        unquote(aws.ToString(out.ETag)),
		ContentType: storage.ContentTypeOrDefault(aws.ToString(out.ContentType)),
		Uploaded:    aws.ToTime(out.LastModified).UTC(),
		Metadata:    normalizeMetadata(out.Metadata),
	}, nil
}

// Delete relies on S3 treating deletes of missing keys as success.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3: delete %s: %w", key, err)
	}
	return nil
}

// List maps one ListObjectsV2 page; the cursor is the continuation token.
func (s *Storage) List(ctx context.Context, opts storage.ListOptions) (*storage.ListResult, error) {
	limit := opts.Limit
	if limit <= 0 || limit > storage.MaxListLimit {
		limit = storage.MaxListLimit
	}
	in := &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(int32(limit)),
	}
	if opts.Prefix != "" {
		in.Prefix = aws.String(opts.Prefix)
	}
	if opts.Cursor != "" {
		in.ContinuationToken = aws.String(opts.Cursor)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("s3: list %q: %w", opts.Prefix, err)
	}

	res := &storage.ListResult{
		Objects:   make([]storage.Object, 0, len(out.Contents)),
		Truncated: aws.ToBool(out.IsTruncated),
	}
	if res.Truncated {
		res.Cursor = aws.ToString(out.NextContinuationToken)
	}
	for _, o := range out.Contents {
		res.Objects = append(res.Objects, storage.Object{
			Key:      aws.ToString(o.Key),
			Size:     aws.ToInt64(o.Size),
			ETag:     unquote(aws.ToString(o.ETag)),
			Uploaded: aws.ToTime(o.LastModified).UTC(),
		})
	}
	return res, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func unquote(etag string) string {
	return strings.Trim(etag, `"`)
}

// knownMeta restores the casing of metadata keys S3 lowercases on the wire.
var knownMeta = map[string]string{
	strings.ToLower(storage.MetaOriginalName): storage.MetaOriginalName,
	strings.ToLower(storage.MetaUploadedAt):   storage.MetaUploadedAt,
}

func normalizeMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if canonical, ok := knownMeta[strings.ToLower(k)]; ok {
			k = canonical
		}
		out[k] = v
	}
	return out
}
