package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Resolver firma URLs de lectura y escritura sobre un bucket S3 compatible
// (MinIO incluido).
type S3Resolver struct {
	presign presigner
	bucket  string
	ttl     time.Duration
}

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	URLTTL    time.Duration
}

// NewS3Resolver construye el cliente de firmado a partir de credenciales estaticas.
func NewS3Resolver(ctx context.Context, opts S3Options) (*S3Resolver, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Resolver(s3.NewPresignClient(client), opts.Bucket, opts.URLTTL), nil
}

func newS3Resolver(p presigner, bucket string, ttl time.Duration) *S3Resolver {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Resolver{presign: p, bucket: bucket, ttl: ttl}
}

func (r *S3Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	key := strings.TrimLeft(strings.TrimSpace(ref), "/")
	if key == "" {
		return "", ErrEmptyRef
	}
	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// UploadURL devuelve una clave nueva bajo profile_images/ y la URL PUT firmada.
func (r *S3Resolver) UploadURL(ctx context.Context, identityID, contentType string) (string, string, error) {
	key := ProfileImageKey(identityID)
	in := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	req, err := r.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}
	return key, req.URL, nil
}

func ProfileImageKey(identityID string) string {
	return fmt.Sprintf("profile_images/%s/%s", identityID, uuid.NewString())
}
