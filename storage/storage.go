// Package storage uploads recipe images to S3 and serves them from a public base URL
// (a CloudFront distribution or the bucket's own endpoint).
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/config"
)

// MaxImageBytes caps decoded uploads.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Image is a decoded upload.
type Image struct {
	ContentType string
	Ext         string
	Data        []byte
}

// ParseDataURL decodes "data:<mime>;base64,<payload>" into an Image.
// Only common web image types up to MaxImageBytes are accepted.
func ParseDataURL(dataURL string) (*Image, error) {
	meta, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, apperror.NewValidationError("image must be a base64 data URL", []string{"dataUrl"}, nil)
	}
	contentType := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64"))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperror.NewValidationError(fmt.Sprintf("unsupported image type %q", contentType), []string{"dataUrl"}, nil)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return nil, apperror.NewValidationError("image is too large", []string{"dataUrl"}, nil)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperror.NewValidationError("image is not valid base64", []string{"dataUrl"}, err)
	}
	if len(data) == 0 {
		return nil, apperror.NewValidationError("image is empty", []string{"dataUrl"}, nil)
	}
	if len(data) > MaxImageBytes {
		return nil, apperror.NewValidationError("image is too large", []string{"dataUrl"}, nil)
	}
	return &Image{ContentType: contentType, Ext: ext, Data: data}, nil
}

// ImageStore stores images and returns their public URL.
type ImageStore interface {
	PutImage(ctx context.Context, prefix string, img *Image) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

// ObjectAPI is the part of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements ImageStore on an S3 bucket.
type S3Store struct {
	client    ObjectAPI
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3Store loads the default AWS credential chain for the configured region.
// It returns (nil, nil) when no bucket is configured so callers can treat uploads as disabled.
func NewS3Store(ctx context.Context, cfg *config.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, apperror.NewConfigError("unable to load AWS config for S3", err)
	}
	publicURL := cfg.PublicAssetURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket, publicURL), nil
}

// NewS3StoreWithClient wires an existing client.
func NewS3StoreWithClient(client ObjectAPI, bucket, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// PutImage uploads img under prefix/yyyy/mm/<uuid><ext>.
func (s *S3Store) PutImage(ctx context.Context, prefix string, img *Image) (string, error) {
	key := fmt.Sprintf("%s/%s/%s%s", strings.Trim(prefix, "/"), s.now().UTC().Format("2006/01"), uuid.NewString(), img.Ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", apperror.NewExternalServiceError("failed to upload image", err)
	}
	return s.publicURL + "/" + key, nil
}

// DeleteImage removes an object previously returned by PutImage. URLs outside the store are ignored.
func (s *S3Store) DeleteImage(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperror.NewExternalServiceError("failed to delete image", err)
	}
	return nil
}
