package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/charmbracelet/log"
)

// Part size for resumable uploads. S3 requires 5MB minimum for every part
// except the last one.
const resumablePartSize = 5 * 1024 * 1024

// s3Store implements the ObjectStore interface using an S3-compatible backend.
type s3Store struct {
	client        *s3.Client
	presignClient *s3.PresignClient // Special client for generating presigned URLs
	httpClient    *http.Client      // Used by the raw REST endpoint path
	bucketName    string
	endpoint      string
	logger        *log.Logger
}

// NewS3Store creates a new S3 storage service instance.
func NewS3Store(cfg config.S3Config, logger *log.Logger) (ObjectStore, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO, DigitalOcean Spaces)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fall back to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(context.TODO(),
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		logger.Error("failed to load AWS SDK config for S3", "err", err)
		return nil, err
	}

	// Force path-style addressing required by most S3-compatible services (like MinIO)
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	presignClient := s3.NewPresignClient(s3Client)

	logger.Info("object storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.BucketName)

	return &s3Store{
		client:        s3Client,
		presignClient: presignClient,
		httpClient:    &http.Client{},
		bucketName:    cfg.BucketName,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		logger:        logger,
	}, nil
}

// UploadResumable stores data via multipart upload, emitting a progress event
// after every completed part. On error or cancellation the multipart upload
// is aborted so no partial object lingers.
func (s *s3Store) UploadResumable(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- ProgressEvent) error {
	total := int64(len(data))
	emit := func(sent int64) {
		if progress == nil {
			return
		}
		select {
		case progress <- ProgressEvent{BytesTransferred: sent, TotalBytes: total}:
		default:
			// Never block the transfer on a slow consumer.
		}
	}
	emit(0)

	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return err
	}
	uploadID := created.UploadId

	abort := func() {
		// Use a fresh context: the request context may already be cancelled.
		abortCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, abortErr := s.client.AbortMultipartUpload(abortCtx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(s.bucketName),
			Key:      aws.String(objectKey),
			UploadId: uploadID,
		})
		if abortErr != nil {
			s.logger.Error("failed to abort multipart upload", "key", objectKey, "err", abortErr)
		}
	}

	var completed []types.CompletedPart
	var sent int64
	for partNumber := int32(1); sent < total; partNumber++ {
		if err := ctx.Err(); err != nil {
			abort()
			return err
		}

		end := sent + resumablePartSize
		if end > total {
			end = total
		}
		chunk := data[sent:end]

		part, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(s.bucketName),
			Key:        aws.String(objectKey),
			UploadId:   uploadID,
			PartNumber: aws.Int32(partNumber),
			Body:       bytes.NewReader(chunk),
		})
		if err != nil {
			abort()
			return err
		}

		completed = append(completed, types.CompletedPart{
			ETag:       part.ETag,
			PartNumber: aws.Int32(partNumber),
		})
		sent = end
		emit(sent)
	}

	_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucketName),
		Key:             aws.String(objectKey),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		abort()
		return err
	}
	return nil
}

// Upload stores data with a single PutObject request.
func (s *s3Store) Upload(ctx context.Context, objectKey, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(data),
	})
	return err
}

// UploadREST performs a raw HTTP PUT against the storage endpoint with a
// bearer identity token. The download token is stored as object metadata so
// ObjectURL can authorize public reads even before the canonical URL path
// catches up.
func (s *s3Store) UploadREST(ctx context.Context, objectKey, contentType, bearerToken, downloadToken string, data []byte) error {
	if s.endpoint == "" {
		return fmt.Errorf("storage: REST upload requires a configured endpoint")
	}

	target := fmt.Sprintf("%s/%s/%s", s.endpoint, url.PathEscape(s.bucketName), escapeKey(objectKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Meta-Download-Token", downloadToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("storage: REST upload failed (%d) %s", resp.StatusCode, string(body))
	}
	return nil
}

// PublicURL creates a temporary presigned URL for downloading the object.
func (s *s3Store) PublicURL(ctx context.Context, objectKey string) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(DefaultPresignedURLExpiry))
	if err != nil {
		s.logger.Error("failed to generate presigned GET URL", "key", objectKey, "err", err)
		return "", err
	}
	return req.URL, nil
}

// ObjectURL builds the token-authorized public URL without calling the provider.
func (s *s3Store) ObjectURL(objectKey, downloadToken string) string {
	return fmt.Sprintf("%s/%s/%s?token=%s",
		s.endpoint, url.PathEscape(s.bucketName), escapeKey(objectKey), url.QueryEscape(downloadToken))
}

// DeleteObject removes an object from the bucket.
func (s *s3Store) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		s.logger.Error("failed to delete object", "key", objectKey, "err", err)
		return err
	}
	return nil
}

func (s *s3Store) Bucket() string { return s.bucketName }

// escapeKey path-escapes each segment of the object key while keeping slashes.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
