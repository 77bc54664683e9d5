package artifact

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/debemdeboas/texpad/internal/config"
)

// Uploader stores an object remotely.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// MirrorSink delivers to next and then copies each delivered artifact to an Uploader in the
// background. Upload failures are logged, never returned.
type MirrorSink struct {
	next     Sink
	registry *Registry
	uploader Uploader
	prefix   string
	timeout  time.Duration

	wg sync.WaitGroup
}

func NewMirrorSink(next Sink, registry *Registry, uploader Uploader, prefix string) *MirrorSink {
	return &MirrorSink{
		next:     next,
		registry: registry,
		uploader: uploader,
		prefix:   prefix,
		timeout:  time.Minute,
	}
}

func (m *MirrorSink) SetPreview(ref Ref) error {
	if err := m.next.SetPreview(ref); err != nil {
		return err
	}
	m.mirror(ref, "preview.pdf")
	return nil
}

func (m *MirrorSink) TriggerDownload(ref Ref, filename string) error {
	if err := m.next.TriggerDownload(ref, filename); err != nil {
		return err
	}
	m.mirror(ref, path.Base(filename))
	return nil
}

// mirror resolves ref before returning, since callers may revoke it right after delivery.
func (m *MirrorSink) mirror(ref Ref, name string) {
	art, ok := m.registry.Resolve(ref)
	if !ok {
		artifactLogger.Warn().Str("ref", ref.String()).Msg("Artifact vanished before mirroring")
		return
	}

	key := m.prefix + art.CreatedAt.UTC().Format("20060102T150405Z") + "-" + name

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.uploader.Upload(ctx, key, art.Data, art.MediaType); err != nil {
			artifactLogger.Warn().Err(err).Str("key", key).Msg("Mirror upload failed")
			return
		}
		artifactLogger.Info().Str("key", key).Int("bytes", len(art.Data)).Msg("Artifact mirrored")
	}()
}

// Wait blocks until every started upload has finished.
func (m *MirrorSink) Wait() {
	m.wg.Wait()
}

type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader builds an uploader for an S3-compatible bucket. Static credentials are used
// when both keys are set, the default AWS chain otherwise.
func NewS3Uploader(ctx context.Context, cfg config.MirrorConfig) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("mirror bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing S3 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: cfg.Bucket}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("error uploading %s: %w", key, err)
	}
	return nil
}
