package grantsource

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"authz-service/internal/config"
	"authz-service/pkg/rbac"
)

const (
	emptyAWSSessionToken         = ""
	errFailedCreateAWSSessionFmt = "failed to create AWS session: %w"
	errFailedGetObjectFmt        = "failed to get grant table object %s: %w"
)

// S3 fetches a YAML grant table document from an S3 object.
type S3 struct {
	svc    s3iface.S3API
	bucket string
	key    string
}

// NewS3 builds a client from awsCfg. Static credentials are used when both
// keys are set, otherwise the SDK's default chain applies. A custom endpoint
// switches to path-style addressing for S3-compatible stores.
func NewS3(awsCfg config.AWSConfig, bucket, key string) (*S3, error) {
	cfg := &aws.Config{Region: aws.String(awsCfg.Region)}
	if awsCfg.AccessKeyID != "" && awsCfg.SecretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(
			awsCfg.AccessKeyID,
			awsCfg.SecretAccessKey,
			emptyAWSSessionToken,
		)
	}
	if awsCfg.Endpoint != "" {
		cfg.Endpoint = aws.String(awsCfg.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return NewS3WithClient(s3.New(sess), bucket, key), nil
}

func NewS3WithClient(svc s3iface.S3API, bucket, key string) *S3 {
	return &S3{svc: svc, bucket: bucket, key: key}
}

func (s *S3) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *S3) Load(ctx context.Context) (*rbac.GrantTable, error) {
	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedGetObjectFmt, s.Name(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf(errReadDocumentFmt, s.Name(), err)
	}
	return Compile(s.Name(), data)
}
