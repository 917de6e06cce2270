package aws

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/diillson/tmc-summarizer-go/internal/domain/repository"
)

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".json": "application/json",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
}

// S3UploadRepository implementa o UploadRepository sobre um bucket S3.
type S3UploadRepository struct {
	client    *s3.Client
	bucket    string
	prefix    string
	accountID string
}

// NewS3UploadRepository carrega a configuração AWS do perfil e valida as
// credenciais antes de qualquer envio.
func NewS3UploadRepository(ctx context.Context, uri, profile string) (repository.UploadRepository, error) {
	bucket, prefix, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to verify AWS credentials: %w", err)
	}

	return &S3UploadRepository{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		prefix:    prefix,
		accountID: aws.ToString(identity.Account),
	}, nil
}

// Upload envia o arquivo para s3://bucket/prefix/<nome> e devolve o URI de destino.
func (r *S3UploadRepository) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", localPath, err)
	}
	defer file.Close()

	key := objectKey(r.prefix, localPath)
	input := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(localPath))]; ok {
		input.ContentType = aws.String(ct)
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s (account %s): %w", localPath, r.bucket, r.accountID, err)
	}
	return fmt.Sprintf("s3://%s/%s", r.bucket, key), nil
}

func parseS3URI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URI %q: %w", uri, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: expected s3://bucket[/prefix]", uri)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

func objectKey(prefix, localPath string) string {
	name := filepath.Base(localPath)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
