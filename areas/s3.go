package areas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/brettbedarf/areafs"
	"github.com/brettbedarf/areafs/internal/util"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultURLExpiry is how long presigned URLs stay valid when the config
// does not say otherwise
const DefaultURLExpiry = 15 * time.Minute

// S3API defines the S3 operations used by [S3Area] so tests can fake them
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Presigner creates presigned GET requests
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Source contains s3-specific area config fields
type S3Source struct {
	Type      string `json:"type"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix,omitempty"`     // Key prefix all paths live under
	Region    string `json:"region,omitempty"`     // Falls back to the default credential chain's region
	Endpoint  string `json:"endpoint,omitempty"`   // Custom endpoint for S3-compatible stores
	PathStyle bool   `json:"path_style,omitempty"` // Required by most S3-compatible stores
	URLExpiry *int   `json:"url_expiry,omitempty"` // Presigned URL lifetime in seconds (Default 900)
}

func RegisterS3() {
	Register(S3AreaType, func(raw []byte) (areafs.Area, error) {
		var src S3Source
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		return NewS3AreaFromConfig(context.Background(), &src)
	})
}

// S3Area implements [areafs.Area] over a bucket. Directories are only key
// prefixes, so moves never need a target directory to exist.
type S3Area struct {
	client    S3API
	presigner Presigner
	bucket    string
	prefix    string
	urlExpiry time.Duration
}

// NewS3AreaFromConfig loads AWS credentials using the default credential chain
// and builds an area for src
func NewS3AreaFromConfig(ctx context.Context, src *S3Source) (*S3Area, error) {
	if src.Bucket == "" {
		return nil, fmt.Errorf("s3 area: bucket name cannot be empty")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if src.Region != "" {
		opts = append(opts, awsconfig.WithRegion(src.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 area: load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if src.Endpoint != "" {
			o.BaseEndpoint = aws.String(src.Endpoint)
		}
		o.UsePathStyle = src.PathStyle
	})

	expiry := time.Duration(util.ValueOrDefault(src.URLExpiry, int(DefaultURLExpiry/time.Second))) * time.Second
	return NewS3Area(client, s3.NewPresignClient(client), src.Bucket, src.Prefix, expiry), nil
}

// NewS3Area creates an area with a custom client, primarily for testing
func NewS3Area(client S3API, presigner Presigner, bucket, prefix string, urlExpiry time.Duration) *S3Area {
	return &S3Area{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
		urlExpiry: urlExpiry,
	}
}

// key maps a logical path to its object key
func (a *S3Area) key(p string) string {
	return strings.TrimPrefix(path.Join(a.prefix, cleanPath(p)), "/")
}

// isNotFound reports whether err is an S3 missing-object error
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func (a *S3Area) wrapErr(op, p string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("s3: %s %q: %w: %w", op, p, areafs.ErrNotFound, err)
	}
	return fmt.Errorf("s3: %s %q: %w", op, p, err)
}

func (a *S3Area) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return nil, a.wrapErr("get", p, err)
	}
	return out.Body, nil
}

func (a *S3Area) ReadFile(ctx context.Context, p string) ([]byte, error) {
	body, err := a.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// copySource returns the URL-encoded "bucket/key" CopyObject expects
func (a *S3Area) copySource(p string) string {
	segments := strings.Split(a.key(p), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return url.PathEscape(a.bucket) + "/" + strings.Join(segments, "/")
}

func (a *S3Area) copyObject(ctx context.Context, oldPath, newPath string) error {
	_, err := a.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(a.bucket),
		Key:        aws.String(a.key(newPath)),
		CopySource: aws.String(a.copySource(oldPath)),
	})
	if err != nil {
		return a.wrapErr("copy", oldPath, err)
	}
	return nil
}

// Rename copies the object and then deletes the source. If the delete fails
// the copy is left in place and the error returned.
func (a *S3Area) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := a.copyObject(ctx, oldPath, newPath); err != nil {
		return err
	}
	if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(oldPath)),
	}); err != nil {
		return a.wrapErr("rename", oldPath, err)
	}
	return nil
}

func (a *S3Area) Copy(ctx context.Context, oldPath, newPath string) error {
	return a.copyObject(ctx, oldPath, newPath)
}

// Update uploads content with its sniffed content type
func (a *S3Area) Update(ctx context.Context, dir, base string, content []byte, f *areafs.File) error {
	p := path.Join(dir, base)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.key(p)),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(mimetype.Detect(content).String()),
	})
	if err != nil {
		return a.wrapErr("put", p, err)
	}
	return nil
}

// Delete removes the object. S3 deletes are idempotent so existence is
// checked first to report missing files.
func (a *S3Area) Delete(ctx context.Context, p string) error {
	if _, err := a.head(ctx, p); err != nil {
		return err
	}
	if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	}); err != nil {
		return a.wrapErr("delete", p, err)
	}
	return nil
}

// URL returns a presigned GET URL
func (a *S3Area) URL(ctx context.Context, p string) (string, error) {
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	}, s3.WithPresignExpires(a.urlExpiry))
	if err != nil {
		return "", a.wrapErr("presign", p, err)
	}
	return req.URL, nil
}

// Permissions has no S3 equivalent; objects are reported as owner-writable
func (a *S3Area) Permissions(ctx context.Context, p string) (string, error) {
	if _, err := a.head(ctx, p); err != nil {
		return "", err
	}
	return "0644", nil
}

func (a *S3Area) head(ctx context.Context, p string) (*s3.HeadObjectOutput, error) {
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return nil, a.wrapErr("head", p, err)
	}
	return out, nil
}

// Time returns LastModified for both kinds; objects are immutable so their
// last write is also their creation.
func (a *S3Area) Time(ctx context.Context, p string, kind areafs.TimeKind) (time.Time, error) {
	out, err := a.head(ctx, p)
	if err != nil {
		return time.Time{}, err
	}
	return aws.ToTime(out.LastModified), nil
}

func (a *S3Area) Size(ctx context.Context, p string) (int64, error) {
	out, err := a.head(ctx, p)
	if err != nil {
		return 0, err
	}
	return aws.ToInt64(out.ContentLength), nil
}

func (a *S3Area) ResolvePath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("resolve: empty path")
	}
	return cleanPath(raw), nil
}

var _ areafs.Area = (*S3Area)(nil)
