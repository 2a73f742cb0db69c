package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/huangang/venturelink/internal/config"
	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/logger"
)

// BlobStore keeps uploaded documents, report attachments and generated PDFs.
// Save returns the path later passed to Open and Delete.
type BlobStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// NewBlobStore builds the store selected by cfg.Driver.
func NewBlobStore(ctx context.Context, cfg *config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalPath)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UniqueFileName prefixes a sanitized copy of name with a random id so that
// two uploads of "deck.pdf" never overwrite each other.
func UniqueFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeFileChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return uuid.NewString() + "_" + base
}

func detectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// UploadedFile is a file received from a client, already read into memory.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// storeUpload saves f under a unique name and returns its reference.
func storeUpload(ctx context.Context, store BlobStore, f UploadedFile) (models.FileRef, error) {
	name := UniqueFileName(f.Name)
	contentType := f.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(name, f.Data)
	}
	p, err := store.Save(ctx, name, f.Data, contentType)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("save %s: %w", f.Name, err)
	}
	return models.FileRef{FileName: name, FilePath: p, ContentType: contentType}, nil
}

// removeBlobs deletes each ref, logging failures.
func removeBlobs(ctx context.Context, store BlobStore, refs ...models.FileRef) {
	for _, ref := range refs {
		if ref.FilePath == "" {
			continue
		}
		if err := store.Delete(ctx, ref.FilePath); err != nil {
			logger.Warnf("[Storage] Failed to delete %s: %v", ref.FilePath, err)
		}
	}
}

var errInvalidBlobPath = errors.New("invalid blob path")

// LocalStore writes blobs below a root directory.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) resolve(p string) (string, error) {
	clean := filepath.Clean("/" + p)
	if clean == "/" {
		return "", errInvalidBlobPath
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	full, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (s *LocalStore) Open(_ context.Context, p string) ([]byte, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Delete removes the blob; a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// S3Store keeps blobs in one bucket under an optional key prefix.
type S3Store struct {
	bucket string
	prefix string
	client *s3.Client
}

func NewS3Store(ctx context.Context, cfg *config.StorageConfig) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("storage.s3_bucket is required for the s3 driver")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, err
	}
	logger.Infof("[Storage] Using S3 bucket %s (region %s)", cfg.S3Bucket, cfg.S3Region)
	return &S3Store{
		bucket: cfg.S3Bucket,
		prefix: strings.Trim(cfg.S3Prefix, "/"),
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return strings.TrimPrefix(name, "/")
	}
	return path.Join(s.prefix, name)
}

func (s *S3Store) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if name == "" {
		return "", errors.New("filename is empty")
	}
	if contentType == "" {
		contentType = detectContentType(name, data)
	}
	key := s.key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *S3Store) Open(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
