// Package storage keeps images uploaded for image modules and returns the
// URL a display loads them from.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/rs/zerolog/log"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

type Storage interface {
	// SaveImage stores the upload and returns its public URL.
	SaveImage(fileHeader *multipart.FileHeader) (string, error)
}

type LocalStorage struct {
	uploadDir string
	baseURL   string
}

type SpacesStorage struct {
	client s3iface.S3API
	bucket string
	cdnURL string
}

var (
	_ Storage = (*LocalStorage)(nil)
	_ Storage = (*SpacesStorage)(nil)
)

// NewLocalStorage writes files under uploadDir; baseURL is the path they are
// served from, e.g. "/uploads".
func NewLocalStorage(uploadDir, baseURL string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return newSpacesStorage(s3.New(sess), bucket, cdnURL), nil
}

func newSpacesStorage(client s3iface.S3API, bucket, cdnURL string) *SpacesStorage {
	return &SpacesStorage{client: client, bucket: bucket, cdnURL: strings.TrimSuffix(cdnURL, "/")}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// normalizeFilename strips everything but ascii letters, digits, dash and
// underscore from the base name and stamps it with the upload time.
func normalizeFilename(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeChars.ReplaceAllString(base, "")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), ext)
}

func imageContentType(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	case ".gif":
		return "image/gif", nil
	case ".webp":
		return "image/webp", nil
	case ".svg":
		return "image/svg+xml", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, filepath.Ext(filename))
}

func (ls *LocalStorage) SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	if _, err := imageContentType(fileHeader.Filename); err != nil {
		return "", err
	}
	name := normalizeFilename(fileHeader.Filename, time.Now())
	log.Debug().Str("original", fileHeader.Filename).Str("normalized", name).Msg("image upload normalized")

	if err := os.MkdirAll(ls.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(ls.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path.Join(ls.baseURL, name), nil
}

func (ss *SpacesStorage) SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	contentType, err := imageContentType(fileHeader.Filename)
	if err != nil {
		return "", err
	}
	name := normalizeFilename(fileHeader.Filename, time.Now())
	log.Debug().Str("original", fileHeader.Filename).Str("normalized", name).Msg("image upload normalized")

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := "uploads/" + name
	_, err = ss.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload image to Spaces")
		return "", fmt.Errorf("failed to upload to Spaces: %w", err)
	}
	return ss.cdnURL + "/" + key, nil
}
