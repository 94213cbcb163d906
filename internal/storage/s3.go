// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for
// attachment files. Clients upload directly with presigned PUT URLs; the
// service only records the returned key and cleans objects up on delete.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pressroom/internal/slug"
)

// keyPrefix namespaces every attachment object in the bucket.
const keyPrefix = "attachments"

// Options configures a Client. PublicBaseURL is the CDN or bucket URL
// prepended to object keys when building public links.
type Options struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// Client wraps an S3 client for attachment operations on one bucket.
type Client struct {
	s3            *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	endpoint      string
	publicBaseURL string
	now           func() time.Time
}

// Upload is a presigned upload slot handed to the caller.
type Upload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	FileURL   string `json:"fileUrl"`
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to
// start without storage.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, nil
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       opts.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:            s3Client,
		presigner:     s3.NewPresignClient(s3Client),
		bucket:        opts.Bucket,
		endpoint:      endpoint,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		now:           time.Now,
	}, nil
}

// PresignUpload reserves a fresh object key for fileName and returns a PUT
// URL valid for expires. The caller must send the same Content-Type.
func (c *Client) PresignUpload(ctx context.Context, fileName, contentType string, expires time.Duration) (*Upload, error) {
	key := c.objectKey(fileName)
	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return nil, fmt.Errorf("s3 presign put %s/%s: %w", c.bucket, key, err)
	}
	return &Upload{UploadURL: req.URL, Key: key, FileURL: c.FileURL(key)}, nil
}

// objectKey builds attachments/YYYY/MM/<uuid>-<slugged name>.<ext>.
func (c *Client) objectKey(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := slug.Generate(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "file"
	}
	if !validExt(ext) {
		ext = ""
	}
	now := c.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s-%s%s", keyPrefix, now.Year(), int(now.Month()), uuid.NewString(), name, ext)
}

// validExt accepts a dot followed by up to ten ASCII letters or digits.
func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 11 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Delete removes an object from the bucket.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for a key. Uses the configured public base
// URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicBaseURL != "" {
		return c.publicBaseURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// KeyOf extracts the object key from a stored file_url, which may be a bare
// key or a URL produced by FileURL. Only keys under the attachment
// namespace are returned; anything else reports ("", false) so it is never
// deleted on behalf of an article.
func (c *Client) KeyOf(fileURL string) (string, bool) {
	key, ok := c.bucketKey(fileURL)
	if !ok || strings.Contains(key, "..") {
		return "", false
	}
	if rest, ok := strings.CutPrefix(key, keyPrefix+"/"); !ok || rest == "" {
		return "", false
	}
	return key, true
}

// bucketKey strips the public or path-style bucket URL from fileURL. A value
// without a scheme is taken as a bare key.
func (c *Client) bucketKey(fileURL string) (string, bool) {
	if !strings.Contains(fileURL, "://") {
		return strings.TrimLeft(fileURL, "/"), true
	}

	// Try publicBaseURL prefix first (CDN or custom domain).
	if c.publicBaseURL != "" {
		if key, ok := strings.CutPrefix(fileURL, c.publicBaseURL+"/"); ok {
			return key, true
		}
	}

	// Try endpoint/bucket prefix (path-style S3).
	return strings.CutPrefix(fileURL, c.endpoint+"/"+c.bucket+"/")
}
