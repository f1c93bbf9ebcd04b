// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage hosts generated hero images on S3-compatible object
// storage so that emails can reference them by URL instead of embedding
// them. It wraps the AWS SDK v2 and uses path-style access (required by
// CEPH/Hetzner/MinIO).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"mailcraft/internal/slug"
)

// maxNameLen bounds the slug part of an object key.
const maxNameLen = 48

// Config holds the bucket settings. Endpoint, AccessKey, SecretKey and
// Bucket are required to enable hosting.
type Config struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicURL  string // optional CDN/direct URL for the bucket
	Prefix     string
	PublicRead bool
}

// Configured reports whether enough settings are present to upload.
func (c Config) Configured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// Client uploads hero images to one bucket.
type Client struct {
	s3         *s3.Client
	bucket     string
	endpoint   string
	publicURL  string
	prefix     string
	publicRead bool
	now        func() time.Time
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if the config is incomplete, allowing the app to start
// without storage.
func New(cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("storage: endpoint %q must start with http:// or https://", cfg.Endpoint)
	}

	s3Client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:         s3Client,
		bucket:     cfg.Bucket,
		endpoint:   endpoint,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		prefix:     strings.Trim(cfg.Prefix, "/"),
		publicRead: cfg.PublicRead,
		now:        time.Now,
	}, nil
}

// HostImage uploads an image and returns its public URL. name is
// typically the campaign topic and only shapes the object key.
func (c *Client) HostImage(ctx context.Context, name string, data []byte, mime string) (string, error) {
	key := c.objectKey(name, mime)
	if err := c.upload(ctx, key, mime, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	return c.FileURL(key), nil
}

func (c *Client) upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}
	if c.publicRead {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// objectKey builds "<prefix>/<yyyy>/<mm>/<slug>-<id>.<ext>". Keys are
// unique per upload so hosted images are never overwritten.
func (c *Client) objectKey(name, mime string) string {
	now := c.now().UTC()
	file := fmt.Sprintf("%s-%s%s", slug.Generate(name, maxNameLen), uuid.NewString()[:8], extension(mime))
	parts := []string{now.Format("2006"), now.Format("01"), file}
	if c.prefix != "" {
		parts = append([]string{c.prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

// FileURL returns the public URL for a key. Uses the configured public URL
// if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

func extension(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
