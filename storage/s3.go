// Package storage wraps S3-compatible object storage for dashboard images.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/singhastra/microfeedx/config"
)

// Client talks to one S3 bucket. It also works against MinIO for local
// development when an endpoint is configured.
type Client struct {
	api    *s3.S3
	bucket string
}

// NewClient builds an S3 client from configuration and makes sure the bucket
// exists.
func NewClient(cfg config.AppConfig) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.S3Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		),
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if !cfg.S3UseSSL {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	client := &Client{api: s3.New(sess), bucket: cfg.S3Bucket}

	if _, err := client.api.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(cfg.S3Bucket)}); err != nil {
		// Create on first run against MinIO; an already-exists race is fine.
		_, _ = client.api.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(cfg.S3Bucket)})
	}
	return client, nil
}

// Upload stores the object and returns its public URL.
func (c *Client) Upload(key string, body io.Reader, contentType string) (string, error) {
	buf, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}
	_, err = c.api.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return c.objectURL(key), nil
}

// Delete removes the object; deleting a missing key is not an error.
func (c *Client) Delete(key string) error {
	_, err := c.api.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (c *Client) objectURL(key string) string {
	endpoint := aws.StringValue(c.api.Config.Endpoint)
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "https"
		if c.api.Config.DisableSSL != nil && *c.api.Config.DisableSSL {
			protocol = "http"
		}
		endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, endpoint, c.bucket, key)
	}
	region := aws.StringValue(c.api.Config.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, region, key)
}
