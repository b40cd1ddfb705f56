package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configure an S3 or MinIO bucket.
type S3Options struct {
	Endpoint  string
	AccessID  string
	AccessKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3 stores blobs as objects in one bucket. The object ETag is the
// version token, and every write is conditional on it: the PUT carries
// If-Match for an existing object and If-None-Match for a new one, so a
// writer that loses a race gets ErrConflict.
type S3 struct {
	client *minio.Client
	bucket string
}

// NewS3 connects to the bucket, creating it when missing.
func NewS3(ctx context.Context, opts S3Options, log *slog.Logger) (*S3, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessID, opts.AccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	s := &S3{client: client, bucket: opts.Bucket}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, s.classify("check bucket", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			log.Warn("could not create bucket (might exist or no permission)", "bucket", opts.Bucket, "error", err)
		} else {
			log.Info("bucket created", "bucket", opts.Bucket)
		}
	}
	return s, nil
}

func (s *S3) Get(ctx context.Context, p string) (*Blob, error) {
	key, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.classify("get "+key, err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		return nil, s.classify("stat "+key, err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.classify("read "+key, err)
	}
	return &Blob{Path: key, Data: data, Version: info.ETag}, nil
}

func (s *S3) Put(ctx context.Context, p string, data []byte, opts PutOptions) (string, error) {
	key, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	exists, current := true, ""
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil:
		current = info.ETag
	case minio.ToErrorResponse(err).Code == "NoSuchKey":
		exists = false
	default:
		return "", s.classify("stat "+key, err)
	}
	if err := checkPut(key, exists, current, opts); err != nil {
		return "", err
	}

	putOpts := conditionalPut(key, exists, current, opts)
	uploaded, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), putOpts)
	if err != nil {
		return "", s.classify("put "+key, err)
	}
	return uploaded.ETag, nil
}

func (s *S3) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := strings.Trim(dir, "/")
	if prefix != "" {
		prefix += "/"
	}
	entries := []Entry{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, s.classify("list "+dir, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		entries = append(entries, Entry{
			Name: path.Base(obj.Key),
			Path: obj.Key,
			URL:  "s3://" + s.bucket + "/" + obj.Key,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// conditionalPut builds the PUT options for key. The server rejects the
// write with PreconditionFailed when the object changed after the stat.
func conditionalPut(key string, exists bool, current string, opts PutOptions) minio.PutObjectOptions {
	putOpts := minio.PutObjectOptions{ContentType: contentTypeFor(key)}
	if opts.Message != "" {
		putOpts.UserMetadata = map[string]string{"message": opts.Message}
	}
	if exists {
		v := opts.Version
		if v == "" {
			v = current
		}
		putOpts.SetMatchETag(strings.Trim(v, `"`))
	} else {
		putOpts.SetMatchETagExcept("*")
	}
	return putOpts
}

// classify maps minio errors onto the gateway errors.
func (s *S3) classify(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey":
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case resp.Code == "PreconditionFailed":
		return fmt.Errorf("%w: %s", ErrConflict, op)
	case resp.StatusCode >= 500, resp.StatusCode == 429:
		return unavailable(op, err)
	}
	if transient(err) {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func contentTypeFor(key string) string {
	ext := path.Ext(key)
	switch ext {
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
