package s3fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/dfsenv/backend"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	// RateLimit throttles backend requests. Zero means unlimited.
	RateLimit rate.Limit
	// RateBurst is the limiter burst size; used only with RateLimit.
	RateBurst int
}

// Client implements backend.Client on an S3 bucket.
type Client struct {
	s3      *s3.Client
	bucket  string
	prefix  string
	limiter *rate.Limiter
}

var _ backend.Client = (*Client)(nil)

// New creates a Client over the given bucket.
// rootPrefix is prepended to all keys (e.g. "db/").
func New(client *s3.Client, bucket, rootPrefix string, optFns ...func(o *Options)) *Client {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	return &Client{
		s3:      client,
		bucket:  bucket,
		prefix:  strings.Trim(rootPrefix, "/"),
		limiter: limiter,
	}
}

// NewFromDefaultConfig creates a Client using the default AWS credential
// and region chain.
func NewFromDefaultConfig(ctx context.Context, bucket, rootPrefix string, optFns ...func(o *Options)) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket, rootPrefix, optFns...), nil
}

func (c *Client) key(name string) string {
	return path.Join(c.prefix, strings.TrimPrefix(path.Clean("/"+name), "/"))
}

func (c *Client) logical(key string) string {
	key = strings.TrimPrefix(key, c.prefix)
	return "/" + strings.Trim(key, "/")
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func notFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

func (c *Client) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	return c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
}

func (c *Client) Open(ctx context.Context, name string, mode backend.OpenMode) (backend.File, error) {
	switch mode {
	case backend.ReadOnly:
		info, err := c.Stat(ctx, name)
		if err != nil {
			return nil, err
		}
		if info.IsDir {
			return nil, fmt.Errorf("s3fs: %s is a directory", name)
		}
		return &readFile{c: c, key: c.key(name), size: info.Size}, nil

	case backend.WriteOnly:
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		pr, pw := io.Pipe()
		f := &writeFile{pw: pw, done: make(chan error, 1)}

		uploader := manager.NewUploader(c.s3)
		go func() {
			_, err := uploader.Upload(context.Background(), &s3.PutObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    aws.String(c.key(name)),
				Body:   pr,
			})
			_ = pr.CloseWithError(err)
			f.done <- err
		}()

		return f, nil

	default:
		return nil, fmt.Errorf("s3fs: unknown open mode %d", mode)
	}
}

func (c *Client) Stat(ctx context.Context, name string) (backend.FileInfo, error) {
	if err := c.wait(ctx); err != nil {
		return backend.FileInfo{}, err
	}

	key := c.key(name)
	head, err := c.head(ctx, key)
	if err == nil {
		return backend.FileInfo{
			Name:    c.logical(key),
			Size:    aws.ToInt64(head.ContentLength),
			ModTime: aws.ToTime(head.LastModified),
			IsDir:   false,
		}, nil
	}
	if !notFound(err) {
		return backend.FileInfo{}, err
	}

	// Fall back to the directory marker.
	marker, merr := c.head(ctx, key+"/")
	if merr != nil {
		if notFound(merr) {
			return backend.FileInfo{}, backend.ErrNotExist
		}
		return backend.FileInfo{}, merr
	}
	return backend.FileInfo{
		Name:    c.logical(key),
		ModTime: aws.ToTime(marker.LastModified),
		IsDir:   true,
	}, nil
}

func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	_, err := c.Stat(ctx, name)
	if err != nil {
		if errors.Is(err, backend.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) List(ctx context.Context, dir string) ([]backend.FileInfo, error) {
	info, err := c.Stat(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir {
		return []backend.FileInfo{info}, nil
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	dirPrefix := c.key(dir) + "/"
	var infos []backend.FileInfo

	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Prefix:    aws.String(dirPrefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == dirPrefix {
				continue // The directory's own marker.
			}
			infos = append(infos, backend.FileInfo{
				Name:    c.logical(key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
				IsDir:   false,
			})
		}
		for _, cp := range page.CommonPrefixes {
			infos = append(infos, backend.FileInfo{
				Name:  c.logical(aws.ToString(cp.Prefix)),
				IsDir: true,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (c *Client) Delete(ctx context.Context, name string) error {
	if _, err := c.Stat(ctx, name); err != nil {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	key := c.key(name)
	// Directory deletes are recursive: remove everything under the key.
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(key + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if err := c.deleteKey(ctx, aws.ToString(obj.Key)); err != nil {
				return err
			}
		}
	}
	return c.deleteKey(ctx, key)
}

func (c *Client) deleteKey(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (c *Client) Rename(ctx context.Context, src, dst string) error {
	info, err := c.Stat(ctx, src)
	if err != nil {
		return err
	}
	if info.IsDir {
		return fmt.Errorf("s3fs: renaming directories is not supported")
	}
	if _, err := c.Stat(ctx, dst); err == nil {
		return backend.ErrExist
	} else if !errors.Is(err, backend.ErrNotExist) {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	source := url.PathEscape(c.bucket + "/" + c.key(src))
	_, err = c.s3.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(c.key(dst)),
		CopySource: aws.String(source),
	})
	if err != nil {
		return err
	}
	return c.deleteKey(ctx, c.key(src))
}

func (c *Client) Mkdir(ctx context.Context, name string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(name) + "/"),
		Body:   strings.NewReader(""),
	})
	return err
}

// readFile reads one object through ranged GETs. The size is captured at
// open; callers wanting a fresh size stat the path again.
type readFile struct {
	c    *Client
	key  string
	size int64
	pos  int64
}

func (f *readFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *readFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("s3fs: negative offset %d", off)
	}
	if len(p) == 0 || off >= f.size {
		return 0, nil
	}
	if err := f.c.wait(context.Background()); err != nil {
		return 0, err
	}

	end := off + int64(len(p)) - 1
	if end >= f.size {
		end = f.size - 1
	}

	resp, err := f.c.s3.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(f.c.bucket),
		Key:    aws.String(f.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.ReadFull(resp.Body, p[:end-off+1])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// The object shrank since open; report what was read.
		err = nil
	}
	return n, err
}

func (f *readFile) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("s3fs: file not open for writing")
}

func (f *readFile) Flush() error { return fmt.Errorf("s3fs: file not open for writing") }
func (f *readFile) Sync() error  { return fmt.Errorf("s3fs: file not open for writing") }

func (f *readFile) Seek(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("s3fs: negative offset %d", offset)
	}
	f.pos = offset
	return nil
}

func (f *readFile) Tell() (int64, error) { return f.pos, nil }
func (f *readFile) Close() error         { return nil }

// writeFile streams writes into a single multipart upload finalized on
// Close.
type writeFile struct {
	pw      *io.PipeWriter
	done    chan error
	written int64

	closeOnce sync.Once
	closeErr  error
}

func (f *writeFile) Write(p []byte) (int, error) {
	n, err := f.pw.Write(p)
	f.written += int64(n)
	return n, err
}

// Flush cannot make streamed bytes visible before the upload completes;
// it is accepted so the write handle satisfies the backend contract.
func (f *writeFile) Flush() error { return nil }

// Sync has the same visibility limit as Flush on object storage.
func (f *writeFile) Sync() error { return nil }

func (f *writeFile) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("s3fs: file not open for reading")
}

func (f *writeFile) ReadAt(p []byte, off int64) (int, error) {
	return 0, fmt.Errorf("s3fs: file not open for reading")
}

func (f *writeFile) Seek(offset int64) error {
	return fmt.Errorf("s3fs: cannot seek a streaming upload")
}

func (f *writeFile) Tell() (int64, error) { return f.written, nil }

// Close finalizes the upload exactly once. The upload goroutine delivers a
// single result on done, so the outcome is cached and returned on retries
// instead of blocking on the drained channel.
func (f *writeFile) Close() error {
	f.closeOnce.Do(func() {
		if err := f.pw.Close(); err != nil {
			f.closeErr = err
			return
		}
		f.closeErr = <-f.done
	})
	return f.closeErr
}
