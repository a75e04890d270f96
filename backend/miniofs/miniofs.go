package miniofs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/dfsenv/backend"
	"github.com/minio/minio-go/v7"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	// RateLimit throttles backend requests. Zero means unlimited.
	RateLimit rate.Limit
	// RateBurst is the limiter burst size; used only with RateLimit.
	RateBurst int
}

// Client implements backend.Client on a MinIO bucket.
type Client struct {
	mc      *minio.Client
	bucket  string
	prefix  string
	limiter *rate.Limiter
}

var _ backend.Client = (*Client)(nil)

// New creates a Client over the given bucket.
// rootPrefix is prepended to all keys (e.g. "db/").
func New(mc *minio.Client, bucket, rootPrefix string, optFns ...func(o *Options)) *Client {
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
		mc:      mc,
		bucket:  bucket,
		prefix:  strings.Trim(rootPrefix, "/"),
		limiter: limiter,
	}
}

func (c *Client) key(name string) string {
	return path.Join(c.prefix, strings.TrimPrefix(path.Clean("/"+name), "/"))
}

// logical maps an object key back to the name space callers use.
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
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (c *Client) Open(ctx context.Context, name string, mode backend.OpenMode) (backend.File, error) {
	switch mode {
	case backend.ReadOnly:
		info, err := c.Stat(ctx, name)
		if err != nil {
			return nil, err
		}
		if info.IsDir {
			return nil, fmt.Errorf("miniofs: %s is a directory", name)
		}
		return &readFile{c: c, key: c.key(name), size: info.Size}, nil

	case backend.WriteOnly:
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		pr, pw := io.Pipe()
		f := &writeFile{pw: pw, done: make(chan error, 1)}

		// The upload outlives the Open call; it completes when the write
		// handle is closed.
		go func() {
			_, err := c.mc.PutObject(context.Background(), c.bucket, c.key(name), pr, -1, minio.PutObjectOptions{})
			_ = pr.CloseWithError(err)
			f.done <- err
		}()

		return f, nil

	default:
		return nil, fmt.Errorf("miniofs: unknown open mode %d", mode)
	}
}

func (c *Client) Stat(ctx context.Context, name string) (backend.FileInfo, error) {
	if err := c.wait(ctx); err != nil {
		return backend.FileInfo{}, err
	}

	key := c.key(name)
	info, err := c.mc.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return backend.FileInfo{
			Name:    c.logical(info.Key),
			Size:    info.Size,
			ModTime: info.LastModified,
			IsDir:   false,
		}, nil
	}
	if !notFound(err) {
		return backend.FileInfo{}, err
	}

	// Fall back to the directory marker.
	marker, merr := c.mc.StatObject(ctx, c.bucket, key+"/", minio.StatObjectOptions{})
	if merr != nil {
		if notFound(merr) {
			return backend.FileInfo{}, backend.ErrNotExist
		}
		return backend.FileInfo{}, merr
	}
	return backend.FileInfo{
		Name:    c.logical(key),
		ModTime: marker.LastModified,
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
	for obj := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    dirPrefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == dirPrefix {
			continue // The directory's own marker.
		}
		isDir := strings.HasSuffix(obj.Key, "/")
		infos = append(infos, backend.FileInfo{
			Name:    c.logical(obj.Key),
			Size:    obj.Size,
			ModTime: obj.LastModified,
			IsDir:   isDir,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (c *Client) Delete(ctx context.Context, name string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	if _, err := c.Stat(ctx, name); err != nil {
		return err
	}

	key := c.key(name)
	// Directory deletes are recursive: remove everything under the key.
	for obj := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    key + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := c.mc.RemoveObject(ctx, c.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil && !notFound(err) {
		return err
	}
	return nil
}

func (c *Client) Rename(ctx context.Context, src, dst string) error {
	info, err := c.Stat(ctx, src)
	if err != nil {
		return err
	}
	if info.IsDir {
		return fmt.Errorf("miniofs: renaming directories is not supported")
	}
	if _, err := c.Stat(ctx, dst); err == nil {
		return backend.ErrExist
	} else if !errors.Is(err, backend.ErrNotExist) {
		return err
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	_, err = c.mc.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: c.key(dst)},
		minio.CopySrcOptions{Bucket: c.bucket, Object: c.key(src)},
	)
	if err != nil {
		return err
	}
	return c.mc.RemoveObject(ctx, c.bucket, c.key(src), minio.RemoveObjectOptions{})
}

func (c *Client) Mkdir(ctx context.Context, name string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.mc.PutObject(ctx, c.bucket, c.key(name)+"/", strings.NewReader(""), 0, minio.PutObjectOptions{})
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
		return 0, fmt.Errorf("miniofs: negative offset %d", off)
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
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return 0, err
	}

	obj, err := f.c.mc.GetObject(context.Background(), f.c.bucket, f.key, opts)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	n, err := io.ReadFull(obj, p[:end-off+1])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// The object shrank since open; report what was read.
		err = nil
	}
	return n, err
}

func (f *readFile) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("miniofs: file not open for writing")
}

func (f *readFile) Flush() error { return fmt.Errorf("miniofs: file not open for writing") }
func (f *readFile) Sync() error  { return fmt.Errorf("miniofs: file not open for writing") }

func (f *readFile) Seek(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("miniofs: negative offset %d", offset)
	}
	f.pos = offset
	return nil
}

func (f *readFile) Tell() (int64, error) { return f.pos, nil }
func (f *readFile) Close() error         { return nil }

// writeFile streams writes into a single object upload finalized on Close.
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
	return 0, fmt.Errorf("miniofs: file not open for reading")
}

func (f *writeFile) ReadAt(p []byte, off int64) (int, error) {
	return 0, fmt.Errorf("miniofs: file not open for reading")
}

func (f *writeFile) Seek(offset int64) error {
	return fmt.Errorf("miniofs: cannot seek a streaming upload")
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
