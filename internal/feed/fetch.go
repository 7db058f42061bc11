package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/yungbote/menusync-backend/internal/clients/gcp"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

const DefaultLocalPath = "sheet.csv"

type Config struct {
	// Location is an http(s) URL, a gs://bucket/object URI, a file:// URL
	// or a local path.
	Location  string
	LocalPath string
	Timeout   time.Duration
}

// Fetched describes a feed persisted to local disk.
type Fetched struct {
	Source   string
	Path     string
	Bytes    int64
	Checksum uint64
}

type Fetcher interface {
	Fetch(ctx context.Context) (*Fetched, error)
}

type fetcher struct {
	cfg     Config
	http    *http.Client
	objects gcp.ObjectReader
	log     *logger.Logger
}

func NewFetcher(cfg Config, objects gcp.ObjectReader, baseLog *logger.Logger) Fetcher {
	if strings.TrimSpace(cfg.LocalPath) == "" {
		cfg.LocalPath = DefaultLocalPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &fetcher{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		objects: objects,
		log:     baseLog.With("service", "FeedFetcher"),
	}
}

// Fetch downloads the feed and persists it to the local path. The local
// file is replaced atomically, so a failed download leaves the previous
// copy in place.
func (f *fetcher) Fetch(ctx context.Context) (*Fetched, error) {
	loc := strings.TrimSpace(f.cfg.Location)
	if loc == "" {
		return nil, fmt.Errorf("feed location is not configured")
	}

	dst := f.cfg.LocalPath
	if samePath(LocalSource(loc), dst) {
		return f.hashInPlace(loc, dst)
	}

	src, err := f.open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create feed dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".feed-*")
	if err != nil {
		return nil, fmt.Errorf("create temp feed file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("download feed: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return nil, fmt.Errorf("persist feed: %w", err)
	}

	out := &Fetched{Source: loc, Path: dst, Bytes: n, Checksum: h.Sum64()}
	f.log.Debug("feed fetched", "source", loc, "path", dst, "bytes", n, "checksum", fmt.Sprintf("%016x", out.Checksum))
	return out, nil
}

func (f *fetcher) open(ctx context.Context, loc string) (io.ReadCloser, error) {
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path; a one-letter scheme is a Windows drive.
		return openLocal(loc)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.openHTTP(ctx, loc)
	case "gs":
		if f.objects == nil {
			return nil, fmt.Errorf("gs:// feed configured without a storage reader")
		}
		return f.objects.Open(ctx, u.Host, u.Path)
	case "file":
		return openLocal(u.Path)
	default:
		return nil, fmt.Errorf("unsupported feed scheme %q", u.Scheme)
	}
}

func (f *fetcher) openHTTP(ctx context.Context, loc string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch feed: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// hashInPlace handles a feed that already lives at the local path.
func (f *fetcher) hashInPlace(loc, path string) (*Fetched, error) {
	file, err := openLocal(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	h := xxhash.New()
	n, err := io.Copy(h, file)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return &Fetched{Source: loc, Path: path, Bytes: n, Checksum: h.Sum64()}, nil
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func openLocal(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	return file, nil
}

// LocalSource returns the filesystem path of loc when it names a local
// file, or "" for remote locations.
func LocalSource(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return loc
	}
	if strings.EqualFold(u.Scheme, "file") {
		return u.Path
	}
	return ""
}
