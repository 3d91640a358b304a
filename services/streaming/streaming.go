// Package streaming serves byte ranges of media files over HTTP partial
// content semantics.
package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound indicates the requested file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidRange indicates an unparseable or unsatisfiable Range header.
	// Handlers map it to 416 with "Content-Range: bytes */{size}".
	ErrInvalidRange = errors.New("invalid range")
)

const fallbackContentType = "video/mp4"

// Request describes a single streaming request.
type Request struct {
	// Path is the absolute path of the file to stream.
	Path string
	// RangeHeader is the raw Range request header, or empty for the full file.
	RangeHeader string
}

// Response is a ready-to-serve streaming response. Body is single-pass; the
// caller owns closing it.
type Response struct {
	Body          io.ReadCloser
	Headers       http.Header
	Status        int
	ContentLength int64
}

// Provider produces streaming responses for media requests.
type Provider interface {
	Stream(ctx context.Context, req Request) (*Response, error)
}

// FileProvider streams files from a filesystem. The afero abstraction keeps
// it testable against an in-memory fs.
type FileProvider struct {
	fs afero.Fs
}

// NewFileProvider creates a provider over the OS filesystem.
func NewFileProvider() *FileProvider {
	return &FileProvider{fs: afero.NewOsFs()}
}

// NewFileProviderWithFs creates a provider over the given filesystem.
func NewFileProviderWithFs(fs afero.Fs) *FileProvider {
	return &FileProvider{fs: fs}
}

// byteRange is an inclusive [Start, End] span within a file of Size bytes.
type byteRange struct {
	Start int64
	End   int64
	Size  int64
}

func (r byteRange) length() int64 { return r.End - r.Start + 1 }

// parseRange parses "bytes=<start>-[<end>]" against a file of size bytes.
// A start at or past EOF is rejected rather than clamped; an end past EOF is
// clamped to the last byte, per RFC 9110.
func parseRange(header string, size int64) (byteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return byteRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, header)
	}
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return byteRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, header)
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, fmt.Errorf("%w: bad start in %q", ErrInvalidRange, header)
	}

	end := size - 1
	if s := strings.TrimSpace(endStr); s != "" {
		end, err = strconv.ParseInt(s, 10, 64)
		if err != nil || end < 0 {
			return byteRange{}, fmt.Errorf("%w: bad end in %q", ErrInvalidRange, header)
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start > end || start >= size {
		return byteRange{}, fmt.Errorf("%w: %d-%d outside 0-%d", ErrInvalidRange, start, end, size-1)
	}
	return byteRange{Start: start, End: end, Size: size}, nil
}

// Stream opens the file and returns a 200 (full file) or 206 (range)
// response. The body reads lazily from the open file handle; it never loads
// the file into memory.
func (p *FileProvider) Stream(ctx context.Context, req Request) (*Response, error) {
	info, err := p.fs.Stat(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", req.Path, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", req.Path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", req.Path, ErrNotFound)
	}
	size := info.Size()

	f, err := p.fs.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.Path, err)
	}

	contentType := detectContentType(f)

	headers := make(http.Header)
	headers.Set("Content-Type", contentType)
	headers.Set("Accept-Ranges", "bytes")

	if req.RangeHeader == "" {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("seek %s: %w", req.Path, err)
		}
		headers.Set("Content-Length", strconv.FormatInt(size, 10))
		return &Response{
			Body:          f,
			Headers:       headers,
			Status:        http.StatusOK,
			ContentLength: size,
		}, nil
	}

	rng, err := parseRange(req.RangeHeader, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %s to %d: %w", req.Path, rng.Start, err)
	}

	headers.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
	headers.Set("Content-Length", strconv.FormatInt(rng.length(), 10))
	return &Response{
		Body:          &boundedReadCloser{r: io.LimitReader(f, rng.length()), c: f},
		Headers:       headers,
		Status:        http.StatusPartialContent,
		ContentLength: rng.length(),
	}, nil
}

// detectContentType sniffs the file's leading bytes. Anything that doesn't
// look like video falls back to video/mp4, which is what players expect from
// this endpoint.
func detectContentType(f afero.File) string {
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return fallbackContentType
	}
	if strings.HasPrefix(mtype.String(), "video/") {
		return mtype.String()
	}
	return fallbackContentType
}

// boundedReadCloser reads a limited window of the file and closes the
// underlying handle.
type boundedReadCloser struct {
	r io.Reader
	c io.Closer
}

func (b *boundedReadCloser) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *boundedReadCloser) Close() error               { return b.c.Close() }
