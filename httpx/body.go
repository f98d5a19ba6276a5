package httpx

import (
	"bytes"
	"io"
	"os"

	"github.com/code19m/errx"
)

// BodySource can be reopened for every attempt of a retried request.
type BodySource interface {
	// Open returns a new reader positioned at the start of the body.
	Open() (io.ReadCloser, error)
	// Size returns the body length, or UnknownSize.
	Size() int64
}

// BytesBody serves an in-memory buffer. The buffer is not copied.
func BytesBody(data []byte) BodySource {
	return bytesBody(data)
}

type bytesBody []byte

func (b bytesBody) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (b bytesBody) Size() int64 {
	return int64(len(b))
}

// FileBody serves the contents of a file on disk, opened lazily per attempt.
func FileBody(path string) BodySource {
	return fileBody(path)
}

type fileBody string

func (f fileBody) Open() (io.ReadCloser, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return file, nil
}

func (f fileBody) Size() int64 {
	info, err := os.Stat(string(f))
	if err != nil {
		return UnknownSize
	}
	return info.Size()
}
