package transfer

import (
	"io"

	"github.com/rise-and-shine/filexfer/filestore"
	"github.com/rise-and-shine/filexfer/httpx"
)

// sniffLen is the number of leading bytes inspected for content detection.
const sniffLen = 3072

// Payload is the local content of a save: an in-memory buffer or a file on
// disk. The caller keeps ownership; the controller only reads it, possibly
// several times when an upload is retried.
type Payload interface {
	httpx.BodySource

	payload()
}

// BytesPayload returns a payload serving data. The slice is not copied and
// must not be modified until the save completes.
func BytesPayload(data []byte) Payload {
	return bytesPayload{BodySource: httpx.BytesBody(data)}
}

// FilePayload returns a payload serving the file at path.
// The file is opened anew for every attempt.
func FilePayload(path string) Payload {
	return filePayload{BodySource: httpx.FileBody(path)}
}

type bytesPayload struct{ httpx.BodySource }

func (bytesPayload) payload() {}

type filePayload struct{ httpx.BodySource }

func (filePayload) payload() {}

// detectContentType sniffs the leading bytes of p.
func detectContentType(p Payload) (string, error) {
	rc, err := p.Open()
	if err != nil {
		return "", ioFailure("[transfer]: failed to open payload", err)
	}
	defer rc.Close()

	head, err := io.ReadAll(io.LimitReader(rc, sniffLen))
	if err != nil {
		return "", ioFailure("[transfer]: failed to read payload", err)
	}

	return filestore.DetectContentType(head), nil
}
