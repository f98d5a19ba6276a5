package transfer

import (
	"net/http"
	"net/url"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filexfer/filestate"
	"github.com/rise-and-shine/filexfer/httpx"
)

const (
	filesPath       = "files"
	defaultFileName = "file"
)

// HeaderFunc adds headers, such as authentication, to an outbound request.
type HeaderFunc func(h http.Header)

// Builder turns file states and payloads into request descriptors.
type Builder struct {
	serverURL string
	headers   HeaderFunc
}

// NewBuilder returns a Builder posting hosted uploads under serverURL.
// headers may be nil.
func NewBuilder(serverURL string, headers HeaderFunc) *Builder {
	return &Builder{serverURL: serverURL, headers: headers}
}

// UploadRequest describes the upload of payload for state.
//
// Hosted files are posted to <serverURL>/files/<name>; direct-storage files
// are posted under their storage key. The content type is the state's mime
// type, or sniffed from the payload when the state has none.
func (b *Builder) UploadRequest(state filestate.State, payload Payload) (*httpx.Request, error) {
	contentType := state.MimeType()
	if contentType == "" {
		detected, err := detectContentType(payload)
		if err != nil {
			return nil, err
		}
		contentType = detected
	}

	req := &httpx.Request{
		Method:      httpx.MethodPost,
		Header:      b.newHeader(),
		Body:        payload,
		ContentType: contentType,
	}

	if state.Origin() == filestate.OriginDirectStorage {
		req.StorageKey = state.StorageKey()
		return req, nil
	}

	name := state.Name()
	if name == "" {
		name = defaultFileName
	}

	target, err := b.hostedURL(name)
	if err != nil {
		return nil, err
	}
	req.URL = target

	return req, nil
}

// DownloadRequest describes the download of state.
// Hosted files are fetched from their url, direct-storage files by key.
func (b *Builder) DownloadRequest(state filestate.State) (*httpx.Request, error) {
	req := &httpx.Request{
		Method: httpx.MethodGet,
		URL:    state.URL(),
		Header: b.newHeader(),
	}

	if state.Origin() == filestate.OriginDirectStorage {
		req.StorageKey = state.StorageKey()
		return req, nil
	}

	if state.URL() == "" {
		return nil, errx.New("[transfer]: file has no remote url",
			errx.WithCode(CodeConnectionFailed),
			errx.WithDetails(errx.D{"name": state.Name()}),
		)
	}

	return req, nil
}

func (b *Builder) hostedURL(name string) (string, error) {
	if b.serverURL == "" {
		return "", errx.New("[transfer]: server url is not configured",
			errx.WithCode(CodeConnectionFailed),
		)
	}

	target, err := url.JoinPath(b.serverURL, filesPath, name)
	if err != nil {
		return "", errx.New("[transfer]: invalid server url",
			errx.WithCode(CodeConnectionFailed),
			errx.WithDetails(errx.D{"server_url": b.serverURL, "cause": err.Error()}),
		)
	}
	return target, nil
}

func (b *Builder) newHeader() http.Header {
	h := make(http.Header)
	if b.headers != nil {
		b.headers(h)
	}
	return h
}
