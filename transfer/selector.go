package transfer

import (
	"github.com/code19m/errx"

	"github.com/rise-and-shine/filexfer/filestate"
	"github.com/rise-and-shine/filexfer/httpx"
)

// Selector routes a file state to the client serving its origin.
type Selector struct {
	primary httpx.Client
	storage httpx.Client
}

// NewSelector returns a Selector. storage may be nil when no direct-storage
// backend is configured.
func NewSelector(primary, storage httpx.Client) *Selector {
	return &Selector{primary: primary, storage: storage}
}

// Select returns the client for state. It is evaluated on every call so one
// controller can serve files of both origins.
func (s *Selector) Select(state filestate.State) (httpx.Client, error) {
	client := s.primary
	if state.Origin() == filestate.OriginDirectStorage {
		client = s.storage
	}

	if client == nil {
		return nil, errx.New("[transfer]: no client configured for file origin",
			errx.WithCode(CodeConnectionFailed),
			errx.WithDetails(errx.D{"origin": state.Origin().String()}),
		)
	}
	return client, nil
}
