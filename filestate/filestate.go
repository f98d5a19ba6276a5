// Package filestate describes a file known to the transfer layer.
//
// A State is an immutable value. It is passed by value into every transfer
// operation, and a successful save produces a new State carrying the
// server-assigned name and url rather than mutating the original.
package filestate

// Origin tells which backend a file lives on.
type Origin int

const (
	// OriginHosted files are served by the primary HTTP API.
	OriginHosted Origin = iota
	// OriginDirectStorage files live in an object store addressed by a storage key.
	OriginDirectStorage
)

func (o Origin) String() string {
	switch o {
	case OriginHosted:
		return "hosted"
	case OriginDirectStorage:
		return "direct_storage"
	default:
		return "unknown"
	}
}

// State is the descriptor of a single file.
type State struct {
	name       string
	url        string
	mimeType   string
	storageKey string
	origin     Origin
}

// Name is the cache key and the default remote name.
func (s State) Name() string { return s.name }

// URL is the remote location once the file is persisted.
func (s State) URL() string { return s.url }

// MimeType is the optional content type.
func (s State) MimeType() string { return s.mimeType }

// StorageKey is the object key for direct-storage files.
func (s State) StorageKey() string { return s.storageKey }

// Origin reports which backend serves the file.
func (s State) Origin() Origin { return s.origin }

// IsDirty reports whether the file still has to be uploaded.
// A state with a url is already persisted remotely.
func (s State) IsDirty() bool {
	return s.url == ""
}

// ToBuilder returns a builder pre-filled with the state's fields.
func (s State) ToBuilder() *Builder {
	return &Builder{state: s}
}

// Builder constructs a State.
type Builder struct {
	state State
}

// NewBuilder returns an empty builder. Files default to OriginHosted.
func NewBuilder() *Builder {
	return &Builder{}
}

// Name sets the server-assigned file name, which is also the cache entry name.
func (b *Builder) Name(name string) *Builder {
	b.state.name = name
	return b
}

// URL sets the remote location. A state with a url is considered uploaded.
func (b *Builder) URL(url string) *Builder {
	b.state.url = url
	return b
}

// MimeType sets the content type sent on upload. When empty it is sniffed
// from the payload.
func (b *Builder) MimeType(mimeType string) *Builder {
	b.state.mimeType = mimeType
	return b
}

// StorageKey marks the file as direct-storage when key is not empty.
func (b *Builder) StorageKey(key string) *Builder {
	b.state.storageKey = key
	if key != "" {
		b.state.origin = OriginDirectStorage
	} else {
		b.state.origin = OriginHosted
	}
	return b
}

// Build returns the constructed State.
func (b *Builder) Build() State {
	return b.state
}
