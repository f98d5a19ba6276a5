// Package transfer moves file bytes between a local cache and remote backends.
//
// A Controller saves payloads to the primary HTTP API or a direct-storage
// backend, fetches remote files into the local cache and reports progress.
// Every operation honours cancellation through its context, retries transient
// failures through a Runner and finishes with exactly one outcome: a value, a
// typed error, or the cancelled outcome (see IsCancelled).
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/code19m/errx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/filexfer/filecache"
	"github.com/rise-and-shine/filexfer/filestate"
	"github.com/rise-and-shine/filexfer/httpx"
	"github.com/rise-and-shine/filexfer/meta"
	"github.com/rise-and-shine/filexfer/observability/logger"
	"github.com/rise-and-shine/filexfer/observability/tracing"
)

const (
	opSave  = "save"
	opFetch = "fetch"
)

// ProgressFunc receives the cumulative number of bytes moved and the expected
// total, or httpx.UnknownSize. Within one operation done never decreases.
type ProgressFunc = httpx.ProgressFunc

// Controller coordinates the local cache with the remote backends.
// It is safe for concurrent use. Concurrent transfers of the same name are
// the caller's concern: the last rename into the cache wins.
type Controller struct {
	cache    *filecache.Store
	selector *Selector
	builder  *Builder
	runner   *Runner
	logger   logger.Logger
}

// New returns a Controller using primary for hosted files and caching under
// cacheRoot. An empty cacheRoot disables caching.
func New(primary httpx.Client, cacheRoot string, opts ...Option) (*Controller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := filecache.New(cacheRoot)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	log := o.logger
	if log == nil {
		log = logger.Named("transfer")
	}

	return &Controller{
		cache:    cache,
		selector: NewSelector(primary, o.storage),
		builder:  NewBuilder(o.serverURL, o.headers),
		runner:   NewRunner(o.retry, o.classifier, log),
		logger:   log,
	}, nil
}

// CacheFile returns the cache path for state, or "" when caching is disabled.
func (c *Controller) CacheFile(state filestate.State) string {
	return c.cache.CacheFile(state)
}

// IsDataAvailable reports whether the cache file for state exists.
func (c *Controller) IsDataAvailable(state filestate.State) bool {
	return c.cache.IsDataAvailable(state)
}

// ClearCache removes every file under the cache root.
func (c *Controller) ClearCache() error {
	return c.cache.Clear()
}

// Save uploads payload for state and returns the state assigned by the
// server.
//
// A state that already has a url is returned unchanged without any network
// call, even when payload is nil. When caching is enabled the payload is
// also copied to the cache under the returned name.
func (c *Controller) Save(
	ctx context.Context,
	state filestate.State,
	payload Payload,
	progress ProgressFunc,
) (filestate.State, error) {
	if err := ctx.Err(); err != nil {
		return filestate.State{}, errCancelled(err)
	}
	if !state.IsDirty() {
		return state, nil
	}

	ctx, span := c.begin(ctx, opSave, state)
	defer span.End()

	saved, err := c.save(ctx, state, payload, progress)
	c.end(ctx, span, err)
	if err != nil {
		return filestate.State{}, err
	}
	return saved, nil
}

func (c *Controller) save(
	ctx context.Context,
	state filestate.State,
	payload Payload,
	progress ProgressFunc,
) (filestate.State, error) {
	if payload == nil {
		return filestate.State{}, errx.New("[transfer]: nothing to upload",
			errx.WithCode(CodeIOFailure),
			errx.WithDetails(errx.D{"name": state.Name()}),
		)
	}

	client, err := c.selector.Select(state)
	if err != nil {
		return filestate.State{}, err
	}

	req, err := c.builder.UploadRequest(state, payload)
	if err != nil {
		return filestate.State{}, err
	}
	req.UploadProgress = monotonic(progress)

	resp, err := c.runner.Run(ctx, client, req)
	if err != nil {
		return filestate.State{}, err
	}
	defer resp.Close()

	reply, err := decodeUploadReply(resp.Body)
	if err != nil {
		return filestate.State{}, err
	}

	saved := state.ToBuilder().
		Name(reply.Name).
		URL(reply.URL).
		Build()

	c.persist(ctx, saved, payload)

	return saved, nil
}

// persist copies the uploaded payload into the cache. The remote state has
// already changed, so failures only cost a later download and are logged.
func (c *Controller) persist(ctx context.Context, saved filestate.State, payload Payload) {
	if !c.cache.Enabled() {
		return
	}

	rc, err := payload.Open()
	if err != nil {
		c.logger.WithContext(ctx).Warnx(ioFailure("[transfer]: failed to reopen payload", err))
		return
	}
	defer rc.Close()

	if _, _, err = c.cache.Install(ctx, saved, rc, nil); err != nil {
		c.logger.WithContext(ctx).With("error", err.Error()).Warn("[transfer]: failed to cache saved file")
	}
}

// Fetch returns a local path holding the content of state, downloading it
// into the cache when it is not there yet. With caching disabled the content
// goes to a new file in the OS temp directory, owned by the caller.
func (c *Controller) Fetch(ctx context.Context, state filestate.State, progress ProgressFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errCancelled(err)
	}
	if c.cache.IsDataAvailable(state) {
		return c.cache.CacheFile(state), nil
	}

	ctx, span := c.begin(ctx, opFetch, state)
	defer span.End()

	path, err := c.fetch(ctx, state, progress)
	c.end(ctx, span, err)
	if err != nil {
		return "", err
	}
	return path, nil
}

func (c *Controller) fetch(ctx context.Context, state filestate.State, progress ProgressFunc) (string, error) {
	client, err := c.selector.Select(state)
	if err != nil {
		return "", err
	}

	req, err := c.builder.DownloadRequest(state)
	if err != nil {
		return "", err
	}

	resp, err := c.runner.Run(ctx, client, req)
	if err != nil {
		return "", err
	}
	defer resp.Close()

	total := resp.TotalSize
	report := func(written int64) {
		if progress != nil {
			progress(written, total)
		}
	}
	body := &bodyReader{r: resp.Body}

	var (
		path    string
		written int64
	)
	if c.cache.Enabled() {
		path, written, err = c.cache.Install(ctx, state, body, report)
	} else {
		path, written, err = filecache.WriteTemp(ctx, "", body, report)
	}
	if err != nil {
		if cancelled := cancelledOutcome(ctx, err); cancelled != nil {
			return "", cancelled
		}
		if body.err != nil {
			return "", connectionFailed(body.err, 1)
		}
		return "", errx.Wrap(err)
	}

	if progress != nil {
		if total < 0 {
			total = written
		}
		progress(written, total)
	}

	return path, nil
}

func (c *Controller) begin(ctx context.Context, op string, state filestate.State) (context.Context, trace.Span) {
	ctx, span := tracing.Start(ctx, "transfer."+op,
		attribute.String("file.name", state.Name()),
		attribute.String("file.origin", state.Origin().String()),
	)

	ctx = meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
		meta.TraceID:   tracing.GetStartingTraceID(ctx),
		meta.Operation: op,
		meta.FileName:  state.Name(),
		meta.Backend:   state.Origin().String(),
	})

	c.logger.WithContext(ctx).Debug("[transfer]: started")
	return ctx, span
}

func (c *Controller) end(ctx context.Context, span trace.Span, err error) {
	log := c.logger.WithContext(ctx)

	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
		log.Debug("[transfer]: completed")
	case IsCancelled(err):
		span.SetStatus(codes.Error, CodeCancelled)
		log.Info("[transfer]: cancelled")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Errorx(err)
	}
}

type uploadReply struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func decodeUploadReply(r io.Reader) (uploadReply, error) {
	var reply uploadReply
	if err := json.NewDecoder(r).Decode(&reply); err != nil {
		return uploadReply{}, errx.New("[transfer]: failed to decode upload reply",
			errx.WithCode(CodeMalformedResponse),
			errx.WithDetails(errx.D{"cause": err.Error()}),
		)
	}
	if reply.Name == "" || reply.URL == "" {
		return uploadReply{}, errx.New("[transfer]: upload reply misses name or url",
			errx.WithCode(CodeMalformedResponse),
			errx.WithDetails(errx.D{"name": reply.Name, "url": reply.URL}),
		)
	}
	return reply, nil
}

// bodyReader remembers the error of the response body so a broken download
// is told apart from a local write failure.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		b.err = err
	}
	return n, err
}

// monotonic drops reports that go backwards, which happens when a retried
// upload re-reads its body from the start.
func monotonic(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return nil
	}

	var (
		mu   sync.Mutex
		last int64 = -1
	)
	return func(done, total int64) {
		mu.Lock()
		defer mu.Unlock()
		if done <= last {
			return
		}
		last = done
		fn(done, total)
	}
}
