package transfer_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filexfer/filestate"
	"github.com/rise-and-shine/filexfer/httpx"
	"github.com/rise-and-shine/filexfer/transfer"
)

func TestSaveAsyncSucceeds(t *testing.T) {
	client := newFakeClient(func(context.Context, *httpx.Request) (*httpx.Response, error) {
		return respond(http.StatusOK, `{"name":"new_file_name","url":"http://example.com"}`), nil
	})
	controller := newController(t, client, t.TempDir())

	state := filestate.NewBuilder().Name("file_name").Build()
	task := controller.SaveAsync(t.Context(), state, transfer.BytesPayload([]byte("hello")), nil)

	result, err := task.Wait()
	require.NoError(t, err)
	assert.Equal(t, "new_file_name", result.Name())
	assert.Equal(t, transfer.StatusSucceeded, task.Status())
}

func TestFetchAsyncFails(t *testing.T) {
	client := newFakeClient(alwaysFail)
	controller := newController(t, client, t.TempDir())

	state := filestate.NewBuilder().Name("file_name").URL("url").Build()
	task := controller.FetchAsync(t.Context(), state, nil)

	<-task.Done()
	_, err := task.Wait()
	require.Error(t, err)
	assert.Equal(t, transfer.StatusFailed, task.Status())
	assert.Equal(t, 5, client.Calls())
}

func TestFetchAsyncCancel(t *testing.T) {
	root := t.TempDir()
	started := make(chan struct{})
	client := newFakeClient(func(ctx context.Context, _ *httpx.Request) (*httpx.Response, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	controller := newController(t, client, root, transfer.WithRetry(transfer.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
	}))

	state := filestate.NewBuilder().Name("file_name").URL("url").Build()
	task := controller.FetchAsync(t.Context(), state, nil)

	<-started
	assert.Equal(t, transfer.StatusRunning, task.Status())
	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not stop after cancel")
	}

	_, err := task.Wait()
	assert.True(t, transfer.IsCancelled(err))
	assert.Equal(t, transfer.StatusCancelled, task.Status())
	assert.Equal(t, 1, client.Calls())
	requireEmptyDir(t, root)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "running", transfer.StatusRunning.String())
	assert.Equal(t, "cancelled", transfer.StatusCancelled.String())
	assert.Equal(t, "unknown", transfer.Status(42).String())
}
