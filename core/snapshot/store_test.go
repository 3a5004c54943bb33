package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"query-sync/core/storage/mocks"
)

type payload struct {
	Items []string `json:"items"`
	Total int64    `json:"total"`
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "snaps", mock.Anything).Return(nil)

	store := NewStore(client, "snaps", nil)
	assert.NoError(t, store.EnsureBucket(context.Background()))
	client.AssertExpectations(t)
}

func TestEnsureBucketSkipsWhenPresent(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(true, nil)

	store := NewStore(client, "snaps", nil)
	assert.NoError(t, store.EnsureBucket(context.Background()))
	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishUploadsJSON(t *testing.T) {
	client := new(mocks.Client)
	var uploaded []byte
	client.On("PutObject", mock.Anything, "snaps", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			reader := args.Get(3).(io.Reader)
			uploaded, _ = io.ReadAll(reader)
		}).
		Return(minio.UploadInfo{}, nil)

	store := NewStore(client, "snaps", nil)
	name, err := store.Publish(context.Background(), payload{Items: []string{"a"}, Total: 1})
	assert.NoError(t, err)
	assert.Contains(t, name, "snapshots/")
	assert.Contains(t, name, ".json")
	assert.JSONEq(t, `{"items":["a"],"total":1}`, string(uploaded))
}

func TestFetchDecodesSnapshot(t *testing.T) {
	client := new(mocks.Client)
	body := io.NopCloser(bytes.NewReader([]byte(`{"items":["x","y"],"total":2}`)))
	client.On("GetObject", mock.Anything, "snaps", "snapshots/one.json", mock.Anything).Return(body, nil)

	store := NewStore(client, "snaps", nil)
	var got payload
	err := store.Fetch(context.Background(), "snapshots/one.json", &got)
	assert.NoError(t, err)
	assert.Equal(t, payload{Items: []string{"x", "y"}, Total: 2}, got)
}

func TestFetchPropagatesStorageErrors(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "snaps", "snapshots/gone.json", mock.Anything).
		Return(nil, errors.New("no such key"))

	store := NewStore(client, "snaps", nil)
	var got payload
	err := store.Fetch(context.Background(), "snapshots/gone.json", &got)
	assert.ErrorContains(t, err, "no such key")
}

func TestBrokerReplaysLatestToMirrors(t *testing.T) {
	broker := NewBroker[payload]()
	defer broker.Close()

	broker.Publish(payload{Total: 1})
	broker.Publish(payload{Total: 2})

	latest, ok := broker.Latest()
	assert.True(t, ok)
	assert.Equal(t, int64(2), latest.Total)

	ch, cancel := broker.Subscribe()
	defer cancel()
	assert.Equal(t, int64(2), (<-ch).Total)
}
