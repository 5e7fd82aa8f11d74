package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	var c config.Config
	c.LoadDefaults()
	c.StorePath = filepath.Join(t.TempDir(), "data", "safe360.json")
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.MetricsAddr = "127.0.0.1:0"
	c.BcryptCost = 10
	c.LogLevel = "error"
	c.MailTimeout = time.Second
	return &c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.SecretKey = ""
	_, err := NewApp(context.Background(), c)
	require.ErrorContains(t, err, "invalid config")
}

func TestNewApp_CorruptStore(t *testing.T) {
	c := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.StorePath), 0o700))
	require.NoError(t, os.WriteFile(c.StorePath, []byte("{not json"), 0o600))

	_, err := NewApp(context.Background(), c)
	require.ErrorIs(t, err, common.ErrCorruptDocument)
}

func TestOpenStore_SQLite(t *testing.T) {
	c := testConfig(t)
	c.StoreBackend = config.StoreBackendSQLite
	c.StorePath = filepath.Join(t.TempDir(), "safe360.db")

	st, db, err := OpenStore(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() { _ = db.Close() })

	doc, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Identities)
}

func TestNewApp_BackupsNeedBucket(t *testing.T) {
	c := testConfig(t)
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, app.exporter)

	c = testConfig(t)
	c.S3Bucket = "snapshots"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.S3RootUser = "minioadmin"
	c.S3RootPassword = "minioadmin"
	app, err = NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, app.exporter)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
