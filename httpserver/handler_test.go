package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markeluno8-dev/AuthentiEats/api"
	"github.com/markeluno8-dev/AuthentiEats/api/clients"
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
	"github.com/markeluno8-dev/AuthentiEats/registry"
	"github.com/markeluno8-dev/AuthentiEats/storage"
)

var (
	testAdmin     = interfaces.Identity{0x01}
	testRegistrar = interfaces.Identity{0x02}
	testStranger  = interfaces.Identity{0x03}
)

type testEnv struct {
	ts  *httptest.Server
	reg *registry.Registry
	seq *registry.Sequencer
}

func newTestEnv(t *testing.T, cfgFn func(*HandlerConfig)) *testEnv {
	t.Helper()
	log := slog.New(slog.DiscardHandler)

	seq := registry.NewSequencer(0)
	reg, err := registry.New(testAdmin, seq, nil, log)
	require.NoError(t, err)
	require.NoError(t, reg.AddRegistrar(testAdmin, testRegistrar))

	hcfg := &HandlerConfig{
		Registry:    reg,
		Sequencer:   seq,
		Snapshotter: reg,
		Log:         log,
	}
	if cfgFn != nil {
		cfgFn(hcfg)
	}

	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      log,
		DrainDuration:            time.Second,
		GracefulShutdownDuration: time.Second,
	}, NewHandler(hcfg))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.getRouter())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, reg: reg, seq: seq}
}

func (e *testEnv) client(caller interfaces.Identity) *clients.RegistryClient {
	return &clients.RegistryClient{ServerAddr: e.ts.URL, Caller: caller}
}

func TestServer_RegisterAndQuery(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.client(testRegistrar)

	id, err := c.Register("BATCH-001", "Valle de Colchagua", 87, []string{"organic"})
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProductID(1), id)

	product, err := c.Product(id)
	require.NoError(t, err)
	assert.Equal(t, "BATCH-001", product.BatchID)
	assert.Equal(t, 87, product.Quality)

	owner, err := c.ProductOwner(id)
	require.NoError(t, err)
	assert.Equal(t, testRegistrar, owner)

	history, err := c.UpdateHistory(id)
	require.NoError(t, err)
	assert.Empty(t, history)

	status, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, testAdmin, status.Admin)
	assert.False(t, status.Paused)
	assert.Equal(t, interfaces.ProductID(2), status.NextID)
}

func TestServer_UpdateFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.client(testRegistrar)

	id, err := c.Register("BATCH-001", "Kenya", 70, nil)
	require.NoError(t, err)

	quality := 95
	require.NoError(t, c.Update(id, api.UpdateRequest{Quality: &quality}))

	history, err := c.UpdateHistory(id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, interfaces.FieldQuality, history[0].Field)
	assert.Equal(t, "70", history[0].OldValue)
	assert.Equal(t, "95", history[0].NewValue)

	// Typed errors survive the wire round trip.
	err = env.client(testStranger).Update(id, api.UpdateRequest{Quality: &quality})
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)

	bad := interfaces.MaxQuality + 1
	err = c.Update(id, api.UpdateRequest{Quality: &bad})
	assert.ErrorIs(t, err, interfaces.ErrInvalidQuality)

	err = c.Update(id, api.UpdateRequest{})
	assert.ErrorIs(t, err, interfaces.ErrNoChanges)
}

func TestServer_AdminOperations(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.client(testAdmin)

	require.NoError(t, admin.AddRegistrar(testStranger))
	registrar, err := admin.IsRegistrar(testStranger)
	require.NoError(t, err)
	assert.True(t, registrar)

	require.NoError(t, admin.RemoveRegistrar(testStranger))
	registrar, err = admin.IsRegistrar(testStranger)
	require.NoError(t, err)
	assert.False(t, registrar)

	require.NoError(t, admin.SetPaused(true))
	_, err = env.client(testRegistrar).Register("B-1", "Kenya", 70, nil)
	assert.ErrorIs(t, err, interfaces.ErrPaused)
	require.NoError(t, admin.SetPaused(false))

	assert.ErrorIs(t, env.client(testStranger).SetPaused(true), interfaces.ErrNotAuthorized)
}

func TestServer_ErrorStatusCodes(t *testing.T) {
	env := newTestEnv(t, nil)

	// Missing caller header.
	resp, err := http.Post(env.ts.URL+"/api/registry/products", "application/json",
		bytes.NewReader([]byte(`{"batch_id":"B-1","origin":"Kenya","quality":70}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown product.
	resp, err = http.Get(env.ts.URL + "/api/registry/products/42")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var apiErr api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, api.CodeInvalidID, apiErr.Code)

	// Malformed product id.
	resp, err = http.Get(env.ts.URL + "/api/registry/products/not-a-number")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Forbidden caller.
	req, err := http.NewRequest(http.MethodPost, env.ts.URL+"/api/registry/products",
		bytes.NewReader([]byte(`{"batch_id":"B-1","origin":"Kenya","quality":70}`)))
	require.NoError(t, err)
	req.Header.Set(api.CallerHeader, testStranger.String())
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_HistoryFullMapsToConflict(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.client(testRegistrar)

	id, err := c.Register("BATCH-001", "Kenya", 70, nil)
	require.NoError(t, err)

	for i := 0; i < interfaces.MaxHistoryEntries; i++ {
		quality := i % (interfaces.MaxQuality + 1)
		require.NoError(t, c.Update(id, api.UpdateRequest{Quality: &quality}))
	}

	quality := 99
	err = c.Update(id, api.UpdateRequest{Quality: &quality})
	assert.ErrorIs(t, err, interfaces.ErrHistoryFull)

	body, _ := json.Marshal(api.UpdateRequest{Quality: &quality})
	req, err := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/api/registry/products/%d", env.ts.URL, id), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(api.CallerHeader, testRegistrar.String())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServer_SignedMode(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := interfaces.Identity(crypto.PubkeyToAddress(key.PublicKey))

	env := newTestEnv(t, func(cfg *HandlerConfig) {
		cfg.RequireSignatures = true
	})
	require.NoError(t, env.reg.AddRegistrar(testAdmin, signer))

	signed := &clients.RegistryClient{ServerAddr: env.ts.URL, Caller: signer, PrivateKey: key}
	id, err := signed.Register("BATCH-001", "Kenya", 70, nil)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProductID(1), id)

	// Unsigned requests are rejected outright.
	unsigned := env.client(signer)
	_, err = unsigned.Register("BATCH-002", "Kenya", 70, nil)
	assert.ErrorContains(t, err, "401")

	// A signature from a different key does not authenticate the caller.
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	impostor := &clients.RegistryClient{ServerAddr: env.ts.URL, Caller: signer, PrivateKey: otherKey}
	_, err = impostor.Register("BATCH-003", "Kenya", 70, nil)
	assert.ErrorContains(t, err, "401")
}

func TestServer_ExternalSequence(t *testing.T) {
	env := newTestEnv(t, func(cfg *HandlerConfig) {
		cfg.ExternalSequence = true
	})

	body, _ := json.Marshal(api.RegisterRequest{BatchID: "BATCH-001", Origin: "Kenya", Quality: 70})
	req, err := http.NewRequest(http.MethodPost, env.ts.URL+"/api/registry/products", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(api.CallerHeader, testRegistrar.String())
	req.Header.Set(api.SequenceHeader, "100")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	product, err := env.reg.Product(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), product.RegisteredAt)
	assert.Equal(t, uint64(100), env.seq.Current())
}

func TestServer_SnapshotEndpoint(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	snapshots, err := storage.NewFileStore(t.TempDir(), log)
	require.NoError(t, err)

	env := newTestEnv(t, func(cfg *HandlerConfig) {
		cfg.Snapshots = snapshots
	})

	_, err = env.client(testRegistrar).Register("BATCH-001", "Kenya", 70, nil)
	require.NoError(t, err)

	// Only the admin may trigger snapshots.
	_, err = env.client(testRegistrar).Snapshot()
	assert.ErrorIs(t, err, interfaces.ErrNotAuthorized)

	resp, err := env.client(testAdmin).Snapshot()
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SnapshotID)
	assert.Equal(t, snapshots.Name(), resp.Backend)

	snap, err := snapshots.Load(t.Context(), resp.SnapshotID)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ProductID(2), snap.NextID)
}

func TestHandler_InternalErrorsMapTo500(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	mockReg := &registry.MockRegistry{}
	mockReg.On("Register", testRegistrar, "B-1", "Kenya", 70, []string(nil)).
		Return(interfaces.ProductID(0), fmt.Errorf("backend exploded"))

	handler := NewHandler(&HandlerConfig{
		Registry:  mockReg,
		Sequencer: registry.NewSequencer(0),
		Log:       log,
	})

	body, _ := json.Marshal(api.RegisterRequest{BatchID: "B-1", Origin: "Kenya", Quality: 70})
	req := httptest.NewRequest(http.MethodPost, "/api/registry/products", bytes.NewReader(body))
	req.Header.Set(api.CallerHeader, testRegistrar.String())
	rec := httptest.NewRecorder()

	handler.HandleRegister(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var apiErr api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, api.CodeInternal, apiErr.Code)
	mockReg.AssertExpectations(t)
}
