// Package clients provides HTTP clients for the registry API.
package clients

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/markeluno8-dev/AuthentiEats/api"
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// RegistryClient talks to a registry server over HTTP. It covers the full
// operation surface; mutating calls carry the caller identity header and,
// when a private key is configured, a signature over the request body.
type RegistryClient struct {
	// ServerAddr is the base URL of the registry server.
	ServerAddr string

	// Caller is the identity sent with mutating requests.
	Caller interfaces.Identity

	// PrivateKey signs request bodies when the server requires signatures.
	// The key must correspond to Caller.
	PrivateKey *ecdsa.PrivateKey

	// HTTPClient overrides http.DefaultClient when set.
	HTTPClient *http.Client
}

// Register creates a new product and returns its id.
func (c *RegistryClient) Register(batchID, origin string, quality int, certifications []string) (interfaces.ProductID, error) {
	var resp api.RegisterResponse
	err := c.do(http.MethodPost, "/api/registry/products", api.RegisterRequest{
		BatchID:        batchID,
		Origin:         origin,
		Quality:        quality,
		Certifications: certifications,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// Update applies a partial update to a product.
func (c *RegistryClient) Update(id interfaces.ProductID, req api.UpdateRequest) error {
	return c.do(http.MethodPatch, fmt.Sprintf("/api/registry/products/%d", id), req, nil)
}

// TransferOwnership reassigns a product to a new owner.
func (c *RegistryClient) TransferOwnership(id interfaces.ProductID, newOwner interfaces.Identity) error {
	return c.do(http.MethodPost, fmt.Sprintf("/api/registry/products/%d/owner", id),
		api.TransferOwnershipRequest{NewOwner: newOwner.String()}, nil)
}

// Product fetches a product record.
func (c *RegistryClient) Product(id interfaces.ProductID) (*api.ProductResponse, error) {
	var resp api.ProductResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/registry/products/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProductOwner fetches the current owner of a product.
func (c *RegistryClient) ProductOwner(id interfaces.ProductID) (interfaces.Identity, error) {
	var resp api.OwnerResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/registry/products/%d/owner", id), nil, &resp); err != nil {
		return interfaces.Identity{}, err
	}
	return resp.Owner, nil
}

// UpdateHistory fetches a product's audit trail.
func (c *RegistryClient) UpdateHistory(id interfaces.ProductID) ([]interfaces.HistoryEntry, error) {
	var resp api.HistoryResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/registry/products/%d/history", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Status fetches the registry's scalar state.
func (c *RegistryClient) Status() (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.do(http.MethodGet, "/api/registry/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsRegistrar reports whether an identity has registration rights.
func (c *RegistryClient) IsRegistrar(id interfaces.Identity) (bool, error) {
	var resp api.RegistrarResponse
	if err := c.do(http.MethodGet, "/api/registry/registrars/"+id.String(), nil, &resp); err != nil {
		return false, err
	}
	return resp.Registrar, nil
}

// TransferAdmin replaces the registry admin.
func (c *RegistryClient) TransferAdmin(newAdmin interfaces.Identity) error {
	return c.do(http.MethodPost, "/api/admin/transfer", api.TransferAdminRequest{NewAdmin: newAdmin.String()}, nil)
}

// SetPaused flips the pause switch.
func (c *RegistryClient) SetPaused(paused bool) error {
	return c.do(http.MethodPost, "/api/admin/pause", api.SetPausedRequest{Paused: paused}, nil)
}

// AddRegistrar grants registration rights to an identity.
func (c *RegistryClient) AddRegistrar(registrar interfaces.Identity) error {
	return c.do(http.MethodPost, "/api/admin/registrars", api.AddRegistrarRequest{Registrar: registrar.String()}, nil)
}

// RemoveRegistrar revokes registration rights from an identity.
func (c *RegistryClient) RemoveRegistrar(registrar interfaces.Identity) error {
	return c.do(http.MethodDelete, "/api/admin/registrars/"+registrar.String(), nil, nil)
}

// Snapshot asks the server to persist a snapshot to its storage backend.
func (c *RegistryClient) Snapshot() (*api.SnapshotResponse, error) {
	var resp api.SnapshotResponse
	if err := c.do(http.MethodPost, "/api/admin/snapshot", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RegistryClient) do(method, path string, reqBody, out any) error {
	var body []byte
	if reqBody != nil {
		var err error
		body, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("could not encode request body: %w", err)
		}
	}

	req, err := http.NewRequest(method, c.ServerAddr+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.CallerHeader, c.Caller.String())
	if c.PrivateKey != nil {
		sig, err := crypto.Sign(crypto.Keccak256(body), c.PrivateKey)
		if err != nil {
			return fmt.Errorf("could not sign request body: %w", err)
		}
		req.Header.Set(api.SignatureHeader, hexutil.Encode(sig))
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach registry server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != "" {
			if typed := api.ErrorFromCode(apiErr.Code); typed != nil {
				return fmt.Errorf("%w: %s", typed, apiErr.Error)
			}
			return fmt.Errorf("registry server error %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("registry server error %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("could not decode response: %w", err)
		}
	}
	return nil
}
