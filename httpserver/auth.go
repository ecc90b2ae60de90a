package httpserver

import (
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/markeluno8-dev/AuthentiEats/api"
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// callerIdentity extracts the authenticated caller from the request headers.
// The serving environment vouches for the caller header; in signed mode the
// caller must additionally prove control of the identity by signing the
// keccak-256 digest of the request body with the matching secp256k1 key.
func (h *Handler) callerIdentity(r *http.Request, body []byte) (interfaces.Identity, error) {
	callerHex := r.Header.Get(api.CallerHeader)
	if callerHex == "" {
		return interfaces.Identity{}, fmt.Errorf("missing %s header", api.CallerHeader)
	}
	caller, err := interfaces.NewIdentityFromHex(callerHex)
	if err != nil {
		return interfaces.Identity{}, err
	}

	if !h.requireSignatures {
		return caller, nil
	}

	sigHex := r.Header.Get(api.SignatureHeader)
	if sigHex == "" {
		return interfaces.Identity{}, fmt.Errorf("missing %s header", api.SignatureHeader)
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil || len(sig) != crypto.SignatureLength {
		return interfaces.Identity{}, fmt.Errorf("malformed signature")
	}

	pubkey, err := crypto.SigToPub(crypto.Keccak256(body), sig)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("could not recover signer: %w", err)
	}
	recovered := interfaces.Identity(crypto.PubkeyToAddress(*pubkey))
	if recovered != caller {
		return interfaces.Identity{}, fmt.Errorf("signature does not match caller %s", caller)
	}
	return caller, nil
}
