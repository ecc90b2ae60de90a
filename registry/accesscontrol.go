package registry

import (
	"bytes"
	"sort"

	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// AccessControl holds the admin identity, the registrar set, and the pause
// switch, and answers the authorization predicates the orchestrator composes.
// It does no locking of its own; the Registry serializes access.
type AccessControl struct {
	admin      interfaces.Identity
	paused     bool
	registrars map[interfaces.Identity]struct{}
}

// NewAccessControl creates an AccessControl with the given admin and an empty
// registrar set. The admin must not be the zero address.
func NewAccessControl(admin interfaces.Identity) (*AccessControl, error) {
	if admin.IsZero() {
		return nil, interfaces.ErrZeroAddress
	}
	return &AccessControl{
		admin:      admin,
		registrars: make(map[interfaces.Identity]struct{}),
	}, nil
}

// Admin returns the current admin identity.
func (a *AccessControl) Admin() interfaces.Identity {
	return a.admin
}

// IsAdmin reports whether the caller is the admin.
func (a *AccessControl) IsAdmin(caller interfaces.Identity) bool {
	return caller == a.admin
}

// IsRegistrar reports whether the caller may register products. The admin is
// implicitly a registrar.
func (a *AccessControl) IsRegistrar(caller interfaces.Identity) bool {
	if a.IsAdmin(caller) {
		return true
	}
	_, ok := a.registrars[caller]
	return ok
}

// Paused reports the pause switch.
func (a *AccessControl) Paused() bool {
	return a.paused
}

// SetPaused sets the pause switch. Admin only.
func (a *AccessControl) SetPaused(caller interfaces.Identity, paused bool) error {
	if !a.IsAdmin(caller) {
		return interfaces.ErrNotAuthorized
	}
	a.paused = paused
	return nil
}

// AddRegistrar grants registration rights to target. Admin only; the zero
// address is rejected.
func (a *AccessControl) AddRegistrar(caller, target interfaces.Identity) error {
	if !a.IsAdmin(caller) {
		return interfaces.ErrNotAuthorized
	}
	if target.IsZero() {
		return interfaces.ErrZeroAddress
	}
	a.registrars[target] = struct{}{}
	return nil
}

// RemoveRegistrar revokes registration rights from target. Admin only.
// Removing a non-member succeeds silently.
func (a *AccessControl) RemoveRegistrar(caller, target interfaces.Identity) error {
	if !a.IsAdmin(caller) {
		return interfaces.ErrNotAuthorized
	}
	delete(a.registrars, target)
	return nil
}

// TransferAdmin replaces the admin. Admin only; the zero address is rejected.
func (a *AccessControl) TransferAdmin(caller, newAdmin interfaces.Identity) error {
	if !a.IsAdmin(caller) {
		return interfaces.ErrNotAuthorized
	}
	if newAdmin.IsZero() {
		return interfaces.ErrZeroAddress
	}
	a.admin = newAdmin
	return nil
}

// Registrars returns the registrar set in a stable byte order, for snapshots.
func (a *AccessControl) Registrars() []interfaces.Identity {
	out := make([]interfaces.Identity, 0, len(a.registrars))
	for id := range a.registrars {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// restore replaces the full access-control state from a snapshot.
func (a *AccessControl) restore(admin interfaces.Identity, paused bool, registrars []interfaces.Identity) {
	a.admin = admin
	a.paused = paused
	a.registrars = make(map[interfaces.Identity]struct{}, len(registrars))
	for _, id := range registrars {
		a.registrars[id] = struct{}{}
	}
}
