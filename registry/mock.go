package registry

import (
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockRegistry mocks the interfaces.ProductRegistry interface.
type MockRegistry struct {
	mock.Mock
}

// TransferAdmin mocks the TransferAdmin method.
func (m *MockRegistry) TransferAdmin(caller, newAdmin interfaces.Identity) error {
	args := m.Called(caller, newAdmin)
	return args.Error(0)
}

// SetPaused mocks the SetPaused method.
func (m *MockRegistry) SetPaused(caller interfaces.Identity, paused bool) error {
	args := m.Called(caller, paused)
	return args.Error(0)
}

// AddRegistrar mocks the AddRegistrar method.
func (m *MockRegistry) AddRegistrar(caller, registrar interfaces.Identity) error {
	args := m.Called(caller, registrar)
	return args.Error(0)
}

// RemoveRegistrar mocks the RemoveRegistrar method.
func (m *MockRegistry) RemoveRegistrar(caller, registrar interfaces.Identity) error {
	args := m.Called(caller, registrar)
	return args.Error(0)
}

// Register mocks the Register method.
func (m *MockRegistry) Register(caller interfaces.Identity, batchID, origin string, quality int, certifications []string) (interfaces.ProductID, error) {
	args := m.Called(caller, batchID, origin, quality, certifications)
	return args.Get(0).(interfaces.ProductID), args.Error(1)
}

// Update mocks the Update method.
func (m *MockRegistry) Update(caller interfaces.Identity, id interfaces.ProductID, patch interfaces.UpdatePatch) error {
	args := m.Called(caller, id, patch)
	return args.Error(0)
}

// TransferOwnership mocks the TransferOwnership method.
func (m *MockRegistry) TransferOwnership(caller interfaces.Identity, id interfaces.ProductID, newOwner interfaces.Identity) error {
	args := m.Called(caller, id, newOwner)
	return args.Error(0)
}

// Product mocks the Product method.
func (m *MockRegistry) Product(id interfaces.ProductID) (interfaces.Product, error) {
	args := m.Called(id)
	return args.Get(0).(interfaces.Product), args.Error(1)
}

// ProductOwner mocks the ProductOwner method.
func (m *MockRegistry) ProductOwner(id interfaces.ProductID) (interfaces.Identity, error) {
	args := m.Called(id)
	return args.Get(0).(interfaces.Identity), args.Error(1)
}

// UpdateHistory mocks the UpdateHistory method.
func (m *MockRegistry) UpdateHistory(id interfaces.ProductID) ([]interfaces.HistoryEntry, error) {
	args := m.Called(id)
	return args.Get(0).([]interfaces.HistoryEntry), args.Error(1)
}

// NextID mocks the NextID method.
func (m *MockRegistry) NextID() interfaces.ProductID {
	args := m.Called()
	return args.Get(0).(interfaces.ProductID)
}

// Admin mocks the Admin method.
func (m *MockRegistry) Admin() interfaces.Identity {
	args := m.Called()
	return args.Get(0).(interfaces.Identity)
}

// IsPaused mocks the IsPaused method.
func (m *MockRegistry) IsPaused() bool {
	args := m.Called()
	return args.Bool(0)
}

// IsRegistrar mocks the IsRegistrar method.
func (m *MockRegistry) IsRegistrar(id interfaces.Identity) bool {
	args := m.Called(id)
	return args.Bool(0)
}
