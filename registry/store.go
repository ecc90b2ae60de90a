package registry

import (
	"github.com/markeluno8-dev/AuthentiEats/interfaces"
)

// RecordStore holds the id counter and the id-to-product mapping. Allocation
// is dense: ids start at 1, increase by one per registration, and are never
// reused. Records are never deleted.
type RecordStore struct {
	nextID  interfaces.ProductID
	records map[interfaces.ProductID]interfaces.Product
}

// NewRecordStore creates an empty store with the counter at 1.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		nextID:  1,
		records: make(map[interfaces.ProductID]interfaces.Product),
	}
}

// NextID returns the id the next allocation will use.
func (s *RecordStore) NextID() interfaces.ProductID {
	return s.nextID
}

// Allocate stores the product under a fresh id and returns it.
func (s *RecordStore) Allocate(p interfaces.Product) interfaces.ProductID {
	id := s.nextID
	s.nextID++
	s.records[id] = p.Clone()
	return id
}

// Get returns a copy of the record, and whether it exists.
func (s *RecordStore) Get(id interfaces.ProductID) (interfaces.Product, bool) {
	p, ok := s.records[id]
	if !ok {
		return interfaces.Product{}, false
	}
	return p.Clone(), true
}

// Exists reports whether a record with the id exists.
func (s *RecordStore) Exists(id interfaces.ProductID) bool {
	_, ok := s.records[id]
	return ok
}

// Put overwrites an existing record. The caller must have validated the new
// value; Put is the commit step of an update.
func (s *RecordStore) Put(id interfaces.ProductID, p interfaces.Product) {
	s.records[id] = p.Clone()
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	return len(s.records)
}

// export copies the full record table for a snapshot.
func (s *RecordStore) export() map[interfaces.ProductID]interfaces.Product {
	out := make(map[interfaces.ProductID]interfaces.Product, len(s.records))
	for id, p := range s.records {
		out[id] = p.Clone()
	}
	return out
}

// restore replaces the store contents from a snapshot.
func (s *RecordStore) restore(nextID interfaces.ProductID, records map[interfaces.ProductID]interfaces.Product) {
	s.nextID = nextID
	s.records = make(map[interfaces.ProductID]interfaces.Product, len(records))
	for id, p := range records {
		s.records[id] = p.Clone()
	}
}
