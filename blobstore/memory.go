package blobstore

import (
	"fmt"
	"sync"

	"github.com/archlinux/archwiki-sub029/wiki"

	"github.com/google/btree"
	"github.com/rs/zerolog"
)

// MemoryStore keeps blobs in an ordered in-memory tree. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	tree   *btree.BTree
	logger zerolog.Logger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{tree: btree.New(2), logger: logger}
}

// StoreBlob stores a copy of data and returns its address.
func (s *MemoryStore) StoreBlob(data []byte) (address string, err error) {
	address = Address(data)
	node := blobTreeNode{Address: address, Data: append([]byte(nil), data...)}

	s.mu.Lock()
	s.tree.ReplaceOrInsert(node)
	s.mu.Unlock()

	s.logger.Debug().Str("address", address).Int("bytes", len(data)).Msg("Stored blob in memory")
	return
}

// GetBlob returns a copy of the blob stored at address.
func (s *MemoryStore) GetBlob(address string) (data []byte, err error) {
	if err = ValidateAddress(address); err != nil {
		return
	}

	s.mu.RLock()
	found := s.tree.Get(blobTreeNode{Address: address})
	s.mu.RUnlock()

	if found == nil {
		err = fmt.Errorf("%w: %s", wiki.ErrBlobNotFound, address)
		return
	}

	data = append([]byte(nil), found.(blobTreeNode).Data...)
	return
}

// Addresses lists the stored addresses in ascending order.
func (s *MemoryStore) Addresses() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, s.tree.Len())
	s.tree.Ascend(func(item btree.Item) bool {
		out = append(out, item.(blobTreeNode).Address)
		return true
	})
	return out, nil
}

// Close does nothing. The blobs go away with the store.
func (s *MemoryStore) Close() error {
	return nil
}

type blobTreeNode struct {
	Address string
	Data    []byte
}

func (node blobTreeNode) Less(other btree.Item) bool {
	return node.Address < other.(blobTreeNode).Address
}
