package storefakes

import (
	"sync"

	"github.com/cloudopshq/cloudops-go/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credentials.Store for tests and for runs that
// should not persist tokens to disk.
type FakeStore struct {
	access  string
	refresh string
	lock    sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Set(access, refresh string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.access = access
	fs.refresh = refresh
	return nil
}

func (fs *FakeStore) Access() string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.access
}

func (fs *FakeStore) Refresh() string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.refresh
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.access = ""
	fs.refresh = ""
	return nil
}
