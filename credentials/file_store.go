package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*FileStore)(nil)

const credentialsFileMode = 0o600

// storedCredentials is the on-disk shape of the token pair.
type storedCredentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// FileStore persists the token pair in a JSON file. Reads always go back to
// disk so a read observes the latest committed write, including writes made
// by another process sharing the same file.
type FileStore struct {
	path string
	lock sync.Mutex
}

// NewFileStore creates a FileStore backed by the given file path. The file
// and its parent directory are created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}
	return &FileStore{path: path}, nil
}

// DefaultPath returns the conventional credentials file location under the
// user's configuration directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "[DefaultPath] os.UserConfigDir")
	}
	return filepath.Join(configDir, "cloudops", "credentials.json"), nil
}

func (fs *FileStore) Set(access, refresh string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := json.Marshal(storedCredentials{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return errors.Wrap(err, "[FileStore.Set] json.Marshal")
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStore.Set] os.MkdirAll")
	}
	if err := os.WriteFile(fs.path, data, credentialsFileMode); err != nil {
		return errors.Wrap(err, "[FileStore.Set] os.WriteFile")
	}
	return nil
}

func (fs *FileStore) Access() string {
	return fs.read().AccessToken
}

func (fs *FileStore) Refresh() string {
	return fs.read().RefreshToken
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] os.Remove")
	}
	return nil
}

// read loads the file, treating any failure (missing, unreadable, corrupt)
// as an absent token pair.
func (fs *FileStore) read() storedCredentials {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		return storedCredentials{}
	}
	var creds storedCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return storedCredentials{}
	}
	return creds
}
