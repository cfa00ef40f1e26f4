// Package keyring reads and writes keys.json files.
//
// The file layout is
//
//	{"keys": [{"name": "...", "modulus": 0, "public": 0, "private": 0, "primeP": 0, "primeQ": 0}]}
//
// Names are unique within a keyring.
package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	rsablocks "github.com/BackendStack21/rsa-blocks-go"
	"github.com/BackendStack21/rsa-blocks-go/core"
	"github.com/BackendStack21/rsa-blocks-go/utils"
)

var (
	// ErrKeyNotFound indicates no key with the requested name.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDuplicateKey indicates two keys sharing a name.
	ErrDuplicateKey = errors.New("duplicate key name")

	// ErrEmptyName indicates a key without a name.
	ErrEmptyName = errors.New("key name is empty")
)

// Keyring is an ordered set of named keys.
type Keyring struct {
	Keys []rsablocks.KeyParams `json:"keys"`
}

// Load reads a keyring file. A missing or empty file yields an empty keyring.
func Load(path string) (*Keyring, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Keyring{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, utils.MaxKeyringSize+1))
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	if len(data) > utils.MaxKeyringSize {
		return nil, fmt.Errorf("keyring %s: %w", path, utils.ErrExceedsLimit)
	}
	return Parse(data)
}

// Parse decodes and validates keyring JSON.
func Parse(data []byte) (*Keyring, error) {
	kr := &Keyring{}
	if len(data) == 0 {
		return kr, nil
	}
	if err := json.Unmarshal(data, kr); err != nil {
		return nil, fmt.Errorf("parse keyring: %w", err)
	}
	if err := utils.CheckLength(len(kr.Keys), utils.MaxKeys); err != nil {
		return nil, fmt.Errorf("keyring has %d keys: %w", len(kr.Keys), err)
	}

	seen := make(map[string]bool, len(kr.Keys))
	for _, k := range kr.Keys {
		if k.Name == "" {
			return nil, ErrEmptyName
		}
		if seen[k.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, k.Name)
		}
		seen[k.Name] = true
		if err := core.ValidateParams(k); err != nil {
			return nil, fmt.Errorf("key %s: %w", k.Name, err)
		}
	}
	return kr, nil
}

// Find returns the key with the given name.
func (kr *Keyring) Find(name string) (rsablocks.KeyParams, error) {
	for _, k := range kr.Keys {
		if k.Name == name {
			return k, nil
		}
	}
	return rsablocks.KeyParams{}, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
}

// Names returns the key names in file order.
func (kr *Keyring) Names() []string {
	names := make([]string, len(kr.Keys))
	for i, k := range kr.Keys {
		names[i] = k.Name
	}
	return names
}

// Put validates key and stores it, replacing any key with the same name.
func (kr *Keyring) Put(key rsablocks.KeyParams) error {
	if key.Name == "" {
		return ErrEmptyName
	}
	if err := core.ValidateParams(key); err != nil {
		return fmt.Errorf("key %s: %w", key.Name, err)
	}
	for i, k := range kr.Keys {
		if k.Name == key.Name {
			kr.Keys[i] = key
			return nil
		}
	}
	if err := utils.CheckLength(len(kr.Keys)+1, utils.MaxKeys); err != nil {
		return err
	}
	kr.Keys = append(kr.Keys, key)
	return nil
}

// Remove deletes the named key.
func (kr *Keyring) Remove(name string) error {
	for i, k := range kr.Keys {
		if k.Name == name {
			kr.Keys = append(kr.Keys[:i], kr.Keys[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
}

// Save writes the keyring as indented JSON with owner-only permissions.
func (kr *Keyring) Save(path string) error {
	data, err := json.MarshalIndent(kr, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keyring: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create keyring: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	// Ensure permissions are enforced even if the file already existed
	return os.Chmod(path, 0600)
}
