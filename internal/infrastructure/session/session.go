// Package session keeps per-visitor state on the server side: the current
// descriptor table, pending flash messages and the CSRF token of the upload
// form.  The browser only holds an opaque identifier.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/pkg/errors"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrNotFound is returned by Load for unknown or expired sessions.
var ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")

// Data is everything stored for one session.
type Data struct {
	Table molecule.Table `msgpack:"table,omitempty"`
	// Generation identifies the upload that produced Table.  Pages built
	// from a table carry it so later requests can tell a replaced table.
	Generation string   `msgpack:"gen,omitempty"`
	Flashes    []string `msgpack:"flashes,omitempty"`
	CSRFToken  string   `msgpack:"csrf,omitempty"`
}

// HasTable reports whether a successful upload is stored.
func (d *Data) HasTable() bool { return d != nil && d.Table != nil }

// SetTable stores a freshly ingested table under a new generation and
// returns that generation.
func (d *Data) SetTable(t molecule.Table) string {
	d.Table = t
	d.Generation = uuid.NewString()
	return d.Generation
}

// IsCurrent reports whether generation names the stored table.  An empty
// generation always refers to the current table.
func (d *Data) IsCurrent(generation string) bool {
	return generation == "" || generation == d.Generation
}

// AddFlash queues a message for the next rendered page.
func (d *Data) AddFlash(msg string) { d.Flashes = append(d.Flashes, msg) }

// PopFlashes returns and clears the queued messages.
func (d *Data) PopFlashes() []string {
	out := d.Flashes
	d.Flashes = nil
	return out
}

// EnsureCSRFToken returns the session's form token, creating it on first use.
func (d *Data) EnsureCSRFToken() (string, error) {
	if d.CSRFToken != "" {
		return d.CSRFToken, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "generate csrf token")
	}
	d.CSRFToken = base64.RawURLEncoding.EncodeToString(buf)
	return d.CSRFToken, nil
}

// Store persists session Data by identifier.  Every successful Load or Save
// restarts the session's time to live.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Backend() string
}

// NewID returns a fresh random session identifier.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id has the shape NewID produces.  Cookies carrying
// anything else are ignored.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func encode(d *Data) ([]byte, error) {
	b, err := msgpack.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode session")
	}
	return b, nil
}

func decode(b []byte) (*Data, error) {
	var d Data
	if err := msgpack.Unmarshal(b, &d); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSessionCorrupted, "decode session")
	}
	return &d, nil
}
