package whitelist

import (
	"fmt"
	"strconv"
	"strings"
)

// Registry maintains the set of whitelists keyed by a dense, zero based,
// sequential identifier. Records are only ever inserted, never re-keyed
// or removed, so the identifier assigned to a new whitelist always equals
// the number of whitelists created before it.
//
// The registry is deterministic on purpose. The chain rebuilds it by
// replaying blocks at startup, so the same sequence of calls with the
// same heights must always produce the same state. Synchronization is
// the owner's concern.
type Registry struct {
	whitelists map[string]Record
	nextID     uint64
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		whitelists: make(map[string]Record),
	}
}

// Count returns the number of whitelists in the registry.
func (reg *Registry) Count() int {
	return len(reg.whitelists)
}

// Get returns a copy of the whitelist stored under the specified id.
func (reg *Registry) Get(id uint64) (Record, error) {
	rec, exists := reg.whitelists[key(id)]
	if !exists {
		return Record{}, fmt.Errorf("whitelist %d: %w", id, ErrNotFound)
	}

	return rec, nil
}

// Create constructs a new whitelist owned by the caller and inserts it
// under the next sequential id. The deadline must be strictly past the
// specified height. On failure nothing is inserted.
func (reg *Registry) Create(caller Address, name string, deadline uint64, capacity int, height uint64) (uint64, string, error) {
	if deadline <= height {
		return 0, "", fmt.Errorf("deadline %d, current height %d: %w", deadline, height, ErrInvalidDeadline)
	}

	rec, err := New(name, deadline, capacity, caller)
	if err != nil {
		return 0, "", err
	}

	id := reg.nextID
	reg.whitelists[key(id)] = rec
	reg.nextID++

	return id, fmt.Sprintf("whitelist %q created with id %d", name, id), nil
}

// SignUp adds the caller to the roster of the whitelist stored under the
// specified id. The record enforces the roster invariants; on any failure
// the registry is unchanged.
func (reg *Registry) SignUp(caller Address, id uint64, height uint64) (string, error) {
	rec, exists := reg.whitelists[key(id)]
	if !exists {
		return "", fmt.Errorf("whitelist %d: %w", id, ErrNotFound)
	}

	if err := rec.AddSigner(caller, height); err != nil {
		return "", fmt.Errorf("whitelist %d: %w", id, err)
	}

	// The record is stored by value so the mutation has to be written
	// back under the same key.
	reg.whitelists[key(id)] = rec

	return fmt.Sprintf("signed up to whitelist %q", rec.Name()), nil
}

// Render produces a markdown report of the registry at the specified
// height. An empty path yields the full listing. Any other path yields
// an unknown page notice.
func (reg *Registry) Render(path string, height uint64) string {
	if path != "" {
		return fmt.Sprintf("unknown page %q", path)
	}

	var sb strings.Builder
	sb.WriteString("# Whitelists\n\n")

	if len(reg.whitelists) == 0 {
		sb.WriteString("no whitelists\n")
		return sb.String()
	}

	// Keys are dense and sequential, so walking 0..nextID covers every
	// record in ascending key order.
	for id := uint64(0); id < reg.nextID; id++ {
		rec := reg.whitelists[key(id)]

		status := "closed"
		if rec.Open(height) {
			status = "open"
		}

		sb.WriteString(fmt.Sprintf("## %d - %q (%s)\n", id, rec.Name(), status))
		sb.WriteString(fmt.Sprintf("capacity: %d/%d\n", len(rec.roster), rec.Capacity()))
		sb.WriteString(fmt.Sprintf("deadline: block %d\n", rec.Deadline()))

		for i, signer := range rec.roster {
			sb.WriteString(fmt.Sprintf("- %d: %s\n", i, signer))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// key converts a whitelist id to its decimal string form used by the
// underlying store.
func key(id uint64) string {
	return strconv.FormatUint(id, 10)
}
