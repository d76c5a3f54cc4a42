// Package whitelist implements the whitelist realm: records that accounts
// can sign up to before a deadline, and the registry that owns them.
package whitelist

import (
	"errors"
	"fmt"
)

// Set of errors returned by record and registry operations. Callers branch
// on these to classify a rejected request.
var (
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	ErrInvalidDeadline = errors.New("deadline must be in the future")
	ErrNotFound        = errors.New("whitelist does not exist")
	ErrAlreadySigned   = errors.New("already signed up")
	ErrClosed          = errors.New("whitelist is closed")
	ErrFull            = errors.New("whitelist is full")
)

// Address represents the canonical string form of an account identity.
type Address string

// Record represents a single whitelist. The name, owner, deadline and
// capacity are set at construction and never change. Only the roster
// mutates, and only through AddSigner.
type Record struct {
	name     string
	owner    Address
	deadline uint64
	capacity int
	roster   []Address
}

// New constructs a whitelist record with an empty roster. The capacity
// invariant is enforced here so no caller can construct a record that is
// impossible to sign up to.
func New(name string, deadline uint64, capacity int, owner Address) (Record, error) {
	if capacity < 1 {
		return Record{}, ErrInvalidCapacity
	}

	rec := Record{
		name:     name,
		owner:    owner,
		deadline: deadline,
		capacity: capacity,
	}

	return rec, nil
}

// Name returns the display label of the whitelist.
func (r Record) Name() string {
	return r.name
}

// Owner returns the identity of the account that created the whitelist.
func (r Record) Owner() Address {
	return r.owner
}

// Deadline returns the block height after which signups are rejected.
func (r Record) Deadline() uint64 {
	return r.deadline
}

// Capacity returns the maximum roster size.
func (r Record) Capacity() int {
	return r.capacity
}

// Roster returns a copy of the signers in signup order.
func (r Record) Roster() []Address {
	roster := make([]Address, len(r.roster))
	copy(roster, r.roster)
	return roster
}

// HasSigner returns true if the specified identity is on the roster.
func (r Record) HasSigner(id Address) bool {
	for _, signer := range r.roster {
		if signer == id {
			return true
		}
	}
	return false
}

// OwnedBy returns true if the specified identity created the whitelist.
func (r Record) OwnedBy(id Address) bool {
	return r.owner == id
}

// Open returns true if the whitelist still accepts signups at the
// specified block height.
func (r Record) Open(height uint64) bool {
	return height < r.deadline
}

// AddSigner appends the specified identity to the roster. All roster
// invariants are enforced here, not by the caller: no duplicate signers,
// no signups at or past the deadline, and the roster never grows beyond
// capacity. On failure the roster is unchanged.
func (r *Record) AddSigner(id Address, height uint64) error {
	if r.HasSigner(id) {
		return ErrAlreadySigned
	}

	if !r.Open(height) {
		return ErrClosed
	}

	if len(r.roster) >= r.capacity {
		return ErrFull
	}

	r.roster = append(r.roster, id)

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (r Record) String() string {
	return fmt.Sprintf("%s[%d/%d]", r.name, len(r.roster), r.capacity)
}
