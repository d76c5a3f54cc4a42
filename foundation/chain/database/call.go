package database

import (
	"encoding/json"
	"fmt"
)

// Set of methods the whitelist realm exposes to transactions.
const (
	MethodCreate = "create"
	MethodSignUp = "signup"
)

// RealmCall represents a call to the whitelist realm carried in the data
// field of a transaction whose to account is the realm account.
type RealmCall struct {
	Method      string `json:"method"`
	Name        string `json:"name,omitempty"`         // create: display label for the new whitelist.
	Deadline    uint64 `json:"deadline,omitempty"`     // create: block height after which signups are rejected.
	Capacity    int    `json:"capacity,omitempty"`     // create: maximum roster size.
	WhitelistID uint64 `json:"whitelist_id,omitempty"` // signup: id of the whitelist to sign up to.
}

// NewCreateCall encodes a create whitelist call for a transaction's
// data field.
func NewCreateCall(name string, deadline uint64, capacity int) ([]byte, error) {
	call := RealmCall{
		Method:   MethodCreate,
		Name:     name,
		Deadline: deadline,
		Capacity: capacity,
	}

	return json.Marshal(call)
}

// NewSignUpCall encodes a signup call for a transaction's data field.
func NewSignUpCall(whitelistID uint64) ([]byte, error) {
	call := RealmCall{
		Method:      MethodSignUp,
		WhitelistID: whitelistID,
	}

	return json.Marshal(call)
}

// ToRealmCall decodes the data field of a realm transaction and validates
// the method is known.
func ToRealmCall(data []byte) (RealmCall, error) {
	var call RealmCall
	if err := json.Unmarshal(data, &call); err != nil {
		return RealmCall{}, fmt.Errorf("unable to decode realm call: %w", err)
	}

	switch call.Method {
	case MethodCreate, MethodSignUp:
		return call, nil
	}

	return RealmCall{}, fmt.Errorf("unknown realm method %q", call.Method)
}
