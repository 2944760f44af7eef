package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ScopeKind selects the targeting rule of a published event.
type ScopeKind int

const (
	// ScopeKindAll delivers to every registered connection.
	ScopeKindAll ScopeKind = iota
	// ScopeKindUser delivers to every connection owned by one user.
	ScopeKindUser
	// ScopeKindChannel delivers to every connection subscribed to one channel.
	ScopeKindChannel
)

// Scope is the delivery scope attached to a published event. It determines
// who receives the event and is never part of the wire payload.
type Scope struct {
	kind    ScopeKind
	userID  uuid.UUID
	channel string
}

// ScopeAll targets every connected client.
func ScopeAll() Scope {
	return Scope{kind: ScopeKindAll}
}

// ScopeUser targets all connections of a single user (multi-device).
func ScopeUser(userID uuid.UUID) Scope {
	return Scope{kind: ScopeKindUser, userID: userID}
}

// ScopeChannel targets all connections subscribed to the named channel.
func ScopeChannel(channel string) Scope {
	return Scope{kind: ScopeKindChannel, channel: channel}
}

func (s Scope) Kind() ScopeKind    { return s.kind }
func (s Scope) UserID() uuid.UUID  { return s.userID }
func (s Scope) Channel() string    { return s.channel }

func (s Scope) String() string {
	switch s.kind {
	case ScopeKindUser:
		return "user:" + s.userID.String()
	case ScopeKindChannel:
		return "channel:" + s.channel
	default:
		return "all"
	}
}

// Publisher is the producer interface domain services call after committing
// their own state changes. Publish never fails the caller: delivery problems
// are handled entirely inside the hub.
type Publisher interface {
	Publish(event Event, scope Scope)
}

var _ fmt.Stringer = Scope{}
