package visibility

import (
	sq "github.com/Masterminds/squirrel"
)

// Caller identifies who is asking. The identity is resolved upstream (token
// middleware); this package only cares whether a user id is present.
type Caller struct {
	UserID    uint
	Anonymous bool
}

// AnonymousCaller returns the identity of an unauthenticated request.
func AnonymousCaller() Caller {
	return Caller{Anonymous: true}
}

// AuthenticatedCaller returns the identity of a signed-in user.
func AuthenticatedCaller(userID uint) Caller {
	return Caller{UserID: userID}
}

// Policy decides which entries a caller may read. The predicate is returned
// as a squirrel Sqlizer so it composes into both plain where-clauses and the
// timeline's grouped-count query without materializing rows first.
type Policy interface {
	// ReadablePredicate restricts rows of the entries table to those the
	// caller may read.
	ReadablePredicate(caller Caller) sq.Sqlizer

	// Readable is the in-memory form of ReadablePredicate, for decisions
	// about an entry (or an event describing one) already in hand. The two
	// must agree: anything the predicate would return, Readable accepts.
	Readable(caller Caller, ownerID uint, level Level) bool
}

// DefaultPolicy implements the four-level scale as currently defined:
//   - owners always read their own entries, whatever the level
//   - authenticated callers read entries at authenticated or above
//   - anonymous callers read public entries only
//
// The shared level deliberately grants nothing beyond private to non-owners
// until a group-membership model exists; access is never broadened ahead of
// the levels that back it.
type DefaultPolicy struct{}

func NewDefaultPolicy() DefaultPolicy {
	return DefaultPolicy{}
}

func (DefaultPolicy) ReadablePredicate(caller Caller) sq.Sqlizer {
	if caller.Anonymous {
		return sq.Eq{"visibility": int(LevelPublic)}
	}
	return sq.Or{
		sq.Eq{"owner_id": caller.UserID},
		sq.GtOrEq{"visibility": int(LevelAuthenticated)},
	}
}

func (DefaultPolicy) Readable(caller Caller, ownerID uint, level Level) bool {
	if caller.Anonymous {
		return level == LevelPublic
	}
	return caller.UserID == ownerID || level >= LevelAuthenticated
}
