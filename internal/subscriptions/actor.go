package subscriptions

import "github.com/google/uuid"

// Actor identifies who is performing a subscription operation. Owner
// actors may only touch their own subscriptions; privileged actors
// (back-office admins, webhook reconciliation) bypass ownership checks.
type Actor struct {
	userID     uuid.UUID
	privileged bool
}

// OwnerActor returns an actor scoped to the given user.
func OwnerActor(userID uuid.UUID) Actor {
	return Actor{userID: userID}
}

// PrivilegedActor returns an actor that bypasses ownership checks.
func PrivilegedActor() Actor {
	return Actor{privileged: true}
}

// IsPrivileged reports whether the actor bypasses ownership checks.
func (a Actor) IsPrivileged() bool {
	return a.privileged
}

// UserID returns the owning user, if any.
func (a Actor) UserID() (uuid.UUID, bool) {
	if a.privileged {
		return uuid.Nil, false
	}
	return a.userID, true
}

// CanAccess reports whether the actor may operate on a subscription
// owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	if a.privileged {
		return true
	}
	return a.userID == ownerID
}
