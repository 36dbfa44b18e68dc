package auth

// OwnerPolicy is the single-owner authorization rule, injected at router
// construction instead of read from ambient state. Every data operation is
// owner-only; the policy decides whether a verified uid is the owner.
type OwnerPolicy struct {
	UID string
}

// Configured reports whether an owner identity has been provisioned.
func (p OwnerPolicy) Configured() bool { return p.UID != "" }

// IsOwner reports whether uid is the configured owner.
func (p OwnerPolicy) IsOwner(uid string) bool {
	return p.Configured() && uid == p.UID
}
