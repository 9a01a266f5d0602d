package domain

// Capability is a single named bit in an identity's grant mask. A user's mask
// is the union of zero or more capability bits.
type Capability int

const (
	// CapAdmin allows user directory administration.
	CapAdmin Capability = 1 << iota
	// CapSignIn allows authenticating at all.
	CapSignIn
	// CapInventory allows coupon provisioning and CRUD.
	CapInventory
	// CapClaim allows claiming coupons.
	CapClaim
)

// Has reports whether the mask contains the required bit. Pure membership
// test; callers reject the enclosing operation when it returns false.
func (c Capability) Has(required Capability) bool {
	return c&required != 0
}

// MergeCapabilities unions capability bits into one mask.
func MergeCapabilities(caps ...Capability) Capability {
	var m Capability
	for _, c := range caps {
		m |= c
	}
	return m
}

// CapabilityInfo names a bit for the admin surface.
type CapabilityInfo struct {
	Name string     `json:"name"`
	Bit  Capability `json:"bit"`
}

// AllCapabilities lists the static capability catalog in bit order.
func AllCapabilities() []CapabilityInfo {
	return []CapabilityInfo{
		{Name: "administration", Bit: CapAdmin},
		{Name: "sign-in", Bit: CapSignIn},
		{Name: "inventory management", Bit: CapInventory},
		{Name: "coupon claim", Bit: CapClaim},
	}
}
