package domain

// CouponType is one claimable category. The catalog is static; changing it is
// a deploy, not an API call.
type CouponType struct {
	Type int    `json:"type"`
	Name string `json:"name"`
}

const (
	TypeFitness = iota + 1
	TypeDining
	TypeRide
)

// AllCouponTypes returns the catalog in display order.
func AllCouponTypes() []CouponType {
	return []CouponType{
		{Type: TypeFitness, Name: "Fitness pass"},
		{Type: TypeDining, Name: "Dining voucher"},
		{Type: TypeRide, Name: "Ride credit"},
	}
}

func TypeName(t int) string {
	for _, ct := range AllCouponTypes() {
		if ct.Type == t {
			return ct.Name
		}
	}
	return "unknown"
}

func ValidCouponType(t int) bool {
	for _, ct := range AllCouponTypes() {
		if ct.Type == t {
			return true
		}
	}
	return false
}
