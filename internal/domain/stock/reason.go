package stock

// WriteOffReason classifies a recorded stock loss. The reason is embedded in
// the movement's note for audit.
type WriteOffReason string

const (
	// ReasonExpired marks stock past its expiry date
	ReasonExpired WriteOffReason = "EXPIRED"
	// ReasonDamaged marks physically damaged goods
	ReasonDamaged WriteOffReason = "DAMAGED"
	// ReasonSpoilage marks goods spoiled before expiry
	ReasonSpoilage WriteOffReason = "SPOILAGE"
	// ReasonCustomerRejection marks goods rejected on delivery
	ReasonCustomerRejection WriteOffReason = "CUSTOMER_REJECTION"
	// ReasonOther marks any other loss
	ReasonOther WriteOffReason = "OTHER"
)

// String returns the string representation of WriteOffReason
func (r WriteOffReason) String() string {
	return string(r)
}

// IsValid returns true if the reason is valid
func (r WriteOffReason) IsValid() bool {
	switch r {
	case ReasonExpired, ReasonDamaged, ReasonSpoilage, ReasonCustomerRejection, ReasonOther:
		return true
	}
	return false
}
