package identity

// UserDetail is a saved shipping/billing identity of a user
type UserDetail struct {
	ID                     string `json:"_id,omitempty"`
	UserID                 string `json:"userID,omitempty"`
	FirstName              string `json:"firstName" validate:"required,max=100"`
	LastName               string `json:"lastName" validate:"required,max=100"`
	IdentityDocumentNumber string `json:"identityDocumentNumber" validate:"required,max=30"`
	IdentityDocumentType   string `json:"identityDocumentType" validate:"required,max=30"`
	Address                string `json:"address" validate:"required,max=255"`
	PostalCode             string `json:"postalCode" validate:"required,max=20"`
	City                   string `json:"city" validate:"required,max=100"`
	Province               string `json:"province" validate:"required,max=100"`
	Phone                  string `json:"phone" validate:"required,max=30"`
}

// FullName joins first and last name
func (d UserDetail) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	default:
		return d.FirstName + " " + d.LastName
	}
}
