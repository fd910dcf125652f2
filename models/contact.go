package models

// Contact type constants shared by clients, opponents and third parties
const (
	ContactTypePerson  = "PERSON"
	ContactTypeCompany = "COMPANY"
	ContactTypeInsurer = "INSURER"
)

// IsValidContactType checks if the contact type is valid
func IsValidContactType(contactType string) bool {
	switch contactType {
	case ContactTypePerson, ContactTypeCompany, ContactTypeInsurer:
		return true
	}
	return false
}
