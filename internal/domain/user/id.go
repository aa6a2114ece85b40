package user

import "go.mongodb.org/mongo-driver/v2/bson"

// IDLength is the length of a rendered store identifier.
const IDLength = 24

// NewID returns a fresh store identifier rendered as 24 lowercase hex characters.
// Every store backend uses the same format so tokens stay portable between them.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed store identifier. Only the
// lowercase rendering produced by NewID is accepted.
func IsValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
