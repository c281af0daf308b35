package products

import "go.mongodb.org/mongo-driver/bson/primitive"

// ValidID reports whether id is exactly 24 hex characters, in either case.
func ValidID(id string) bool {
	if len(id) != 24 {
		return false
	}
	return primitive.IsValidObjectID(id)
}

// CanonicalID returns the lowercase form engines store, or false when id is not valid.
func CanonicalID(id string) (string, bool) {
	if len(id) != 24 {
		return "", false
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

// NewID returns a fresh 24-hex identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
