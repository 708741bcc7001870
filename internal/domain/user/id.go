package user

import "go.mongodb.org/mongo-driver/bson/primitive"

// ParseID validates that s is a well-formed object id (24 hex characters
// encoding a 12-byte value) and returns it unchanged. It keeps the
// storage encoding details out of the service logic: callers only learn
// whether an identifier can possibly address a stored record.
func ParseID(s string) (string, error) {
	if _, err := primitive.ObjectIDFromHex(s); err != nil {
		return "", err
	}
	return s, nil
}
