package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domain "mongo-user-service/internal/domain/user"
)

// buildFilter translates the optional listing constraints into a query
// document. Absent fields contribute nothing; an all-absent filter yields
// the empty document, which matches everything.
func buildFilter(f domain.Filter) bson.M {
	filter := bson.M{}

	if f.Query != "" {
		// QuoteMeta keeps the match a literal substring test rather than
		// letting callers smuggle in regex syntax.
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
	}

	switch {
	case f.MinAge != nil && f.MaxAge != nil:
		filter["age"] = bson.M{"$gte": *f.MinAge, "$lte": *f.MaxAge}
	case f.MinAge != nil:
		filter["age"] = bson.M{"$gte": *f.MinAge}
	case f.MaxAge != nil:
		filter["age"] = bson.M{"$lte": *f.MaxAge}
	}

	if f.IsActive != nil {
		filter["is_active"] = *f.IsActive
	}

	return filter
}

// setDocument collects the non-nil patch fields into a $set payload.
func setDocument(p domain.Patch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Age != nil {
		set["age"] = *p.Age
	}
	if p.IsActive != nil {
		set["is_active"] = *p.IsActive
	}
	return set
}
