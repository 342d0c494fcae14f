package domain

// MetadataFilter is the structured predicate passed to the vector search
// service, in its native $eq/$in/$and form.
type MetadataFilter = map[string]any

// BuildMetadataFilter builds a filter restricting search results to one
// member's messages: an equality clause on the normalized name plus a
// membership clause per name token. Returns nil when there is nothing to
// filter on; a single clause is returned unwrapped.
func BuildMetadataFilter(targetName string) MetadataFilter {
	if targetName == "" {
		return nil
	}

	normalized := NormalizeName(targetName)
	tokens := TokenizeName(normalized)

	clauses := make([]MetadataFilter, 0, len(tokens)+1)
	if normalized != "" {
		clauses = append(clauses, MetadataFilter{
			"user_name_normalized": map[string]any{"$eq": normalized},
		})
	}
	for _, token := range tokens {
		clauses = append(clauses, MetadataFilter{
			"user_name_tokens": map[string]any{"$in": []string{token}},
		})
	}

	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return MetadataFilter{"$and": clauses}
	}
}
