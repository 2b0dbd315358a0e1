package domain

// Tag is a key or key/value annotation on a transaction.
// A simple tag (`:Payment:` in the source text) has an empty value.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// SimpleTag creates a tag with only a key.
func SimpleTag(key string) Tag {
	return Tag{Key: key}
}

// KeyValueTag creates a key-value tag.
func KeyValueTag(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// IsSimple reports whether the tag carries no value.
func (t Tag) IsSimple() bool {
	return t.Value == ""
}
