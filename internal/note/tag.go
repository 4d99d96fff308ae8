package note

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyTagValue reports a tag token that normalizes to an empty value.
// Tags must always carry a non-empty value.
var ErrEmptyTagValue = errors.New("tag value is empty")

// Tag is a typed tag: a (type, value) pair from the shared, deduplicated
// vocabulary. Type defaults to "general" when the user supplies none.
type Tag struct {
	TagID int64  `json:"tag_id,omitempty"`
	Type  string `json:"tag_type"`
	Value string `json:"tag_value"`
}

// ParseTag normalizes a user-facing tag token into a Tag.
//
// The whole token is NFC-normalized, trimmed, and lowercased first. A
// token containing a colon splits on the FIRST colon only: the left part
// is the type, the right part the value, each trimmed again. An empty
// left part (":value") falls back to the general type. An empty right
// part ("type:") demotes the left part to a general-typed value, so
// "project:" means the tag "project", and ":" means the tag "general".
// Without a colon the whole token is a general-typed value.
//
// Returns ErrEmptyTagValue (wrapped) when the value comes out empty.
func ParseTag(raw string) (Tag, error) {
	token := strings.ToLower(strings.TrimSpace(norm.NFC.String(raw)))

	typ, value, found := strings.Cut(token, ":")
	if !found {
		typ, value = GeneralTagType, token
	} else {
		typ = strings.TrimSpace(typ)
		value = strings.TrimSpace(value)
		if typ == "" {
			typ = GeneralTagType
		}
		if value == "" {
			// Trailing colon: the left part becomes the value.
			typ, value = GeneralTagType, typ
		}
	}

	if value == "" {
		return Tag{}, fmt.Errorf("parse tag %q: %w", raw, ErrEmptyTagValue)
	}
	return Tag{Type: typ, Value: value}, nil
}

// ParseTagList parses a list of tag tokens, skipping tokens that
// normalize to an empty value and deduplicating the rest. Order of
// first occurrence is preserved.
func ParseTagList(raws []string) []Tag {
	tags := make([]Tag, 0, len(raws))
	seen := make(map[Tag]struct{}, len(raws))
	for _, raw := range raws {
		tag, err := ParseTag(raw)
		if err != nil {
			continue
		}
		key := Tag{Type: tag.Type, Value: tag.Value}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// String formats the tag for display: general-typed tags print as their
// bare value, all others as "type:value".
func (t Tag) String() string {
	if t.Type == "" || t.Type == GeneralTagType {
		return t.Value
	}
	return t.Type + ":" + t.Value
}
