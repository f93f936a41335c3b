package models

// MatchedField names the searchable field a query hit was located in.
type MatchedField string

// Media fields, in matched-field precedence order.
const (
	FieldCaption       MatchedField = "caption"
	FieldName          MatchedField = "name"
	FieldForwardName   MatchedField = "forward_name"
	FieldForwardSource MatchedField = "forward_source"
)

// Link fields, in matched-field precedence order.
const (
	FieldTitle       MatchedField = "title"
	FieldDescription MatchedField = "description"
	FieldURL         MatchedField = "url"
	FieldSiteName    MatchedField = "site_name"
)

// MediaHit is one search result: the record, the single field the match was
// located in, and a bounded excerpt with the matching span delimited.
// Snippet is empty when the executed strategy has no match locations
// (empty-query and short-query branches).
type MediaHit struct {
	Record       *MediaRecord
	MatchedField MatchedField
	Snippet      string
}

// LinkHit is the link equivalent of MediaHit.
type LinkHit struct {
	Record       *LinkRecord
	MatchedField MatchedField
	Snippet      string
}

// PurgeResult reports how many records a purge pass removed, per entity kind.
type PurgeResult struct {
	Media int64
	Links int64
}
