package services

import (
	"context"
	"database/sql"
	"unicode/utf8"

	"github.com/teleshelf/teleshelf/internal/logging"
	"github.com/teleshelf/teleshelf/internal/models"
	"github.com/teleshelf/teleshelf/internal/repositories/links"
	"github.com/teleshelf/teleshelf/internal/repositories/media"
	"github.com/teleshelf/teleshelf/internal/repositories/repomanager"
)

// minPrefixQueryLen is the shortest normalized query the prefix index can
// serve; anything shorter degrades to a substring scan.
const minPrefixQueryLen = 3

// SearchService selects and executes a matching strategy by query length:
//
//   - empty query: structured filters only, newest first;
//   - 1–2 characters: case-insensitive substring across all searchable
//     fields, newest first;
//   - 3+ characters: whitespace-split tokens, each a literal prefix match,
//     AND-combined, ranked by index relevance.
type SearchService struct {
	db       *sql.DB
	repos    repomanager.Manager
	logger   logging.Logger
	limitCap int
}

func NewSearchService(db *sql.DB, repos repomanager.Manager, logger logging.Logger, limitCap int) *SearchService {
	return &SearchService{db: db, repos: repos, logger: logger, limitCap: limitCap}
}

// SearchMedia returns the owner's media records matching rawQuery and c,
// each annotated with the field the match was located in and a delimited
// snippet. Identical inputs against an unchanged store return identical
// ordered results.
func (s *SearchService) SearchMedia(ctx context.Context, owner int64, rawQuery string, limit int, c media.Criteria) ([]models.MediaHit, error) {
	limit = clampLimit(limit, s.limitCap)
	q := normalizeQuery(rawQuery)
	repo := s.repos.Media(s.db)

	var tokens []string
	if utf8.RuneCountInString(q) >= minPrefixQueryLen {
		tokens = tokenize(q)
	}

	switch {
	case q == "" || (utf8.RuneCountInString(q) >= minPrefixQueryLen && len(tokens) == 0):
		// No usable text: structured filters only. Tokens can vanish when
		// the query is all punctuation.
		recs, _, err := repo.List(ctx, owner, c, limit, 0)
		if err != nil {
			s.logger.Error(ctx, "media search failed", "owner", owner, "error", err)
			return nil, err
		}
		return mediaHitsWithoutLocations(recs), nil

	case utf8.RuneCountInString(q) < minPrefixQueryLen:
		recs, err := repo.SearchSubstring(ctx, owner, q, c, limit)
		if err != nil {
			s.logger.Error(ctx, "media search failed", "owner", owner, "error", err)
			return nil, err
		}
		return mediaHitsWithoutLocations(recs), nil

	default:
		rows, err := repo.SearchPrefix(ctx, owner, tsquery(tokens), c, limit)
		if err != nil {
			s.logger.Error(ctx, "media search failed", "owner", owner, "error", err)
			return nil, err
		}
		hits := make([]models.MediaHit, 0, len(rows))
		for _, row := range rows {
			field, text := pickMediaField(row)
			hits = append(hits, models.MediaHit{
				Record:       row.Record,
				MatchedField: field,
				Snippet:      buildSnippet(text, tokens),
			})
		}
		return hits, nil
	}
}

// SearchLinks is the link-record counterpart of SearchMedia.
func (s *SearchService) SearchLinks(ctx context.Context, owner int64, rawQuery string, limit int, c links.Criteria) ([]models.LinkHit, error) {
	limit = clampLimit(limit, s.limitCap)
	q := normalizeQuery(rawQuery)
	repo := s.repos.Links(s.db)

	var tokens []string
	if utf8.RuneCountInString(q) >= minPrefixQueryLen {
		tokens = tokenize(q)
	}

	switch {
	case q == "" || (utf8.RuneCountInString(q) >= minPrefixQueryLen && len(tokens) == 0):
		recs, _, err := repo.List(ctx, owner, c, limit, 0)
		if err != nil {
			s.logger.Error(ctx, "link search failed", "owner", owner, "error", err)
			return nil, err
		}
		return linkHitsWithoutLocations(recs), nil

	case utf8.RuneCountInString(q) < minPrefixQueryLen:
		recs, err := repo.SearchSubstring(ctx, owner, q, c, limit)
		if err != nil {
			s.logger.Error(ctx, "link search failed", "owner", owner, "error", err)
			return nil, err
		}
		return linkHitsWithoutLocations(recs), nil

	default:
		rows, err := repo.SearchPrefix(ctx, owner, tsquery(tokens), c, limit)
		if err != nil {
			s.logger.Error(ctx, "link search failed", "owner", owner, "error", err)
			return nil, err
		}
		hits := make([]models.LinkHit, 0, len(rows))
		for _, row := range rows {
			field, text := pickLinkField(row)
			hits = append(hits, models.LinkHit{
				Record:       row.Record,
				MatchedField: field,
				Snippet:      buildSnippet(text, tokens),
			})
		}
		return hits, nil
	}
}

// pickMediaField scans the per-field match flags in precedence order and
// returns the winning field with its text.
func pickMediaField(row *media.SearchRow) (models.MatchedField, string) {
	switch {
	case row.CaptionMatch:
		return models.FieldCaption, row.Record.Caption
	case row.NameMatch:
		return models.FieldName, row.Record.Name
	case row.ForwardNameMatch:
		return models.FieldForwardName, row.Record.ForwardName
	case row.ForwardSourceMatch:
		return models.FieldForwardSource, row.Record.ForwardSource
	default:
		return models.FieldCaption, ""
	}
}

func pickLinkField(row *links.SearchRow) (models.MatchedField, string) {
	switch {
	case row.TitleMatch:
		return models.FieldTitle, row.Record.Title
	case row.DescriptionMatch:
		return models.FieldDescription, row.Record.Description
	case row.URLMatch:
		return models.FieldURL, row.Record.URL
	case row.SiteNameMatch:
		return models.FieldSiteName, row.Record.SiteName
	default:
		return models.FieldTitle, ""
	}
}

// Branches without match locations report the first field in precedence
// order and an empty snippet.
func mediaHitsWithoutLocations(recs []*models.MediaRecord) []models.MediaHit {
	hits := make([]models.MediaHit, 0, len(recs))
	for _, rec := range recs {
		hits = append(hits, models.MediaHit{Record: rec, MatchedField: models.FieldCaption})
	}
	return hits
}

func linkHitsWithoutLocations(recs []*models.LinkRecord) []models.LinkHit {
	hits := make([]models.LinkHit, 0, len(recs))
	for _, rec := range recs {
		hits = append(hits, models.LinkHit{Record: rec, MatchedField: models.FieldTitle})
	}
	return hits
}
