// Package classify maps raw media categories to display categories.
//
// Generic "document" records whose MIME type indicates image or video content
// are promoted into the "photo"/"video" buckets. Listing filters and the
// category statistics must bucket records identically, so both the Go mapping
// and the SQL predicate used by the repositories live here.
package classify

import (
	"fmt"
	"strings"

	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/models"
)

const (
	imagePrefix = "image/"
	videoPrefix = "video/"
)

// DisplayCategory returns the category a record is reported under.
func DisplayCategory(raw models.Category, mime string) models.Category {
	if raw != models.CategoryDocument {
		return raw
	}
	switch {
	case strings.HasPrefix(mime, imagePrefix):
		return models.CategoryPhoto
	case strings.HasPrefix(mime, videoPrefix):
		return models.CategoryVideo
	default:
		return models.CategoryDocument
	}
}

// ApplyFilter adds the display-category condition for cat to b. Column names
// are qualified with alias. The "document" filter excludes the image/video
// subset that DisplayCategory promotes into photo/video; "photo" and "video"
// include it.
func ApplyFilter(b *dbx.Builder, alias string, cat models.Category) {
	category := alias + ".category"
	mime := alias + ".mime"

	switch cat {
	case models.CategoryPhoto:
		b.Where(fmt.Sprintf("(%s = 'photo' OR (%s = 'document' AND %s LIKE 'image/%%'))", category, category, mime))
	case models.CategoryVideo:
		b.Where(fmt.Sprintf("(%s = 'video' OR (%s = 'document' AND %s LIKE 'video/%%'))", category, category, mime))
	case models.CategoryDocument:
		b.Where(fmt.Sprintf("(%s = 'document' AND (%s IS NULL OR (%s NOT LIKE 'image/%%' AND %s NOT LIKE 'video/%%')))", category, mime, mime, mime))
	default:
		b.Wheref(category+" = ?", string(cat))
	}
}

// FoldStats buckets raw (category, mime, count) rows through DisplayCategory
// and sums the promoted groups.
func FoldStats(rows []RawStat) []models.CategoryStat {
	byCat := make(map[models.Category]int64)
	for _, r := range rows {
		byCat[DisplayCategory(r.Category, r.MIME)] += r.Count
	}

	// fixed output order: Categories order, skipping empty buckets
	out := make([]models.CategoryStat, 0, len(byCat))
	for _, c := range models.Categories {
		if n := byCat[c]; n > 0 {
			out = append(out, models.CategoryStat{Category: c, Count: n})
		}
	}
	return out
}

// RawStat is one pre-classification aggregation row from the store.
type RawStat struct {
	Category models.Category
	MIME     string
	Count    int64
}
