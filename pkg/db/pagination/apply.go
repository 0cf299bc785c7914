package pagination

import (
	"strconv"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"gorm.io/gorm"
)

var ErrInvalidPageToken = apperr.New(apperr.ErrValidation, "invalid_page_token")

// Apply scopes stmt to one page ordered by descending id. Snowflake ids are
// time ordered so the id alone is a stable cursor. One extra row is fetched
// for BuildCursorPageInfo.
func Apply(stmt *gorm.DB, page Pagination) (*gorm.DB, error) {
	if page.PageToken != "" {
		cursor, err := DecodeCursor(page.PageToken)
		if err != nil || cursor.ID == "" {
			return nil, ErrInvalidPageToken
		}
		id, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, ErrInvalidPageToken
		}
		stmt = stmt.Where("id < ?", id)
	}
	return stmt.Order("id desc").Limit(page.Limit() + 1), nil
}
