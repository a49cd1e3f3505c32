package view

import (
	"fmt"
	"time"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/service"
)

// ProfileData is the content of the profile page.
type ProfileData struct {
	Stats     domain.Stats
	Favorite  domain.TimeOfDay
	Recent    []domain.CompletedSession
	Custom    []domain.CustomSession
	Catalog   service.DataStats
	DevRoutes bool
	Location  *time.Location
}

// HistoryData is one page of the session history.
type HistoryData struct {
	Records    []domain.CompletedSession
	Total      int
	Sort       string
	NextOffset int
	Location   *time.Location
}

func sessionCount(n int) string {
	if n == 1 {
		return "1 session"
	}
	return fmt.Sprintf("%d sessions", n)
}

func loadMoreAction(offset int, sort string) string {
	return fmt.Sprintf("@get('/profile/history/more?offset=%d&sort=%s')", offset, sort)
}
