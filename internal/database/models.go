package database

import (
	"strconv"
	"strings"
	"time"
)

// Post is a deduplicated channel message as persisted. The (Source, MID)
// pair is unique; ID is the local autoincrement key joining into posts_fts.
type Post struct {
	ID     int64  `db:"id"`
	Source string `db:"source"`
	Author string `db:"author"`
	MID    int64  `db:"mid"`
	TS     int64  `db:"ts"` // epoch seconds
	Link   string `db:"link"`
	Text   string `db:"text"` // normalized body
}

// Evidence is the read-side projection handed to retrieval and
// summarization: normalized text, a display date in the reference zone,
// and the post permalink.
type Evidence struct {
	Text    string `db:"text"`
	TS      int64  `db:"ts"`
	Link    string `db:"link"`
	DateStr string `db:"-"`
}

// Permalink derives the canonical public URL of a channel post.
func Permalink(source string, mid int64) string {
	return "https://t.me/" + strings.TrimLeft(source, "@") + "/" + strconv.FormatInt(mid, 10)
}

// stampDate formats an epoch-seconds timestamp as the YYYY-MM-DD display
// string in the reference zone.
func stampDate(ts int64, loc *time.Location) string {
	return time.Unix(ts, 0).In(loc).Format("2006-01-02")
}
