package model

import "time"

// Video is a registered video entry in the `videos` table. Entries start
// out pending (Approved == ApprovalPending) and become publicly visible
// once a video admin approves them.
type Video struct {
	ID         string    `json:"id"`         // videos.id (UUID)
	Category   string    `json:"category"`   // videos.category
	Title      string    `json:"title"`      // videos.title
	UploadDate string    `json:"uploadDate"` // videos.upload_date
	Thumbnail  string    `json:"thumbnail"`  // videos.thumbnail
	Link       string    `json:"link"`       // videos.link
	Caption    string    `json:"caption"`    // videos.caption
	Writer     string    `json:"writer"`     // videos.writer (user id)
	Approved   int       `json:"approved"`   // videos.approved
	CreatedAt  time.Time `json:"createdAt"`  // videos.created_at
	UpdatedAt  time.Time `json:"updatedAt"`  // videos.updated_at
}
