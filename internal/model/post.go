package model

import "time"

// Post is a board article in the `posts` table. FilePaths holds blob keys
// of uploaded attachments; the blobs themselves live in the blob store.
type Post struct {
	ID             string    `json:"id"`             // posts.id (UUID)
	TopCategory    string    `json:"topCategory"`    // posts.top_category
	SubCategory    string    `json:"subCategory"`    // posts.sub_category
	Title          string    `json:"title"`          // posts.title
	Body           string    `json:"body"`           // posts.body
	FilePaths      []string  `json:"filePaths"`      // posts.file_paths (JSON column)
	RegistrantID   string    `json:"registrantId"`   // posts.registrant_id
	RegistrantName string    `json:"registrantName"` // posts.registrant_name
	DownloadCount  int       `json:"downloadCount"`  // posts.download_count
	CreatedAt      time.Time `json:"createdAt"`      // posts.created_at
	UpdatedAt      time.Time `json:"updatedAt"`      // posts.updated_at
}

// Comment is attached to a post via NoticeID and listed in ascending
// creation order.
type Comment struct {
	ID        string    `json:"id"`        // comments.id (UUID)
	NoticeID  string    `json:"noticeId"`  // comments.notice_id
	UserID    string    `json:"userId"`    // comments.user_id
	UserName  string    `json:"userName"`  // comments.user_name
	Body      string    `json:"body"`      // comments.body
	CreatedAt time.Time `json:"createdAt"` // comments.created_at
	UpdatedAt time.Time `json:"updatedAt"` // comments.updated_at
}
