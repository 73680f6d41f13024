// Package domain holds the Media service's core types, independent of how
// they are transported or stored.
package domain

import "time"

// FileRef is a single media file attached to a Post. Once appended to a
// Post's Files slice it is never mutated in place — updates only append new
// FileRefs.
type FileRef struct {
	ID              string    `json:"id"`
	OriginalName    string    `json:"originalName"`
	ContentType     string    `json:"contentType"`
	AccessURL       string    `json:"accessUrl"`
	AccessURLExpiry time.Time `json:"accessUrlExpiry"`
	ObjectKey       string    `json:"-"`
}

// Post is the authoritative post record owned by the media service.
type Post struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	Files     []FileRef `json:"files"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageResult carries a page of posts plus a cursor for the next page, or an
// empty cursor when there isn't one.
type PageResult struct {
	Posts      []Post
	NextCursor string
}
