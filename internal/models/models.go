package models

import (
	"time"
)

// Roles a user can hold. Reviewers and admins moderate forum submissions.
const (
	RoleUploader = "uploader"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// Review states of a shared document.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	AvatarURL    string    `db:"avatar_url" json:"avatarUrl,omitempty"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Session is the authenticated caller, resolved from the bearer token.
type Session struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// CanReview reports whether the session may approve or reject documents.
func (s Session) CanReview() bool {
	return s.Role == RoleAdmin || s.Role == RoleReviewer
}

// Document is a forum submission: an uploaded file plus its AI summary.
type Document struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	FileURL    string    `db:"file_url" json:"fileUrl"`
	UploaderID string    `db:"uploader_id" json:"uploaderId"`
	Status     string    `db:"status" json:"status"` // pending | approved | rejected
	Summary    string    `db:"summary" json:"summary"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`

	Comments []Comment `db:"-" json:"comments,omitempty"`
}

// Comment is a user's reply on a forum document.
type Comment struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"documentId"`
	UserID     string    `db:"user_id" json:"userId"`
	UserName   string    `db:"user_name" json:"userName"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// UploadResult is what the upload pipeline returns for one file.
type UploadResult struct {
	Text      string            `json:"text"`
	Summaries map[string]string `json:"summaries"`
	WordCount int               `json:"wordCount"`
	FileName  string            `json:"fileName"`
	FileType  string            `json:"fileType"`
	FileURL   string            `json:"fileUrl,omitempty"`
}

// Activity is one row of the dashboard's recent activity list.
type Activity struct {
	User   string    `json:"user"`
	Action string    `json:"action"` // uploaded | commented
	Doc    string    `json:"doc"`
	Date   string    `json:"date"`
	At     time.Time `json:"-"`
}

// DashboardStats aggregates forum-wide counts and recent activity.
type DashboardStats struct {
	TotalDocs      int        `json:"totalDocs"`
	Approved       int        `json:"approved"`
	Rejected       int        `json:"rejected"`
	Pending        int        `json:"pending"`
	RecentActivity []Activity `json:"recentActivity"`
}

// ProfileStats summarises one user's submissions.
type ProfileStats struct {
	TotalUploaded int `json:"totalUploaded"`
	Accepted      int `json:"accepted"`
	Rejected      int `json:"rejected"`
	Pending       int `json:"pending"`
}
