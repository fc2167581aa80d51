package model

import "time"

type Family struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CreatedBy      int64     `json:"created_by"`
	InvitationCode string    `json:"invitation_code"`
	DocsFolder     string    `json:"docs_folder"`
	VideosFolder   string    `json:"videos_folder"`
	PhotosFolder   string    `json:"photos_folder"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type FamilyMember struct {
	ID       int64     `json:"id"`
	FamilyID int64     `json:"family_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Task due buckets, in the order users pick them.
const (
	DueToday     = "Today"
	DueTomorrow  = "Tomorrow"
	DueThisWeek  = "This Week"
	DueThisMonth = "This Month"
)

type FamilyTask struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Title     string    `json:"title"`
	CreatedBy int64     `json:"created_by"`
	DueBucket string    `json:"due_bucket"`
	Priority  string    `json:"priority"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
