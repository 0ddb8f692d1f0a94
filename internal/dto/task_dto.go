package dto

// TaskCreateRequest is the payload sent to the task collection endpoint.
// Code scopes the task to a classroom.
type TaskCreateRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	MaxStars    int    `json:"max_stars" validate:"min=0,max=5"`
	Display     int    `json:"display" validate:"oneof=1 2 3"`
	IsGroup     bool   `json:"is_group"`
}

// TaskUpdateRequest is the payload for updating an existing task in place.
type TaskUpdateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	MaxStars    int    `json:"max_stars" validate:"min=0,max=5"`
	Display     int    `json:"display" validate:"oneof=1 2 3"`
	IsGroup     bool   `json:"is_group"`
}

// ReviewRequest is the payload for reviewing a submission.
type ReviewRequest struct {
	Stars   int    `json:"stars" validate:"min=0,max=5"`
	Comment string `json:"comment"`
}

// StudentRenameRequest updates a roster entry's display name.
type StudentRenameRequest struct {
	Code  string `json:"code" validate:"required"`
	Index int    `json:"index" validate:"required"`
	Name  string `json:"name" validate:"required"`
}
