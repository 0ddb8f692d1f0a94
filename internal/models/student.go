package models

// Student represents a learner enrolled in the classroom roster.
type Student struct {
	StudentUserID int    `json:"studentUserID"`
	StudentIndex  int    `json:"studentIndex"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
}
