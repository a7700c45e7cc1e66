package models

// Teacher runs lessons for a set of students.
type Teacher struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Subject  string `json:"subject"`
}

// DefaultGrade is assigned to students created without a grade.
const DefaultGrade = 1

// Student belongs to one teacher and studies towards one goal within a category.
type Student struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	Grade      int    `json:"grade"`
	GoalID     int64  `json:"learning_goal_id"`
	CategoryID int64  `json:"learning_category_id"`
	TeacherID  int64  `json:"teacher_id"`
}
