package models

// SchoolGrade is a school year that uploaded files are filed under.
type SchoolGrade struct {
	ID string `json:"id"`
}

// FileCategory groups uploaded files within a grade and semester.
type FileCategory struct {
	ID string `json:"id"`
}

// Semesters a file can belong to.
var Semesters = []int{1, 2}

// SchoolGrades and FileCategories are the fixed upload catalogue. Display
// names come from the locale trees ("grades.<id>", "fileCategories.<id>.name").
var (
	SchoolGrades = []SchoolGrade{
		{ID: "first-year"},
		{ID: "second-year"},
		{ID: "third-year"},
		{ID: "fourth-year"},
	}
	FileCategories = []FileCategory{
		{ID: "courses"},
		{ID: "exercises"},
		{ID: "exams"},
		{ID: "summaries"},
	}
)

// IsKnownGrade reports whether id names a catalogue grade.
func IsKnownGrade(id string) bool {
	for _, grade := range SchoolGrades {
		if grade.ID == id {
			return true
		}
	}
	return false
}

// IsKnownCategory reports whether id names a catalogue category.
func IsKnownCategory(id string) bool {
	for _, category := range FileCategories {
		if category.ID == id {
			return true
		}
	}
	return false
}
