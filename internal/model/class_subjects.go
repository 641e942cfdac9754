package model

// SubjectsRecord is one accepted submission: a class and the subject names
// entered for it. Records are append-only and may repeat a class.
type SubjectsRecord struct {
	ClassName string   `json:"className"`
	Subjects  []string `json:"subjects"`
}

// CreateSubjectsRequest is the payload for POST /subjects.
// No field constraints: the API stores whatever decodes.
type CreateSubjectsRequest struct {
	Class    string   `json:"class"`
	Subjects []string `json:"subjects"`
}

// CreateSubjectsResponse is returned when a submission is stored.
type CreateSubjectsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubjectsSavedMessage is the confirmation message sent by the API.
const SubjectsSavedMessage = "Subjects saved!"

// Classes lists the school classes an administrator can pick, in display order.
var Classes = []string{
	"LKG", "UKG", "PREP",
	"Class-I", "Class-II", "Class-III", "Class-IV", "Class-V",
	"Class-VI", "Class-VII", "Class-VIII", "Class-IX", "Class-X",
}

// IsKnownClass reports whether name is one of Classes.
func IsKnownClass(name string) bool {
	for _, c := range Classes {
		if c == name {
			return true
		}
	}
	return false
}

// StrictSubjectsRequest carries the constraints enforced when the server runs
// in strict mode. Duplicate detection is left to the subjects validator.
type StrictSubjectsRequest struct {
	Class    string   `json:"class" binding:"required,school_class"`
	Subjects []string `json:"subjects" binding:"required,min=1,dive,required"`
}
