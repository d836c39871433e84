package models

type Exam struct {
	BaseModel
	Type      *string `json:"type" validate:"required,min=1" gorm:"size:100"`
	Specialty *string `json:"specialty" validate:"required,min=1" gorm:"size:100"`
	Date      *string `json:"date" gorm:"size:50"`
}

func (Exam) TableName() string { return "exams" }

type Student struct {
	BaseModel
	ExamID uint    `json:"exam_id" validate:"required" gorm:"not null;index"`
	Name   *string `json:"name" gorm:"size:100"`
	Age    *int    `json:"age"`
}

func (Student) TableName() string { return "students" }

func (s Student) ParentKey() uint { return s.ExamID }

var Exams = NewStore[Exam, Student](Schema{
	Service:      "exams",
	ParentName:   "Exam",
	ParentTable:  "exams",
	ChildName:    "Student",
	ChildTable:   "students",
	ForeignKey:   "exam_id",
	Required:     []string{"type", "specialty"},
	ParentFields: []string{"type", "specialty", "date"},
	ChildFields:  []string{"name", "age"},
	ParentOrder:  "id asc",
	ChildOrder:   "id asc",
	ParentLimit:  50,
	ChildLimit:   50,
})
