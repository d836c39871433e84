package models

type Patient struct {
	BaseModel
	Name *string `json:"name" validate:"required,min=1" gorm:"size:100"`
	Age  *int    `json:"age" validate:"present"`
}

func (Patient) TableName() string { return "patients" }

type Appointment struct {
	BaseModel
	PatientID uint    `json:"patient_id" validate:"required" gorm:"not null;index"`
	Date      *string `json:"date" gorm:"size:50"`
	Reason    *string `json:"reason" gorm:"size:200"`
}

func (Appointment) TableName() string { return "appointments" }

func (a Appointment) ParentKey() uint { return a.PatientID }

var Patients = NewStore[Patient, Appointment](Schema{
	Service:      "patients",
	ParentName:   "Patient",
	ParentTable:  "patients",
	ChildName:    "Appointment",
	ChildTable:   "appointments",
	ForeignKey:   "patient_id",
	Required:     []string{"name", "age"},
	ParentFields: []string{"name", "age"},
	ChildFields:  []string{"date", "reason"},
	ParentOrder:  "id asc",
	ChildOrder:   "id asc",
	ParentLimit:  20,
	ChildLimit:   50,
})
