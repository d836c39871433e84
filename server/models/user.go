package models

type User struct {
	BaseModel
	Name  *string `json:"name" validate:"required,min=1" gorm:"size:100"`
	Email *string `json:"email" validate:"required,min=1" gorm:"size:100"`
}

func (User) TableName() string { return "users" }

type Address struct {
	BaseModel
	UserID uint    `json:"user_id" validate:"required" gorm:"not null;index"`
	City   *string `json:"city" gorm:"size:100"`
	Street *string `json:"street" gorm:"size:200"`
}

func (Address) TableName() string { return "addresses" }

func (a Address) ParentKey() uint { return a.UserID }

var Users = NewStore[User, Address](Schema{
	Service:      "users",
	ParentName:   "User",
	ParentTable:  "users",
	ChildName:    "Address",
	ChildTable:   "addresses",
	ForeignKey:   "user_id",
	Required:     []string{"name", "email"},
	ParentFields: []string{"name", "email"},
	ChildFields:  []string{"city", "street"},
	ParentOrder:  "id desc",
	ChildOrder:   "id asc",
	ParentLimit:  20,
	ChildLimit:   50,
})
