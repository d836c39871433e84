package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// BaseModel carries the auto-incremented id shared by every table.
type BaseModel struct {
	ID uint `json:"id" gorm:"primarykey"`
}

func (m BaseModel) Key() uint {
	return m.ID
}

// Model is any row with an integer primary key.
type Model interface {
	Key() uint
}

// ChildModel is a row owned by exactly one parent row.
type ChildModel interface {
	Model
	ParentKey() uint
}

// Page is the limit/offset window of a list query.
type Page struct {
	Limit  int
	Offset int
}

// Record is a parent row together with all of its children. It is encoded as
// the parent's own fields plus the children under childKey.
type Record[P Model, C ChildModel] struct {
	Parent   P
	Children []C
	childKey string
}

func (r Record[P, C]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(r.Parent)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	children := r.Children
	if children == nil {
		children = []C{}
	}

	fields[r.childKey], err = json.Marshal(children)
	if err != nil {
		return nil, err
	}

	return json.Marshal(fields)
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

func paginate(page Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page.Offset > 0 {
			db = db.Offset(page.Offset)
		}
		return db.Limit(page.Limit)
	}
}

func whereParent(foreignKey string, parentID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if parentID == 0 {
			return db
		}
		return db.Where(foreignKey+" = ?", parentID)
	}
}
