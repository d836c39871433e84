package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrMissingParent is returned when a child is created for a parent id that
// does not resolve to a row.
var ErrMissingParent = errors.New("parent does not exist")

// Store implements the CRUD operations of one parent/child pair. Every method
// takes the connection to run on, so callers decide how it is scoped.
type Store[P Model, C ChildModel] struct {
	schema Schema
}

func NewStore[P Model, C ChildModel](schema Schema) *Store[P, C] {
	return &Store[P, C]{schema: schema}
}

func (s *Store[P, C]) Schema() Schema {
	return s.schema
}

// AutoMigrate creates both tables if they do not exist yet.
func (s *Store[P, C]) AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(new(P), new(C))
}

// ---------------------------------------------------------------------------------//
// Parents
// --------------------------------------------------------------------------------//

func (s *Store[P, C]) ListParents(db *gorm.DB, page Page) ([]Record[P, C], error) {
	parents := []P{}

	err := db.Scopes(paginate(page)).Order(s.schema.ParentOrder).Find(&parents).Error
	if err != nil {
		return nil, err
	}

	records := make([]Record[P, C], 0, len(parents))
	for _, parent := range parents {
		children, err := s.childrenOf(db, parent.Key())
		if err != nil {
			return nil, err
		}
		records = append(records, s.record(parent, children))
	}

	return records, nil
}

func (s *Store[P, C]) FindParent(db *gorm.DB, id uint) (*Record[P, C], error) {
	var parent P
	err := db.First(&parent, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	children, err := s.childrenOf(db, id)
	if err != nil {
		return nil, err
	}

	record := s.record(parent, children)
	return &record, nil
}

// CreateParent validates parent and inserts it, assigning its id.
func (s *Store[P, C]) CreateParent(db *gorm.DB, parent *P) error {
	if err := requiredError(parent, s.schema.Required); err != nil {
		return err
	}

	return db.Create(parent).Error
}

// UpdateParent overwrites every updatable column with the values in parent,
// nil values included, and returns the row as stored.
func (s *Store[P, C]) UpdateParent(db *gorm.DB, id uint, parent *P) (*P, error) {
	res := db.Model(new(P)).Where("id = ?", id).Select(s.schema.ParentFields).Updates(parent)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	updated := new(P)
	if err := db.First(updated, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteParent removes the parent and every child referencing it in a single
// transaction. It returns the number of children removed.
func (s *Store[P, C]) DeleteParent(db *gorm.DB, id uint) (int64, error) {
	var removedChildren int64

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where(s.schema.ForeignKey+" = ?", id).Delete(new(C))
		if res.Error != nil {
			return res.Error
		}
		removedChildren = res.RowsAffected

		res = tx.Where("id = ?", id).Delete(new(P))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return removedChildren, nil
}

// ---------------------------------------------------------------------------------//
// Children
// --------------------------------------------------------------------------------//

// ListChildren lists children across all parents, or only those of parentID
// when it is non-zero.
func (s *Store[P, C]) ListChildren(db *gorm.DB, parentID uint, page Page) ([]C, error) {
	children := []C{}

	err := db.Scopes(whereParent(s.schema.ForeignKey, parentID), paginate(page)).
		Order(s.schema.ChildOrder).Find(&children).Error
	if err != nil {
		return nil, err
	}

	return children, nil
}

func (s *Store[P, C]) FindChild(db *gorm.DB, id uint) (*C, error) {
	child := new(C)
	err := db.First(child, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return child, nil
}

// CreateChild inserts child after checking, in the same transaction, that its
// parent exists.
func (s *Store[P, C]) CreateChild(db *gorm.DB, child *C) error {
	if err := requiredError(child, []string{s.schema.ForeignKey}); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(new(P)).Where("id = ?", (*child).ParentKey()).Count(&count).Error
		if err != nil {
			return err
		}

		if count == 0 {
			return ErrMissingParent
		}

		return tx.Create(child).Error
	})
}

func (s *Store[P, C]) UpdateChild(db *gorm.DB, id uint, child *C) (*C, error) {
	res := db.Model(new(C)).Where("id = ?", id).Select(s.schema.ChildFields).Updates(child)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return s.FindChild(db, id)
}

func (s *Store[P, C]) DeleteChild(db *gorm.DB, id uint) error {
	res := db.Where("id = ?", id).Delete(new(C))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (s *Store[P, C]) childrenOf(db *gorm.DB, parentID uint) ([]C, error) {
	children := []C{}
	err := db.Where(s.schema.ForeignKey+" = ?", parentID).Order(s.schema.ChildOrder).Find(&children).Error
	if err != nil {
		return nil, err
	}

	return children, nil
}

func (s *Store[P, C]) record(parent P, children []C) Record[P, C] {
	return Record[P, C]{Parent: parent, Children: children, childKey: s.schema.ChildTable}
}
