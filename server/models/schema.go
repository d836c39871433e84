package models

import "fmt"

// Schema describes one parent/child table pair and how it is served.
type Schema struct {
	Service string

	ParentName  string
	ParentTable string
	ChildName   string
	ChildTable  string
	ForeignKey  string

	// Parent fields named by the message of a failed create.
	Required []string

	// Columns overwritten by an update. Anything not listed is never
	// written by PUT, including the foreign key.
	ParentFields []string
	ChildFields  []string

	ParentOrder string
	ChildOrder  string

	ParentLimit int
	ChildLimit  int
}

func (s Schema) Relation() string {
	return fmt.Sprintf("1:N (%s -> %s)", s.ParentTable, s.ChildTable)
}

func (s Schema) ParentNotFound() string {
	return fmt.Sprintf("%s not found", s.ParentName)
}

func (s Schema) ChildNotFound() string {
	return fmt.Sprintf("%s not found", s.ChildName)
}
