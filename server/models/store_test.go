package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateParentAssignsIncreasingIDs(t *testing.T) {
	db := InitializeTestDb(t)

	var lastID uint
	for _, name := range []string{"ann", "bob", "cid"} {
		user := User{Name: strPtr(name), Email: strPtr(name + "@x.com")}
		err := Users.CreateParent(db, &user)
		require.Nil(t, err)

		assert.Greater(t, user.ID, lastID, "ids should be strictly increasing")
		lastID = user.ID
	}
}

func TestFindParentWithoutChildren(t *testing.T) {
	db := InitializeTestDb(t)

	first := User{Name: strPtr("ann"), Email: strPtr("a@x.com")}
	require.Nil(t, Users.CreateParent(db, &first))

	record, err := Users.FindParent(db, first.ID)
	require.Nil(t, err)
	assert.Equal(t, "ann", *record.Parent.Name)
	assert.Empty(t, record.Children)
}

func TestListParentsEmbedsChildren(t *testing.T) {
	db := InitializeTestDb(t)

	ann := User{Name: strPtr("ann"), Email: strPtr("a@x.com")}
	bob := User{Name: strPtr("bob"), Email: strPtr("b@x.com")}
	require.Nil(t, Users.CreateParent(db, &ann))
	require.Nil(t, Users.CreateParent(db, &bob))

	require.Nil(t, Users.CreateChild(db, &Address{UserID: ann.ID, City: strPtr("NY")}))
	require.Nil(t, Users.CreateChild(db, &Address{UserID: ann.ID, City: strPtr("LA")}))

	records, err := Users.ListParents(db, Page{Limit: 20})
	require.Nil(t, err)
	require.Len(t, records, 2)

	// users are listed newest first
	assert.Equal(t, bob.ID, records[0].Parent.ID)
	assert.Empty(t, records[0].Children)
	assert.Equal(t, ann.ID, records[1].Parent.ID)
	assert.Len(t, records[1].Children, 2)

	records, err = Users.ListParents(db, Page{Limit: 1, Offset: 1})
	require.Nil(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ann.ID, records[0].Parent.ID)
}

func TestUpdateParentReplacesAllFields(t *testing.T) {
	db := InitializeTestDb(t)

	patient := Patient{Name: strPtr("ann"), Age: intPtr(30)}
	require.Nil(t, Patients.CreateParent(db, &patient))

	updated, err := Patients.UpdateParent(db, patient.ID, &Patient{Name: strPtr("anne")})
	require.Nil(t, err)

	assert.Equal(t, "anne", *updated.Name)
	assert.Nil(t, updated.Age, "omitted field should be nulled, not kept")
}

func TestUpdateParentNotFound(t *testing.T) {
	db := InitializeTestDb(t)

	_, err := Patients.UpdateParent(db, 42, &Patient{Name: strPtr("ghost")})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUpdateParentWithSameValues(t *testing.T) {
	db := InitializeTestDb(t)

	user := User{Name: strPtr("ann"), Email: strPtr("a@x.com")}
	require.Nil(t, Users.CreateParent(db, &user))

	_, err := Users.UpdateParent(db, user.ID, &User{Name: strPtr("ann"), Email: strPtr("a@x.com")})
	assert.Nil(t, err, "an unchanged row still exists")
}

func TestDeleteParentCascades(t *testing.T) {
	db := InitializeTestDb(t)

	exam := Exam{Type: strPtr("exam1"), Specialty: strPtr("spec1")}
	other := Exam{Type: strPtr("exam2"), Specialty: strPtr("spec2")}
	require.Nil(t, Exams.CreateParent(db, &exam))
	require.Nil(t, Exams.CreateParent(db, &other))

	var studentIDs []uint
	for _, name := range []string{"s1", "s2", "s3"} {
		student := Student{ExamID: exam.ID, Name: strPtr(name)}
		require.Nil(t, Exams.CreateChild(db, &student))
		studentIDs = append(studentIDs, student.ID)
	}
	survivor := Student{ExamID: other.ID, Name: strPtr("s4")}
	require.Nil(t, Exams.CreateChild(db, &survivor))

	removed, err := Exams.DeleteParent(db, exam.ID)
	require.Nil(t, err)
	assert.Equal(t, int64(3), removed)

	_, err = Exams.FindParent(db, exam.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	for _, id := range studentIDs {
		_, err = Exams.FindChild(db, id)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "student %v should be gone", id)
	}

	_, err = Exams.FindChild(db, survivor.ID)
	assert.Nil(t, err, "children of other exams are untouched")
}

func TestDeleteParentNotFound(t *testing.T) {
	db := InitializeTestDb(t)

	_, err := Users.DeleteParent(db, 7)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCreateChildForMissingParent(t *testing.T) {
	db := InitializeTestDb(t)

	err := Patients.CreateChild(db, &Appointment{PatientID: 99, Reason: strPtr("checkup")})
	assert.True(t, errors.Is(err, ErrMissingParent))

	appointments, err := Patients.ListChildren(db, 0, Page{Limit: 50})
	require.Nil(t, err)
	assert.Empty(t, appointments, "no row should be persisted")
}

func TestListChildrenFiltersByParent(t *testing.T) {
	db := InitializeTestDb(t)

	ann := User{Name: strPtr("ann"), Email: strPtr("a@x.com")}
	bob := User{Name: strPtr("bob"), Email: strPtr("b@x.com")}
	require.Nil(t, Users.CreateParent(db, &ann))
	require.Nil(t, Users.CreateParent(db, &bob))

	for i := 0; i < 3; i++ {
		require.Nil(t, Users.CreateChild(db, &Address{UserID: ann.ID}))
	}
	require.Nil(t, Users.CreateChild(db, &Address{UserID: bob.ID}))

	testCases := []struct {
		description string
		parentID    uint
		page        Page
		expected    int
	}{
		{"all addresses", 0, Page{Limit: 50}, 4},
		{"addresses of one user", ann.ID, Page{Limit: 50}, 3},
		{"limit applies", 0, Page{Limit: 2}, 2},
		{"offset applies", ann.ID, Page{Limit: 50, Offset: 2}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			addresses, err := Users.ListChildren(db, tc.parentID, tc.page)
			require.Nil(t, err)
			assert.Len(t, addresses, tc.expected)
		})
	}
}

func TestUpdateChildKeepsForeignKey(t *testing.T) {
	db := InitializeTestDb(t)

	user := User{Name: strPtr("ann"), Email: strPtr("a@x.com")}
	require.Nil(t, Users.CreateParent(db, &user))

	address := Address{UserID: user.ID, City: strPtr("NY"), Street: strPtr("5th")}
	require.Nil(t, Users.CreateChild(db, &address))

	updated, err := Users.UpdateChild(db, address.ID, &Address{UserID: 1234, City: strPtr("LA")})
	require.Nil(t, err)

	assert.Equal(t, user.ID, updated.UserID)
	assert.Equal(t, "LA", *updated.City)
	assert.Nil(t, updated.Street)
}

func TestDeleteChild(t *testing.T) {
	db := InitializeTestDb(t)

	user := User{Name: strPtr("ann"), Email: strPtr("a@x.com")}
	require.Nil(t, Users.CreateParent(db, &user))

	address := Address{UserID: user.ID}
	require.Nil(t, Users.CreateChild(db, &address))

	assert.Nil(t, Users.DeleteChild(db, address.ID))
	assert.True(t, errors.Is(Users.DeleteChild(db, address.ID), gorm.ErrRecordNotFound))
}

func TestRecordMarshalJSON(t *testing.T) {
	record := Users.record(User{BaseModel: BaseModel{ID: 1}, Name: strPtr("Ann")}, nil)

	raw, err := record.MarshalJSON()
	require.Nil(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Ann","email":null,"addresses":[]}`, string(raw))
}

func TestCreateParentValidation(t *testing.T) {
	db := InitializeTestDb(t)

	cases := []struct {
		description string
		create      func() error
		expectedErr string
	}{
		{
			description: "Should reject a user without email",
			create:      func() error { return Users.CreateParent(db, &User{Name: strPtr("ann")}) },
			expectedErr: "name and email required",
		},
		{
			description: "Should reject an empty name",
			create:      func() error { return Users.CreateParent(db, &User{Name: strPtr(""), Email: strPtr("a@x.com")}) },
			expectedErr: "name and email required",
		},
		{
			description: "Should reject a patient without age",
			create:      func() error { return Patients.CreateParent(db, &Patient{Name: strPtr("ann")}) },
			expectedErr: "name and age required",
		},
		{
			description: "Should accept a patient aged 0",
			create:      func() error { return Patients.CreateParent(db, &Patient{Name: strPtr("baby"), Age: intPtr(0)}) },
		},
		{
			description: "Should reject an exam without specialty",
			create:      func() error { return Exams.CreateParent(db, &Exam{Type: strPtr("blood")}) },
			expectedErr: "type and specialty required",
		},
		{
			description: "Should reject an address without user_id",
			create:      func() error { return Users.CreateChild(db, &Address{City: strPtr("Lima")}) },
			expectedErr: "user_id required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			err := tc.create()
			if tc.expectedErr == "" {
				assert.Nil(t, err)
				return
			}

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "expected a ValidationError, got %v", err)
			assert.Equal(t, tc.expectedErr, validationErr.Message)
		})
	}
}
