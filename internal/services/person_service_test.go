package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/andesbank/backend/internal/models"
)

func TestPersonService_SavePerson(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewPersonService(db)

	t.Run("inserts when the person has no id yet", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO persons").
			WithArgs("Jose Lema", "M", 30, "098254785", "Otavalo sn y principal", "098254785").
			WillReturnRows(sqlmock.NewRows([]string{"person_id"}).AddRow(7))

		person, err := svc.SavePerson(&models.Person{
			PersonName:           "Jose Lema",
			PersonGender:         "M",
			PersonAge:            30,
			PersonIdentification: "098254785",
			PersonAddress:        "Otavalo sn y principal",
			PersonPhone:          "098254785",
		})
		assert.NoError(t, err)
		assert.Equal(t, 7, person.PersonID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates when the person already has an id", func(t *testing.T) {
		mock.ExpectExec("UPDATE persons").
			WithArgs("Jose Lema", "M", 31, "098254785", "Otavalo sn y principal", "098254785", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		person, err := svc.SavePerson(&models.Person{
			PersonID:             7,
			PersonName:           "Jose Lema",
			PersonGender:         "M",
			PersonAge:            31,
			PersonIdentification: "098254785",
			PersonAddress:        "Otavalo sn y principal",
			PersonPhone:          "098254785",
		})
		assert.NoError(t, err)
		assert.Equal(t, 7, person.PersonID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPersonService_DeletePersonByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewPersonService(db)

	// Only the persons table is touched; clients are never cascaded from here.
	mock.ExpectExec("DELETE FROM persons").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, svc.DeletePersonByID(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonService_GetPersons(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewPersonService(db)

	t.Run("returns all persons in id order", func(t *testing.T) {
		mock.ExpectQuery("FROM persons ORDER BY person_id").
			WillReturnRows(sqlmock.NewRows([]string{"person_id", "person_name", "person_gender", "person_age", "person_identification", "person_address", "person_phone"}).
				AddRow(7, "Jose Lema", "M", 30, "098254785", "Otavalo sn y principal", "098254785").
				AddRow(8, "Marianela Montalvo", "F", 28, "097548965", "Amazonas y NNUU", "097548965"))

		persons, err := svc.GetPersons()
		assert.NoError(t, err)
		assert.Len(t, persons, 2)
		assert.Equal(t, "Jose Lema", persons[0].PersonName)
		assert.Equal(t, "Marianela Montalvo", persons[1].PersonName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows yields an empty slice", func(t *testing.T) {
		mock.ExpectQuery("FROM persons ORDER BY person_id").
			WillReturnRows(sqlmock.NewRows([]string{"person_id", "person_name", "person_gender", "person_age", "person_identification", "person_address", "person_phone"}))

		persons, err := svc.GetPersons()
		assert.NoError(t, err)
		assert.NotNil(t, persons)
		assert.Empty(t, persons)
	})
}

func TestPersonService_GetPersonByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	svc := NewPersonService(db)

	mock.ExpectQuery("FROM persons WHERE person_id").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"person_id"}))

	_, err = svc.GetPersonByID(42)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}
