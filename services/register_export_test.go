package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestExportCaseRegister(t *testing.T) {
	db, store := setupCaseTestDB(t)
	client, opponent := createTestParties(t, db)

	first, err := CreateCase(db, store, CreateCaseInput{
		FileNumber: "0001.25.awr",
		ClientID:   client.ID,
		OpponentID: opponent.ID,
	})
	assert.NoError(t, err)
	_, err = CreateCase(db, store, CreateCaseInput{
		FileNumber: "0002.25.awr",
		ClientID:   client.ID,
		OpponentID: opponent.ID,
	})
	assert.NoError(t, err)
	_, err = CloseCase(db, nil, first.ID)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, ExportCaseRegister(db, &buf))

	f, err := excelize.OpenReader(&buf)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Aktenregister")
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Aktenzeichen", rows[0][0])
	assert.Equal(t, "0001.25.awr", rows[1][0])
	assert.Equal(t, "CLOSED", rows[1][1])
	assert.Equal(t, "Hans Schmidt", rows[1][2])
	assert.Equal(t, "Erika Muster", rows[1][3])
	assert.Equal(t, "0002.25.awr", rows[2][0])
	assert.Equal(t, "OPEN", rows[2][1])
}
