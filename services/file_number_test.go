package services

import (
	"fmt"
	"sync"
	"testing"

	"kanzlei_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFileNumberTestDB() *gorm.DB {
	// Shared cache keeps the concurrent allocation test on one database
	dbName := "mem_" + uuid.New().String()
	db, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Client{}, &models.Opponent{}, &models.Case{}, &models.FileNumberCounter{})
	return db
}

func TestFormatFileNumber(t *testing.T) {
	assert.Equal(t, "0001.25.awr", FormatFileNumber(1, "25"))
	assert.Equal(t, "0042.99.awr", FormatFileNumber(42, "99"))
	assert.Equal(t, "10000.25.awr", FormatFileNumber(10000, "25"))
}

func TestParseFileNumberSequence(t *testing.T) {
	seq, ok := ParseFileNumberSequence("0007.25.awr", "25")
	assert.True(t, ok)
	assert.Equal(t, 7, seq)

	// Foreign period
	_, ok = ParseFileNumberSequence("0007.24.awr", "25")
	assert.False(t, ok)

	// Malformed prefix
	_, ok = ParseFileNumberSequence("sonderakte.25.awr", "25")
	assert.False(t, ok)

	// Wrong suffix
	_, ok = ParseFileNumberSequence("0007.25.pdf", "25")
	assert.False(t, ok)

	_, ok = ParseFileNumberSequence("", "25")
	assert.False(t, ok)
}

func TestAllocateFileNumber(t *testing.T) {
	db := setupFileNumberTestDB()

	number, err := AllocateFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0001.25.awr", number)

	number2, err := AllocateFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0002.25.awr", number2)

	// Periods count independently
	number3, err := AllocateFileNumber(db, "26")
	assert.NoError(t, err)
	assert.Equal(t, "0001.26.awr", number3)
}

func TestAllocateFileNumberSkipsUsedNumbers(t *testing.T) {
	db := setupFileNumberTestDB()

	client := models.Client{Name: "Meier"}
	assert.NoError(t, db.Create(&client).Error)

	// A manually assigned number ahead of the counter must never be reissued
	assert.NoError(t, db.Create(&models.Case{
		FileNumber: "0007.25.awr",
		ClientID:   client.ID,
	}).Error)

	number, err := AllocateFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0008.25.awr", number)
}

func TestAllocateFileNumberIgnoresMalformedNumbers(t *testing.T) {
	db := setupFileNumberTestDB()

	client := models.Client{Name: "Meier"}
	assert.NoError(t, db.Create(&client).Error)

	assert.NoError(t, db.Create(&models.Case{
		FileNumber: "sonderakte.25.awr",
		ClientID:   client.ID,
	}).Error)

	number, err := AllocateFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0001.25.awr", number)
}

func TestAllocateFileNumberRejectsBadPeriod(t *testing.T) {
	db := setupFileNumberTestDB()

	for _, period := range []string{"", "5", "202", "2x"} {
		_, err := AllocateFileNumber(db, period)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr, "period %q", period)
	}
}

func TestAllocateFileNumberConcurrent(t *testing.T) {
	db := setupFileNumberTestDB()

	const workers = 20
	numbers := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numbers[i], errs[i] = AllocateFileNumber(db, "25")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < workers; i++ {
		assert.NoError(t, errs[i])
		assert.False(t, seen[numbers[i]], "number %s issued twice", numbers[i])
		seen[numbers[i]] = true
	}

	// Exactly the sequences 1..workers were issued, no gaps
	for seq := 1; seq <= workers; seq++ {
		assert.True(t, seen[fmt.Sprintf("%04d.25.awr", seq)])
	}
}

func TestPeekNextFileNumberDoesNotConsume(t *testing.T) {
	db := setupFileNumberTestDB()

	next, err := PeekNextFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0001.25.awr", next)

	next2, err := PeekNextFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0001.25.awr", next2)

	number, err := AllocateFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0001.25.awr", number)

	next3, err := PeekNextFileNumber(db, "25")
	assert.NoError(t, err)
	assert.Equal(t, "0002.25.awr", next3)
}
