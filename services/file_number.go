package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"kanzlei_app_go/models"

	"gorm.io/gorm"
)

// FileNumberSuffix is the fixed suffix of every file number
const FileNumberSuffix = "awr"

// allocMu serializes file number allocation within this process. The unique
// index on cases.file_number plus the retry in CreateCase covers allocations
// racing from other processes.
var allocMu sync.Mutex

// CurrentPeriod returns the two-digit form of the current calendar year
func CurrentPeriod() string {
	return fmt.Sprintf("%02d", time.Now().Year()%100)
}

// FormatFileNumber formats a file number as {sequence:04d}.{YY}.awr
func FormatFileNumber(sequence int, period string) string {
	return fmt.Sprintf("%04d.%s.%s", sequence, period, FileNumberSuffix)
}

// ParseFileNumberSequence extracts the sequence number from a file number of
// the given period. Returns false for malformed or foreign-period numbers.
func ParseFileNumberSequence(fileNumber, period string) (int, bool) {
	suffix := "." + period + "." + FileNumberSuffix
	if !strings.HasSuffix(fileNumber, suffix) {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimSuffix(fileNumber, suffix))
	if err != nil || seq < 0 {
		// Malformed prefixes are ignored rather than rejected
		return 0, false
	}
	return seq, true
}

// maxUsedSequence scans existing file numbers of the period for the highest
// sequence already in use
func maxUsedSequence(db *gorm.DB, period string) (int, error) {
	var numbers []string
	err := db.Model(&models.Case{}).
		Where("file_number LIKE ?", "%."+period+"."+FileNumberSuffix).
		Pluck("file_number", &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan file numbers: %w", err)
	}

	max := 0
	for _, number := range numbers {
		if seq, ok := ParseFileNumberSequence(number, period); ok && seq > max {
			max = seq
		}
	}
	return max, nil
}

func validatePeriod(period string) error {
	if len(period) != 2 {
		return &ValidationError{Msg: "period must be the two-digit year"}
	}
	for _, c := range period {
		if c < '0' || c > '9' {
			return &ValidationError{Msg: "period must be the two-digit year"}
		}
	}
	return nil
}

// AllocateFileNumber returns the next free file number for the period and
// consumes its sequence number. The sequence is one greater than the highest
// of the per-period counter and the highest number already persisted, so
// manually assigned numbers are never reissued.
func AllocateFileNumber(db *gorm.DB, period string) (string, error) {
	if err := validatePeriod(period); err != nil {
		return "", err
	}

	allocMu.Lock()
	defer allocMu.Unlock()

	var sequence int
	err := db.Transaction(func(tx *gorm.DB) error {
		used, err := maxUsedSequence(tx, period)
		if err != nil {
			return err
		}

		var counter models.FileNumberCounter
		err = tx.Where("period = ?", period).First(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = models.FileNumberCounter{Period: period}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		sequence = counter.LastSequence
		if used > sequence {
			sequence = used
		}
		sequence++

		return tx.Model(&models.FileNumberCounter{}).
			Where("period = ?", period).
			UpdateColumn("last_sequence", sequence).Error
	})
	if err != nil {
		return "", &WriteError{Op: "failed to allocate file number", Err: err}
	}

	return FormatFileNumber(sequence, period), nil
}

// PeekNextFileNumber computes the file number the next allocation would
// return without consuming a sequence number
func PeekNextFileNumber(db *gorm.DB, period string) (string, error) {
	if err := validatePeriod(period); err != nil {
		return "", err
	}

	used, err := maxUsedSequence(db, period)
	if err != nil {
		return "", &WriteError{Op: "failed to compute next file number", Err: err}
	}

	var counter models.FileNumberCounter
	err = db.Where("period = ?", period).First(&counter).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &WriteError{Op: "failed to read file number counter", Err: err}
	}

	next := counter.LastSequence
	if used > next {
		next = used
	}
	return FormatFileNumber(next+1, period), nil
}
