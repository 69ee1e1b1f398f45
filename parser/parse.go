package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"session-analyzer/errors"
	"session-analyzer/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Parse reads CSV session rows from the reader and returns a slice of
// Session. Lines whose first field starts with '#' are headers/comments
// and are skipped. Each data row carries:
//
//	date, start, end, client, exam, candidates[, branch]
//	2025-03-10, 09:00, 12:00, PEARSON VUE, AWS SAA, 50, calicut
//
// Dates are civil calendar dates (2006-01-02), times are 24-hour HH:MM
// on the same date; the trailing branch field is optional and left empty
// for legacy rows without an assignment.
func Parse(r io.Reader) ([]models.Session, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var sessions []models.Session
	lineNum := 0

	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		if strings.HasPrefix(record[0], "#") {
			continue
		}

		if len(record) != 6 && len(record) != 7 {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    errors.ErrInvalidFieldCount,
			}
		}

		s := models.Session{}
		s.Date, err = time.ParseInLocation(dateLayout, strings.TrimSpace(record[0]), time.UTC)
		if err != nil {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %v", errors.ErrInvalidDate, err),
			}
		}

		s.Start, err = parseClock(strings.TrimSpace(record[1]), s.Date)
		if err != nil {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %v", errors.ErrInvalidStartTime, err),
			}
		}

		s.End, err = parseClock(strings.TrimSpace(record[2]), s.Date)
		if err != nil {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %v", errors.ErrInvalidEndTime, err),
			}
		}

		if !s.Start.Before(s.End) {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    errors.ErrInvalidTimeOrder,
			}
		}

		s.ClientName = strings.TrimSpace(record[3])
		s.ExamName = strings.TrimSpace(record[4])

		s.Candidates, err = strconv.Atoi(strings.TrimSpace(record[5]))
		if err != nil || s.Candidates <= 0 {
			return nil, &errors.ParseError{
				Line:   lineNum,
				Record: record,
				Err:    fmt.Errorf("%w: %q", errors.ErrInvalidCandidates, strings.TrimSpace(record[5])),
			}
		}

		if len(record) == 7 {
			s.Branch = strings.ToLower(strings.TrimSpace(record[6]))
		}

		sessions = append(sessions, s)
	}

	return sessions, nil
}

// parseClock anchors an HH:MM string to the session's civil date.
func parseClock(value string, date time.Time) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
