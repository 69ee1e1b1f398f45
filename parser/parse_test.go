package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	customerrors "session-analyzer/errors"
	"session-analyzer/models"
	"session-analyzer/parser"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	// Helper to create a civil date at midnight UTC
	date := func(value string) time.Time {
		d, err := time.ParseInLocation("2006-01-02", value, time.UTC)
		if err != nil {
			panic(err)
		}
		return d
	}

	// Helper to anchor an HH:MM clock to a date
	clock := func(day string, hour, minute int) time.Time {
		d := date(day)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
	}

	tests := map[string]struct {
		input         string
		expectedData  []models.Session
		expectedError error
	}{
		"ValidInput_SingleLine": {
			input: `
2025-03-10, 09:00, 12:00, PEARSON VUE, AWS SAA, 50, calicut
`,
			expectedData: []models.Session{
				{
					Date:       date("2025-03-10"),
					Start:      clock("2025-03-10", 9, 0),
					End:        clock("2025-03-10", 12, 0),
					ClientName: "PEARSON VUE",
					ExamName:   "AWS SAA",
					Candidates: 50,
					Branch:     "calicut",
				},
			},
			expectedError: nil,
		},
		"ValidInput_MultipleLines_WithComments": {
			input: `
# Monthly session export
# Date, Start, End, Client, Exam, Candidates, Branch
2025-03-10, 09:00, 12:00, PSI Services, CompTIA A+, 30, cochin
2025-03-11, 13:30, 16:00, Prometric CMA, CMA Part 1, 25, calicut
`,
			expectedData: []models.Session{
				{
					Date:       date("2025-03-10"),
					Start:      clock("2025-03-10", 9, 0),
					End:        clock("2025-03-10", 12, 0),
					ClientName: "PSI Services",
					ExamName:   "CompTIA A+",
					Candidates: 30,
					Branch:     "cochin",
				},
				{
					Date:       date("2025-03-11"),
					Start:      clock("2025-03-11", 13, 30),
					End:        clock("2025-03-11", 16, 0),
					ClientName: "Prometric CMA",
					ExamName:   "CMA Part 1",
					Candidates: 25,
					Branch:     "calicut",
				},
			},
			expectedError: nil,
		},
		"ValidInput_NoBranch": {
			input: `
2025-03-10, 09:00, 12:00, ITTS, IELTS, 20
`,
			expectedData: []models.Session{
				{
					Date:       date("2025-03-10"),
					Start:      clock("2025-03-10", 9, 0),
					End:        clock("2025-03-10", 12, 0),
					ClientName: "ITTS",
					ExamName:   "IELTS",
					Candidates: 20,
					Branch:     "",
				},
			},
			expectedError: nil,
		},
		"ValidInput_BranchLowercased": {
			input: `
2025-03-10, 09:00, 12:00, ITTS, IELTS, 20, Kannur
`,
			expectedData: []models.Session{
				{
					Date:       date("2025-03-10"),
					Start:      clock("2025-03-10", 9, 0),
					End:        clock("2025-03-10", 12, 0),
					ClientName: "ITTS",
					ExamName:   "IELTS",
					Candidates: 20,
					Branch:     "kannur",
				},
			},
			expectedError: nil,
		},
		"Error_InvalidFieldCount": {
			input: `
2025-03-10, 09:00, 12:00, PEARSON VUE, AWS SAA
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidFieldCount,
		},
		"Error_InvalidDate": {
			input: `
10/03/2025, 09:00, 12:00, PEARSON VUE, AWS SAA, 50, calicut
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidDate,
		},
		"Error_InvalidStartTime": {
			input: `
2025-03-10, 9AM, 12:00, PEARSON VUE, AWS SAA, 50, calicut
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidStartTime,
		},
		"Error_InvalidEndTime": {
			input: `
2025-03-10, 09:00, 25:00, PEARSON VUE, AWS SAA, 50, calicut
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidEndTime,
		},
		"Error_StartNotBeforeEnd": {
			input: `
2025-03-10, 12:00, 09:00, PEARSON VUE, AWS SAA, 50, calicut
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidTimeOrder,
		},
		"Error_EqualStartAndEnd": {
			input: `
2025-03-10, 09:00, 09:00, PEARSON VUE, AWS SAA, 50, calicut
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidTimeOrder,
		},
		"Error_InvalidCandidates": {
			input: `
2025-03-10, 09:00, 12:00, PEARSON VUE, AWS SAA, fifty, calicut
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidCandidates,
		},
		"Error_ZeroCandidates": {
			input: `
2025-03-10, 09:00, 12:00, PEARSON VUE, AWS SAA, 0, calicut
`,
			expectedData:  nil,
			expectedError: customerrors.ErrInvalidCandidates,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := strings.NewReader(strings.TrimSpace(tt.input))
			got, err := parser.Parse(r)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("Parse() error = %v, expectedError %v", err, tt.expectedError)
				}
				var parseErr *customerrors.ParseError
				assert.True(t, errors.As(err, &parseErr), "error should carry line/record context")
				return
			}

			if err != nil {
				t.Errorf("Parse() unexpected error = %v", err)
				return
			}

			assert.Equal(t, got, tt.expectedData, fmt.Sprintf("Parse() = %v, want %v", got, tt.expectedData))
		})
	}
}

func TestParse_ErrorReportsLine(t *testing.T) {
	input := strings.TrimSpace(`
# header
2025-03-10, 09:00, 12:00, PEARSON VUE, AWS SAA, 50, calicut
2025-03-11, 09:00, 12:00, PSI, CompTIA, zero, calicut
`)

	_, err := parser.Parse(strings.NewReader(input))

	var parseErr *customerrors.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 3, parseErr.Line)
	assert.True(t, errors.Is(err, customerrors.ErrInvalidCandidates))
}
