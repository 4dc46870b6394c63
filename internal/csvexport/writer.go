package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"coverscan/internal/appform"
	"coverscan/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (29 columns).
var columns = []string{
	"Submission ID",
	"Form Type",
	"Status",
	"Review Status",
	"Applicant First Name",
	"Applicant Last Name",
	"Date of Birth",
	"Phone",
	"Email",
	"City",
	"State",
	"Zip",
	"Effective Date",
	"Prior Carrier",
	"Vehicles",
	"Drivers",
	"Deductibles",
	"Lienholders",
	"Accidents",
	"Tickets",
	"Claims",
	"Scheduled Items",
	"Flagged Fields",
	"Pages",
	"Provider",
	"Reviewer Notes",
	"Submitted At",
	"Processed At",
	"Created At",
}

// Writer wraps csv.Writer for exporting submissions as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 29-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteSubmissions converts a batch of submissions to CSV rows and writes them.
func (w *Writer) WriteSubmissions(subs []domain.Submission) error {
	for i := range subs {
		row := submissionToRow(&subs[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// submissionToRow converts a single submission to a 29-element string slice.
// If recognition has not completed or RecordData is invalid, metadata columns
// are filled and record columns are left empty.
func submissionToRow(sub *domain.Submission) []string {
	row := make([]string, len(columns))

	// Metadata columns (always filled)
	row[0] = sub.ID.String()
	row[1] = string(sub.FormType)
	row[2] = string(sub.Status)
	row[3] = string(sub.ReviewStatus)
	row[23] = strconv.Itoa(sub.PageCount)
	row[24] = sub.ParserProvider
	row[25] = sub.ReviewerNotes
	row[26] = formatTime(sub.SubmittedAt)
	row[27] = formatTime(sub.ProcessedAt)
	row[28] = sub.CreatedAt.Format(time.RFC3339)

	// Record columns: only if recognition completed and JSON is valid
	if sub.Status != domain.ProcessingStatusCompleted || len(sub.RecordData) == 0 {
		return row
	}

	var rec appform.Record
	if err := json.Unmarshal(sub.RecordData, &rec); err != nil {
		return row
	}

	row[4] = rec.Applicant.FirstName.ValueOr("")
	row[5] = rec.Applicant.LastName.ValueOr("")
	row[6] = rec.Applicant.DateOfBirth.ValueOr("")
	row[7] = rec.Applicant.Phone.ValueOr("")
	row[8] = rec.Applicant.Email.ValueOr("")
	row[9] = rec.Applicant.City.ValueOr("")
	row[10] = rec.Applicant.State.ValueOr("")
	row[11] = rec.Applicant.Zip.ValueOr("")
	row[12] = rec.Policy.EffectiveDate.ValueOr("")
	row[13] = rec.Policy.PriorCarrier.ValueOr("")
	row[14] = strconv.Itoa(len(rec.Collections.Vehicles))
	row[15] = strconv.Itoa(len(rec.Collections.Drivers))
	row[16] = strconv.Itoa(len(rec.Collections.Deductibles))
	row[17] = strconv.Itoa(len(rec.Collections.Lienholders))
	row[18] = strconv.Itoa(len(rec.Collections.Accidents))
	row[19] = strconv.Itoa(len(rec.Collections.Tickets))
	row[20] = strconv.Itoa(len(rec.Collections.Claims))
	row[21] = strconv.Itoa(len(rec.Collections.ScheduledItems))
	row[22] = strconv.Itoa(flaggedCount(&rec))

	return row
}

// flaggedCount walks every field in the record and counts raised flags.
func flaggedCount(rec *appform.Record) int {
	n := 0
	for _, s := range rec.Sections() {
		for _, f := range s.Fields() {
			if f.Flagged {
				n++
			}
		}
		for _, f := range s.BoolFields() {
			if f.Flagged {
				n++
			}
		}
	}
	c := &rec.Collections
	maps := make([]map[string]*appform.Field, 0, 32)
	for i := range c.Vehicles {
		maps = append(maps, c.Vehicles[i].FieldMap())
	}
	for i := range c.Drivers {
		maps = append(maps, c.Drivers[i].FieldMap())
	}
	for i := range c.Deductibles {
		maps = append(maps, c.Deductibles[i].FieldMap())
	}
	for i := range c.Lienholders {
		maps = append(maps, c.Lienholders[i].FieldMap())
	}
	for i := range c.Accidents {
		maps = append(maps, c.Accidents[i].FieldMap())
	}
	for i := range c.Tickets {
		maps = append(maps, c.Tickets[i].FieldMap())
	}
	for i := range c.Claims {
		maps = append(maps, c.Claims[i].FieldMap())
	}
	for i := range c.ScheduledItems {
		maps = append(maps, c.ScheduledItems[i].FieldMap())
	}
	for _, m := range maps {
		for _, f := range m {
			if f.Flagged {
				n++
			}
		}
	}
	return n
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_prefix}_{YYYY-MM-DD}.csv
func BuildFilename(prefix string) string {
	sanitized := SanitizeFilename(prefix)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
