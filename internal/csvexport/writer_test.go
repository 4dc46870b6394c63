package csvexport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverscan/internal/appform"
	"coverscan/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 29)
	assert.Equal(t, "Submission ID", row[0])
	assert.Equal(t, "Form Type", row[1])
	assert.Equal(t, "Created At", row[28])
}

func TestWriteSubmissions_Completed(t *testing.T) {
	rec := appform.Record{
		Applicant: appform.Applicant{
			FirstName:   appform.NewFieldWith("Dana", appform.ConfidenceHigh),
			LastName:    appform.NewFieldWith("Whitfield", appform.ConfidenceHigh),
			DateOfBirth: appform.NewFieldWith("1985-04-12", appform.ConfidenceMedium),
			Phone:       appform.NewFieldWith("555-0142", appform.ConfidenceLow).Flag(),
			Email:       appform.NewFieldWith("dana@example.com", appform.ConfidenceHigh),
			City:        appform.NewFieldWith("Springfield", appform.ConfidenceHigh),
			State:       appform.NewFieldWith("IL", appform.ConfidenceHigh),
			Zip:         appform.NewFieldWith("62704", appform.ConfidenceHigh),
		},
		Policy: appform.Policy{
			EffectiveDate: appform.NewFieldWith("2025-07-01", appform.ConfidenceHigh),
			PriorCarrier:  appform.NewFieldWith("Acme Mutual", appform.ConfidenceMedium),
		},
		Collections: appform.Collections{
			Vehicles: []appform.Vehicle{
				{ID: "v1", Vin: appform.NewFieldWith("1HGCM82633A004352", appform.ConfidenceLow).Flag()},
				{ID: "v2", Vin: appform.NewFieldWith("2T1BU4EE9DC071997", appform.ConfidenceHigh)},
			},
			Drivers: []appform.Driver{
				{ID: "d1", FirstName: appform.NewFieldWith("Lee", appform.ConfidenceHigh)},
			},
			Deductibles: []appform.Deductible{
				{ID: "ded1", VehicleRef: appform.NewFieldWith("v1", appform.ConfidenceHigh)},
				{ID: "ded2", VehicleRef: appform.NewFieldWith("v2", appform.ConfidenceHigh)},
			},
			Lienholders: []appform.Lienholder{
				{ID: "l1", VehicleRef: appform.NewFieldWith("v1", appform.ConfidenceHigh)},
			},
			Accidents: []appform.Accident{
				{ID: "a1", Date: appform.NewFieldWith("2023-04-01", appform.ConfidenceHigh)},
			},
		},
	}
	recordData, err := json.Marshal(&rec)
	require.NoError(t, err)

	processedAt := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	createdAt := time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC)

	sub := domain.Submission{
		ID:             uuid.New(),
		FormType:       domain.FormTypeAuto,
		Status:         domain.ProcessingStatusCompleted,
		ReviewStatus:   domain.ReviewStatusPending,
		ParserProvider: "claude",
		RecordData:     recordData,
		PageCount:      3,
		ReviewerNotes:  "Checked VINs",
		ProcessedAt:    &processedAt,
		CreatedAt:      createdAt,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteSubmissions([]domain.Submission{sub}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 29)
	assert.Equal(t, sub.ID.String(), row[0])
	assert.Equal(t, "auto", row[1])
	assert.Equal(t, "completed", row[2])
	assert.Equal(t, "pending_review", row[3])
	assert.Equal(t, "Dana", row[4])
	assert.Equal(t, "Whitfield", row[5])
	assert.Equal(t, "1985-04-12", row[6])
	assert.Equal(t, "555-0142", row[7])
	assert.Equal(t, "dana@example.com", row[8])
	assert.Equal(t, "Springfield", row[9])
	assert.Equal(t, "IL", row[10])
	assert.Equal(t, "62704", row[11])
	assert.Equal(t, "2025-07-01", row[12])
	assert.Equal(t, "Acme Mutual", row[13])
	assert.Equal(t, "2", row[14])
	assert.Equal(t, "1", row[15])
	assert.Equal(t, "2", row[16])
	assert.Equal(t, "1", row[17])
	assert.Equal(t, "1", row[18])
	assert.Equal(t, "0", row[19])
	assert.Equal(t, "0", row[20])
	assert.Equal(t, "0", row[21])
	assert.Equal(t, "2", row[22], "applicant phone and one VIN are flagged")
	assert.Equal(t, "3", row[23])
	assert.Equal(t, "claude", row[24])
	assert.Equal(t, "Checked VINs", row[25])
	assert.Equal(t, "", row[26])
	assert.Equal(t, "2025-01-15T10:30:00Z", row[27])
	assert.Equal(t, "2025-01-14T08:00:00Z", row[28])
}

func TestWriteSubmissions_Unprocessed(t *testing.T) {
	createdAt := time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC)
	sub := domain.Submission{
		ID:           uuid.New(),
		FormType:     domain.FormTypeHome,
		Status:       domain.ProcessingStatusPending,
		ReviewStatus: domain.ReviewStatusPending,
		PageCount:    1,
		CreatedAt:    createdAt,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteSubmissions([]domain.Submission{sub}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 29)
	assert.Equal(t, "home", row[1])
	assert.Equal(t, "pending", row[2])
	// Record columns should be empty
	for i := 4; i <= 22; i++ {
		assert.Empty(t, row[i], "column %d should be empty for unprocessed submission", i)
	}
	assert.Equal(t, "", row[27]) // processed_at empty
	assert.Equal(t, "2025-01-14T08:00:00Z", row[28])
}

func TestWriteSubmissions_MalformedJSON(t *testing.T) {
	sub := domain.Submission{
		ID:         uuid.New(),
		FormType:   domain.FormTypeAuto,
		Status:     domain.ProcessingStatusCompleted,
		RecordData: json.RawMessage(`{invalid json`),
		CreatedAt:  time.Now(),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteSubmissions([]domain.Submission{sub}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 29)
	assert.Equal(t, "completed", row[2])
	// Record columns should be empty due to unmarshal failure
	for i := 4; i <= 22; i++ {
		assert.Empty(t, row[i], "column %d should be empty for malformed JSON", i)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Auto Submissions", "Auto_Submissions"},
		{"special chars", "FY 2024-25 / Q3 (Oct–Dec)", "FY_2024-25_Q3_Oct_Dec"},
		{"unicode", "कंपनी Submissions", "Submissions"},
		{"hyphens and underscores preserved", "my-export_2025", "my-export_2025"},
		{"consecutive underscores collapsed", "test___export", "test_export"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{
			"long name truncated",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-extra",
			"abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrstuvwxyz-abcdefghijklmnopqrs",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	filename := BuildFilename("Auto Submissions")
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "Auto_Submissions_"+today+".csv", filename)
}
