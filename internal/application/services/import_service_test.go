package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

func TestMapDirectoryDocument(t *testing.T) {
	rec, ok := services.MapDirectoryDocument(map[string]any{
		"MedicalDirectoryId":        float64(1234567),
		"SpId":                      float64(88),
		"SpName":                    "Clínica Dental Sol",
		"ProfessionalName":          "",
		"Speciality":                "Odontología General",
		"OnlineAppointment":         true,
		"AttentionTypeId":           float64(2),
		"Networks":                  []any{"DKV", nil, "Élite"},
		"SpAverageRating":           float64(4.5),
		"ProfessionalAverageRating": nil,
		"Latitude":                  40.4168,
		"Longitude":                 -3.7038,
		"Province":                  "Madrid",
		"isCenter":                  "yes",
	})
	require.True(t, ok)

	assert.Equal(t, "1234567", rec["medical_directory_id"])
	assert.Equal(t, "88", rec["sp_id"])
	assert.Equal(t, "Clínica Dental Sol", rec["sp_name"])
	assert.Nil(t, rec["professional_name"])
	assert.Equal(t, true, rec["online_appointment"])
	assert.Equal(t, int64(2), rec["attention_type_id"])
	assert.Equal(t, []string{"DKV", "Élite"}, rec["networks"])
	assert.Equal(t, "4.5", rec["sp_average_rating"])
	assert.Nil(t, rec["professional_average_rating"])
	assert.Nil(t, rec["is_center"])
	assert.Equal(t, "SRID=4326;POINT(-3.7038 40.4168)", rec["location_gis"])

	// Every column is present so batches share one column set.
	other, ok := services.MapDirectoryDocument(map[string]any{"MedicalDirectoryId": "x"})
	require.True(t, ok)
	assert.Len(t, other, len(rec))
	assert.Nil(t, other["location_gis"])
}

func TestMapDirectoryDocument_RequiresID(t *testing.T) {
	_, ok := services.MapDirectoryDocument(map[string]any{"SpId": "1"})
	assert.False(t, ok)
}

func TestParseDirectorySeed(t *testing.T) {
	records, skipped, err := services.ParseDirectorySeed(strings.NewReader(`{"results":[
		{"document":{"MedicalDirectoryId":1,"Latitude":0,"Longitude":0}},
		{"document":{"SpName":"sin id"}}
	]}`))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, skipped)
	assert.Nil(t, records[0]["location_gis"])

	_, _, err = services.ParseDirectorySeed(strings.NewReader(`{"items":[]}`))
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	_, _, err = services.ParseDirectorySeed(strings.NewReader(`not json`))
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}

func seedRecords(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		province := "Madrid"
		if i%2 == 1 {
			province = "Sevilla"
		}
		out[i] = map[string]any{"medical_directory_id": fmt.Sprint(i), "province": province}
	}
	return out
}

func TestDirectoryImportService_Import(t *testing.T) {
	writer := &mockDirectoryWriter{}
	invalidator := &mockInvalidator{}

	writer.On("UpsertRecords", mock.Anything, mock.MatchedBy(func(b []map[string]any) bool {
		return b[0]["medical_directory_id"] == "50"
	})).Return(errors.New("deadlock detected"))
	writer.On("UpsertRecords", mock.Anything, mock.Anything).Return(nil)
	invalidator.On("Invalidate", mock.Anything, []string{"Madrid", "Sevilla"}).Return(nil).Once()

	var mu sync.Mutex
	var progress []int
	svc := services.NewDirectoryImportService(writer, invalidator, nil)
	result, err := svc.Import(context.Background(), seedRecords(120), services.ImportOptions{
		BatchSize: 50,
		Workers:   3,
		OnBatch: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 120, total)
			progress = append(progress, done)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 120, result.TotalProcessed)
	assert.Equal(t, 70, result.Inserted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 50, result.Errors[0].Offset)
	assert.Equal(t, 50, result.Errors[0].Size)
	assert.Contains(t, result.Errors[0].Message, "deadlock")
	assert.False(t, result.Success())
	assert.Len(t, progress, 3)
	assert.Equal(t, 120, progress[len(progress)-1])
	writer.AssertNumberOfCalls(t, "UpsertRecords", 3)
	invalidator.AssertExpectations(t)
}

func TestDirectoryImportService_Import_Empty(t *testing.T) {
	writer := &mockDirectoryWriter{}
	result, err := services.NewDirectoryImportService(writer, nil, nil).Import(context.Background(), nil, services.ImportOptions{})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 0, result.TotalProcessed)
	writer.AssertNotCalled(t, "UpsertRecords", mock.Anything, mock.Anything)
}

func TestDirectoryImportService_ImportFile(t *testing.T) {
	writer := &mockDirectoryWriter{}
	writer.On("UpsertRecords", mock.Anything, mock.MatchedBy(func(b []map[string]any) bool { return len(b) == 2 })).Return(nil).Once()

	seed := `{"results":[{"document":{"MedicalDirectoryId":"a","Province":"Cádiz"}},{"document":{"MedicalDirectoryId":"b"}}]}`
	result, err := services.NewDirectoryImportService(writer, nil, nil).
		ImportFile(context.Background(), strings.NewReader(seed), services.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	writer.AssertExpectations(t)
}
