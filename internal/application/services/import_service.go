package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
	"github.com/zatekoja/dentisalud-funnel/pkg/utils"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindBool
	kindInt
	kindFloat
	kindList
)

// directoryFields maps seed document keys onto medical_directory_raw columns
var directoryFields = []struct {
	column string
	key    string
	kind   fieldKind
}{
	{"speciality_cod", "SpecialityCod", kindText},
	{"speciality", "Speciality", kindText},
	{"online_appointment", "OnlineAppointment", kindBool},
	{"electronic_prescription", "ElectronicPrescription", kindBool},
	{"virtual_consultation", "VirtualConsultation", kindBool},
	{"attention_type_id", "AttentionTypeId", kindInt},
	{"biller", "Biller", kindText},
	{"company_cod", "CompanyCod", kindText},
	{"networks", "Networks", kindList},
	{"professional_id", "ProfessionalId", kindText},
	{"professional_nif", "ProfessionalNif", kindText},
	{"professional_name", "ProfessionalName", kindText},
	{"professional_last_name_1", "ProfessionalLastName1", kindText},
	{"professional_last_name_2", "ProfessionalLastName2", kindText},
	{"professional_nick_name", "ProfessionalNickName", kindText},
	{"professional_membership_number", "ProfessionalMembershipNumber", kindText},
	{"professional_province", "ProfessionalProvince", kindText},
	{"professional_expert_in", "ProfessionalExpertIn", kindText},
	{"professional_curriculum_vitae", "ProfessionalCurriculumVitae", kindText},
	{"professional_average_rating", "ProfessionalAverageRating", kindText},
	{"sp_id", "SpId", kindText},
	{"sp_preferential", "SpPreferential", kindBool},
	{"sp_name", "SpName", kindText},
	{"sp_last_name_1", "SpLastName1", kindText},
	{"sp_last_name_2", "SpLastName2", kindText},
	{"sp_customer_telephone_1", "SpCustomerTelephone1", kindText},
	{"sp_customer_telephone_2", "SpCustomerTelephone2", kindText},
	{"sp_email_1", "SpEmail1", kindText},
	{"sp_email_2", "SpEmail2", kindText},
	{"sp_schedule_1", "SpSchedule1", kindText},
	{"sp_schedule_2", "SpSchedule2", kindText},
	{"sp_web_site", "SpWebSite", kindText},
	{"sp_point_contact_id", "SpPointContactId", kindText},
	{"sp_is_health_space", "SpIsHealthSpace", kindBool},
	{"sp_average_rating", "SpAverageRating", kindText},
	{"sp_is_colaborator", "SpIsColaborator", kindBool},
	{"nature_cod", "NatureCod", kindText},
	{"nature", "Nature", kindText},
	{"road_type", "RoadType", kindText},
	{"road", "Road", kindText},
	{"address_id", "AddressId", kindText},
	{"address_cod", "AddressCod", kindText},
	{"address", "Address", kindText},
	{"town", "Town", kindText},
	{"province", "Province", kindText},
	{"postal_code", "PostalCode", kindText},
	{"latitude", "Latitude", kindFloat},
	{"longitude", "Longitude", kindFloat},
	{"merge_order", "MergeOrder", kindText},
	{"weight_sorting", "WeightSorting", kindFloat},
	{"combined_name", "CombinedName", kindText},
	{"prescription_without_authorization", "PrescriptionWithoutAuthorization", kindBool},
	{"is_center", "isCenter", kindBool},
	{"last_modified", "lastModified", kindText},
	{"specialists_01", "Specialists01", kindText},
	{"specialists_02", "Specialists02", kindText},
	{"specialists_03", "Specialists03", kindText},
	{"specialists_04", "Specialists04", kindText},
	{"canonical", "canonical", kindText},
	{"ofuscate_document_id", "ofuscateDocumentId", kindText},
}

func convertField(v any, kind fieldKind) any {
	switch kind {
	case kindBool:
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	case kindInt:
		if f, ok := utils.AnyToFloat(v); ok {
			return int64(f)
		}
		return nil
	case kindFloat:
		if f, ok := utils.AnyToFloat(v); ok {
			return f
		}
		return nil
	case kindList:
		if list, ok := utils.AnyToStringSlice(v); ok && list != nil {
			return list
		}
		return nil
	default:
		return utils.OptionalString(v)
	}
}

// MapDirectoryDocument converts one seed document into a medical_directory_raw
// record. Documents without MedicalDirectoryId are rejected.
func MapDirectoryDocument(doc map[string]any) (map[string]any, bool) {
	id := utils.OptionalString(doc["MedicalDirectoryId"])
	if id == nil {
		return nil, false
	}

	record := make(map[string]any, len(directoryFields)+2)
	record["medical_directory_id"] = id
	for _, f := range directoryFields {
		record[f.column] = convertField(doc[f.key], f.kind)
	}

	record["location_gis"] = nil
	lat, latOK := record["latitude"].(float64)
	lon, lonOK := record["longitude"].(float64)
	if latOK && lonOK && lat != 0 && lon != 0 && entities.ValidCoordinates(lat, lon) {
		record["location_gis"] = fmt.Sprintf("SRID=4326;POINT(%s %s)", utils.JSONString(lon), utils.JSONString(lat))
	}
	return record, true
}

// ParseDirectorySeed decodes a seed export and maps its documents. The
// second return value counts documents that were skipped.
func ParseDirectorySeed(r io.Reader) ([]map[string]any, int, error) {
	var seed entities.DirectorySeed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, 0, apperrors.NewValidationError("invalid directory seed: " + err.Error())
	}
	if seed.Results == nil {
		return nil, 0, apperrors.NewValidationError(`invalid directory seed: missing "results"`)
	}

	records := make([]map[string]any, 0, len(seed.Results))
	skipped := 0
	for _, item := range seed.Results {
		rec, ok := MapDirectoryDocument(item.Document)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// DirectoryCacheInvalidator drops cached lookups after the directory changes
type DirectoryCacheInvalidator interface {
	Invalidate(ctx context.Context, regions []string) error
}

// ImportOptions tunes a directory import
type ImportOptions struct {
	BatchSize int
	Workers   int

	// OnBatch is called after each batch with the running record count
	OnBatch func(done, total int)
}

// DirectoryImportService loads seed exports into the directory table
type DirectoryImportService struct {
	writer      repositories.DirectoryWriter
	invalidator DirectoryCacheInvalidator
	metrics     *observability.Metrics
	logger      zerolog.Logger
}

// NewDirectoryImportService creates a new import service. invalidator may be nil.
func NewDirectoryImportService(writer repositories.DirectoryWriter, invalidator DirectoryCacheInvalidator, metrics *observability.Metrics) *DirectoryImportService {
	return &DirectoryImportService{
		writer:      writer,
		invalidator: invalidator,
		metrics:     metrics,
		logger:      observability.Component("directory_import"),
	}
}

// ImportFile parses a seed export and imports it
func (s *DirectoryImportService) ImportFile(ctx context.Context, r io.Reader, opts ImportOptions) (entities.ImportResult, error) {
	records, skipped, err := ParseDirectorySeed(r)
	if err != nil {
		return entities.ImportResult{}, err
	}
	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Msg("seed documents without MedicalDirectoryId")
	}
	return s.Import(ctx, records, opts)
}

// Import upserts records in batches on a bounded worker pool. A failed
// batch is recorded and the rest continue.
func (s *DirectoryImportService) Import(ctx context.Context, records []map[string]any, opts ImportOptions) (entities.ImportResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	result := entities.ImportResult{TotalProcessed: len(records), Errors: []entities.BatchError{}}
	if len(records) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return result, apperrors.NewInternalError("failed to create import pool", err)
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done int
	)
	finish := func(offset, size int, err error) {
		mu.Lock()
		defer mu.Unlock()
		done += size
		if err != nil {
			result.Errors = append(result.Errors, entities.BatchError{Offset: offset, Size: size, Message: err.Error()})
			s.logger.Error().Err(err).Int("offset", offset).Int("size", size).Msg("directory batch failed")
		} else {
			result.Inserted += size
			observability.RecordImportedRows(ctx, s.metrics, size)
		}
		if opts.OnBatch != nil {
			opts.OnBatch(done, len(records))
		}
	}

	for offset := 0; offset < len(records); offset += opts.BatchSize {
		end := min(offset+opts.BatchSize, len(records))
		batch := records[offset:end]
		off := offset

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				finish(off, len(batch), err)
				return
			}
			finish(off, len(batch), s.writer.UpsertRecords(ctx, batch))
		})
		if submitErr != nil {
			wg.Done()
			finish(off, len(batch), submitErr)
		}
	}
	wg.Wait()

	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Offset < result.Errors[j].Offset })

	if s.invalidator != nil && result.Inserted > 0 {
		if err := s.invalidator.Invalidate(ctx, importedRegions(records)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate directory cache")
		}
	}

	s.logger.Info().Int("total", result.TotalProcessed).Int("inserted", result.Inserted).
		Int("failed_batches", len(result.Errors)).Msg("directory import finished")
	return result, nil
}

func importedRegions(records []map[string]any) []string {
	seen := map[string]struct{}{}
	var regions []string
	for _, r := range records {
		p, ok := r["province"].(string)
		if !ok || p == "" {
			continue
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			regions = append(regions, p)
		}
	}
	sort.Strings(regions)
	return regions
}
