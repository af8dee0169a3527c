package database

import (
	"context"
	"database/sql"
	"sort"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	"github.com/zatekoja/dentisalud-funnel/internal/locator"
	apperrors "github.com/zatekoja/dentisalud-funnel/pkg/errors"
)

const directoryTable = "medical_directory_raw"

// DirectoryAdapter implements DirectoryRepository and DirectoryWriter over medical_directory_raw
type DirectoryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	logger zerolog.Logger
}

// NewDirectoryAdapter creates a new directory adapter
func NewDirectoryAdapter(client *postgres.Client) *DirectoryAdapter {
	return &DirectoryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		logger: observability.Component("directory_adapter"),
	}
}

var (
	_ repositories.DirectoryRepository = (*DirectoryAdapter)(nil)
	_ repositories.DirectoryWriter     = (*DirectoryAdapter)(nil)
)

// servicePointRow is a get_service_points result before validation
type servicePointRow struct {
	ID               sql.NullString  `db:"sp_id"`
	Name             sql.NullString  `db:"sp_name"`
	Address          sql.NullString  `db:"address"`
	PostalCode       sql.NullString  `db:"postal_code"`
	Town             sql.NullString  `db:"town"`
	Province         sql.NullString  `db:"province"`
	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	Rating           sql.NullFloat64 `db:"rating"`
	NumProfessionals sql.NullInt64   `db:"num_professionals"`
	DistanceMeters   sql.NullFloat64 `db:"dist_meters"`
	Specialties      pq.StringArray  `db:"specialties"`
}

func (r servicePointRow) valid() bool {
	return r.ID.Valid && r.ID.String != "" &&
		r.Latitude.Valid && r.Longitude.Valid &&
		entities.ValidCoordinates(r.Latitude.Float64, r.Longitude.Float64)
}

func (r servicePointRow) toEntity() entities.ServicePoint {
	return entities.ServicePoint{
		ID:               r.ID.String,
		Name:             r.Name.String,
		Address:          r.Address.String,
		PostalCode:       r.PostalCode.String,
		Town:             r.Town.String,
		Province:         r.Province.String,
		Latitude:         r.Latitude.Float64,
		Longitude:        r.Longitude.Float64,
		Rating:           r.Rating.Float64,
		NumProfessionals: int(r.NumProfessionals.Int64),
		DistanceMeters:   r.DistanceMeters.Float64,
		Specialties:      locator.NormalizeSpecialties(r.Specialties),
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SearchServicePoints calls the get_service_points gateway function.
// Rows without an id or usable coordinates are dropped and logged.
func (a *DirectoryAdapter) SearchServicePoints(ctx context.Context, q entities.ServicePointQuery) ([]entities.ServicePoint, error) {
	query, args, err := a.db.Select(
		"sp_id", "sp_name", "address", "postal_code", "town", "province",
		"latitude", "longitude", "rating", "num_professionals", "dist_meters", "specialties",
	).From(goqu.L(
		"get_service_points(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		q.Latitude, q.Longitude, q.Limit, q.MaxDistanceMeters,
		nullIfEmpty(q.Text), nullIfEmpty(q.Region), nullIfEmpty(q.Subregion), nullIfEmpty(q.PostalCode),
		q.OrderByDistance,
	)).Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build service point query", err)
	}

	var rows []servicePointRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to search service points", err)
	}

	points := make([]entities.ServicePoint, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		if !r.valid() {
			dropped++
			continue
		}
		points = append(points, r.toEntity())
	}
	if dropped > 0 {
		a.logger.Warn().Int("dropped", dropped).Int("returned", len(points)).
			Msg("dropped service points without id or coordinates")
	}

	return points, nil
}

// ListRegions returns the distinct provinces present in the directory
func (a *DirectoryAdapter) ListRegions(ctx context.Context) ([]string, error) {
	query, args, err := a.db.From(directoryTable).
		Select("province").
		Distinct().
		Where(goqu.C("province").IsNotNull(), goqu.C("province").Neq("")).
		Order(goqu.C("province").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build regions query", err)
	}

	regions := []string{}
	if err := a.client.DBX().SelectContext(ctx, &regions, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list regions", err)
	}
	return regions, nil
}

// ListSubregions returns the distinct towns of one province
func (a *DirectoryAdapter) ListSubregions(ctx context.Context, region string) ([]string, error) {
	query, args, err := a.db.From(directoryTable).
		Select("town").
		Distinct().
		Where(
			goqu.Ex{"province": region},
			goqu.C("town").IsNotNull(),
			goqu.C("town").Neq(""),
		).
		Order(goqu.C("town").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build subregions query", err)
	}

	towns := []string{}
	if err := a.client.DBX().SelectContext(ctx, &towns, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list subregions", err)
	}
	return towns, nil
}

var directoryRowColumns = []string{
	"medical_directory_id", "sp_id", "sp_name", "professional_name", "speciality",
	"address", "postal_code", "town", "province", "sp_customer_telephone_1",
	"sp_average_rating", "combined_name", "nature",
}

// ListRowsByServicePoint returns every directory row of one service point
func (a *DirectoryAdapter) ListRowsByServicePoint(ctx context.Context, servicePointID string) ([]entities.DirectoryRow, error) {
	cols := make([]any, 0, len(directoryRowColumns)+2)
	for _, c := range directoryRowColumns {
		cols = append(cols, goqu.COALESCE(goqu.C(c), "").As(c))
	}
	cols = append(cols, "latitude", "longitude")

	query, args, err := a.db.From(directoryTable).
		Select(cols...).
		Where(goqu.Ex{"sp_id": servicePointID}).
		Order(goqu.C("medical_directory_id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build directory rows query", err)
	}

	rows := []entities.DirectoryRow{}
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list directory rows", err)
	}
	return rows, nil
}

// UpsertRecords inserts raw records, updating existing ones on medical_directory_id.
// Every record must carry the same columns.
func (a *DirectoryAdapter) UpsertRecords(ctx context.Context, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]any, len(records))
	for i, r := range records {
		rec := make(goqu.Record, len(r))
		for col, v := range r {
			if list, ok := v.([]string); ok {
				v = pq.StringArray(list)
			}
			rec[col] = v
		}
		rows[i] = rec
	}

	update := goqu.Record{}
	columns := make([]string, 0, len(records[0]))
	for col := range records[0] {
		if col != "medical_directory_id" {
			columns = append(columns, col)
		}
	}
	sort.Strings(columns)
	for _, col := range columns {
		update[col] = goqu.L("EXCLUDED." + col)
	}

	query, args, err := a.db.Insert(directoryTable).
		Rows(rows...).
		OnConflict(goqu.DoUpdate("medical_directory_id", update)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build directory upsert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert directory records", err)
	}
	return nil
}
