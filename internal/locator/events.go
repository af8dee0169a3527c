package locator

import (
	"fmt"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// Event is a state transition applied on the session goroutine.
type Event interface {
	apply(s *Session)
}

// SetQuery updates the free-text search box.
type SetQuery struct{ Query string }

// SetRegion selects a region (province).
type SetRegion struct{ Region string }

// SetSubregion selects a sub-region (town) within the current region.
type SetSubregion struct{ Subregion string }

// SetPostalCode refines a region search by postal code.
type SetPostalCode struct{ PostalCode string }

// LocateRequested marks that the client is waiting on the platform for a position.
type LocateRequested struct{}

// NearMe delivers the user's position and searches around it immediately.
type NearMe struct{ Coordinates Coordinates }

// GeolocationFailed reports that no position could be obtained.
type GeolocationFailed struct{ Reason string }

// ClearSearch empties the search box, the filters and the result list.
type ClearSearch struct{}

// SelectServicePoint opens the detail view for a clinic.
type SelectServicePoint struct{ ServicePointID string }

// HighlightServicePoint marks a clinic from its map marker.
type HighlightServicePoint struct{ ServicePointID string }

// Back returns from the detail view to the map.
type Back struct{}

// DragEnd finishes a panel drag. Positive values point downwards.
type DragEnd struct {
	Offset   float64
	Velocity float64
}

// ToggleHandle taps the panel handle.
type ToggleHandle struct{}

// Reopen is sent when the locator overlay is shown again.
type Reopen struct{}

type debounceElapsed struct{ filterVersion uint64 }

type searchCompleted struct {
	seq           uint64
	filterVersion uint64
	nearMe        bool
	points        []entities.ServicePoint
	err           error
}

type detailCompleted struct {
	seq            uint64
	servicePointID string
	rows           []entities.DirectoryRow
	err            error
}

const (
	msgQueryFailed         = "No se pudo completar la búsqueda. Inténtalo de nuevo."
	msgGeolocationDenied   = "No se pudo obtener tu ubicación."
	msgInvalidCoordinates  = "La ubicación recibida no es válida."
	msgNoResultsInRadiusFm = "No hay centros en %gkm."
)

func (e SetQuery) apply(s *Session) {
	s.notice = nil
	s.setFilter(s.filter.WithQuery(e.Query))
}

func (e SetRegion) apply(s *Session) {
	s.notice = nil
	s.setFilter(s.filter.WithRegion(e.Region))
}

func (e SetSubregion) apply(s *Session) {
	s.notice = nil
	s.setFilter(s.filter.WithSubregion(e.Subregion))
}

func (e SetPostalCode) apply(s *Session) {
	s.notice = nil
	s.setFilter(s.filter.WithPostalCode(e.PostalCode))
}

func (LocateRequested) apply(s *Session) {
	s.notice = nil
	s.locating = true
}

func (e NearMe) apply(s *Session) {
	s.locating = false
	s.notice = nil
	if !entities.ValidCoordinates(e.Coordinates.Latitude, e.Coordinates.Longitude) {
		s.notice = &Notice{Kind: NoticeGeolocationUnavailable, Message: msgInvalidCoordinates}
		return
	}
	s.disarm()
	s.filter = s.filter.WithNearMe(e.Coordinates)
	s.filterVersion++
	s.dispatchSearch()
}

func (e GeolocationFailed) apply(s *Session) {
	s.locating = false
	s.logger.Debug().Str("reason", e.Reason).Msg("geolocation unavailable")
	s.notice = &Notice{Kind: NoticeGeolocationUnavailable, Message: msgGeolocationDenied}
}

func (ClearSearch) apply(s *Session) {
	s.notice = nil
	s.disarm()
	s.filter = FilterState{}
	s.filterVersion++
	s.detailSeq++
	s.results = []entities.ServicePoint{}
	s.detail = nil
	s.view = s.view.Cleared()
}

func (e SelectServicePoint) apply(s *Session) {
	if e.ServicePointID == "" {
		return
	}
	s.notice = nil
	s.dispatchDetail(e.ServicePointID)
}

func (e HighlightServicePoint) apply(s *Session) {
	s.view = s.view.Highlight(e.ServicePointID)
}

func (Back) apply(s *Session) {
	s.detailSeq++
	s.detail = nil
	s.view = s.view.Back()
}

func (e DragEnd) apply(s *Session) {
	s.view = s.view.DragEnd(e.Offset, e.Velocity)
}

func (ToggleHandle) apply(s *Session) {
	s.view = s.view.ToggleHandle()
}

func (Reopen) apply(s *Session) {
	s.detailSeq++
	s.detail = nil
	s.notice = nil
	s.view = NewViewState()
}

func (e debounceElapsed) apply(s *Session) {
	if e.filterVersion != s.filterVersion {
		return
	}
	s.stopTimer = nil
	s.dispatchSearch()
}

func (e searchCompleted) apply(s *Session) {
	s.inFlight--
	mode := searchMode(e.nearMe)

	if e.seq != s.searchSeq || e.filterVersion != s.filterVersion {
		s.logger.Debug().Uint64("seq", e.seq).Uint64("current_seq", s.searchSeq).Msg("discarding stale search result")
		if s.observer != nil {
			s.observer.StaleDiscarded()
		}
		return
	}

	if e.err != nil {
		s.logger.Warn().Err(e.err).Str("mode", mode).Msg("service point search failed")
		s.notice = &Notice{Kind: NoticeQueryFailed, Message: msgQueryFailed}
		if s.observer != nil {
			s.observer.SearchCompleted(mode, "error")
		}
		return
	}

	points := e.points
	if points == nil {
		points = []entities.ServicePoint{}
	}
	s.results = points
	s.detail = nil
	s.view = s.view.ResultsArrived(len(points))

	outcome := "ok"
	if len(points) == 0 {
		outcome = "empty"
		if e.nearMe {
			s.notice = &Notice{
				Kind:    NoticeNoResultsInRadius,
				Message: fmt.Sprintf(msgNoResultsInRadiusFm, s.settings.NearMeRadiusMeters/1000),
			}
		}
	}
	if s.observer != nil {
		s.observer.SearchCompleted(mode, outcome)
	}
}

func (e detailCompleted) apply(s *Session) {
	s.inFlight--
	if e.seq != s.detailSeq {
		return
	}
	if e.err != nil {
		s.logger.Warn().Err(e.err).Str("sp_id", e.servicePointID).Msg("service point detail failed")
		s.notice = &Notice{Kind: NoticeQueryFailed, Message: msgQueryFailed}
		return
	}

	g := GroupPractitioners(s.servicePointName(e.servicePointID, e.rows), e.rows)
	if len(g.UnknownSpecialties) > 0 {
		s.logger.Debug().Strs("labels", g.UnknownSpecialties).Str("sp_id", e.servicePointID).
			Msg("unrecognized specialty labels")
	}
	s.detail = g.Detail(e.servicePointID)
	s.view = s.view.Select(e.servicePointID)
}
