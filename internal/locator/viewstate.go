package locator

// Mode is the top-level locator view.
type Mode string

const (
	ModeMap    Mode = "map"
	ModeDetail Mode = "detail"
)

// PanelOffset is the resting position of the draggable results panel.
type PanelOffset string

const (
	PanelPeek     PanelOffset = "peek"
	PanelMedium   PanelOffset = "medium"
	PanelExpanded PanelOffset = "expanded"
)

// Panel anchors, as a percentage of viewport height from the top.
const (
	AnchorExpanded = 15
	AnchorMedium   = 40
	AnchorPeek     = 88
	AnchorDetail   = 14
)

// Drag gestures must travel this far (px) or this fast (px/s) to move the panel.
const (
	DragOffsetThreshold   = 150.0
	DragVelocityThreshold = 200.0
)

// Anchor returns the offset's canonical position.
func (o PanelOffset) Anchor() int {
	switch o {
	case PanelExpanded:
		return AnchorExpanded
	case PanelMedium:
		return AnchorMedium
	default:
		return AnchorPeek
	}
}

func (o PanelOffset) collapse() PanelOffset {
	if o == PanelExpanded {
		return PanelMedium
	}
	return PanelPeek
}

func (o PanelOffset) open() PanelOffset {
	if o == PanelPeek {
		return PanelMedium
	}
	return PanelExpanded
}

// ViewState coordinates the map/list view, the detail view and the panel.
// Values are immutable; every transition returns the next state.
type ViewState struct {
	Mode                   Mode        `json:"mode"`
	PanelOffset            PanelOffset `json:"panel_offset"`
	SelectedServicePointID string      `json:"selected_sp_id,omitempty"`
}

// NewViewState is the state every time the locator is opened.
func NewViewState() ViewState {
	return ViewState{Mode: ModeMap, PanelOffset: PanelPeek}
}

// Anchor is where the panel rests in this state.
func (v ViewState) Anchor() int {
	if v.Mode == ModeDetail {
		return AnchorDetail
	}
	return v.PanelOffset.Anchor()
}

// Valid reports whether the detail invariants hold.
func (v ViewState) Valid() bool {
	if v.Mode == ModeDetail {
		return v.SelectedServicePointID != "" && v.PanelOffset == PanelExpanded
	}
	return true
}

// Select opens the detail view once the service point's practitioners are grouped.
func (v ViewState) Select(servicePointID string) ViewState {
	if servicePointID == "" {
		return v
	}
	return ViewState{Mode: ModeDetail, PanelOffset: PanelExpanded, SelectedServicePointID: servicePointID}
}

// Highlight marks a service point from the map without leaving map mode.
func (v ViewState) Highlight(servicePointID string) ViewState {
	if servicePointID == "" {
		return v
	}
	return ViewState{Mode: ModeMap, PanelOffset: PanelMedium, SelectedServicePointID: servicePointID}
}

// Back leaves the detail view.
func (v ViewState) Back() ViewState {
	return ViewState{Mode: ModeMap, PanelOffset: PanelMedium}
}

// DragEnd applies a finished drag; dy and vy are positive downwards.
// Drags are ignored in detail mode and below threshold the panel snaps back.
func (v ViewState) DragEnd(dy, vy float64) ViewState {
	if v.Mode == ModeDetail {
		return v
	}
	switch {
	case vy > DragVelocityThreshold || dy > DragOffsetThreshold:
		v.PanelOffset = v.PanelOffset.collapse()
	case vy < -DragVelocityThreshold || dy < -DragOffsetThreshold:
		v.PanelOffset = v.PanelOffset.open()
	}
	return v
}

// ToggleHandle flips the panel between peek and medium when its handle is tapped.
func (v ViewState) ToggleHandle() ViewState {
	if v.Mode == ModeDetail {
		return v
	}
	if v.PanelOffset == PanelPeek {
		v.PanelOffset = PanelMedium
	} else {
		v.PanelOffset = PanelPeek
	}
	return v
}

// ResultsArrived applies a fresh search result of n service points.
func (v ViewState) ResultsArrived(n int) ViewState {
	if n == 0 {
		return ViewState{Mode: ModeMap, PanelOffset: PanelPeek}
	}
	return ViewState{Mode: ModeMap, PanelOffset: PanelMedium}
}

// Cleared is the state after the user clears the search box.
func (v ViewState) Cleared() ViewState {
	return ViewState{Mode: ModeMap, PanelOffset: PanelPeek}
}
