package style

// FlexDirection is the main axis of a flex container.
type FlexDirection int

const (
	Row FlexDirection = iota
	RowReverse
	Column
	ColumnReverse
)

// IsColumn reports whether the main axis runs vertically.
func (d FlexDirection) IsColumn() bool { return d == Column || d == ColumnReverse }

// IsReverse reports whether the container lays children out back-to-front.
func (d FlexDirection) IsReverse() bool { return d == RowReverse || d == ColumnReverse }

// FlexWrap controls whether overflowing items wrap onto additional lines.
type FlexWrap int

const (
	NoWrap FlexWrap = iota
	Wrap
	WrapReverse
)

// JustifyContent distributes free space along the main axis.
type JustifyContent int

const (
	FlexStart JustifyContent = iota
	FlexEnd
	JustifyCenter
	SpaceBetween
	SpaceAround
	SpaceEvenly
)

// AlignMode controls cross-axis alignment, used for both align-items
// (container-level default) and align-self (per-child override, where
// AlignAuto defers to the container's align-items).
type AlignMode int

const (
	AlignStretch AlignMode = iota
	AlignItemsStart
	AlignItemsEnd
	AlignItemsCenter
	AlignBaseline
	AlignAuto
)
