package orientation

// Kind identifies a platform family.
type Kind uint8

const (
	// KindUngated platforms deliver events without a permission step.
	KindUngated Kind = iota

	// KindGated platforms require an explicit permission request.
	KindGated
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUngated:
		return "ungated"
	case KindGated:
		return "gated"
	default:
		return "unknown"
	}
}

// Setup is what a platform's first event reveals.
type Setup struct {
	// Supported reports whether headings relative to north are available.
	Supported bool

	// ImplicitGrant reports whether access is granted without asking.
	ImplicitGrant bool
}

// Source normalizes raw events from one platform family.
type Source interface {
	// Kind returns the platform family.
	Kind() Kind

	// Setup interprets the first event received from the platform.
	Setup(e Event) Setup

	// Heading extracts a bearing in [0, 360) from e. It returns false when
	// the event carries no usable heading field.
	Heading(e Event) (float64, bool)
}

// SelectSource inspects p once and returns the Source for its family.
func SelectSource(p Platform) Source {
	if _, ok := p.(PermissionRequester); ok {
		return gatedSource{}
	}
	return ungatedSource{}
}

type gatedSource struct{}

func (gatedSource) Kind() Kind { return KindGated }

func (gatedSource) Setup(Event) Setup {
	// The permission API is the support signal.
	return Setup{Supported: true}
}

func (gatedSource) Heading(e Event) (float64, bool) {
	if e.CompassHeading != nil && Valid(*e.CompassHeading) {
		return HeadingFromRaw(*e.CompassHeading), true
	}
	if e.Alpha != nil && Valid(*e.Alpha) {
		return HeadingFromRaw(*e.Alpha), true
	}
	return 0, false
}

type ungatedSource struct{}

func (ungatedSource) Kind() Kind { return KindUngated }

func (ungatedSource) Setup(e Event) Setup {
	return Setup{Supported: e.Absolute, ImplicitGrant: true}
}

func (ungatedSource) Heading(e Event) (float64, bool) {
	if e.Alpha != nil && Valid(*e.Alpha) {
		return HeadingFromRaw(*e.Alpha), true
	}
	if e.CompassHeading != nil && Valid(*e.CompassHeading) {
		return HeadingFromRaw(*e.CompassHeading), true
	}
	return 0, false
}
