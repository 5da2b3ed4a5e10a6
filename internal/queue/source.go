package queue

// Display is what the queue view body should show.
type Display int

const (
	DisplayNothing Display = iota
	DisplayLoading
	DisplayFailed
	DisplayEmpty
	DisplayTable
)

func (d Display) String() string {
	switch d {
	case DisplayLoading:
		return "loading"
	case DisplayFailed:
		return "failed"
	case DisplayEmpty:
		return "empty"
	case DisplayTable:
		return "table"
	default:
		return "nothing"
	}
}

// Source is the latest snapshot delivered by the item source. It is replaced
// wholesale on every refresh.
type Source struct {
	Items        []Item
	TotalRecords int
	Page         int
	PageSize     int
	IsFetching   bool
	IsPopulated  bool
	Err          error

	// IsCheckForFinishedExecuting mirrors a server-side task that rescans
	// download clients; it spins the refresh control like a fetch does.
	IsCheckForFinishedExecuting bool
}

// IsRefreshing reports whether the refresh control should spin.
func (s Source) IsRefreshing() bool {
	return s.IsFetching || s.IsCheckForFinishedExecuting
}

// Ready reports whether items can be trusted for rendering.
func (s Source) Ready() bool {
	return s.IsPopulated && s.Err == nil
}

// Display picks the body to render. A failure only shows once the refresh
// that produced it has finished.
func (s Source) Display() Display {
	switch {
	case s.IsRefreshing() && !s.IsPopulated:
		return DisplayLoading
	case !s.IsRefreshing() && s.Err != nil:
		return DisplayFailed
	case s.Ready() && len(s.Items) == 0:
		return DisplayEmpty
	case s.Ready():
		return DisplayTable
	default:
		return DisplayNothing
	}
}

// WithPage returns the snapshot updated from a successfully fetched page.
func (s Source) WithPage(p Page) Source {
	s.Items = p.Items
	s.TotalRecords = p.TotalRecords
	s.Page = p.Page
	s.PageSize = p.PageSize
	s.IsFetching = false
	s.IsPopulated = true
	s.Err = nil
	return s
}

// WithError returns the snapshot updated from a failed fetch. Previously
// loaded items are kept so selection state stays consistent.
func (s Source) WithError(err error) Source {
	s.IsFetching = false
	s.Err = err
	return s
}
