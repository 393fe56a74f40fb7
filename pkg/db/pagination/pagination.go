package pagination

const (
	defaultLimit = 10
	maxLimit     = 250
)

// Pagination is a plain offset/limit window over an ordered query.
type Pagination struct {
	Offset int
	Limit  int
}

// Normalize clamps the window to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
