package currencylist

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/model"
	"github.com/Makepad-fr/fxlist/internal/rates"
)

// DefaultSettleWindow is how long a promote blocks incoming merges.
const DefaultSettleWindow = 300 * time.Millisecond

// Row is one currency in the working set plus its session state.
type Row struct {
	model.Currency

	// EnteredValue is what the user typed while this row was active.
	EnteredValue float64
	// CanChangeDisplayedRate is false only for the active (top) row.
	CanChangeDisplayedRate bool
	// DisplayedValue is the entered value for the active row and the
	// recalculated value for every other row.
	DisplayedValue float64
}

// DisplayText renders the displayed value for the list.
func (r Row) DisplayText() string { return rates.Format(r.DisplayedValue) }

// Active reports whether the row is the one driven by user input.
func (r Row) Active() bool { return !r.CanChangeDisplayedRate }

// Change describes what an operation did, so a view can update incrementally.
type Change struct {
	Reset     bool     // whole list replaced
	MovedFrom int      // -1 when nothing moved
	MovedTo   int      // always 0 when MovedFrom >= 0
	Changed   []string // ISO codes whose displayed value changed
	Appended  []string // ISO codes added at the end by a merge
	Dropped   bool     // merge suppressed while a move was settling
}

// Moved reports whether a row changed position.
func (c Change) Moved() bool { return c.MovedFrom > 0 }

// Empty reports whether the change carries nothing to render.
func (c Change) Empty() bool {
	return !c.Reset && !c.Moved() && len(c.Changed) == 0 && len(c.Appended) == 0
}

func noChange() Change { return Change{MovedFrom: -1} }

// Store owns the ordered working set. All methods are safe for concurrent use;
// every mutation runs under one lock so moves, merges and replaces never interleave.
//
// Merges that arrive while a promote is still settling are dropped instead of
// queued. The next refresh brings the list up to date again.
type Store struct {
	mu   sync.Mutex
	rows []*Row

	settle    time.Duration
	moveUntil time.Time
	now       func() time.Time

	logger *zap.SugaredLogger
}

// New builds an empty store. settle is the move window; zero disables it.
func New(settle time.Duration, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		settle: settle,
		now:    time.Now,
		logger: logger,
	}
}

// Apply feeds freshly loaded data: the first non-empty batch replaces the
// list, later ones are merged.
func (s *Store) Apply(records []model.Currency) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) == 0 {
		return s.replaceAll(records)
	}
	return s.merge(records)
}

// ReplaceAll sets the working set verbatim, all rows inactive.
// An empty input leaves the store alone.
func (s *Store) ReplaceAll(records []model.Currency) Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceAll(records)
}

// Merge overwrites the rate of every known code, appends unknown codes in
// encounter order and recomputes the inactive rows. Nothing is ever removed.
func (s *Store) Merge(records []model.Currency) Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merge(records)
}

// replaceAll and merge expect s.mu to be held.

func (s *Store) replaceAll(records []model.Currency) Change {
	if len(records) == 0 {
		return noChange()
	}
	if s.moving() {
		s.logger.Warnw("replace dropped, move in flight", "records", len(records))
		return Change{MovedFrom: -1, Dropped: true}
	}

	seen := make(map[string]struct{}, len(records))
	rows := make([]*Row, 0, len(records))
	for _, c := range records {
		if !s.acceptable(c, seen) {
			continue
		}
		rows = append(rows, &Row{Currency: c, CanChangeDisplayedRate: true})
	}
	if len(rows) == 0 {
		return noChange()
	}

	s.rows = rows
	s.recompute()
	return Change{Reset: true, MovedFrom: -1}
}

func (s *Store) merge(records []model.Currency) Change {
	if s.moving() {
		s.logger.Warnw("merge dropped, move in flight", "records", len(records))
		return Change{MovedFrom: -1, Dropped: true}
	}

	byCode := make(map[string]*Row, len(s.rows))
	for _, r := range s.rows {
		byCode[r.ISOCode] = r
	}

	ch := noChange()
	seen := make(map[string]struct{}, len(records))
	appended := make(map[string]struct{})
	for _, c := range records {
		if !s.acceptable(c, seen) {
			continue
		}
		if r, ok := byCode[c.ISOCode]; ok {
			r.RateBasedOnEuro = c.RateBasedOnEuro
			continue
		}
		r := &Row{Currency: c, CanChangeDisplayedRate: true}
		s.rows = append(s.rows, r)
		byCode[c.ISOCode] = r
		appended[c.ISOCode] = struct{}{}
		ch.Appended = append(ch.Appended, c.ISOCode)
	}

	for _, code := range s.recompute() {
		if _, ok := appended[code]; !ok {
			ch.Changed = append(ch.Changed, code)
		}
	}
	return ch
}

// SelectAndPromote makes iso the active row and moves it to the top.
// The others keep their relative order and are recomputed from the new
// active row's entered value. Unknown codes are ignored.
func (s *Store) SelectAndPromote(iso string) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(iso)
	if idx < 0 {
		s.logger.Warnw("promote ignored", "iso_code", iso, "error", apperrors.ErrNotFound)
		return noChange()
	}

	for _, r := range s.rows {
		r.CanChangeDisplayedRate = true
	}
	selected := s.rows[idx]
	selected.CanChangeDisplayedRate = false

	if idx > 0 {
		s.rows = slices.Insert(slices.Delete(s.rows, idx, idx+1), 0, selected)
		if s.settle > 0 {
			s.moveUntil = s.now().Add(s.settle)
		}
	}

	return Change{
		MovedFrom: idx,
		MovedTo:   0,
		Changed:   s.recompute(),
	}
}

// EditActiveValue stores what the user typed on the active row and
// recomputes the rest. Unparsable text counts as 0.
func (s *Store) EditActiveValue(text string) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.active()
	if active == nil {
		s.logger.Debugw("edit ignored, no active currency", "text", text)
		return noChange()
	}

	active.EnteredValue = rates.ParseAmount(text)
	ch := noChange()
	ch.Changed = s.recompute()
	return ch
}

// MoveSettled closes the move window early, e.g. once the view finished
// scrolling to the top.
func (s *Store) MoveSettled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveUntil = time.Time{}
}

// Snapshot copies the rows in display order.
func (s *Store) Snapshot() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = *r
	}
	return out
}

// Len returns the number of rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Active returns the active row, if any.
func (s *Store) Active() (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.active(); r != nil {
		return *r, true
	}
	return Row{}, false
}

// IndexOf returns the position of iso, or -1.
func (s *Store) IndexOf(iso string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(iso)
}

// Row returns the row for iso.
func (s *Store) Row(iso string) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(iso); i >= 0 {
		return *s.rows[i], true
	}
	return Row{}, false
}

// The helpers below expect s.mu to be held.

func (s *Store) moving() bool {
	return !s.moveUntil.IsZero() && s.now().Before(s.moveUntil)
}

func (s *Store) indexOf(iso string) int {
	return slices.IndexFunc(s.rows, func(r *Row) bool { return r.ISOCode == iso })
}

func (s *Store) active() *Row {
	if len(s.rows) > 0 && !s.rows[0].CanChangeDisplayedRate {
		return s.rows[0]
	}
	return nil
}

// acceptable filters duplicates and unusable rates out of an incoming batch.
func (s *Store) acceptable(c model.Currency, seen map[string]struct{}) bool {
	if c.ISOCode == "" || !rates.ValidRate(c.RateBasedOnEuro) {
		s.logger.Warnw("dropping invalid currency",
			"iso_code", c.ISOCode,
			"rate", c.RateBasedOnEuro,
			"error", apperrors.ErrInvariant,
		)
		return false
	}
	if _, dup := seen[c.ISOCode]; dup {
		s.logger.Warnw("dropping duplicate currency",
			"iso_code", c.ISOCode,
			"error", apperrors.ErrInvariant,
		)
		return false
	}
	seen[c.ISOCode] = struct{}{}
	return true
}

// recompute refreshes every displayed value and returns the codes that changed.
// Without an active row the reference is one unit of the base currency, so
// each row simply shows its own rate.
func (s *Store) recompute() []string {
	active := s.active()

	var changed []string
	for _, r := range s.rows {
		var v float64
		switch {
		case r == active:
			v = r.EnteredValue
		case active == nil:
			v = r.RateBasedOnEuro
		default:
			v = rates.Displayed(active.EnteredValue, active.RateBasedOnEuro, r.RateBasedOnEuro)
		}
		if v != r.DisplayedValue {
			r.DisplayedValue = v
			changed = append(changed, r.ISOCode)
		}
	}
	return changed
}
