// Package testutil provides an in-memory store for service tests.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gigbook/service-booking/internal/domain"
	bandDomain "github.com/gigbook/service-booking/internal/domain/band"
	bookingDomain "github.com/gigbook/service-booking/internal/domain/booking"
	clientDomain "github.com/gigbook/service-booking/internal/domain/client"
	paymentDomain "github.com/gigbook/service-booking/internal/domain/payment"
	userDomain "github.com/gigbook/service-booking/internal/domain/user"
)

type txKey struct{}

type tables struct {
	users    map[int64]*userDomain.User
	bands    map[int64]*bandDomain.Band
	clients  map[int64]*clientDomain.Client
	bookings map[int64]*bookingDomain.Booking
	payments map[int64]*paymentDomain.Payment
}

func (t tables) clone() tables {
	c := tables{
		users:    make(map[int64]*userDomain.User, len(t.users)),
		bands:    make(map[int64]*bandDomain.Band, len(t.bands)),
		clients:  make(map[int64]*clientDomain.Client, len(t.clients)),
		bookings: make(map[int64]*bookingDomain.Booking, len(t.bookings)),
		payments: make(map[int64]*paymentDomain.Payment, len(t.payments)),
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.bands {
		c.bands[k] = v
	}
	for k, v := range t.clients {
		c.clients[k] = v
	}
	for k, v := range t.bookings {
		c.bookings[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	return c
}

// Store is an in-memory implementation of every repository and of the
// transactor. Transactions are serialized and rolled back on error. The
// active (band, date) uniqueness and the payments foreign key are enforced
// the way the database enforces them.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data tables
	seq  int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{data: tables{}.clone()}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// WithinTransaction runs fn exclusively. Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Users returns the user repository view.
func (s *Store) Users() userDomain.UserRepository { return userRepo{s} }

// Bands returns the band repository view.
func (s *Store) Bands() bandDomain.BandRepository { return bandRepo{s} }

// Clients returns the client repository view.
func (s *Store) Clients() clientDomain.ClientRepository { return clientRepo{s} }

// Bookings returns the booking repository view.
func (s *Store) Bookings() bookingDomain.BookingRepository { return bookingRepo{s} }

// Payments returns the payment repository view.
func (s *Store) Payments() paymentDomain.PaymentRepository { return paymentRepo{s} }

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, id int64) (*userDomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", strconv.FormatInt(id, 10))
	}
	return u, nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*userDomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Username() == username {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("User", username)
}

func (r userRepo) List(_ context.Context) ([]*userDomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*userDomain.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r userRepo) Save(_ context.Context, u *userDomain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.users {
		if existing.Username() == u.Username() {
			return &domain.DomainError{Kind: domain.KindConflict, Code: domain.CodeUsernameTaken, Message: "Username already exists"}
		}
	}
	u.AssignID(r.s.nextID())
	r.s.data.users[u.ID()] = u
	return nil
}

// --- bands ---

type bandRepo struct{ s *Store }

func (r bandRepo) FindByID(_ context.Context, id int64) (*bandDomain.Band, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.bands[id]
	if !ok {
		return nil, domain.NewNotFoundError("Band", strconv.FormatInt(id, 10))
	}
	return cloneBand(b), nil
}

func (r bandRepo) ListActive(_ context.Context, f bandDomain.ListFilter) ([]*bandDomain.Band, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	excluded := make(map[int64]bool, len(f.ExcludeIDs))
	for _, id := range f.ExcludeIDs {
		excluded[id] = true
	}
	var out []*bandDomain.Band
	for _, b := range r.s.data.bands {
		if !b.IsActive() || excluded[b.ID()] {
			continue
		}
		if f.NameContains != "" && !strings.Contains(strings.ToLower(b.Name()), strings.ToLower(f.NameContains)) {
			continue
		}
		if f.OwnerID != nil && !b.IsOwnedBy(*f.OwnerID) {
			continue
		}
		out = append(out, cloneBand(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

func (r bandRepo) Save(_ context.Context, b *bandDomain.Band) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.AssignID(r.s.nextID())
	r.s.data.bands[b.ID()] = cloneBand(b)
	return nil
}

func (r bandRepo) Update(_ context.Context, b *bandDomain.Band) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.bands[b.ID()]; !ok {
		return domain.NewNotFoundError("Band", strconv.FormatInt(b.ID(), 10))
	}
	r.s.data.bands[b.ID()] = cloneBand(b)
	return nil
}

// --- clients ---

type clientRepo struct{ s *Store }

func (r clientRepo) FindByID(_ context.Context, id int64) (*clientDomain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.clients[id]
	if !ok {
		return nil, domain.NewNotFoundError("Client", strconv.FormatInt(id, 10))
	}
	return c, nil
}

func (r clientRepo) FindByNameAndPhone(_ context.Context, name, phone string) (*clientDomain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *clientDomain.Client
	for _, c := range r.s.data.clients {
		if c.Name() == name && c.Phone() == phone && (found == nil || c.ID() < found.ID()) {
			found = c
		}
	}
	return found, nil
}

func (r clientRepo) Save(_ context.Context, c *clientDomain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.AssignID(r.s.nextID())
	r.s.data.clients[c.ID()] = c
	return nil
}

// ClientCount returns the number of stored clients.
func (s *Store) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.clients)
}

// --- bookings ---

type bookingRepo struct{ s *Store }

func (r bookingRepo) FindByID(_ context.Context, id int64) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bk, ok := r.s.data.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	return cloneBooking(bk), nil
}

func (r bookingRepo) FindDetailsByID(_ context.Context, id int64) (*bookingDomain.Details, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bk, ok := r.s.data.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	return r.details(bk), nil
}

func (r bookingRepo) FindActiveByBandAndDate(_ context.Context, bandID int64, eventDate time.Time) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if bk := r.activeHolder(bandID, eventDate, 0); bk != nil {
		return cloneBooking(bk), nil
	}
	return nil, nil
}

func (r bookingRepo) ListAll(_ context.Context) ([]*bookingDomain.Details, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filter(func(*bookingDomain.Booking) bool { return true })
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.EventDate().Equal(b.EventDate()) {
			return a.EventDate().After(b.EventDate())
		}
		return a.ID() > b.ID()
	})
	return r.detailsList(all), nil
}

func (r bookingRepo) ListByBand(_ context.Context, bandID int64) ([]*bookingDomain.Details, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.filter(func(bk *bookingDomain.Booking) bool { return bk.BandID() == bandID })
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.EventDate().Equal(b.EventDate()) {
			return a.EventDate().After(b.EventDate())
		}
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID() > b.ID()
	})
	return r.detailsList(list), nil
}

func (r bookingRepo) ListByOwner(_ context.Context, f bookingDomain.ListFilter, page domain.PageRequest) ([]*bookingDomain.Details, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	scoped := r.filter(r.owned(f))
	sort.Slice(scoped, func(i, j int) bool {
		a, b := scoped[i], scoped[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID() > b.ID()
	})
	total := int64(len(scoped))
	start := page.Offset()
	if start > len(scoped) {
		start = len(scoped)
	}
	end := start + page.Limit
	if end > len(scoped) {
		end = len(scoped)
	}
	return r.detailsList(scoped[start:end]), total, nil
}

func (r bookingRepo) StatsByOwner(_ context.Context, f bookingDomain.ListFilter) (bookingDomain.Stats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var st bookingDomain.Stats
	for _, bk := range r.filter(r.owned(f)) {
		st.Total++
		switch bk.Status() {
		case bookingDomain.StatusConfirmed:
			st.Confirmed++
		case bookingDomain.StatusPending:
			st.Pending++
		case bookingDomain.StatusCompleted:
			st.Completed++
		}
	}
	return st, nil
}

func (r bookingRepo) BookedBandIDs(_ context.Context, eventDate time.Time) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[int64]bool{}
	var ids []int64
	day := bookingDomain.TruncateDate(eventDate)
	for _, bk := range r.s.data.bookings {
		if bk.Status().IsActive() && bk.EventDate().Equal(day) && !seen[bk.BandID()] {
			seen[bk.BandID()] = true
			ids = append(ids, bk.BandID())
		}
	}
	return ids, nil
}

func (r bookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkSlot(bk, 0); err != nil {
		return err
	}
	bk.AssignID(r.s.nextID())
	r.s.data.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r bookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(bk.ID(), 10))
	}
	if err := r.checkSlot(bk, bk.ID()); err != nil {
		return err
	}
	r.s.data.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r bookingRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	for _, p := range r.s.data.payments {
		if p.BookingID() == id {
			return domain.NewConflictError("Booking has recorded payments and cannot be deleted")
		}
	}
	delete(r.s.data.bookings, id)
	return nil
}

func (r bookingRepo) checkSlot(bk *bookingDomain.Booking, self int64) error {
	if !bk.Status().IsActive() {
		return nil
	}
	if r.activeHolder(bk.BandID(), bk.EventDate(), self) != nil {
		return &domain.DomainError{
			Kind:    domain.KindConflict,
			Code:    domain.CodeDuplicateBooking,
			Message: "A booking already exists for this band on this date",
		}
	}
	return nil
}

func (r bookingRepo) activeHolder(bandID int64, eventDate time.Time, self int64) *bookingDomain.Booking {
	day := bookingDomain.TruncateDate(eventDate)
	for _, bk := range r.s.data.bookings {
		if bk.ID() != self && bk.BandID() == bandID && bk.EventDate().Equal(day) && bk.Status().IsActive() {
			return bk
		}
	}
	return nil
}

func (r bookingRepo) owned(f bookingDomain.ListFilter) func(*bookingDomain.Booking) bool {
	return func(bk *bookingDomain.Booking) bool {
		band, ok := r.s.data.bands[bk.BandID()]
		if !ok || !band.IsOwnedBy(f.OwnerID) {
			return false
		}
		return f.BandID == nil || bk.BandID() == *f.BandID
	}
}

func (r bookingRepo) filter(keep func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	for _, bk := range r.s.data.bookings {
		if keep(bk) {
			out = append(out, bk)
		}
	}
	return out
}

func (r bookingRepo) details(bk *bookingDomain.Booking) *bookingDomain.Details {
	d := &bookingDomain.Details{Booking: cloneBooking(bk)}
	if b, ok := r.s.data.bands[bk.BandID()]; ok {
		d.Band = cloneBand(b)
	}
	d.Client = r.s.data.clients[bk.ClientID()]
	return d
}

func (r bookingRepo) detailsList(list []*bookingDomain.Booking) []*bookingDomain.Details {
	out := make([]*bookingDomain.Details, len(list))
	for i, bk := range list {
		out[i] = r.details(bk)
	}
	return out
}

// --- payments ---

type paymentRepo struct{ s *Store }

func (r paymentRepo) Save(_ context.Context, p *paymentDomain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.bookings[p.BookingID()]; !ok {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(p.BookingID(), 10))
	}
	if p.TransactionID() != nil {
		for _, existing := range r.s.data.payments {
			if existing.TransactionID() != nil && *existing.TransactionID() == *p.TransactionID() {
				return domain.NewConflictError("payment already recorded")
			}
		}
	}
	p.AssignID(r.s.nextID())
	r.s.data.payments[p.ID()] = p
	return nil
}

func (r paymentRepo) FindByBookingID(_ context.Context, bookingID int64) ([]*paymentDomain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*paymentDomain.Payment
	for _, p := range r.s.data.payments {
		if p.BookingID() == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate().Equal(out[j].PaymentDate()) {
			return out[i].PaymentDate().Before(out[j].PaymentDate())
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

func cloneBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.BandID(), bk.ClientID(),
		bk.EventType(), bk.EventDate(), bk.Address(), bk.Status(),
		bk.TotalCents(), bk.DepositCents(), bk.BalanceDueCents(),
		bk.SpecialRequests(), bk.Notes(),
		bk.CreatedAt(), bk.UpdatedAt(),
	)
}

func cloneBand(b *bandDomain.Band) *bandDomain.Band {
	return bandDomain.Reconstruct(
		b.ID(), b.Name(), b.Genre(), b.NumberOfMembers(), b.ContactPerson(),
		b.Phone(), b.Website(), b.Rating(), b.IsActive(), b.PriceCents(),
		b.OwnerID(), b.CreatedAt(), b.UpdatedAt(),
	)
}
