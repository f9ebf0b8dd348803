package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/internal/data/repository"
	"interview-booking/pkg/notify"

	"github.com/google/uuid"
)

// memStore backs the fake repositories. One mutex guards everything, which
// gives the same all-or-nothing behaviour as the SQL transaction.
type memStore struct {
	mu        sync.Mutex
	window    entity.BookingWindow
	users     map[uuid.UUID]*entity.User
	companies map[uuid.UUID]*entity.Company
	bookings  map[uuid.UUID]*entity.Booking
	sessions  map[uuid.UUID]*entity.Session
	otps      map[uuid.UUID]*entity.OTP
	seq       map[uuid.UUID]int // insertion order of bookings
	next      int
	failWith  error
}

func newMemStore(window entity.BookingWindow) *memStore {
	return &memStore{
		window:    window,
		users:     map[uuid.UUID]*entity.User{},
		companies: map[uuid.UUID]*entity.Company{},
		bookings:  map[uuid.UUID]*entity.Booking{},
		sessions:  map[uuid.UUID]*entity.Session{},
		otps:      map[uuid.UUID]*entity.OTP{},
		seq:       map[uuid.UUID]int{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:    &fakeUserRepo{m},
		Session: &fakeSessionRepo{m},
		OTP:     &fakeOTPRepo{m},
		Company: &fakeCompanyRepo{m},
		Booking: &fakeBookingRepo{m},
	}
}

func (m *memStore) addUser(name, email string, role entity.UserRole) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &entity.User{Base: entity.Base{ID: uuid.New()}, Name: name, Email: email, Role: role}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addCompany(name string) *entity.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &entity.Company{Base: entity.Base{ID: uuid.New()}, Name: name, Telephone: "021234567"}
	m.companies[c.ID] = c
	return c
}

// addBooking inserts directly, skipping every admission rule.
func (m *memStore) addBooking(userID, companyID uuid.UUID, date time.Time) *entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &entity.Booking{BaseSimple: entity.BaseSimple{ID: uuid.New()}, UserID: userID, CompanyID: companyID, Date: date}
	m.insert(b)
	return b
}

func (m *memStore) insert(b *entity.Booking) {
	cp := *b
	m.bookings[b.ID] = &cp
	m.next++
	m.seq[b.ID] = m.next
}

func (m *memStore) bookingCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n
}

func (m *memStore) detail(b *entity.Booking) *entity.BookingDetail {
	d := &entity.BookingDetail{Booking: *b}
	if u, ok := m.users[b.UserID]; ok {
		d.UserName = u.Name
		d.UserEmail = u.Email
	}
	if c, ok := m.companies[b.CompanyID]; ok {
		cp := *c
		d.Company = &cp
	}
	return d
}

// ==================== BOOKING ====================

type fakeBookingRepo struct{ m *memStore }

func (r *fakeBookingRepo) CreateWithinLimit(ctx context.Context, booking *entity.Booking, limit int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.failWith != nil {
		return r.m.failWith
	}
	if !r.m.window.Contains(booking.Date) {
		return repository.ErrOutsideWindow
	}

	count := 0
	for _, b := range r.m.bookings {
		if b.UserID != booking.UserID {
			continue
		}
		if b.CompanyID == booking.CompanyID && b.Date.Equal(booking.Date) {
			return repository.ErrDuplicateBooking
		}
		count++
	}
	if count >= limit {
		return repository.ErrBookingLimitReached
	}

	r.m.insert(booking)
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	return r.m.detail(b), nil
}

func (r *fakeBookingRepo) matching(filter repository.BookingFilter) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range r.m.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.CompanyID != nil && b.CompanyID != *filter.CompanyID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return r.m.seq[out[i].ID] < r.m.seq[out[j].ID] })
	return out
}

func (r *fakeBookingRepo) FindAll(ctx context.Context, filter repository.BookingFilter) ([]*entity.BookingDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	rows := r.matching(filter)
	if filter.Limit > 0 {
		if filter.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[filter.Offset:min(len(rows), filter.Offset+filter.Limit)]
		}
	}

	var out []*entity.BookingDetail
	for _, b := range rows {
		out = append(out, r.m.detail(b))
	}
	return out, nil
}

func (r *fakeBookingRepo) Count(ctx context.Context, filter repository.BookingFilter) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r *fakeBookingRepo) FindByDate(ctx context.Context, date time.Time) ([]*entity.BookingDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	var out []*entity.BookingDetail
	for _, b := range r.matching(repository.BookingFilter{}) {
		if b.Date.Equal(date) {
			out = append(out, r.m.detail(b))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, booking *entity.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if !r.m.window.Contains(booking.Date) {
		return repository.ErrOutsideWindow
	}
	for _, b := range r.m.bookings {
		if b.ID != booking.ID && b.UserID == booking.UserID && b.CompanyID == booking.CompanyID && b.Date.Equal(booking.Date) {
			return repository.ErrDuplicateBooking
		}
	}
	stored, ok := r.m.bookings[booking.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Date = booking.Date
	return nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.bookings, id)
	return nil
}

// ==================== COMPANY ====================

type fakeCompanyRepo struct{ m *memStore }

func (r *fakeCompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.companies {
		if c.Name == company.Name {
			return repository.ErrDuplicate
		}
	}
	cp := *company
	r.m.companies[company.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) FindAll(ctx context.Context, limit, offset int, name *string) ([]*entity.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Company
	for _, c := range r.m.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCompanyRepo) CountAll(ctx context.Context, name *string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.companies)), nil
}

func (r *fakeCompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.companies[company.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *company
	r.m.companies[company.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.companies[id]; !ok {
		return repository.ErrNotFound
	}
	for bid, b := range r.m.bookings {
		if b.CompanyID == id {
			delete(r.m.bookings, bid)
		}
	}
	delete(r.m.companies, id)
	return nil
}

// ==================== USER ====================

type fakeUserRepo struct{ m *memStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.User
	for _, u := range r.m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.users)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return repository.ErrNotFound
	}
	for bid, b := range r.m.bookings {
		if b.UserID == id {
			delete(r.m.bookings, bid)
		}
	}
	delete(r.m.users, id)
	return nil
}

// ==================== SESSION / OTP ====================

type fakeSessionRepo struct{ m *memStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *session
	r.m.sessions[session.Token] = &cp
	return nil
}

func (r *fakeSessionRepo) FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[token]
	if !ok || s.RevokedAt != nil || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (r *fakeSessionRepo) CleanExpiredSessions(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

type fakeOTPRepo struct{ m *memStore }

func (r *fakeOTPRepo) Issue(ctx context.Context, otp *entity.OTP) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.otps {
		if o.Email == otp.Email && o.OTPType == otp.OTPType {
			o.IsUsed = true
		}
	}
	cp := *otp
	r.m.otps[otp.ID] = &cp
	return nil
}

func (r *fakeOTPRepo) Consume(ctx context.Context, email, code string, otpType entity.OTPType) (*entity.OTP, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.otps {
		if o.Email == email && o.OTPCode == code && o.OTPType == otpType && !o.IsUsed && time.Now().Before(o.ExpiresAt) {
			o.IsUsed = true
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

// ==================== NOTIFIER ====================

type recordingNotifier struct {
	mu      sync.Mutex
	sent    []notify.Message
	failFor map[string]bool
}

func (n *recordingNotifier) Notify(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[msg.To] {
		return errors.New("smtp: mailbox unavailable")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}
