package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
)

// memRepo mirrors the transactional behaviour of the gorm repository with a
// single mutex standing in for the device row lock.
type memRepo struct {
	mu       sync.Mutex
	users    map[uint]models.User
	devices  map[uint]models.Device
	bookings map[uint]models.DeviceBooking
	nextID   uint

	// beforeUpdate runs once, outside the lock, when UpdateBooking is
	// entered. It stands in for a write that commits between the use
	// case's reads and the update transaction.
	beforeUpdate func()
}

var _ domain.Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		users:    map[uint]models.User{},
		devices:  map[uint]models.Device{},
		bookings: map[uint]models.DeviceBooking{},
	}
}

func (r *memRepo) addUser(u models.User) *memRepo {
	u.IsActive = true
	if u.Role == "" {
		u.Role = "user"
	}
	r.users[u.ID] = u
	return r
}

func (r *memRepo) addDevice(d models.Device) *memRepo {
	r.devices[d.ID] = d
	return r
}

func (r *memRepo) booking(id uint) models.DeviceBooking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id]
}

func (r *memRepo) GetUser(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *memRepo) GetDevice(_ context.Context, id uint) (*models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r *memRepo) GetBooking(_ context.Context, id uint) (*models.DeviceBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *memRepo) holders(slot domain.Slot, exclude uint) []models.DeviceBooking {
	var out []models.DeviceBooking
	for _, b := range r.bookings {
		if b.ID == exclude || b.Status == string(domain.StatusRejected) {
			continue
		}
		if domain.SlotOf(&b) == slot {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memRepo) cascade(approved *models.DeviceBooking, note func(*models.DeviceBooking) string) []models.DeviceBooking {
	siblings := r.holders(domain.SlotOf(approved), approved.ID)
	for i := range siblings {
		siblings[i].Status = string(domain.StatusRejected)
		if note != nil {
			siblings[i].Note = note(approved)
		}
		r.bookings[siblings[i].ID] = siblings[i]
	}
	return siblings
}

func (r *memRepo) CreateBooking(_ context.Context, b *models.DeviceBooking, check domain.SlotCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if check != nil {
		if err := check(r.holders(domain.SlotOf(b), 0)); err != nil {
			return err
		}
	}
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.bookings[b.ID] = *b
	return nil
}

func (r *memRepo) UpdateBooking(_ context.Context, id uint, opts domain.UpdateOptions) (*models.DeviceBooking, []models.DeviceBooking, error) {
	if hook := r.beforeUpdate; hook != nil {
		r.beforeUpdate = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	check, err := opts.Apply(&b)
	if err != nil {
		return nil, nil, err
	}
	approved := b.Status == string(domain.StatusApproved)
	if !approved && check != nil {
		if err := check(r.holders(domain.SlotOf(&b), b.ID)); err != nil {
			return nil, nil, err
		}
	}
	r.bookings[id] = b
	var siblings []models.DeviceBooking
	if approved {
		siblings = r.cascade(&b, opts.SiblingNote)
	}
	return &b, siblings, nil
}

func (r *memRepo) Decide(
	_ context.Context,
	id uint,
	apply func(b *models.DeviceBooking) error,
	siblingNote func(approved *models.DeviceBooking) string,
) (*models.DeviceBooking, []models.DeviceBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if err := apply(&b); err != nil {
		return nil, nil, err
	}
	r.bookings[id] = b
	var siblings []models.DeviceBooking
	if b.Status == string(domain.StatusApproved) {
		siblings = r.cascade(&b, siblingNote)
	}
	return &b, siblings, nil
}

func (r *memRepo) MutateEditRequest(_ context.Context, id uint, apply func(b *models.DeviceBooking) error) (*models.DeviceBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := apply(&b); err != nil {
		return nil, err
	}
	stored := r.bookings[id]
	stored.EditRequest = b.EditRequest
	r.bookings[id] = stored
	return &stored, nil
}

func (r *memRepo) ListBookings(_ context.Context, f domain.ListFilter) (*query.Result[models.DeviceBooking], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.DeviceBooking{}
	for _, b := range r.bookings {
		if f.DeviceID != nil && b.DeviceID != *f.DeviceID {
			continue
		}
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return &query.Result[models.DeviceBooking]{
		Data: out,
		Meta: query.Meta{Pagination: query.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: int64(len(out)), Limit: query.DefaultLimit}},
	}, nil
}

func (r *memRepo) ListDay(_ context.Context, deviceID uint, day string) ([]models.DeviceBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DeviceBooking
	for _, b := range r.bookings {
		if b.DeviceID == deviceID && b.UsageDay == day && b.Status != string(domain.StatusRejected) {
			out = append(out, b)
		}
	}
	return out, nil
}

// recorder keeps every event so tests can inspect what was audited.
type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Record(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return audit.Event{}
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
