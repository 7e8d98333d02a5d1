package repository

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
)

type BookingGormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*BookingGormRepository)(nil)

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (r *BookingGormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *BookingGormRepository) GetDevice(ctx context.Context, id uint) (*models.Device, error) {
	var d models.Device
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *BookingGormRepository) GetBooking(ctx context.Context, id uint) (*models.DeviceBooking, error) {
	var b models.DeviceBooking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// --------------------------------------------------
// Locking helpers
// --------------------------------------------------

// lockDevice takes the device row lock that serializes every write
// touching the device's slots.
func lockDevice(tx *gorm.DB, id uint) error {
	var d models.Device
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&d, id).Error
	return translate(err)
}

// deviceLocks remembers which device rows the transaction already holds.
// Devices are locked in ascending id order.
type deviceLocks map[uint]bool

func (l deviceLocks) take(tx *gorm.DB, ids ...uint) error {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, id := range sorted {
		if l[id] {
			continue
		}
		if err := lockDevice(tx, id); err != nil {
			return err
		}
		l[id] = true
	}
	return nil
}

func lockBooking(tx *gorm.DB, id uint) (*models.DeviceBooking, error) {
	var b models.DeviceBooking
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func slotHolders(tx *gorm.DB, slot domain.Slot, exclude uint) ([]models.DeviceBooking, error) {
	var out []models.DeviceBooking
	q := tx.
		Where(
			"device_id = ? AND usage_day = ? AND usage_time = ? AND status <> ?",
			slot.DeviceID,
			slot.UsageDay,
			slot.UsageTime,
			string(domain.StatusRejected),
		)
	if exclude > 0 {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Order("id").Find(&out).Error
	return out, err
}

// cascade rejects every other live booking on approved's slot.
func cascade(
	tx *gorm.DB,
	approved *models.DeviceBooking,
	note func(*models.DeviceBooking) string,
) ([]models.DeviceBooking, error) {

	siblings, err := slotHolders(tx, domain.SlotOf(approved), approved.ID)
	if err != nil || len(siblings) == 0 {
		return nil, err
	}

	msg := ""
	if note != nil {
		msg = note(approved)
	}

	ids := make([]uint, 0, len(siblings))
	for _, s := range siblings {
		ids = append(ids, s.ID)
	}

	if err := tx.
		Model(&models.DeviceBooking{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status": string(domain.StatusRejected),
			"note":   msg,
		}).Error; err != nil {
		return nil, err
	}

	for i := range siblings {
		siblings[i].Status = string(domain.StatusRejected)
		siblings[i].Note = msg
	}
	return siblings, nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.DeviceBooking,
	check domain.SlotCheck,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDevice(tx, b.DeviceID); err != nil {
			return err
		}

		if check != nil {
			holders, err := slotHolders(tx, domain.SlotOf(b), 0)
			if err != nil {
				return err
			}
			if err := check(holders); err != nil {
				return err
			}
		}

		return tx.Omit(clause.Associations).Create(b).Error
	})
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	id uint,
	opts domain.UpdateOptions,
) (*models.DeviceBooking, []models.DeviceBooking, error) {

	current, err := r.GetBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	devices := []uint{current.DeviceID}
	if opts.MoveTo != nil {
		devices = append(devices, *opts.MoveTo)
	}

	var (
		b        *models.DeviceBooking
		siblings []models.DeviceBooking
	)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locks := deviceLocks{}
		if err := locks.take(tx, devices...); err != nil {
			return err
		}

		locked, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		if err := locks.take(tx, locked.DeviceID); err != nil {
			return err
		}

		check, err := opts.Apply(locked)
		if err != nil {
			return err
		}
		if err := locks.take(tx, locked.DeviceID); err != nil {
			return err
		}

		approved := locked.Status == string(domain.StatusApproved)

		if !approved && check != nil {
			holders, err := slotHolders(tx, domain.SlotOf(locked), locked.ID)
			if err != nil {
				return err
			}
			if err := check(holders); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(locked).Error; err != nil {
			return err
		}

		if approved {
			siblings, err = cascade(tx, locked, opts.SiblingNote)
			if err != nil {
				return err
			}
		}

		b = locked
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return b, siblings, nil
}

func (r *BookingGormRepository) Decide(
	ctx context.Context,
	id uint,
	apply func(b *models.DeviceBooking) error,
	siblingNote func(approved *models.DeviceBooking) string,
) (*models.DeviceBooking, []models.DeviceBooking, error) {

	current, err := r.GetBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var (
		b        *models.DeviceBooking
		siblings []models.DeviceBooking
	)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locks := deviceLocks{}
		if err := locks.take(tx, current.DeviceID); err != nil {
			return err
		}

		locked, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		// the booking may have moved since it was read
		if err := locks.take(tx, locked.DeviceID); err != nil {
			return err
		}

		if err := apply(locked); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(locked).Error; err != nil {
			return err
		}

		if locked.Status == string(domain.StatusApproved) {
			siblings, err = cascade(tx, locked, siblingNote)
			if err != nil {
				return err
			}
		}

		b = locked
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return b, siblings, nil
}

func (r *BookingGormRepository) MutateEditRequest(
	ctx context.Context,
	id uint,
	apply func(b *models.DeviceBooking) error,
) (*models.DeviceBooking, error) {

	var b *models.DeviceBooking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockBooking(tx, id)
		if err != nil {
			return err
		}
		if err := apply(locked); err != nil {
			return err
		}

		er := locked.EditRequest
		if err := tx.
			Model(&models.DeviceBooking{ID: locked.ID}).
			Updates(map[string]any{
				"edit_request_requester_id":   er.RequesterID,
				"edit_request_requester_name": er.RequesterName,
				"edit_request_status":         er.Status,
				"edit_request_requested_at":   er.RequestedAt,
				"edit_request_reason":         er.Reason,
				"edit_request_approver_id":    er.ApproverID,
				"edit_request_approver_name":  er.ApproverName,
				"edit_request_processed_at":   er.ProcessedAt,
				"edit_request_approver_note":  er.ApproverNote,
			}).Error; err != nil {
			return err
		}

		b = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilter,
) (*query.Result[models.DeviceBooking], error) {

	q := query.New[models.DeviceBooking](r.db, BookingSchema, f.Params).
		WithBaseURL(f.BaseURL)

	if f.DeviceID != nil {
		q = q.Where("device_id = ?", *f.DeviceID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	return q.
		Filter().
		Sort().
		Select().
		Populate().
		Paginate().
		Exec(ctx)
}

func (r *BookingGormRepository) ListDay(
	ctx context.Context,
	deviceID uint,
	day string,
) ([]models.DeviceBooking, error) {

	var out []models.DeviceBooking
	err := r.db.WithContext(ctx).
		Where(
			"device_id = ? AND usage_day = ? AND status <> ?",
			deviceID,
			day,
			string(domain.StatusRejected),
		).
		Order("usage_time").
		Order("id").
		Find(&out).Error
	return out, err
}
