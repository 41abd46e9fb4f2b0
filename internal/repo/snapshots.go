package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/meaw-storefront/pkg/db/models"
)

// ErrSnapshotNotFound is returned when no row exists for a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshots reads and writes rows of the snapshots table by full key.
type Snapshots struct {
	db *gorm.DB
}

func NewSnapshots(db *gorm.DB) *Snapshots {
	return &Snapshots{db: db}
}

// DB returns the connection bound to ctx, or the raw connection when ctx is nil.
func (r *Snapshots) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return r.db
	}
	return r.db.WithContext(ctx)
}

func (r *Snapshots) Find(ctx context.Context, key string) (*models.Snapshot, error) {
	var row models.Snapshot
	err := r.DB(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert inserts the row or overwrites value and updated_at of an existing key.
func (r *Snapshots) Upsert(ctx context.Context, key string, value []byte) error {
	row := models.Snapshot{Key: key, Value: string(value)}
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *Snapshots) Delete(ctx context.Context, key string) error {
	return r.DB(ctx).Where("key = ?", key).Delete(&models.Snapshot{}).Error
}

// Count reports rows whose key starts with prefix.
func (r *Snapshots) Count(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Snapshot{}).Where("key LIKE ?", prefix+"%").Count(&n).Error
	return n, err
}
