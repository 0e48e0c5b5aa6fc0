package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/infra/database/models"
)

const maxVersionList = 100

type VersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) Append(ctx context.Context, v rebento.PublishedVersion) error {
	row := models.PublishLog{
		ContentAddress: v.ContentAddress,
		Username:       v.Username,
		Owner:          v.Owner,
		Version:        v.Version,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&row).Error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxVersionList {
		return maxVersionList
	}
	return limit
}

// List returns the newest publishes of username first.
func (r *VersionRepository) List(ctx context.Context, username string, limit int) ([]rebento.PublishedVersion, error) {
	limit = clampLimit(limit)

	var rows []models.PublishLog
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("version DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	versions := make([]rebento.PublishedVersion, len(rows))
	for i, row := range rows {
		versions[i] = rebento.PublishedVersion{
			ContentAddress: row.ContentAddress,
			Owner:          row.Owner,
			Username:       row.Username,
			Version:        row.Version,
		}
	}
	return versions, nil
}
