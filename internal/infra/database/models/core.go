package models

import (
	"time"
)

// PublishLog is one publish made through this instance. Rows are never
// updated; the newest version of a username is the row with the highest
// Version.
type PublishLog struct {
	ContentAddress string    `json:"txId" gorm:"primaryKey;type:text"`
	Username       string    `json:"username" gorm:"type:text;not null;index:idx_publish_log_username_version,priority:1"`
	Owner          string    `json:"owner" gorm:"type:text;not null;index"`
	Version        int64     `json:"version" gorm:"not null;index:idx_publish_log_username_version,priority:2,sort:desc"`
	CDate          time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
