package model

import "gorm.io/datatypes"

// OutputRowModel maps to the 'output_log' table.
type OutputRowModel struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Output    string         `gorm:"column:output"`
	Round     string         `gorm:"column:round;index"`
	Broker    string         `gorm:"column:broker"`
	Side      string         `gorm:"column:side"`
	Tickers   datatypes.JSON `gorm:"column:tickers"`
	Timestamp int64          `gorm:"column:timestamp"` // unix millis
}

func (OutputRowModel) TableName() string { return "output_log" }
