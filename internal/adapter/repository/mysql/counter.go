package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// counterRow backs the monotonic id counters. Storage detail of this
// adapter; the domain only sees AllocateBlock.
type counterRow struct {
	Name  string `gorm:"column:name;primaryKey;size:32"`
	Value uint64 `gorm:"column:value"`
}

func (counterRow) TableName() string { return "counters" }

type CounterRepository struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) *CounterRepository { return &CounterRepository{db: db} }

// AllocateBlock reserves n consecutive ids and returns the first. The UPDATE
// itself takes the row lock on mysql, so concurrent allocators serialize.
func (r *CounterRepository) AllocateBlock(ctx context.Context, name string, n uint64) (uint64, error) {
	db := r.db.WithContext(ctx)

	res := db.Model(&counterRow{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + ?", n))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		row := counterRow{Name: name, Value: n}
		ins := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&row)
		if ins.Error != nil {
			return 0, ins.Error
		}
		if ins.RowsAffected == 1 {
			// fresh counter: we own [1, n]
			return 1, nil
		}
		// lost the insert race; bump the existing row instead
		return r.AllocateBlock(ctx, name, n)
	}

	var cur counterRow
	if err := db.Where("name = ?", name).First(&cur).Error; err != nil {
		return 0, err
	}
	return cur.Value - n + 1, nil
}
