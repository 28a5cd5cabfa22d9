package poll

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Database is the durable Store. Mutations run inside a gorm transaction with
// the poll row locked (SELECT ... FOR UPDATE), which scopes the
// read-modify-write to a single poll without coordinating readers.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Migrate() error {
	return d.db.AutoMigrate(&Poll{}, &Option{}, &Vote{})
}

func (d *Database) Create(p *Poll) error {
	return d.db.Create(p).Error
}

func (d *Database) Get(pollId string) (*Poll, []Vote, error) {
	return d.find("id = ?", pollId)
}

func (d *Database) GetByMessage(messageId string) (*Poll, []Vote, error) {
	return d.find("message_id = ?", messageId)
}

func (d *Database) find(query string, arg string) (*Poll, []Vote, error) {
	p := &Poll{}
	err := d.db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order")
	}).Where(query, arg).First(p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	votes, err := loadVotes(d.db, p.Id)
	if err != nil {
		return nil, nil, err
	}
	return p, votes, nil
}

func (d *Database) CastVote(pollId, userId string, optionIds []string, now time.Time) (*Poll, []Vote, error) {
	var p *Poll
	var votes []Vote

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = lockPoll(tx, pollId)
		if err != nil {
			return err
		}
		if err = ValidateSelection(p, optionIds, now); err != nil {
			return err
		}

		// Replacement semantics: drop the user's rows outside the new
		// selection, then insert the selection. The conflict clause keeps the
		// original CastAt on rows the user already held.
		err = tx.Where("poll_id = ? AND user_id = ? AND option_id NOT IN ?", pollId, userId, optionIds).
			Delete(&Vote{}).Error
		if err != nil {
			return err
		}

		rows := make([]Vote, 0, len(optionIds))
		seen := make(map[string]bool, len(optionIds))
		for _, id := range optionIds {
			if seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, Vote{PollId: pollId, OptionId: id, UserId: userId, CastAt: now})
		}
		if err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}

		votes, err = loadVotes(tx, pollId)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return p, votes, nil
}

func (d *Database) AppendOption(pollId string, opt Option, now time.Time) (*Poll, []Vote, error) {
	var p *Poll
	var votes []Vote

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = lockPoll(tx, pollId)
		if err != nil {
			return err
		}
		if err = ValidateNewOption(p, opt.Text, now); err != nil {
			return err
		}

		// Display order is the append position, assigned under the poll lock
		// so concurrent adds serialize in commit order.
		opt.PollId = pollId
		opt.Order = len(p.Options)
		if err = tx.Create(&opt).Error; err != nil {
			return err
		}
		p.Options = append(p.Options, opt)

		votes, err = loadVotes(tx, pollId)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return p, votes, nil
}

func (d *Database) Close(pollId string, now time.Time) (*Poll, []Vote, error) {
	var p *Poll
	var votes []Vote

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = lockPoll(tx, pollId)
		if err != nil {
			return err
		}
		if p.IsClosed(now) {
			return ErrAlreadyClosed
		}

		if err = tx.Model(&Poll{}).Where("id = ?", pollId).Update("closed_at", now).Error; err != nil {
			return err
		}
		at := now
		p.ClosedAt = &at

		votes, err = loadVotes(tx, pollId)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return p, votes, nil
}

func (d *Database) SetMessage(pollId, channelId, messageId string) error {
	res := d.db.Model(&Poll{}).Where("id = ?", pollId).
		Updates(map[string]interface{}{"channel_id": channelId, "message_id": messageId})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) Discard(pollId string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", pollId).Delete(&Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", pollId).Delete(&Option{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", pollId).Delete(&Poll{}).Error
	})
}

func lockPoll(tx *gorm.DB, pollId string) (*Poll, error) {
	p := &Poll{}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", pollId).First(p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	err = tx.Where("poll_id = ?", pollId).Order("display_order").Find(&p.Options).Error
	return p, err
}

func loadVotes(tx *gorm.DB, pollId string) ([]Vote, error) {
	var votes []Vote
	err := tx.Where("poll_id = ?", pollId).Order("cast_at").Find(&votes).Error
	return votes, err
}
