package poll

import "time"

// Settings is the per-poll configuration. It is fixed when the poll is
// created; nothing in the engine mutates it afterward.
type Settings struct {
	ActiveTill                time.Time
	Anonymous                 bool
	MultipleAnswers           bool
	ParticipantsCanAddOptions bool
}

type Poll struct {
	Id        string   `gorm:"primaryKey;size:36"`
	Question  string   `gorm:"size:2000"`
	Settings  Settings `gorm:"embedded"`
	Options   []Option `gorm:"foreignKey:PollId;references:Id"`
	CreatedBy string   `gorm:"size:64"`
	CreatedAt time.Time
	ClosedAt  *time.Time
	ChannelId string `gorm:"size:64"`
	MessageId string `gorm:"index;size:64"`
}

// Option is one selectable choice. Order is the append position and doubles
// as display order. AddedBy is empty for options supplied at creation.
type Option struct {
	Id      string `gorm:"primaryKey;size:36"`
	PollId  string `gorm:"index;size:36"`
	Text    string `gorm:"size:100"`
	Order   int    `gorm:"column:display_order"`
	AddedBy string `gorm:"size:64"`
}

// Vote is one user's selection of one option. The composite key means a user
// can hold at most one row per option, and the single-answer rule on top of
// that is enforced by the replacement write in the stores.
type Vote struct {
	PollId   string `gorm:"primaryKey;size:36"`
	OptionId string `gorm:"primaryKey;size:36"`
	UserId   string `gorm:"primaryKey;size:64"`
	CastAt   time.Time
}

func (p *Poll) HasOption(optionId string) bool {
	for _, o := range p.Options {
		if o.Id == optionId {
			return true
		}
	}
	return false
}
