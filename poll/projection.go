package poll

import (
	"fmt"
	"math"
	"time"
)

// Projection is the read-only, viewer-scoped view of a poll. It is derived
// from stored rows on every read and never written back.
type Projection struct {
	Id       string
	Question string
	Settings Settings

	Options       []OptionResult
	TotalVotes    int
	VotesByOption map[string]int
	// UserVotes holds the requesting viewer's current selection, in option
	// display order.
	UserVotes []string
	// Voters is nil for anonymous polls, for every viewer including the
	// creator.
	Voters []Voter

	IsClosed bool
	ClosedAt *time.Time

	CreatedBy string
	CreatedAt time.Time
	ChannelId string
	MessageId string
}

type OptionResult struct {
	Id         string
	Text       string
	AddedBy    string
	Votes      int
	Percentage int
}

type Voter struct {
	OptionId string
	UserId   string
}

// Project builds the projection for one viewer at one point in time.
func Project(p *Poll, votes []Vote, viewerId string, now time.Time) *Projection {
	counts := make(map[string]int, len(p.Options))
	for _, o := range p.Options {
		counts[o.Id] = 0
	}
	for _, v := range votes {
		counts[v.OptionId]++
	}

	total := len(votes)

	pr := &Projection{
		Id:            p.Id,
		Question:      p.Question,
		Settings:      p.Settings,
		TotalVotes:    total,
		VotesByOption: counts,
		UserVotes:     make([]string, 0),
		IsClosed:      p.IsClosed(now),
		ClosedAt:      p.ClosedAt,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
		ChannelId:     p.ChannelId,
		MessageId:     p.MessageId,
	}

	for _, o := range p.Options {
		pr.Options = append(pr.Options, OptionResult{
			Id:         o.Id,
			Text:       o.Text,
			AddedBy:    o.AddedBy,
			Votes:      counts[o.Id],
			Percentage: Percentage(counts[o.Id], total),
		})

		for _, v := range votes {
			if v.OptionId != o.Id {
				continue
			}
			if v.UserId == viewerId {
				pr.UserVotes = append(pr.UserVotes, o.Id)
			}
			if !p.Settings.Anonymous {
				pr.Voters = append(pr.Voters, Voter{OptionId: o.Id, UserId: v.UserId})
			}
		}
	}

	return pr
}

// Percentage is the rounded share of total, and 0 when nobody has voted yet.
func Percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// TimeRemaining buckets the time left into the coarsest applicable unit.
func (pr *Projection) TimeRemaining(now time.Time) string {
	if pr.IsClosed || now.After(pr.Settings.ActiveTill) {
		return "Closed"
	}

	left := pr.Settings.ActiveTill.Sub(now)
	switch {
	case left >= 24*time.Hour:
		return remaining(int(left.Hours()/24), "day")
	case left >= time.Hour:
		return remaining(int(left.Hours()), "hour")
	case left >= time.Minute:
		return remaining(int(left.Minutes()), "minute")
	default:
		return "ending soon"
	}
}

func remaining(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s remaining", unit)
	}
	return fmt.Sprintf("%d %ss remaining", n, unit)
}

// TypeLabel is a display-only composite of the anonymity and answer settings.
func (pr *Projection) TypeLabel() string {
	label := "Public poll"
	if pr.Settings.Anonymous {
		label = "Anonymous poll"
	}
	if pr.Settings.MultipleAnswers {
		return label + ", multiple answers"
	}
	return label + ", single answer"
}
