package poll

import (
	"strings"
	"time"
)

// ValidateSelection checks a voter's complete desired selection against the
// poll. It is called inside each store's transaction so the checks and the
// vote writes are atomic with respect to concurrent callers.
func ValidateSelection(p *Poll, optionIds []string, now time.Time) error {
	if p.IsClosed(now) {
		return ErrPollClosed
	}
	if len(optionIds) == 0 {
		return ErrEmptySelection
	}
	if !p.Settings.MultipleAnswers && len(optionIds) > 1 {
		return ErrMultipleAnswersNotAllowed
	}
	for _, id := range optionIds {
		if !p.HasOption(id) {
			return ErrInvalidOption
		}
	}
	return nil
}

// ValidateNewOption checks a participant-contributed option. Duplicate text
// is allowed on purpose; each call appends a new option.
func ValidateNewOption(p *Poll, text string, now time.Time) error {
	if p.IsClosed(now) {
		return ErrPollClosed
	}
	if !p.Settings.ParticipantsCanAddOptions {
		return ErrOptionsLocked
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}

// ReplaceVotes computes the poll's full vote set after one user submits their
// complete selection: the user's rows not in the selection are dropped, rows
// already present keep their original CastAt, and new selections are added.
// Other users' rows pass through untouched.
func ReplaceVotes(votes []Vote, pollId, userId string, optionIds []string, castAt time.Time) []Vote {
	kept := make(map[string]bool, len(optionIds))

	out := make([]Vote, 0, len(votes)+len(optionIds))
	for _, v := range votes {
		if v.UserId != userId {
			out = append(out, v)
			continue
		}
		for _, id := range optionIds {
			if v.OptionId == id {
				kept[id] = true
				out = append(out, v)
				break
			}
		}
	}

	for _, id := range optionIds {
		if kept[id] {
			continue
		}
		kept[id] = true
		out = append(out, Vote{PollId: pollId, OptionId: id, UserId: userId, CastAt: castAt})
	}

	return out
}
