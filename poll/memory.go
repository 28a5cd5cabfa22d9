package poll

import (
	"sort"
	"sync"
	"time"
)

// MemStore is an in-process Store used by tests and local development. A
// single mutex stands in for the database transaction; every method validates
// and writes while holding it, and reads hand out copies so callers never
// alias stored state.
type MemStore struct {
	mu    sync.Mutex
	polls map[string]*Poll
	votes map[string][]Vote
}

func NewMemStore() *MemStore {
	return &MemStore{
		polls: make(map[string]*Poll),
		votes: make(map[string][]Vote),
	}
}

func (m *MemStore) Create(p *Poll) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.polls[p.Id] = copyPoll(p)
	return nil
}

func (m *MemStore) Get(pollId string) (*Poll, []Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[pollId]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return copyPoll(p), copyVotes(m.votes[pollId]), nil
}

func (m *MemStore) GetByMessage(messageId string) (*Poll, []Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.polls {
		if p.MessageId != "" && p.MessageId == messageId {
			return copyPoll(p), copyVotes(m.votes[p.Id]), nil
		}
	}
	return nil, nil, ErrNotFound
}

func (m *MemStore) CastVote(pollId, userId string, optionIds []string, now time.Time) (*Poll, []Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[pollId]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if err := ValidateSelection(p, optionIds, now); err != nil {
		return nil, nil, err
	}

	m.votes[pollId] = ReplaceVotes(m.votes[pollId], pollId, userId, optionIds, now)
	return copyPoll(p), copyVotes(m.votes[pollId]), nil
}

func (m *MemStore) AppendOption(pollId string, opt Option, now time.Time) (*Poll, []Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[pollId]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if err := ValidateNewOption(p, opt.Text, now); err != nil {
		return nil, nil, err
	}

	opt.PollId = pollId
	opt.Order = len(p.Options)
	p.Options = append(p.Options, opt)
	return copyPoll(p), copyVotes(m.votes[pollId]), nil
}

func (m *MemStore) Close(pollId string, now time.Time) (*Poll, []Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[pollId]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if p.IsClosed(now) {
		return nil, nil, ErrAlreadyClosed
	}

	at := now
	p.ClosedAt = &at
	return copyPoll(p), copyVotes(m.votes[pollId]), nil
}

func (m *MemStore) SetMessage(pollId, channelId, messageId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.polls[pollId]
	if !ok {
		return ErrNotFound
	}
	p.ChannelId = channelId
	p.MessageId = messageId
	return nil
}

func (m *MemStore) Discard(pollId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.polls, pollId)
	delete(m.votes, pollId)
	return nil
}

func copyPoll(p *Poll) *Poll {
	out := *p
	out.Options = append([]Option(nil), p.Options...)
	sort.SliceStable(out.Options, func(i, j int) bool { return out.Options[i].Order < out.Options[j].Order })
	if p.ClosedAt != nil {
		at := *p.ClosedAt
		out.ClosedAt = &at
	}
	return &out
}

func copyVotes(votes []Vote) []Vote {
	return append([]Vote(nil), votes...)
}
