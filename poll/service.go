package poll

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the engine's public surface. It holds no per-request state;
// everything lives in the Store, so multiple serving processes can share one
// database safely.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// NewServiceWithClock is used by tests to pin the wall clock.
func NewServiceWithClock(store Store, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

// Create validates and persists a new poll. Blank option entries are dropped;
// at least two must remain.
func (s *Service) Create(question string, options []string, settings Settings, creatorId, channelId string) (*Projection, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	texts := make([]string, 0, len(options))
	for _, o := range options {
		if t := strings.TrimSpace(o); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) < 2 {
		return nil, ErrTooFewOptions
	}

	now := s.now()
	p := &Poll{
		Id:        uuid.NewString(),
		Question:  question,
		Settings:  settings,
		CreatedBy: creatorId,
		CreatedAt: now,
		ChannelId: channelId,
	}
	for i, text := range texts {
		p.Options = append(p.Options, Option{Id: uuid.NewString(), PollId: p.Id, Text: text, Order: i})
	}

	if err := s.store.Create(p); err != nil {
		return nil, err
	}

	return Project(p, nil, creatorId, now), nil
}

func (s *Service) Get(pollId, viewerId string) (*Projection, error) {
	p, votes, err := s.store.Get(pollId)
	if err != nil {
		return nil, err
	}
	return Project(p, votes, viewerId, s.now()), nil
}

// GetByMessage is the lookup the bridge uses when all it has is the id of the
// chat message carrying the poll.
func (s *Service) GetByMessage(messageId, viewerId string) (*Projection, error) {
	p, votes, err := s.store.GetByMessage(messageId)
	if err != nil {
		return nil, err
	}
	return Project(p, votes, viewerId, s.now()), nil
}

// CastVote sets the caller's complete vote set for the poll to optionIds and
// returns the refreshed projection. Repeating the same selection is a no-op.
func (s *Service) CastVote(pollId, userId string, optionIds []string) (*Projection, error) {
	now := s.now()
	p, votes, err := s.store.CastVote(pollId, userId, optionIds, now)
	if err != nil {
		return nil, err
	}
	return Project(p, votes, userId, now), nil
}

// AddOption appends a participant-contributed option when the poll allows it.
func (s *Service) AddOption(pollId, userId, text string) (*Projection, error) {
	now := s.now()
	opt := Option{Id: uuid.NewString(), PollId: pollId, Text: strings.TrimSpace(text), AddedBy: userId}
	p, votes, err := s.store.AppendOption(pollId, opt, now)
	if err != nil {
		return nil, err
	}
	return Project(p, votes, userId, now), nil
}

// Close ends the poll early. Only the creator may close, and closing an
// already-closed poll (by either path) fails with ErrAlreadyClosed.
func (s *Service) Close(pollId, callerId string) (*Projection, error) {
	p, _, err := s.store.Get(pollId)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy != callerId {
		return nil, ErrForbidden
	}

	now := s.now()
	p, votes, err := s.store.Close(pollId, now)
	if err != nil {
		return nil, err
	}
	return Project(p, votes, callerId, now), nil
}

// SetMessage records the transport message that published the poll.
func (s *Service) SetMessage(pollId, channelId, messageId string) error {
	return s.store.SetMessage(pollId, channelId, messageId)
}

// Discard removes a poll whose publication failed before anyone saw it.
func (s *Service) Discard(pollId string) error {
	return s.store.Discard(pollId)
}
