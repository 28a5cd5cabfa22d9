package poll

import "time"

// Store is the single source of truth for polls, options and votes. Every
// mutating method validates and writes inside one atomic unit scoped to the
// poll, so two concurrent casts never lose an update and counts never diverge
// from the stored vote rows. Reads may happen without coordination; closing
// is derived, not flagged.
type Store interface {
	// Create persists a fully-built poll and its initial options.
	Create(p *Poll) error

	// Get returns the poll (options in display order) and all of its votes,
	// or ErrNotFound.
	Get(pollId string) (*Poll, []Vote, error)

	// GetByMessage resolves a poll by the chat message that published it.
	GetByMessage(messageId string) (*Poll, []Vote, error)

	// CastVote replaces the user's entire vote set for the poll with
	// optionIds, after validating the selection against the poll state at
	// write time. Returns the poll and votes as of the committed write.
	CastVote(pollId, userId string, optionIds []string, now time.Time) (*Poll, []Vote, error)

	// AppendOption appends opt at the end of the poll's options, assigning
	// its display order inside the transaction.
	AppendOption(pollId string, opt Option, now time.Time) (*Poll, []Vote, error)

	// Close sets the explicit close timestamp, or ErrAlreadyClosed when the
	// poll is already closed by either path.
	Close(pollId string, now time.Time) (*Poll, []Vote, error)

	// SetMessage records where the poll was published.
	SetMessage(pollId, channelId, messageId string) error

	// Discard removes a poll that could not be published. It exists only for
	// creation cleanup and is never used on a live poll.
	Discard(pollId string) error
}
