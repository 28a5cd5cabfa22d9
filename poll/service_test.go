package poll

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	store *MemStore
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: NewMemStore(),
		now:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewServiceWithClock(f.store, func() time.Time { return f.now })
	return f
}

func (f *fixture) create(t *testing.T, settings Settings, options ...string) *Projection {
	t.Helper()
	if settings.ActiveTill.IsZero() {
		settings.ActiveTill = f.now.Add(24 * time.Hour)
	}
	if len(options) == 0 {
		options = []string{"Pizza", "Salad"}
	}
	pr, err := f.svc.Create("Pizza or Salad?", options, settings, "creator", "chan-1")
	require.NoError(t, err)
	return pr
}

func checkCounts(t *testing.T, pr *Projection) {
	t.Helper()
	sum := 0
	for _, c := range pr.VotesByOption {
		sum += c
	}
	assert.Equal(t, pr.TotalVotes, sum, "votesByOption must sum to totalVotes")
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	t.Run("assigns ids and keeps option order", func(t *testing.T) {
		pr := f.create(t, Settings{}, "Pizza", "Salad", "Sushi")
		assert.NotEmpty(t, pr.Id)
		require.Len(t, pr.Options, 3)
		assert.Equal(t, []string{"Pizza", "Salad", "Sushi"},
			[]string{pr.Options[0].Text, pr.Options[1].Text, pr.Options[2].Text})
		assert.NotEmpty(t, pr.Options[0].Id)
		assert.Equal(t, 0, pr.TotalVotes)
	})

	t.Run("rejects an empty question", func(t *testing.T) {
		_, err := f.svc.Create("  ", []string{"a", "b"}, Settings{ActiveTill: f.now.Add(time.Hour)}, "creator", "chan-1")
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("rejects fewer than two non-empty options", func(t *testing.T) {
		_, err := f.svc.Create("Q", []string{"a", "   "}, Settings{ActiveTill: f.now.Add(time.Hour)}, "creator", "chan-1")
		assert.ErrorIs(t, err, ErrTooFewOptions)
	})
}

func TestCastVote_SingleChoiceReplacement(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{MultipleAnswers: false})
	pizza, salad := pr.Options[0].Id, pr.Options[1].Id

	pr, err := f.svc.CastVote(pr.Id, "userA", []string{pizza})
	require.NoError(t, err)
	assert.Equal(t, 1, pr.TotalVotes)
	assert.Equal(t, 100, pr.Options[0].Percentage)
	checkCounts(t, pr)

	// changing their mind replaces, never stacks
	pr, err = f.svc.CastVote(pr.Id, "userA", []string{salad})
	require.NoError(t, err)
	assert.Equal(t, 1, pr.TotalVotes)
	assert.Equal(t, 0, pr.Options[0].Percentage)
	assert.Equal(t, 100, pr.Options[1].Percentage)
	assert.Equal(t, []string{salad}, pr.UserVotes)
	checkCounts(t, pr)
}

func TestCastVote_MultiSelectAdjustment(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{MultipleAnswers: true}, "opt1", "opt2", "opt3")
	o1, o2, o3 := pr.Options[0].Id, pr.Options[1].Id, pr.Options[2].Id

	pr, err := f.svc.CastVote(pr.Id, "userB", []string{o1, o2})
	require.NoError(t, err)
	assert.Equal(t, 2, pr.TotalVotes)

	pr, err = f.svc.CastVote(pr.Id, "userB", []string{o2, o3})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{o2, o3}, pr.UserVotes)
	assert.Equal(t, 0, pr.VotesByOption[o1])
	assert.Equal(t, 1, pr.VotesByOption[o2])
	assert.Equal(t, 1, pr.VotesByOption[o3])
	checkCounts(t, pr)
}

func TestCastVote_Idempotent(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{MultipleAnswers: true}, "a", "b", "c")
	selection := []string{pr.Options[0].Id, pr.Options[2].Id}

	first, err := f.svc.CastVote(pr.Id, "userA", selection)
	require.NoError(t, err)
	second, err := f.svc.CastVote(pr.Id, "userA", selection)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCastVote_Validation(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{})

	t.Run("empty selection", func(t *testing.T) {
		_, err := f.svc.CastVote(pr.Id, "userA", nil)
		assert.ErrorIs(t, err, ErrEmptySelection)
	})

	t.Run("invalid option", func(t *testing.T) {
		_, err := f.svc.CastVote(pr.Id, "userA", []string{"not-an-option"})
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("multiple answers not allowed", func(t *testing.T) {
		_, err := f.svc.CastVote(pr.Id, "userA", []string{pr.Options[0].Id, pr.Options[1].Id})
		assert.ErrorIs(t, err, ErrMultipleAnswersNotAllowed)
	})

	t.Run("unknown poll", func(t *testing.T) {
		_, err := f.svc.CastVote("missing", "userA", []string{"x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("failed validation never mutates state", func(t *testing.T) {
		got, err := f.svc.Get(pr.Id, "userA")
		require.NoError(t, err)
		assert.Equal(t, 0, got.TotalVotes)
	})
}

func TestCastVote_ExpiredPoll(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{ActiveTill: f.now.Add(-time.Second)})

	got, err := f.svc.Get(pr.Id, "userA")
	require.NoError(t, err)
	assert.True(t, got.IsClosed)

	_, err = f.svc.CastVote(pr.Id, "userA", []string{pr.Options[0].Id})
	assert.ErrorIs(t, err, ErrPollClosed)

	got, err = f.svc.Get(pr.Id, "userA")
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalVotes)
}

func TestSingleAnswerPollNeverHoldsTwoRows(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{})

	for i := 0; i < 10; i++ {
		id := pr.Options[i%2].Id
		var err error
		pr, err = f.svc.CastVote(pr.Id, "userA", []string{id})
		require.NoError(t, err)
		assert.Len(t, pr.UserVotes, 1)
		assert.Equal(t, 1, pr.TotalVotes)
	}
}

func TestAnonymousPollHidesVoters(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{Anonymous: true})

	_, err := f.svc.CastVote(pr.Id, "userA", []string{pr.Options[0].Id})
	require.NoError(t, err)
	_, err = f.svc.CastVote(pr.Id, "userB", []string{pr.Options[1].Id})
	require.NoError(t, err)

	got, err := f.svc.Get(pr.Id, "creator")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalVotes)
	assert.Equal(t, 1, got.VotesByOption[pr.Options[0].Id])
	assert.Nil(t, got.Voters)
}

func TestAddOption(t *testing.T) {
	f := newFixture(t)

	t.Run("locked polls reject additions and stay unchanged", func(t *testing.T) {
		pr := f.create(t, Settings{ParticipantsCanAddOptions: false})
		_, err := f.svc.AddOption(pr.Id, "userA", "Sushi")
		assert.ErrorIs(t, err, ErrOptionsLocked)

		got, err := f.svc.Get(pr.Id, "userA")
		require.NoError(t, err)
		assert.Len(t, got.Options, 2)
	})

	t.Run("appends at the end with the contributor recorded", func(t *testing.T) {
		pr := f.create(t, Settings{ParticipantsCanAddOptions: true})
		got, err := f.svc.AddOption(pr.Id, "userA", "  Sushi  ")
		require.NoError(t, err)

		require.Len(t, got.Options, 3)
		assert.Equal(t, "Sushi", got.Options[2].Text)
		assert.Equal(t, "userA", got.Options[2].AddedBy)
	})

	t.Run("duplicate text still appends", func(t *testing.T) {
		pr := f.create(t, Settings{ParticipantsCanAddOptions: true})
		got, err := f.svc.AddOption(pr.Id, "userA", "Pizza")
		require.NoError(t, err)
		assert.Len(t, got.Options, 3)
	})

	t.Run("blank text is rejected", func(t *testing.T) {
		pr := f.create(t, Settings{ParticipantsCanAddOptions: true})
		_, err := f.svc.AddOption(pr.Id, "userA", "   ")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("new options are immediately votable", func(t *testing.T) {
		pr := f.create(t, Settings{ParticipantsCanAddOptions: true})
		got, err := f.svc.AddOption(pr.Id, "userA", "Sushi")
		require.NoError(t, err)

		got, err = f.svc.CastVote(pr.Id, "userA", []string{got.Options[2].Id})
		require.NoError(t, err)
		assert.Equal(t, 1, got.VotesByOption[got.Options[2].Id])
	})
}

func TestClose(t *testing.T) {
	t.Run("creator closes early despite a future deadline", func(t *testing.T) {
		f := newFixture(t)
		pr := f.create(t, Settings{})

		got, err := f.svc.Close(pr.Id, "creator")
		require.NoError(t, err)
		assert.True(t, got.IsClosed)
		require.NotNil(t, got.ClosedAt)
		assert.Equal(t, f.now, *got.ClosedAt)

		_, err = f.svc.CastVote(pr.Id, "userA", []string{pr.Options[0].Id})
		assert.ErrorIs(t, err, ErrPollClosed)
	})

	t.Run("non-creator cannot close", func(t *testing.T) {
		f := newFixture(t)
		pr := f.create(t, Settings{})
		_, err := f.svc.Close(pr.Id, "userA")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("closing twice fails", func(t *testing.T) {
		f := newFixture(t)
		pr := f.create(t, Settings{})
		_, err := f.svc.Close(pr.Id, "creator")
		require.NoError(t, err)
		_, err = f.svc.Close(pr.Id, "creator")
		assert.ErrorIs(t, err, ErrAlreadyClosed)
	})

	t.Run("an expired poll counts as already closed", func(t *testing.T) {
		f := newFixture(t)
		pr := f.create(t, Settings{ActiveTill: f.now.Add(-time.Minute)})
		_, err := f.svc.Close(pr.Id, "creator")
		assert.ErrorIs(t, err, ErrAlreadyClosed)
	})

	t.Run("closed is observed closed forever", func(t *testing.T) {
		f := newFixture(t)
		pr := f.create(t, Settings{})
		_, err := f.svc.Close(pr.Id, "creator")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			f.now = f.now.Add(time.Hour)
			got, err := f.svc.Get(pr.Id, "userA")
			require.NoError(t, err)
			assert.True(t, got.IsClosed)
		}
	})
}

func TestMessageLookup(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{})

	require.NoError(t, f.svc.SetMessage(pr.Id, "chan-1", "msg-1"))

	got, err := f.svc.GetByMessage("msg-1", "userA")
	require.NoError(t, err)
	assert.Equal(t, pr.Id, got.Id)
	assert.Equal(t, "msg-1", got.MessageId)

	_, err = f.svc.GetByMessage("msg-unknown", "userA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscard(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{})

	require.NoError(t, f.svc.Discard(pr.Id))
	_, err := f.svc.Get(pr.Id, "userA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentVoting(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{})
	pizza, salad := pr.Options[0].Id, pr.Options[1].Id

	const voters = 50
	var wg sync.WaitGroup
	wg.Add(voters)
	for i := 0; i < voters; i++ {
		go func(n int) {
			defer wg.Done()
			id := pizza
			if n%2 == 0 {
				id = salad
			}
			_, err := f.svc.CastVote(pr.Id, fmt.Sprintf("user-%d", n), []string{id})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := f.svc.Get(pr.Id, "creator")
	require.NoError(t, err)
	assert.Equal(t, voters, got.TotalVotes)
	checkCounts(t, got)
}

func TestConcurrentSameUserCollapses(t *testing.T) {
	f := newFixture(t)
	pr := f.create(t, Settings{})
	pizza, salad := pr.Options[0].Id, pr.Options[1].Id

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := pizza
			if n%2 == 0 {
				id = salad
			}
			_, err := f.svc.CastVote(pr.Id, "userA", []string{id})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// whichever write landed last, the user holds exactly one vote
	got, err := f.svc.Get(pr.Id, "userA")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalVotes)
	assert.Len(t, got.UserVotes, 1)
	checkCounts(t, got)
}
