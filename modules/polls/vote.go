package polls

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

func runVoteCast(ds *discordgo.Session, i *discordgo.InteractionCreate, ref Ref) {
	deferEphemeral(ds, i)

	// The select menu submits the voter's complete selection, so every cast
	// is a full replacement of their previous votes on this poll.
	pr, err := service.CastVote(ref.PollId, interactionUser(i), i.MessageComponentData().Values)
	if err != nil {
		replyEphemeral(ds, i, userMessage(err))
		return
	}

	editPollMessage(ds, pr, time.Now().UTC())
	replyEphemeral(ds, i, "Vote recorded")
}
