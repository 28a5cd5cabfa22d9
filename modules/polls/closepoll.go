package polls

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

var closePollOperation = &discordgo.ApplicationCommand{
	Name:        "closepoll",
	Description: "Closes a poll early",
	Type:        discordgo.ChatApplicationCommand,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        "id",
			Description: "Message ID of the poll",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
		},
	},
}

func runCloseCommand(ds *discordgo.Session, i *discordgo.InteractionCreate) {
	deferEphemeral(ds, i)

	messageId := i.ApplicationCommandData().Options[0].StringValue()
	userId := interactionUser(i)

	current, err := service.GetByMessage(messageId, userId)
	if err != nil {
		replyEphemeral(ds, i, userMessage(err))
		return
	}

	pr, err := service.Close(current.Id, userId)
	if err != nil {
		replyEphemeral(ds, i, userMessage(err))
		return
	}

	editPollMessage(ds, pr, time.Now().UTC())
	replyEphemeral(ds, i, "Poll closed")
}
