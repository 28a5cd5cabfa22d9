package polls

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

func promptAddOption(ds *discordgo.Session, i *discordgo.InteractionCreate, ref Ref) {
	_ = ds.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: NewRef(ActionAddOption, ref.PollId).Encode(),
			Title:    "Add an option",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "option-text",
						Label:     "Option text",
						Style:     discordgo.TextInputShort,
						Required:  true,
						MaxLength: 100,
					},
				}},
			},
		},
	})
}

func runAddOption(ds *discordgo.Session, i *discordgo.InteractionCreate, ref Ref) {
	deferEphemeral(ds, i)

	userId := interactionUser(i)

	// The select menu cannot grow past the transport's cap, so stop appends
	// there even though the engine itself has no limit.
	current, err := service.Get(ref.PollId, userId)
	if err != nil {
		replyEphemeral(ds, i, userMessage(err))
		return
	}
	if len(current.Options) >= menuOptionLimit {
		replyEphemeral(ds, i, "This poll already has the maximum number of options")
		return
	}

	pr, err := service.AddOption(ref.PollId, userId, modalText(i))
	if err != nil {
		replyEphemeral(ds, i, userMessage(err))
		return
	}

	editPollMessage(ds, pr, time.Now().UTC())
	replyEphemeral(ds, i, "Option added")
}

func modalText(i *discordgo.InteractionCreate) string {
	for _, c := range i.ModalSubmitData().Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			if input, ok := rc.(*discordgo.TextInput); ok {
				return input.Value
			}
		}
	}
	return ""
}
