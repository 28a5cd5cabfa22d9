package polls

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// runShowCommand answers the "poll <message-id>" text command with a fresh
// snapshot reply, leaving the published message alone.
func runShowCommand(ds *discordgo.Session, mc *discordgo.MessageCreate, cmd string, args []string) {
	if service == nil || len(args) < 1 {
		return
	}

	pr, err := service.GetByMessage(args[0], mc.Author.ID)
	if err != nil {
		_, _ = ds.ChannelMessageSend(mc.ChannelID, userMessage(err))
		return
	}

	_, _ = ds.ChannelMessageSendComplex(mc.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{pollEmbed(pr, time.Now().UTC())},
		Reference: mc.Reference(),
	})
}
