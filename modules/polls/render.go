package polls

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lunawell/tally/api/logger"
	"github.com/lunawell/tally/poll"
)

// menuOptionLimit is the transport's cap on select menu entries.
const menuOptionLimit = 25

func pollEmbed(pr *poll.Projection, now time.Time) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, o := range pr.Options {
		fmt.Fprintf(&sb, "**%s**\n%s %d%% (%d)\n", o.Text, bar(o.Percentage), o.Percentage, o.Votes)
	}

	embed := &discordgo.MessageEmbed{
		Title:       pr.Question,
		Description: sb.String(),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s • %s • %d votes", pr.TypeLabel(), pr.TimeRemaining(now), pr.TotalVotes),
		},
	}

	if pr.Voters != nil && pr.TotalVotes > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Votes by option",
			Value: voterLines(pr),
		})
	}

	return embed
}

func voterLines(pr *poll.Projection) string {
	byOption := make(map[string][]string, len(pr.Options))
	for _, v := range pr.Voters {
		byOption[v.OptionId] = append(byOption[v.OptionId], "<@"+v.UserId+">")
	}

	var lines []string
	for _, o := range pr.Options {
		if len(byOption[o.Id]) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", o.Text, strings.Join(byOption[o.Id], ", ")))
	}
	return strings.Join(lines, "\n")
}

func pollComponents(pr *poll.Projection) []discordgo.MessageComponent {
	minValues := 1
	maxValues := 1
	if pr.Settings.MultipleAnswers {
		maxValues = len(pr.Options)
		if maxValues > menuOptionLimit {
			maxValues = menuOptionLimit
		}
	}

	options := make([]discordgo.SelectMenuOption, 0, len(pr.Options))
	for _, o := range pr.Options {
		if len(options) == menuOptionLimit {
			break
		}
		options = append(options, discordgo.SelectMenuOption{Label: o.Text, Value: o.Id})
	}

	placeholder := "Pick an option"
	if pr.Settings.MultipleAnswers {
		placeholder = "Pick one or more options"
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    NewRef(ActionVote, pr.Id).Encode(),
				Placeholder: placeholder,
				MinValues:   &minValues,
				MaxValues:   maxValues,
				Options:     options,
				Disabled:    pr.IsClosed,
			},
		}},
	}

	if pr.Settings.ParticipantsCanAddOptions {
		components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: NewRef(ActionAddOption, pr.Id).Encode(),
				Label:    "Add option",
				Style:    discordgo.SecondaryButton,
				Disabled: pr.IsClosed,
			},
		}})
	}

	return components
}

func bar(percent int) string {
	filled := percent / 10
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
}

// editPollMessage re-renders the published message from a fresh projection.
// Consumers pull state this way after every mutation; no deltas are pushed.
func editPollMessage(ds *discordgo.Session, pr *poll.Projection, now time.Time) {
	if pr.MessageId == "" {
		return
	}

	edit := discordgo.NewMessageEdit(pr.ChannelId, pr.MessageId)
	embeds := []*discordgo.MessageEmbed{pollEmbed(pr, now)}
	components := pollComponents(pr)
	edit.Embeds = &embeds
	edit.Components = &components

	_, err := ds.ChannelMessageEditComplex(edit)
	if err != nil {
		logger.Err().Printf("unable to refresh poll message %s: %s", pr.MessageId, err.Error())
	}
}
