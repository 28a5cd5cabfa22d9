package polls

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lunawell/tally/poll"
)

var createPollOperation = &discordgo.ApplicationCommand{
	Name:        "createpoll",
	Description: "Create a poll in this channel",
	Type:        discordgo.ChatApplicationCommand,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        "question",
			Description: "The question being asked",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
		},
		{
			Name:        "choices",
			Description: "Allowed choices, separated by |",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
		},
		{
			Name:        "timeout",
			Description: "How long the poll should be open for (default is 1 day)",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    false,
		},
		{
			Name:        "anonymous",
			Description: "Hide who voted for what",
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Required:    false,
		},
		{
			Name:        "multiple-answers",
			Description: "Allow voters to pick more than one option",
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Required:    false,
		},
		{
			Name:        "participants-can-add-options",
			Description: "Allow anyone to add options to the poll",
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Required:    false,
		},
	},
}

func runCreateCommand(ds *discordgo.Session, i *discordgo.InteractionCreate) {
	deferEphemeral(ds, i)

	commandData := i.ApplicationCommandData()

	var question string
	var choices []string
	var timeout string
	settings := poll.Settings{}

	for _, v := range commandData.Options {
		switch v.Name {
		case "question":
			{
				question = v.StringValue()
			}
		case "choices":
			{
				choices = strings.Split(v.StringValue(), "|")
			}
		case "timeout":
			{
				timeout = v.StringValue()
			}
		case "anonymous":
			{
				settings.Anonymous = v.BoolValue()
			}
		case "multiple-answers":
			{
				settings.MultipleAnswers = v.BoolValue()
			}
		case "participants-can-add-options":
			{
				settings.ParticipantsCanAddOptions = v.BoolValue()
			}
		}
	}

	for k, v := range choices {
		choices[k] = strings.TrimSpace(v)
	}

	if len(choices) > menuOptionLimit {
		replyEphemeral(ds, i, "Limit of 25 choices")
		return
	}

	for _, v := range choices {
		if len(v) > 100 {
			replyEphemeral(ds, i, "Choices can be at most 100 characters")
			return
		}
	}

	if hasDupes(choices) {
		replyEphemeral(ds, i, "Choices cannot repeat")
		return
	}

	endDate, err := parseDeadline(timeout, time.Now())
	if err != nil {
		replyEphemeral(ds, i, "Timeout is invalid")
		return
	}
	settings.ActiveTill = endDate

	pr, err := service.Create(question, choices, settings, interactionUser(i), i.ChannelID)
	if err != nil {
		replyEphemeral(ds, i, userMessage(err))
		return
	}

	now := time.Now().UTC()
	m := &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{pollEmbed(pr, now)},
		Components: pollComponents(pr),
	}

	message, err := ds.ChannelMessageSendComplex(i.ChannelID, m)
	if err != nil {
		_ = service.Discard(pr.Id)
		replyEphemeral(ds, i, "Error sending poll: "+err.Error())
		return
	}

	err = service.SetMessage(pr.Id, i.ChannelID, message.ID)
	if err != nil {
		_ = ds.ChannelMessageDelete(message.ChannelID, message.ID)
		_ = service.Discard(pr.Id)
		replyEphemeral(ds, i, "Error saving poll: "+userMessage(err))
		return
	}

	replyEphemeral(ds, i, "Poll created")
}

// parseDeadline follows the timeout grammar of the old bot: a bare "Nd" is N
// days, anything else is a Go duration. Empty means one day.
func parseDeadline(timeout string, now time.Time) (time.Time, error) {
	now = now.UTC()
	if timeout == "" {
		return now.AddDate(0, 0, 1), nil
	}

	if strings.HasSuffix(timeout, "d") {
		part := strings.TrimSuffix(timeout, "d")
		numDays, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, err
		}
		if numDays <= 0 {
			return time.Time{}, errors.New("timeout must be positive")
		}
		return now.AddDate(0, 0, numDays), nil
	}

	timer, err := time.ParseDuration(timeout)
	if err != nil {
		return time.Time{}, err
	}
	if timer <= 0 {
		return time.Time{}, errors.New("timeout must be positive")
	}
	return now.Add(timer), nil
}

func hasDupes(choices []string) bool {
	for k, v := range choices {
		index := k + 1

		for ; index < len(choices); index++ {
			if v == choices[index] {
				return true
			}
		}
	}

	return false
}
