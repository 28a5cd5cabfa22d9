package polls

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/lunawell/tally/api"
	"github.com/lunawell/tally/api/database"
	"github.com/lunawell/tally/api/env"
	"github.com/lunawell/tally/api/logger"
	"github.com/lunawell/tally/poll"
)

type Module struct {
	api.Module
}

var appId string
var service *poll.Service

func (*Module) Load(ds *discordgo.Session) {
	appId = env.Get("app.id")

	var guilds []string
	for _, v := range env.GetStringArray("polls.guilds", ";") {
		if v == "" {
			continue
		}
		guilds = append(guilds, v)
	}

	db, err := database.Get()
	if err != nil {
		logger.Err().Println(err.Error())
		return
	}
	store := poll.NewDatabase(db)
	if err = store.Migrate(); err != nil {
		logger.Err().Println(err.Error())
		return
	}
	service = poll.NewService(store)

	api.RegisterIntentNeed(discordgo.IntentsGuilds, discordgo.IntentsGuildMessages)
	api.RegisterCommand("poll", runShowCommand)

	ds.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		for _, guild := range guilds {
			for _, v := range []*discordgo.ApplicationCommand{createPollOperation, closePollOperation} {
				logger.Out().Printf("Registering %s for guild %s\n", v.Name, guild)
				_, err := s.ApplicationCommandCreate(appId, guild, v)
				if err != nil {
					logger.Err().Printf("Cannot create slash command %q: %v", v.Name, err)
				}
			}
		}
	})

	ds.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			{
				if i.ApplicationCommandData().Name == createPollOperation.Name {
					runCreateCommand(s, i)
				}
				if i.ApplicationCommandData().Name == closePollOperation.Name {
					runCloseCommand(s, i)
				}
			}
		case discordgo.InteractionMessageComponent:
			{
				ref, ok := DecodeRef(i.MessageComponentData().CustomID)
				if !ok {
					return
				}
				switch ref.Action {
				case ActionVote:
					runVoteCast(s, i, ref)
				case ActionAddOption:
					promptAddOption(s, i, ref)
				}
			}
		case discordgo.InteractionModalSubmit:
			{
				ref, ok := DecodeRef(i.ModalSubmitData().CustomID)
				if !ok {
					return
				}
				if ref.Action == ActionAddOption {
					runAddOption(s, i, ref)
				}
			}
		}
	})
}

func (Module) Name() string {
	return "polls"
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// userMessage maps engine errors to the reply shown to the caller. Unknown
// errors get a generic line and the detail goes to the log.
func userMessage(err error) string {
	switch {
	case errors.Is(err, poll.ErrNotFound):
		return "That poll no longer exists"
	case errors.Is(err, poll.ErrPollClosed):
		return "This poll is closed"
	case errors.Is(err, poll.ErrAlreadyClosed):
		return "Poll is already closed"
	case errors.Is(err, poll.ErrForbidden):
		return "Only the poll creator can do that"
	case errors.Is(err, poll.ErrEmptySelection):
		return "Pick at least one option"
	case errors.Is(err, poll.ErrInvalidOption):
		return "That option is not part of this poll"
	case errors.Is(err, poll.ErrMultipleAnswersNotAllowed):
		return "This poll only allows a single answer"
	case errors.Is(err, poll.ErrOptionsLocked):
		return "This poll does not accept new options"
	case errors.Is(err, poll.ErrEmptyText):
		return "Option text cannot be empty"
	case errors.Is(err, poll.ErrEmptyQuestion):
		return "The poll needs a question"
	case errors.Is(err, poll.ErrTooFewOptions):
		return "You need at least 2 choices"
	default:
		logger.Err().Println(err.Error())
		return "Something went wrong, try again"
	}
}

func replyEphemeral(ds *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_, _ = ds.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &msg})
}

func deferEphemeral(ds *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = ds.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}
