package api

import (
	"github.com/bwmarrin/discordgo"
	"github.com/lunawell/tally/api/logger"
)

// GetChannel resolves a channel from the session state, falling back to the
// REST API and caching the result in state.
func GetChannel(ds *discordgo.Session, channelId string) *discordgo.Channel {
	c, err := ds.State.Channel(channelId)
	if err != nil {
		c, err = ds.Channel(channelId)
		if err != nil {
			logger.Err().Printf("unable to fetch Channel for Message, %s", err)
		} else {
			err = ds.State.ChannelAdd(c)
			if err != nil {
				logger.Err().Printf("error updating State with Channel, %s", err)
			}
		}
	}

	return c
}
