package api

import "github.com/bwmarrin/discordgo"

// Module is a self-contained piece of bot functionality. Load is called once
// with the shared session so the module can attach handlers and register the
// slash commands it owns.
type Module interface {
	Load(ds *discordgo.Session)
	Name() string
}
