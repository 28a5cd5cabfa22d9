package main

import (
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/lunawell/tally/api"
	"github.com/lunawell/tally/api/database"
	"github.com/lunawell/tally/api/env"
	"github.com/lunawell/tally/api/logger"
	"github.com/lunawell/tally/modules"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var Session *discordgo.Session

func main() {
	moduleList := os.Args[1:]
	if len(moduleList) == 0 {
		moduleList = []string{"polls"}
	}

	token := env.Get("discord.token")

	if token == "" {
		logger.Err().Print("DISCORD_TOKEN must be set in the environment to run this process")
		return
	}
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}

	defer func() {
		err := logger.Close()
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error closing logger: %s", err.Error())
		}
	}()

	defer database.Close()

	Session, _ = discordgo.New(token)
	defer Session.Close()

	modules.Load(Session, moduleList)

	OpenConnection()

	// Wait for a CTRL-C
	fmt.Println(`Now running. Press CTRL-C to exit.`)
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	fmt.Println("Shutting down")
}

func OpenConnection() {
	Session.Identify.Intents = api.GetIntent()

	EnableCommands(Session)

	err := Session.Open()
	if err != nil {
		logger.Err().Print(err.Error())
		os.Exit(1)
	}
}
