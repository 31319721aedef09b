package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"moxbot/internal/adapters/handler"
	"moxbot/internal/adapters/localiser"
	"moxbot/internal/adapters/sender"
	"moxbot/internal/adapters/store"
	"moxbot/internal/core/domain"
	"moxbot/internal/core/domain/commands"
	"moxbot/internal/core/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting moxbot...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	session, err := discordgo.New("Bot " + viper.GetString("discord.bot_token"))
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages

	s := sender.NewDiscord(session)

	documents, err := store.Open(viper.GetString("store.path"))
	if err != nil {
		log.Panic().Err(err).Msg("failed opening document store")
	}
	defer documents.Close()

	catalog := localiser.NewCatalog()

	collectors := service.NewRegistry(s)
	prompt := service.NewDecisionPrompt(collectors, s, s)
	composer := service.NewComposer(collectors, s)

	commandRegistry := &domain.CommandRegistry{}
	commandRegistry.Register(commands.NewPurgeHandler(s, s, s, s, documents, catalog, prompt, "/purge"))
	commandRegistry.Register(commands.NewReportHandler(collectors, composer, prompt, s, s, documents, catalog, "/report"))
	commandRegistry.Register(commands.NewTicketsHandler(collectors, s, s, documents, catalog, "/tickets"))
	commandRegistry.Register(commands.NewHelpHandler(commandRegistry, collectors, s, s, catalog, "/help"))

	handlerTimeout, err := time.ParseDuration(viper.GetString("handler.timeout"))
	if err != nil {
		log.Panic().Err(err).Msg("invalid timeout for handler in config")
	}

	interactions := handler.NewInteraction(collectors, commandRegistry, handlerTimeout,
		viper.GetString("bot.default_locale"))

	session.AddHandler(interactions.HandleMessageCreate)
	session.AddHandler(interactions.HandleInteractionCreate)

	if err := session.Open(); err != nil {
		log.Panic().Err(err).Msg("failed to open gateway connection")
	}
	defer session.Close()

	log.Info().Msg("bot listening")
	<-ctx.Done()
	log.Info().Msg("shutting down")
}
