package main

import (
	"context"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/pitchperfect/pitchperfect/internal/ai"
	"github.com/pitchperfect/pitchperfect/internal/core"
	"github.com/pitchperfect/pitchperfect/internal/feedback"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
	"github.com/pitchperfect/pitchperfect/internal/server"
	"github.com/pitchperfect/pitchperfect/internal/store"
	"github.com/pitchperfect/pitchperfect/internal/voice"
)

type options struct {
	Address string `short:"a" long:"address" description:"listen address" default:":8080"`
	EnvFile string `long:"env" description:"env file to load before reading configuration" default:".env"`
	Debug   []bool `short:"d" long:"debug" description:"debug verbosity, repeat for more detail"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pitchperfect: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	debuglog.SetLevel(debuglog.LevelFromInt(len(opts.Debug)))

	// A missing env file is fine; the environment may already be set.
	if err := godotenv.Load(opts.EnvFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading %s: %w", opts.EnvFile, err)
	}

	ctx := context.Background()

	storeClient, err := store.NewClientFromEnv()
	if err != nil {
		return err
	}
	voiceClient, err := voice.NewClientFromEnv()
	if err != nil {
		return err
	}
	vendor, err := ai.NewVendorFromEnv(ctx)
	if err != nil {
		return err
	}
	debuglog.Debug(debuglog.Basic, "completion vendor: %s\n", vendor.Name())

	provisioner := voice.NewSharedAgentProvisioner(voiceClient, storeClient.Users())
	simulator := core.NewSimulator(storeClient.Conversations(), provisioner, voiceClient)
	finalizer := feedback.NewSynthesizer(storeClient.Conversations(), storeClient.Feedback(), vendor)

	return server.Serve(opts.Address, &server.Dependencies{
		Store:     storeClient,
		Auth:      storeClient,
		Simulator: simulator,
		Finalizer: finalizer,
	})
}
