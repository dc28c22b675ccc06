package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nowplaying/internal/core"
	httpserver "nowplaying/internal/http"
	"nowplaying/internal/store"
	"nowplaying/pkg/musiclink"
	"nowplaying/pkg/text"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Parse one source and print the song as JSON",
	Long: `Parse a video title, short-form title, description or media session object and print
the resulting song. Text is read from the arguments, or from stdin when "-" is given.`,
	Example: `  nowplaying parse "Daft Punk - Around the World (Official Video)"
  nowplaying parse --kind description - < description.txt
  nowplaying parse --media-session session.json --duration 3:25`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("kind", "", "Source kind (video-title, short-title, description, media-session)")
	parseCmd.Flags().String("fallback-title", "", "Page title used when a description or media session is not usable")
	parseCmd.Flags().String("origin-url", "", "URL of the page the source was read from")
	parseCmd.Flags().String("media-session", "", "Path to a JSON media session object")
	parseCmd.Flags().String("duration", "", "Track duration in seconds or as mm:ss")
	parseCmd.Flags().String("current-time", "", "Playback position in seconds or as mm:ss")
	parseCmd.Flags().String("unique-id", "", "Identifier of the track on its service")
	parseCmd.Flags().String("connector", "cli", "Connector label attached to the song")
	parseCmd.Flags().Bool("playing", false, "Mark the song as playing")
}

func runParse(cmd *cobra.Command, args []string) error {
	defer func() { _ = logger.Sync() }()

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	req, err := parseRequestFromFlags(cmd, args)
	if err != nil {
		return err
	}

	connectorName, _ := cmd.Flags().GetString("connector")
	var connector core.Connector
	if connectorName != "" {
		connector = cliConnector(connectorName)
	}

	seen := store.NewSeenStore(config.Store.SeenCapacity, config.Store.SeenFalsePositiveRate)
	pipeline := core.NewPipelineFromConfig(config, seen, logger.Named("pipeline"))

	outcome, err := pipeline.Process(cmd.Context(), req, connector)
	if err != nil {
		logger.Debug("Parse failed", zap.Error(err))
		return err
	}

	resp := httpserver.ParseResponse{
		Song:        outcome.Song.CloneableData(),
		ArtistTrack: outcome.Song.ArtistTrackString(),
		Normalizer:  outcome.Normalizer,
		Seen:        outcome.Seen,
	}
	resp.UniqueID, _ = outcome.Song.UniqueID()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func parseRequestFromFlags(cmd *cobra.Command, args []string) (core.Request, error) {
	flags := cmd.Flags()

	kindName, _ := flags.GetString("kind")
	kind, ok := musiclink.ParseSourceKind(kindName)
	if !ok {
		return core.Request{}, fmt.Errorf("unknown source kind %q", kindName)
	}

	sourceText := ""
	if len(args) == 1 {
		sourceText = args[0]
		if sourceText == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return core.Request{}, fmt.Errorf("failed to read stdin: %w", err)
			}
			sourceText = string(data)
		}
	}

	var session *musiclink.MediaSession
	if path, _ := flags.GetString("media-session"); path != "" {
		var err error
		if session, err = readMediaSession(path); err != nil {
			return core.Request{}, err
		}
	}

	if sourceText == "" && session == nil {
		return core.Request{}, errors.New("nothing to parse: pass text or --media-session")
	}

	fallbackTitle, _ := flags.GetString("fallback-title")
	originURL, _ := flags.GetString("origin-url")
	uniqueID, _ := flags.GetString("unique-id")
	playing, _ := flags.GetBool("playing")
	duration, _ := flags.GetString("duration")
	currentTime, _ := flags.GetString("current-time")

	return core.Request{
		Source: musiclink.Source{
			Kind:          kind,
			Text:          sourceText,
			FallbackTitle: fallbackTitle,
			MediaSession:  session,
			OriginURL:     originURL,
		},
		Time:      text.NewTimeInfo(secondsFlag(currentTime), secondsFlag(duration)),
		UniqueID:  uniqueID,
		IsPlaying: playing,
	}, nil
}

func readMediaSession(path string) (*musiclink.MediaSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media session: %w", err)
	}

	var session musiclink.MediaSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("invalid media session %s: %w", path, err)
	}
	return &session, nil
}

// secondsFlag maps an unset flag to nil so the time stays absent.
func secondsFlag(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return text.StringToSeconds(value)
}

type cliConnector string

func (c cliConnector) Label() string { return string(c) }
