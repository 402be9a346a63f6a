package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lingomate/lingomate-cli/internal/speech"
)

var transcribeStream bool

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe an audio recording to text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if transcribeStream {
			return streamTranscribe(cmd, args[0])
		}

		resp, err := lingoApp.Client.Transcribe(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to transcribe: %w", err)
		}
		fmt.Println(resp.Text)
		return nil
	},
}

// streamTranscribe sends the audio over the websocket endpoint and prints
// interim results as they arrive.
func streamTranscribe(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	wsURL := strings.Replace(lingoApp.Config.APIBaseURL, "http", "ws", 1) + "/api/ai/stt/stream"
	client := speech.NewStreamClient(wsURL, lingoApp.Auth)

	return client.Stream(cmd.Context(), f, func(r speech.Result) {
		if r.IsFinal {
			fmt.Printf("\r\033[K%s\n", r.Text)
		} else {
			fmt.Printf("\r\033[K%s", r.Text)
		}
	})
}

var (
	sayOut    string
	sayAccent string
	sayGender string
)

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Synthesize speech for a sentence",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		resp, err := lingoApp.Client.TTS(cmd.Context(), text, sayAccent, sayGender)
		if err != nil {
			return fmt.Errorf("failed to synthesize speech: %w", err)
		}

		audio, err := base64.StdEncoding.DecodeString(resp.Audio)
		if err != nil {
			return fmt.Errorf("failed to decode audio: %w", err)
		}
		if err := os.WriteFile(sayOut, audio, 0644); err != nil {
			return fmt.Errorf("failed to write audio file: %w", err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(audio), sayOut)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().BoolVar(&transcribeStream, "stream", false, "Stream audio over a websocket for live results")
	sayCmd.Flags().StringVarP(&sayOut, "out", "o", "speech.mp3", "Output file")
	sayCmd.Flags().StringVar(&sayAccent, "accent", "", "Accent override: us, uk, or aus")
	sayCmd.Flags().StringVar(&sayGender, "gender", "", "Voice gender override")

	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(sayCmd)
}
