package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todoc/internal/usecase"
)

var (
	chatMessage string
	chatMode    string
	chatKidID   int64
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask the assistant one question",
	Long: `Run a single agent turn: the assistant answers using the selected mode's
persona, the bound child's diary context, and tool-grounded retrieval.

Examples:
  todoc chat -m "아기가 밤에 자꾸 깨요" --mode mom --kid 1
  todoc chat -m "What solids can a 7 month old start?" --mode nutrition`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "user message (required)")
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "conversation mode: mom, doctor, nutrition (default from config)")
	chatCmd.Flags().Int64Var(&chatKidID, "kid", 0, "kid id to ground the answer on")
	chatCmd.MarkFlagRequired("message")
}

func runChat(cmd *cobra.Command, args []string) error {
	agent, closeFn := buildAgent(cfg, logger)
	defer closeFn()

	answer := agent.Respond(cmd.Context(), usecase.Request{
		Message: chatMessage,
		Mode:    chatMode,
		KidID:   chatKidID,
	})
	fmt.Println(answer)
	return nil
}
