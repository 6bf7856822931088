package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fixbot/internal/chat"
	"github.com/ziadkadry99/fixbot/internal/history"
	"github.com/ziadkadry99/fixbot/internal/render"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Troubleshoot interactively in the terminal",
	Long: `Starts a troubleshooting conversation in the terminal. Describe a problem
to get the stored fix, rate it, or teach a new one with 'solution'.
Type 'help' for commands. Press Ctrl+C to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringP("user", "u", "", "skip the name question and chat as this user")
	rootCmd.AddCommand(chatCmd)
}

// terminalRenderer prints bot messages and remembers what the user can
// pick next.
type terminalRenderer struct {
	out     io.Writer
	md      *render.Markdown
	options []string
	chips   []string
}

func (r *terminalRenderer) Render(m chat.Message) {
	switch m.Kind {
	case chat.KindText:
		if m.FromUser {
			return
		}
		fmt.Fprintf(r.out, "\nbot> %s\n", strings.ReplaceAll(r.md.Plain(m.Text), "\n", "\n     "))
		r.options = m.Options
	case chat.KindClear:
		fmt.Fprintln(r.out, strings.Repeat("-", 40))
	case chat.KindChips:
		r.chips = m.Chips
	}
}

const (
	typeMessage = "Type a message..."
	askPrefix   = "Ask: "
)

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	user, _ := cmd.Flags().GetString("user")

	rt, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	r := &terminalRenderer{out: os.Stdout, md: render.New()}
	opts := []chat.SessionOption{chat.WithChannel(history.ChannelCLI), chat.WithoutDelays()}
	if user != "" {
		opts = append(opts, chat.WithUsername(user))
	}
	session := rt.engine().NewSession(r, opts...)
	defer session.Close()
	session.Start(ctx)

	if len(r.chips) > 0 {
		fmt.Printf("\nPopular: %s\n", strings.Join(r.chips, " | "))
	}

	for {
		choices := session.PendingChoices()
		options := r.options

		var input string
		if len(choices) > 0 || len(options) > 0 {
			id, text, err := pick(choices, options)
			if err != nil {
				return quietInterrupt(err)
			}
			if id != "" {
				r.options = nil
				session.Choose(ctx, id)
				if id == chat.ChoiceEndYes {
					return nil
				}
				continue
			}
			input = text
		}

		if input == "" {
			prompt := promptui.Prompt{Label: "you"}
			input, err = prompt.Run()
			if err != nil {
				return quietInterrupt(err)
			}
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		r.options = nil
		session.HandleInput(ctx, input)
	}
}

// pick offers the pending buttons and clickable problems. It returns the
// pressed choice, or the text to send when a problem was picked.
func pick(choices []chat.Choice, options []string) (chat.ChoiceID, string, error) {
	items := make([]string, 0, len(choices)+len(options)+1)
	for _, c := range choices {
		items = append(items, c.Label)
	}
	for _, o := range options {
		items = append(items, askPrefix+o)
	}
	items = append(items, typeMessage)

	sel := promptui.Select{Label: "Choose", Items: items, Size: len(items)}
	i, _, err := sel.Run()
	if err != nil {
		return "", "", err
	}
	switch {
	case i < len(choices):
		return choices[i].ID, "", nil
	case i < len(choices)+len(options):
		return "", options[i-len(choices)], nil
	}
	return "", "", nil
}

func quietInterrupt(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return nil
	}
	return err
}
