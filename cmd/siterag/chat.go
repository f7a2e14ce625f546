package main

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/siterag"
)

// exitWords end a chat session.
var exitWords = []string{"exit", "quit", "bye"}

// Run executes the chat command. Each line read from stdin is a question;
// a failed answer is reported and the session continues.
func (c *ChatCmd) Run(deps *Dependencies) error {
	cfg := c.config(deps.Config)

	asker, err := openAsker(deps, cfg)
	if err != nil {
		return err
	}

	conv := siterag.NewConversation(cfg.HistoryTurns)
	fmt.Fprintf(deps.Stdout, "Chatting about %q. Type %s to leave.\n", cfg.Collection, strings.Join(exitWords, ", "))

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(deps.Stdout)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if slices.Contains(exitWords, strings.ToLower(question)) {
			fmt.Fprintln(deps.Stdout, "Bot: Goodbye!")
			return nil
		}

		answer, err := asker.Ask(deps.Ctx, question, conv.Turns())
		if err != nil {
			if ctxErr := deps.Ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
			continue
		}

		fmt.Fprintf(deps.Stdout, "Bot: %s\n", answer.Text)
		conv.Add(question, answer.Text)
	}
}
