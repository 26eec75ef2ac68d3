package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// runREPL drives a line-oriented conversation on stdin/stdout. It
// reads until exit, quit, EOF, or an interrupt.
func runREPL(sierra assistant) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		cancel()
	}()

	// stdin reader goroutine -> lines into channel, so the prompt can
	// also wake up on interrupts.
	scanner := bufio.NewScanner(os.Stdin)
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	fmt.Println(welcomeMessage)
	fmt.Println("Type 'exit' or 'quit' to end the conversation, or Ctrl+C to quit.")
	fmt.Println()

	for {
		fmt.Print("You: ")

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Println(exitMessage)
			return 0
		case line, ok = <-inputCh:
			if !ok {
				// stdin ran out (piped input)
				fmt.Println(exitMessage)
				return 0
			}
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println(exitMessage)
			return 0
		case "/reset":
			sierra.ResetConversation()
			fmt.Println("\nConversation cleared. What else can I help you with?")
			fmt.Println()
			continue
		case "/stats":
			fmt.Println("\n" + formatStats(sierra.Stats()))
			fmt.Println()
			continue
		}

		answer := sierra.ProcessMessage(ctx, input)
		fmt.Printf("\nSierra Agent: %s\n\n", answer)
	}
}
