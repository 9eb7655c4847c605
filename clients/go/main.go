// Command vartalab-chat is a minimal terminal chat client: it logs in,
// opens a WebSocket session and relays stdin lines to one receiver.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/photonp05/VartaLab/clients/go/vartalab"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "password (required)")
	to := flag.String("to", "", "receiver username (required)")
	flag.Parse()

	if *username == "" || *password == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "usage: vartalab-chat -username alice -password secret -to bob")
		os.Exit(1)
	}

	ctx := context.Background()
	client := vartalab.New(*server)

	if err := client.Login(ctx, *username, *password); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	receiver, err := client.FindUser(ctx, *to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "find %s: %v\n", *to, err)
		os.Exit(1)
	}

	// Print history before going live
	history, err := client.Conversation(ctx, receiver.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		os.Exit(1)
	}
	for _, m := range history {
		who := m.SenderDisplayName
		if m.IsOwn {
			who = "you"
		}
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), who, m.Text)
	}

	session, err := client.Connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	go func() {
		for e := range session.Events {
			switch e.Event {
			case vartalab.EventReceiveMessage:
				var m vartalab.IncomingMessage
				if err := decode(e, &m); err == nil {
					fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), m.SenderDisplayName, m.Text)
				}
			case vartalab.EventMessageSent:
				var c vartalab.SentConfirmation
				if err := decode(e, &c); err == nil {
					fmt.Printf("[%s] you: %s\n", c.CreatedAt.Format("15:04"), c.Text)
				}
			case vartalab.EventError:
				var se vartalab.ServerError
				if err := decode(e, &se); err == nil {
					fmt.Fprintf(os.Stderr, "server error (%s): %s\n", se.Code, se.Message)
				}
			}
		}
		fmt.Fprintln(os.Stderr, "disconnected")
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		if err := session.Send(receiver.ID, text); err != nil {
			fmt.Fprintf(os.Stderr, "send: %v\n", err)
			return
		}
	}
}

func decode(e vartalab.Event, out any) error {
	return json.Unmarshal(e.Data, out)
}
