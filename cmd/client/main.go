package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/atinyakov/JobTracker/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and dispatches to the register, login or shell commands.
func main() {
	var (
		cmd         string
		baseURL     string
		caFile      string
		sessionPath string
		showVer     bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: register | login | shell")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for HTTPS servers")
	flag.StringVar(&sessionPath, "session", "", "path to session file (default under the user config dir)")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("JobTracker Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	if sessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			log.Fatal(err)
		}
		sessionPath = p
	}
	store := &client.SessionStore{Path: sessionPath}

	api, err := client.NewAPI(baseURL, caFile)
	if err != nil {
		log.Fatal(err)
	}
	prompt := client.NewPrompter(os.Stdin, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "register":
		err = register(ctx, api, prompt)
	case "login":
		err = login(ctx, api, prompt, store)
	case "shell":
		err = shell(ctx, api, prompt, store)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func register(ctx context.Context, api *client.API, prompt *client.Prompter) error {
	username, _ := prompt.Line("Username: ")
	email, _ := prompt.Line("Email: ")
	password, _ := prompt.Line("Password: ")

	user, err := api.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Registration successful. Welcome, %s (id %d). Run -cmd login next.\n", user.Username, user.ID)
	return nil
}

func login(ctx context.Context, api *client.API, prompt *client.Prompter, store *client.SessionStore) error {
	username, _ := prompt.Line("Username: ")
	password, _ := prompt.Line("Password: ")

	tok, err := api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := store.Save(client.Session{Username: username, AccessToken: tok}); err != nil {
		return err
	}
	fmt.Println("Login successful. Session saved.")
	return nil
}

func shell(ctx context.Context, api *client.API, prompt *client.Prompter, store *client.SessionStore) error {
	sess, err := store.Load()
	if errors.Is(err, client.ErrNoSession) {
		return errors.New("not logged in, run -cmd login first")
	}
	if err != nil {
		return err
	}
	api.Token = sess.AccessToken
	fmt.Printf("Logged in as %s. Type 'help' for a list of commands.\n", sess.Username)

	sh := &client.Shell{API: api, Store: store, Prompt: prompt, Out: os.Stdout}
	return sh.Run(ctx)
}
