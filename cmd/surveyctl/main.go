// Command surveyctl authors surveys on a survey backend from the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/mbolis/survey-studio/client"
	"github.com/mbolis/survey-studio/config"
	"github.com/mbolis/survey-studio/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	client *client.Client
	in     *bufio.Reader
	out    io.Writer
}

type command struct {
	usage string
	auth  bool
	run   func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"login":     {usage: "login -email EMAIL [-password PASSWORD]", run: login},
	"register":  {usage: "register -name NAME -email EMAIL [-password PASSWORD]", run: register},
	"logout":    {usage: "logout", run: logout},
	"list":      {usage: "list", auth: true, run: list},
	"show":      {usage: "show ID", auth: true, run: show},
	"create":    {usage: "create [-f SURVEY.json] [OP...]", auth: true, run: create},
	"edit":      {usage: "edit ID OP...", auth: true, run: edit},
	"delete":    {usage: "delete ID", auth: true, run: remove},
	"duplicate": {usage: "duplicate ID [NAME]", auth: true, run: duplicate},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	config.LoadEnv()

	fs := flag.NewFlagSet("surveyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	api := fs.String("api", config.Env("SURVEY_API", client.DefaultBaseURL), "survey backend base URL")
	tokenFile := fs.String("token-file", config.Env("SURVEY_TOKEN_FILE", defaultTokenFile()), "file keeping the session token")
	debug := fs.Bool("debug", config.EnvBool("SURVEY_DEBUG", false), "log at DEBUG level")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		fs.Usage()
		return 2
	}

	session := client.NewSession(client.FileStore{Path: *tokenFile})
	if err := session.Init(); err != nil {
		fmt.Fprintln(stderr, "error: reading session:", err)
		return 1
	}
	c := &cli{
		client: client.New(*api, session),
		in:     bufio.NewReader(stdin),
		out:    stdout,
	}

	if cmd.auth && !c.client.IsAuthenticated() {
		fmt.Fprintln(stderr, "not logged in: run surveyctl login first")
		return 1
	}
	if err := cmd.run(ctx, c, rest[1:]); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: surveyctl [flags] COMMAND [ARGS]")
	fmt.Fprintln(out, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, "  "+commands[name].usage)
	}
	fmt.Fprintln(out, "\nedit operations (indexes start at 1):")
	for _, line := range opsHelp {
		fmt.Fprintln(out, "  "+line)
	}
	fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "surveyctl", "token")
}
