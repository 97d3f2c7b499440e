package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/mbolis/survey-studio/draft"
	"github.com/mbolis/survey-studio/model"
)

func login(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password, read from stdin when missing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.password(password); err != nil {
		return err
	}
	if _, err := c.client.Login(ctx, model.Credentials{Email: *email, Password: *password}); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "logged in as", *email)
	return nil
}

func register(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password, read from stdin when missing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.password(password); err != nil {
		return err
	}
	reg := model.Registration{Name: *name, Email: *email, Password: *password}
	if _, err := c.client.Register(ctx, reg); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "registered", *email)
	return nil
}

// password reads the first line of stdin into p when the flag was left empty.
func (c *cli) password(p *string) error {
	if *p != "" {
		return nil
	}
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	*p = strings.TrimRight(line, "\r\n")
	return nil
}

func logout(_ context.Context, c *cli, _ []string) error {
	if err := c.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "logged out")
	return nil
}

func list(ctx context.Context, c *cli, _ []string) error {
	surveys, err := c.client.ListSurveys(ctx)
	if err != nil {
		return err
	}
	return writeList(c.out, surveys)
}

func writeList(out io.Writer, surveys []model.Survey) error {
	if len(surveys) == 0 {
		_, err := fmt.Fprintln(out, "no surveys yet")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tSTART\tEND\tSTATUS\tRECIPIENTS")
	for i, s := range surveys {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%d\n",
			i+1, s.SurveyID, s.Name, shortDate(s.StartDate), shortDate(s.EndDate), statusLabel(s), len(s.UsersToSend))
	}
	return w.Flush()
}

func statusLabel(s model.Survey) string {
	if s.Published() {
		return s.Status.Label() + " (read-only)"
	}
	return s.Status.Label()
}

// shortDate renders a wire date as "02.01.06 15:04". Values that do not parse
// are shown as they are.
func shortDate(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	for _, layout := range []string{model.DateTimeLayout, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, *v); err == nil {
			return t.Format("02.01.06 15:04")
		}
	}
	return *v
}

func surveyID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing survey id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad survey id %q", args[0])
	}
	return id, nil
}

func show(ctx context.Context, c *cli, args []string) error {
	id, err := surveyID(args)
	if err != nil {
		return err
	}
	s, err := c.client.GetSurvey(ctx, id)
	if err != nil {
		return err
	}
	writeSurvey(c.out, draft.FromSurvey(s), s.SurveyID)
	return nil
}

func writeSurvey(out io.Writer, d draft.Draft, id int64) {
	fmt.Fprintf(out, "survey %d: %s\n", id, d.Name)
	status := d.Status.Label()
	if d.ReadOnly() {
		status += " (read-only)"
	}
	fmt.Fprintf(out, "  status:     %s\n", status)
	fmt.Fprintf(out, "  start:      %s\n", orDash(d.StartDate))
	fmt.Fprintf(out, "  end:        %s\n", orDash(d.EndDate))
	fmt.Fprintf(out, "  recipients: %s\n", orDash(d.UsersToSend))
	for i, sec := range d.Sections {
		fmt.Fprintf(out, "  section %d: %s\n", i+1, orDash(sec.Name))
		for j, q := range sec.Questions {
			fmt.Fprintf(out, "    %d. [%s] %s", j+1, q.Type, q.Text)
			if q.Type == model.QuestionLikert {
				fmt.Fprintf(out, " (%s)", q.Answers)
			}
			fmt.Fprintln(out)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func create(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	file := fs.String("f", "", "JSON survey to start from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := draft.NewCreateForm(c.client)
	if *file != "" {
		s, err := readSurvey(*file)
		if err != nil {
			return err
		}
		form = draft.NewCreateFormFrom(c.client, draft.Template(s))
	}
	if err := applyOps(form, fs.Args()); err != nil {
		return err
	}
	if err := form.Submit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "created survey", form.SurveyID())
	return nil
}

func readSurvey(path string) (model.Survey, error) {
	var s model.Survey
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func edit(ctx context.Context, c *cli, args []string) error {
	id, err := surveyID(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("nothing to change")
	}
	s, err := c.client.GetSurvey(ctx, id)
	if err != nil {
		return err
	}
	form := draft.NewEditForm(c.client, s)
	if form.ReadOnly() {
		return draft.ErrReadOnly
	}
	if err := applyOps(form, args[1:]); err != nil {
		return err
	}
	if err := form.Submit(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "updated survey", id)
	return nil
}

func remove(ctx context.Context, c *cli, args []string) error {
	id, err := surveyID(args)
	if err != nil {
		return err
	}
	if err := c.client.DeleteSurvey(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "deleted survey", id)
	return nil
}

func duplicate(ctx context.Context, c *cli, args []string) error {
	id, err := surveyID(args)
	if err != nil {
		return err
	}
	var name string
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	} else {
		s, err := c.client.GetSurvey(ctx, id)
		if err != nil {
			return err
		}
		name = s.Name + " - Copy"
	}
	created, err := c.client.DuplicateSurvey(ctx, id, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created survey %d as a copy of %d\n", created, id)
	return nil
}
