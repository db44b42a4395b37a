package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shahin2512/HCP-Module/internal/config"
	"github.com/Shahin2512/HCP-Module/internal/draft"
	"github.com/Shahin2512/HCP-Module/internal/model"
	"github.com/Shahin2512/HCP-Module/internal/orchestrator"
	"github.com/Shahin2512/HCP-Module/internal/roster"
)

// --- hcps ---

var hcpsCmd = &cobra.Command{
	Use:   "hcps",
	Short: "List or create healthcare providers",
}

var hcpsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known HCPs",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := newOrchestrator(appCfg)
		out, _ := o.RequestRoster(cmd.Context())
		if err := outcomeError(out); err != nil {
			return err
		}
		printRoster(cmd.OutOrStdout(), o.Roster())
		return nil
	},
}

var hcpsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an HCP",
	Long: `Create an HCP. Names are unique in the record store.

Examples:
  hcpcrm hcps create "Dr. Jane Doe" --specialty Cardiology --contact jane@example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specialty, _ := cmd.Flags().GetString("specialty")
		contact, _ := cmd.Flags().GetString("contact")

		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return fmt.Errorf("name is required")
		}

		o := newOrchestrator(appCfg)
		out, _ := o.CreateHCP(cmd.Context(), model.NewHCP{Name: name, Specialty: specialty, Contact: contact})
		if err := outcomeError(out); err != nil {
			return err
		}
		h := out.(orchestrator.HCPCreated).HCP
		printSuccess("Created HCP %s (ID %d)", h.Name, h.ID)
		return nil
	},
}

func init() {
	hcpsCreateCmd.Flags().String("specialty", "", "medical specialty")
	hcpsCreateCmd.Flags().String("contact", "", "email or phone")
	hcpsCmd.AddCommand(hcpsListCmd)
	hcpsCmd.AddCommand(hcpsCreateCmd)
}

func printRoster(w io.Writer, hcps []model.HCP) {
	if len(hcps) == 0 {
		fmt.Fprintln(w, "No HCPs found.")
		return
	}
	for _, h := range hcps {
		line := fmt.Sprintf("%s  %s", cyan(fmt.Sprintf("%4d", h.ID)), h.Name)
		if h.Specialty != "" {
			line += "  (" + h.Specialty + ")"
		}
		if h.Contact != "" {
			line += "  " + h.Contact
		}
		fmt.Fprintln(w, line)
	}
}

// --- log ---

type logOptions struct {
	hcpName   string
	hcpID     int
	create    bool
	specialty string
	fields    map[string]string
	showDraft bool
}

// logFields maps form flags onto draft fields.
var logFields = []struct {
	flag, usage string
	set         func(d *draft.Draft, v string)
}{
	{"type", "Meeting, Call, Email or Presentation", func(d *draft.Draft, v string) { d.Type = model.InteractionType(v) }},
	{"date", "interaction date, YYYY-MM-DD (default today)", func(d *draft.Draft, v string) { d.Date = v }},
	{"time", "interaction time, HH:MM (default now)", func(d *draft.Draft, v string) { d.Time = v }},
	{"attendees", "who attended", func(d *draft.Draft, v string) { d.Attendees = v }},
	{"topics", "topics discussed", func(d *draft.Draft, v string) { d.TopicsDiscussed = v }},
	{"materials", "materials shared", func(d *draft.Draft, v string) { d.MaterialsShared = v }},
	{"samples", "samples distributed", func(d *draft.Draft, v string) { d.SamplesDistributed = v }},
	{"sentiment", "Positive, Neutral or Negative", func(d *draft.Draft, v string) { d.Sentiment = model.Sentiment(v) }},
	{"outcomes", "outcomes or agreements", func(d *draft.Draft, v string) { d.Outcomes = v }},
	{"follow-up", "follow-up actions", func(d *draft.Draft, v string) { d.FollowUpActions = v }},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log an interaction through the structured form",
	Long: `Log an interaction through the structured form.

The HCP is chosen by --hcp-id or --hcp (exact name). With --create a
missing HCP is created first and selected for the form.

Examples:
  hcpcrm log --hcp "Dr. Smith" --type Call --topics "Product X" --sentiment Positive
  hcpcrm log --hcp "Dr. New" --create --specialty Oncology --outcomes "agreed to trial"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := logOptions{fields: map[string]string{}}
		opts.hcpName, _ = cmd.Flags().GetString("hcp")
		opts.hcpID, _ = cmd.Flags().GetInt("hcp-id")
		opts.create, _ = cmd.Flags().GetBool("create")
		opts.specialty, _ = cmd.Flags().GetString("specialty")
		opts.showDraft, _ = cmd.Flags().GetBool("show-draft")
		for _, f := range logFields {
			if cmd.Flags().Changed(f.flag) {
				opts.fields[f.flag], _ = cmd.Flags().GetString(f.flag)
			}
		}

		if opts.hcpName == "" && opts.hcpID == 0 {
			return fmt.Errorf("one of --hcp or --hcp-id is required")
		}
		if opts.create && opts.hcpName == "" {
			return fmt.Errorf("--create needs --hcp")
		}

		return runLog(cmd.Context(), newOrchestrator(appCfg), opts, cmd.OutOrStdout(), time.Now())
	},
}

func init() {
	logCmd.Flags().String("hcp", "", "HCP name")
	logCmd.Flags().Int("hcp-id", 0, "HCP id")
	logCmd.Flags().Bool("create", false, "create the HCP if it does not exist")
	logCmd.Flags().String("specialty", "", "specialty for a created HCP")
	logCmd.Flags().Bool("show-draft", false, "print the form draft rebuilt from the logged interaction")
	for _, f := range logFields {
		logCmd.Flags().String(f.flag, "", f.usage)
	}
}

func runLog(ctx context.Context, o *orchestrator.Orchestrator, opts logOptions, w io.Writer, now time.Time) error {
	out, _ := o.Bootstrap(ctx)
	if err := outcomeError(out); err != nil {
		return err
	}

	d := draft.New(now)
	view := roster.View(o.Roster())
	h, ok := view.FindByID(opts.hcpID)
	if !ok && opts.hcpName != "" {
		h, ok = view.FindByName(opts.hcpName)
	}
	switch {
	case ok:
		d = d.SelectHCP(h)
	case opts.create:
		out, _ := o.CreateHCP(ctx, model.NewHCP{Name: opts.hcpName, Specialty: opts.specialty})
		if err := outcomeError(out); err != nil {
			return err
		}
		created := out.(orchestrator.HCPCreated).HCP
		printStep("Created HCP %s (ID %d)", created.Name, created.ID)
		d = d.SelectHCP(created)
	default:
		printWarning("HCP not found in roster: %s", hcpRef(opts))
	}

	for _, f := range logFields {
		if v, ok := opts.fields[f.flag]; ok {
			f.set(&d, v)
		}
	}

	out, _ = o.SubmitForm(ctx, d)
	if err := outcomeError(out); err != nil {
		return err
	}
	ix := out.(orchestrator.InteractionLogged).Interaction
	printSuccess("Interaction %d logged for %s", ix.ID, ix.HCPName)
	printStatus("Type", "%s", ix.Type)
	printStatus("Date", "%s %s", ix.Date, ix.Time)
	printStatus("Sentiment", "%s", ix.Sentiment)

	if opts.showDraft {
		res := o.Draft(ctx, draft.New(now))
		return printDraft(w, res)
	}
	return nil
}

func hcpRef(opts logOptions) string {
	if opts.hcpName != "" {
		return opts.hcpName
	}
	return "#" + strconv.Itoa(opts.hcpID)
}

func printDraft(w io.Writer, res draft.Result) error {
	if res.Warning != nil {
		printWarning("%v", res.Warning)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Draft)
}

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Log interactions by chatting",
	Long: `Log interactions by chatting. With a message argument one message is
sent; without, lines are read from stdin until EOF or /quit.

Corrections such as "should be Dr. Lee" reassign the last interaction to
another HCP and select it.

Session commands:
  /select <name>  choose the HCP messages are logged for
  /hcps           list HCPs
  /new <name>     create an HCP and select it
  /draft          show the form draft rebuilt from the last logged interaction
  /clear          clear the transcript
  /quit           leave

Examples:
  hcpcrm chat --hcp "Dr. Smith" "Met Dr. Smith, discussed Product X"
  hcpcrm chat --hcp "Dr. Smith"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		selected, _ := cmd.Flags().GetString("hcp")

		o := newOrchestrator(appCfg)
		out, _ := o.Bootstrap(cmd.Context())
		if err := outcomeError(out); err != nil {
			printWarning("%v", err)
		}
		o.SelectHCP(selected)

		if len(args) > 0 {
			s := &chatSession{o: o, w: cmd.OutOrStdout()}
			s.handle(cmd.Context(), strings.Join(args, " "))
			return s.err
		}
		return runChat(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout(), isTerminal(os.Stdin))
	},
}

func init() {
	chatCmd.Flags().String("hcp", "", "selected HCP name")
}

type chatSession struct {
	o   *orchestrator.Orchestrator
	w   io.Writer
	err error
}

func runChat(ctx context.Context, o *orchestrator.Orchestrator, in io.Reader, w io.Writer, prompt bool) error {
	s := &chatSession{o: o, w: w}
	sc := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(w, bold("> "))
		}
		if !sc.Scan() {
			break
		}
		if !s.handle(ctx, sc.Text()) {
			return nil
		}
	}
	return sc.Err()
}

// handle processes one input line and reports whether the session goes on.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if strings.HasPrefix(line, "/") {
		return s.command(ctx, line)
	}

	out, snap := s.o.SendChatMessage(ctx, line, s.o.Selected())
	switch v := out.(type) {
	case orchestrator.ChatReplied:
		fmt.Fprintln(s.w, green("ai: ")+v.Reply)
		if v.Correction != nil {
			printStep("Selected %s", v.Correction.CorrectName)
		}
	case orchestrator.ChatNotice:
		printWarning("%s", v.Text)
	case orchestrator.Failed:
		s.err = outcomeError(out)
		printError("%s", lastAI(snap))
	case orchestrator.Rejected:
		s.err = outcomeError(out)
		if msg := lastAI(snap); msg != "" {
			printWarning("%s", msg)
		} else {
			printWarning("%v", s.err)
		}
	}
	return true
}

func (s *chatSession) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return false
	case "/select":
		s.o.SelectHCP(arg)
		if arg == "" {
			printStep("Selection cleared")
		} else {
			printStep("Selected %s", arg)
		}
	case "/hcps":
		out, _ := s.o.RequestRoster(ctx)
		if err := outcomeError(out); err != nil {
			printError("%v", err)
			return true
		}
		printRoster(s.w, s.o.Roster())
	case "/new":
		if arg == "" {
			printWarning("usage: /new <name>")
			return true
		}
		out, _ := s.o.CreateHCP(ctx, model.NewHCP{Name: arg})
		if err := outcomeError(out); err != nil {
			printError("%v", err)
			return true
		}
		h := out.(orchestrator.HCPCreated).HCP
		s.o.SelectHCP(h.Name)
		printSuccess("Created HCP %s (ID %d), selected", h.Name, h.ID)
	case "/draft":
		if err := printDraft(s.w, s.o.Draft(ctx, draft.New(time.Now()))); err != nil {
			printError("%v", err)
		}
	case "/clear":
		s.o.ClearChat()
		printStep("Chat cleared")
	default:
		printWarning("unknown command %s", name)
	}
	return true
}

func lastAI(snap orchestrator.Snapshot) string {
	msgs := snap.ChatMessages
	if len(msgs) == 0 || msgs[len(msgs)-1].Sender != model.SenderAI {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(w, "  %s = %s  (%s)\n", bold(k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
