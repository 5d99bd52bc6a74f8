// gtranslate: command-line client for the Google Translate web service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/minios-linux/gtranslate/config"
	"github.com/minios-linux/gtranslate/i18n"
	"github.com/minios-linux/gtranslate/langlist"
	"github.com/minios-linux/gtranslate/langmeta"
	"github.com/minios-linux/gtranslate/logging"
	"github.com/minios-linux/gtranslate/speech"
	"github.com/minios-linux/gtranslate/token"
	"github.com/minios-linux/gtranslate/translate"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed)
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", infoColor.Sprint("[INFO]"), fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", successColor.Sprint("[OK]"), fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", warningColor.Sprint("[WARN]"), fmt.Sprintf(format, args...))
}

func logError(format string, args ...any) {
	fmt.Fprintf(color.Error, "%s %s\n", errorColor.Sprint("[ERROR]"), fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

type globalFlags struct {
	configPath string
	verbose    bool
	proxy      string
	timeout    time.Duration
	uiLang     string
}

var globals globalFlags

func bindGlobalFlags(fs *pflag.FlagSet, g *globalFlags) {
	fs.StringVar(&g.configPath, "config", "", i18n.T("Config file (default: $XDG_CONFIG_HOME/gtranslate/config.yaml)"))
	fs.BoolVarP(&g.verbose, "verbose", "v", false, i18n.T("Enable debug logging"))
	fs.StringVar(&g.proxy, "proxy", "", i18n.T("HTTP/HTTPS proxy URL"))
	fs.DurationVar(&g.timeout, "timeout", 0, i18n.T("Request timeout (0 = config value)"))
	fs.StringVar(&g.uiLang, "ui-lang", "", fmt.Sprintf(i18n.T("Language of gtranslate's own messages: %s (default: from LANG)"),
		strings.Join(i18n.Available(), ", ")))
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gtranslate",
		Short: i18n.T("Translate text and speak it using Google Translate"),
		Long: i18n.T(`gtranslate: command-line client for the Google Translate web service.

Commands:
  translate   Translate text between languages
  say         Speak text aloud or save it as MP3
  langs       List the languages the service supports
  token       Compute the request signature for text
  config      Show or create the configuration file`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindGlobalFlags(root.PersistentFlags(), &globals)

	root.AddCommand(
		newTranslateCmd(),
		newSayCmd(),
		newLangsCmd(),
		newTokenCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	lang := i18n.Init(os.Args[1:])
	if i18n.LangFromArgs(os.Args[1:]) != "" && !i18n.HasCatalog(lang) {
		logWarning(i18n.T("No messages for %s, using English"), lang)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Session: configuration, logger and client for one command run
// ---------------------------------------------------------------------------

type session struct {
	cfg    config.Config
	log    zerolog.Logger
	closer io.Closer
}

// newSession loads the configuration and applies command-line overrides,
// which take precedence over the file and the environment.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(globals.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("proxy") {
		cfg.Proxy = globals.proxy
	}
	if flags.Changed("timeout") && globals.timeout > 0 {
		cfg.Timeout = globals.timeout
	}
	if globals.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}

	log, closer := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	return &session{cfg: cfg, log: log, closer: closer}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

func (s *session) client(player speech.Player) *translate.Client {
	transport := translate.NewHTTPTransport(translate.TransportOptions{
		UserAgent: s.cfg.UserAgent,
		Proxy:     s.cfg.Proxy,
		Timeout:   s.cfg.Timeout,
		Retries:   s.cfg.Retries,
		Logger:    &s.log,
	})
	return translate.New(translate.Options{
		ServiceURL:   s.cfg.ServiceURL,
		SpeechURL:    s.cfg.SpeechURL,
		HostLanguage: s.cfg.HostLanguage,
		Transport:    transport,
		Player:       player,
		Logger:       &s.log,
	})
}

// inputText joins the positional arguments, or reads standard input when
// there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New(i18n.T("no text given: pass it as arguments or on stdin"))
	}
	return text, nil
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gtranslate version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		from string
		to   string
		raw  bool
	)

	cmd := &cobra.Command{
		Use:     "translate [text...]",
		Aliases: []string{"tr"},
		Short:   i18n.T("Translate text between languages"),
		Long: i18n.T(`Translate text between languages.

Text is taken from the arguments, or from stdin when none are given.

Examples:
  gtranslate translate -f en -t de "Hello world"
  echo "Bonjour" | gtranslate translate -f auto -t en
  gtranslate translate -f en -t ja --raw "good morning"`),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.client(nil).Translate(cmd.Context(), from, to, text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprintln(out, string(res.Raw))
				return nil
			}
			fmt.Fprintln(out, res.Text())

			if from == "auto" {
				if detected := res.SourceLanguage(); detected != "" {
					logInfo(i18n.T("Detected source language: %s"), detected)
				}
			}
			if rom := res.Romanization(); rom != "" && globals.verbose {
				logInfo(i18n.T("Romanization: %s"), rom)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "auto", i18n.T("Source language code (auto = detect)"))
	cmd.Flags().StringVarP(&to, "to", "t", "en", i18n.T("Target language code"))
	cmd.Flags().BoolVar(&raw, "raw", false, i18n.T("Print the repaired JSON response instead of the text"))

	return cmd
}

// ---------------------------------------------------------------------------
// say
// ---------------------------------------------------------------------------

func newSayCmd() *cobra.Command {
	var (
		lang   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "say [text...]",
		Short: i18n.T("Speak text aloud or save it as MP3"),
		Long: i18n.T(`Fetch synthesized speech for text and play it with a local audio
player (afplay, mpg123, ffplay, mpv or play), or write it to a file.

Examples:
  gtranslate say -l en "Hello world"
  gtranslate say -l de -o hallo.mp3 "Hallo Welt"`),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if output != "" {
				audio, err := s.client(nil).Speak(cmd.Context(), lang, text)
				if err != nil {
					return err
				}
				if err := speech.Save(output, audio); err != nil {
					return err
				}
				logSuccess(i18n.T("Saved %d bytes to %s"), len(audio), output)
				return nil
			}

			player, err := speech.NewPlayer(s.cfg.Player, s.cfg.PlayerArgs)
			if err != nil {
				if errors.Is(err, speech.ErrNoPlayer) {
					logWarning(i18n.T("Install mpg123, ffplay, mpv or sox, or use --output to save the audio"))
				}
				return err
			}
			return s.client(player).Say(cmd.Context(), lang, text)
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "en", i18n.T("Language of the text"))
	cmd.Flags().StringVarP(&output, "output", "o", "", i18n.T("Write MP3 audio to this file instead of playing it"))

	return cmd
}

// ---------------------------------------------------------------------------
// langs
// ---------------------------------------------------------------------------

type languageRow struct {
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Native string `json:"native" yaml:"native"`
	Flag   string `json:"flag,omitempty" yaml:"flag,omitempty"`
}

type languageListing struct {
	From []languageRow `json:"from,omitempty" yaml:"from,omitempty"`
	To   []languageRow `json:"to,omitempty" yaml:"to,omitempty"`
}

func newLangsCmd() *cobra.Command {
	var (
		format    string
		direction string
	)

	cmd := &cobra.Command{
		Use:   "langs",
		Short: i18n.T("List the languages the service supports"),
		Long: i18n.T(`List source and target languages as advertised by the service's
landing page, with native names and flags.

An empty list means the page layout has changed and the languages
could not be found.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkChoice("format", format, "table", "json", "yaml"); err != nil {
				return err
			}
			if err := checkChoice("direction", direction, "from", "to", "both"); err != nil {
				return err
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			from, to, err := s.client(nil).SupportedLanguages(cmd.Context())
			if err != nil {
				return err
			}
			if len(from) == 0 && len(to) == 0 {
				logWarning(i18n.T("No languages found; the page layout may have changed"))
			}

			return renderLanguages(cmd.OutOrStdout(), buildListing(from, to, direction), format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", i18n.T("Output format: table, json, yaml"))
	cmd.Flags().StringVar(&direction, "direction", "both", i18n.T("Which list to show: from, to, both"))

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("direction", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"from", "to", "both"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func checkChoice(flag, value string, choices ...string) error {
	for _, c := range choices {
		if value == c {
			return nil
		}
	}
	return fmt.Errorf(i18n.T("invalid --%s %q (want one of: %s)"), flag, value, strings.Join(choices, ", "))
}

func buildListing(from, to []langlist.Language, direction string) languageListing {
	var l languageListing
	if direction != "to" {
		l.From = languageRows(from)
	}
	if direction != "from" {
		l.To = languageRows(to)
	}
	return l
}

func languageRows(langs []langlist.Language) []languageRow {
	rows := make([]languageRow, 0, len(langs))
	for _, lang := range langs {
		meta := langmeta.Resolve(lang.Code)
		rows = append(rows, languageRow{
			Code:   lang.Code,
			Name:   lang.Name,
			Native: meta.Native,
			Flag:   meta.Flag,
		})
	}
	return rows
}

func renderLanguages(w io.Writer, l languageListing, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	}

	if l.From != nil {
		renderLanguageTable(w, i18n.T("Source languages"), l.From)
	}
	if l.To != nil {
		if l.From != nil {
			fmt.Fprintln(w)
		}
		renderLanguageTable(w, i18n.T("Target languages"), l.To)
	}
	return nil
}

func renderLanguageTable(w io.Writer, title string, rows []languageRow) {
	count := fmt.Sprintf(i18n.N("%d language", "%d languages", len(rows)), len(rows))
	fmt.Fprintf(w, "%s: %s\n", title, count)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	codeWidth, nameWidth := len("code"), len("name")
	for _, r := range rows {
		codeWidth = max(codeWidth, len(r.Code))
		nameWidth = max(nameWidth, len(r.Name))
	}
	for _, r := range rows {
		line := fmt.Sprintf("  %-*s  %-*s  %s", codeWidth, r.Code, nameWidth, r.Name, r.Native)
		if r.Flag != "" {
			line += " " + r.Flag
		}
		fmt.Fprintln(w, line)
	}
}

// ---------------------------------------------------------------------------
// token
// ---------------------------------------------------------------------------

func newTokenCmd() *cobra.Command {
	var seed uint32

	cmd := &cobra.Command{
		Use:   "token [text...]",
		Short: i18n.T("Compute the request signature for text"),
		Long: i18n.T(`Print the hour seed and the tk signature the service expects for text.

The seed defaults to the number of hours since the Unix epoch (UTC).`),
		Run: func(cmd *cobra.Command, args []string) {
			text := strings.Join(args, " ")

			var tk string
			if cmd.Flags().Changed("seed") {
				tk = token.Sign(text, seed)
			} else {
				seed, tk = token.NewSigner().Sign(text)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "seed: %d\n", seed)
			fmt.Fprintf(out, "tk:   %s\n", tk)
		},
	}

	cmd.Flags().Uint32Var(&seed, "seed", 0, i18n.T("Hour seed to sign with (default: current hour)"))

	return cmd
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("Show or create the configuration file"),
	}
	cmd.AddCommand(newConfigPathCmd(), newConfigShowCmd(), newConfigInitCmd())
	return cmd
}

func configPath() (string, error) {
	if globals.configPath != "" {
		return globals.configPath, nil
	}
	return config.DefaultPath()
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: i18n.T("Print the configuration file path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: i18n.T("Print the effective configuration"),
		Long: i18n.T(`Print the configuration after defaults, the config file, GTRANSLATE_*
environment variables and command-line flags have been applied.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := yaml.Marshal(s.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: i18n.T("Write a configuration file with default values"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			logSuccess(i18n.T("Wrote %s"), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, i18n.T("Overwrite an existing file"))

	return cmd
}
