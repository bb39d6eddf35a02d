package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alienxp03/warrant/internal/config"
	"github.com/alienxp03/warrant/internal/core"
	"github.com/alienxp03/warrant/internal/engine"
	"github.com/alienxp03/warrant/internal/export"
	"github.com/alienxp03/warrant/internal/notify"
	"github.com/alienxp03/warrant/internal/roster"
	"github.com/alienxp03/warrant/internal/scenario"
	"github.com/alienxp03/warrant/internal/storage"
	"github.com/alienxp03/warrant/web/handlers"
)

var (
	dbPath    string
	cfgPath   string
	appConfig *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "warrant",
	Short: "Run advocate/critic argument sessions",
	Long: `warrant runs study sessions in which pairs of participants argue over
a rule: the advocate defends a warrant linking two cases, the critic attacks
it, and both may propose edits to the facts behind it.

Moderators create sessions, generate the pairing schedule and review reports
from this CLI; participants play through the web API started with "serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath != "" {
			appConfig, err = config.LoadFrom(cfgPath)
		} else {
			appConfig, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		slog.SetDefault(appConfig.NewLogger())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.warrant/warrant.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: ~/.warrant/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(announceCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

func getStorage() (storage.Storage, error) {
	path := dbPath
	if path == "" {
		path = appConfig.DBPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

// getEngine opens storage and builds an engine publishing on a fresh bus.
func getEngine() (*engine.Engine, *notify.Bus, storage.Storage, error) {
	store, err := getStorage()
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := appConfig.EngineOptions()
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	bus := notify.NewBus(appConfig.Server.EventBuffer)
	eng, err := engine.New(store, bus, opts)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return eng, bus, store, nil
}

// ============================================================================
// SERVE COMMAND
// ============================================================================

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("port") && appConfig.Server.Port != 0 {
			servePort = appConfig.Server.Port
		}

		eng, bus, store, err := getEngine()
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		defer store.Close()

		if appConfig.Server.AdminToken == "" {
			slog.Warn("No admin token configured, admin endpoints are open")
		}

		fmt.Printf("\nStarting warrant on http://localhost:%d\n\n", servePort)
		fmt.Println("Available endpoints:")
		fmt.Printf("  GET  http://localhost:%d/api/participants/{key}  - Participant game list\n", servePort)
		fmt.Printf("  GET  http://localhost:%d/api/slots/{key}         - Game screen\n", servePort)
		fmt.Printf("  GET  http://localhost:%d/api/admin/sessions      - Sessions (admin)\n", servePort)
		fmt.Println("\nPress Ctrl+C to stop the server")

		h := handlers.New(eng, bus, appConfig.Server.AdminToken)
		return startWebServer(h, servePort)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8182, "Server port")
}

func startWebServer(h *handlers.Handler, port int) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// ============================================================================
// SCENARIOS COMMANDS
// ============================================================================

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Manage the scenario catalog",
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := eng.ListScenarios(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No scenarios found. Import some with: warrant scenarios import --builtin")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFACTS\tSOURCE CONCLUSION")
		for _, sc := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", sc.ID[:8], sc.Name, len(sc.Facts), truncate(sc.SourceConclusion, 40))
		}
		w.Flush()
		return nil
	},
}

var importBuiltin bool

var scenariosImportCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import scenarios from a catalog file",
	Long: `Import scenarios from a YAML catalog. Scenarios whose name already
exists are skipped.

Examples:
  warrant scenarios import catalog.yaml
  warrant scenarios import --builtin`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []scenario.Entry
		switch {
		case importBuiltin:
			entries = scenario.Builtin()
		case len(args) == 1:
			catalog, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			entries = catalog.Scenarios
		default:
			return fmt.Errorf("give a catalog file or --builtin")
		}

		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		created, err := eng.ImportScenarios(cmd.Context(), entries)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d of %d scenarios\n", len(created), len(entries))
		return nil
	},
}

var scenariosExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print the built-in catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := scenario.Marshal(scenario.Builtin())
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	},
}

func init() {
	scenariosImportCmd.Flags().BoolVar(&importBuiltin, "builtin", false, "Import the built-in sample scenarios")

	scenariosCmd.AddCommand(scenariosListCmd)
	scenariosCmd.AddCommand(scenariosImportCmd)
	scenariosCmd.AddCommand(scenariosExampleCmd)
}

// ============================================================================
// SESSION COMMANDS
// ============================================================================

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create and schedule sessions",
}

var (
	sessCase      string
	sessStart     string
	sessUsers     int
	sessGames     int
	sessScenarios []string
)

var sessionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a session",
	Long: `Create a session. Scenarios are given by name or ID; at least
2*games-1 are needed so no pair repeats a scenario.

Examples:
  warrant session create spring --users 4 --games 2 \
    -s "Exam Hours" -s "Bike Lanes" -s "Remote Work"
  warrant session create pilot --case Control --users 2 --games 1 -s "Exam Hours"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := appConfig.Location()
		if err != nil {
			return err
		}
		start := time.Now()
		if sessStart != "" {
			start, err = time.ParseInLocation("2006-01-02 15:04", sessStart, loc)
			if err != nil {
				return fmt.Errorf("invalid --start, want YYYY-MM-DD HH:MM: %w", err)
			}
		}

		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		sess, err := eng.CreateSession(cmd.Context(), engine.SessionConfig{
			Name:      args[0],
			Case:      core.Case(sessCase),
			Start:     start,
			NumUsers:  sessUsers,
			NumGames:  sessGames,
			Scenarios: sessScenarios,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created session %s (%s, %d users x %d games)\n", sess.Name, sess.Case, sess.NumUsers, sess.NumGames)
		fmt.Printf("Next: warrant session generate %s roster.csv\n", sess.Name)
		return nil
	},
}

var credentialsOut string

var sessionGenerateCmd = &cobra.Command{
	Use:   "generate [session] [roster.csv]",
	Short: "Create participants and schedule the first games",
	Long: `Read participant code names from the first column of a CSV file,
create one participant per name and schedule every game of the session.
Login keys are written as a name,key CSV.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("failed to open roster: %w", err)
		}
		names, err := roster.ReadNames(f)
		f.Close()
		if err != nil {
			return err
		}

		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		people, err := eng.GenerateGames(cmd.Context(), args[0], names)
		if err != nil {
			return err
		}

		out := os.Stdout
		if credentialsOut != "" {
			file, err := os.Create(credentialsOut)
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			defer file.Close()
			out = file
		}
		if err := roster.WriteCredentials(out, people); err != nil {
			return err
		}
		if credentialsOut != "" {
			fmt.Printf("Scheduled %d participants, credentials written to: %s\n", len(people), credentialsOut)
		}
		return nil
	},
}

var sessionShuffleCmd = &cobra.Command{
	Use:   "shuffle [session]",
	Short: "Re-pair the conversation games of a control session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		games, err := eng.Shuffle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Opened %d new games\n", len(games))
		return nil
	},
}

var (
	addScenario string
	addAdvocate string
	addCritic   string
	addForce    bool
)

var sessionAddGameCmd = &cobra.Command{
	Use:   "add-game [session]",
	Short: "Add a single game between two participants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		req := engine.AddGameRequest{Scenario: addScenario, AdvocateKey: addAdvocate, CriticKey: addCritic}
		warnings, err := eng.CheckAddGame(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if len(warnings) > 0 && !addForce {
			return fmt.Errorf("not adding game, rerun with --force to accept the warnings")
		}

		g, err := eng.AddGame(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		fmt.Printf("Added game %s (advocate slot %s, critic slot %s)\n", g.ID[:8], g.AdvocateSlot, g.CriticSlot)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := eng.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No sessions found. Create one with: warrant session create <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCASE\tUSERS\tGAMES/USER\tGAMES\tCREATED")
		for _, s := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				s.Name, s.Case, s.NumUsers, s.NumGames, s.GameCount, s.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session]",
	Short: "Show a session's participants and games",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		bundle, err := eng.BuildBundle(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Session: %s\n", bundle.Session.Name)
		fmt.Printf("Case:    %s\n", bundle.Session.Case)
		fmt.Printf("Start:   %s\n\n", bundle.Session.Start.In(bundle.Timezone).Format("2006-01-02 15:04"))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKEY\tLOGGED IN\tAPPROVED")
		for _, p := range bundle.Participants {
			fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", p.Name, p.Key, p.Assigned, p.Approved)
		}
		w.Flush()
		fmt.Println()

		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "GAME\tSCENARIO\tADVOCATE\tCRITIC\tCONTEXT\tTURN\tMOVES")
		for _, rec := range bundle.Games {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				rec.Game.ID[:8], scenarioName(rec.Scenario), seatName(rec.Advocate), seatName(rec.Critic),
				rec.Game.Context, rec.Game.Turn, len(rec.Moves))
		}
		w.Flush()
		return nil
	},
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessCase, "case", string(core.CaseNonControl), "Session case (Control or Non-control)")
	sessionCreateCmd.Flags().StringVar(&sessStart, "start", "", "Start time, YYYY-MM-DD HH:MM in the session timezone (default: now)")
	sessionCreateCmd.Flags().IntVarP(&sessUsers, "users", "u", 2, "Number of participants")
	sessionCreateCmd.Flags().IntVarP(&sessGames, "games", "g", 1, "Games per participant")
	sessionCreateCmd.Flags().StringArrayVarP(&sessScenarios, "scenario", "s", nil, "Eligible scenario name or ID (repeatable)")

	sessionGenerateCmd.Flags().StringVarP(&credentialsOut, "output", "o", "", "Credentials CSV path (default: stdout)")

	sessionAddGameCmd.Flags().StringVar(&addScenario, "scenario", "", "Scenario name or ID")
	sessionAddGameCmd.Flags().StringVar(&addAdvocate, "advocate", "", "Advocate participant key")
	sessionAddGameCmd.Flags().StringVar(&addCritic, "critic", "", "Critic participant key")
	sessionAddGameCmd.Flags().BoolVar(&addForce, "force", false, "Add the game despite warnings")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionGenerateCmd)
	sessionCmd.AddCommand(sessionShuffleCmd)
	sessionCmd.AddCommand(sessionAddGameCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
}

// ============================================================================
// REPORTS COMMANDS
// ============================================================================

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Review reported games",
}

var reportsOpenOnly bool

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		reports, err := eng.ListReports(cmd.Context(), reportsOpenOnly)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No reports.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tGAME\tFROM\tRESOLVED\tTEXT")
		for _, r := range reports {
			from := "system"
			if r.ParticipantID != "" {
				from = r.ParticipantID[:8]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", r.ID, r.GameID[:8], from, r.Resolved, truncate(r.Text, 50))
		}
		w.Flush()
		return nil
	},
}

var (
	resolveNote     string
	resolveReturned string
)

var reportsResolveCmd = &cobra.Command{
	Use:   "resolve [report-id]",
	Short: "Resolve a report and hand the game back",
	Long: `Resolve a report. The game resumes with the given turn:
Critic, Advocate or Completed.

Example:
  warrant reports resolve 3f2a... --note "spoke to both" --returned Critic`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		turn, ok := core.ParseTurn(resolveReturned)
		if !ok {
			return fmt.Errorf("unknown turn %q", resolveReturned)
		}

		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := eng.ResolveReport(cmd.Context(), args[0], resolveNote, turn)
		if err != nil {
			return err
		}
		fmt.Printf("Resolved report %s, game returned to %s\n", report.ID, report.Returned)
		return nil
	},
}

func init() {
	reportsListCmd.Flags().BoolVar(&reportsOpenOnly, "open", false, "Only unresolved reports")
	reportsResolveCmd.Flags().StringVar(&resolveNote, "note", "", "Moderator note")
	reportsResolveCmd.Flags().StringVar(&resolveReturned, "returned", core.TurnCritic.String(), "Turn to hand the game back to")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsResolveCmd)
}

// ============================================================================
// MESSAGE COMMANDS
// ============================================================================

var announceCmd = &cobra.Command{
	Use:   "announce [session] [text]",
	Short: "Send a message to everyone in a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err := eng.Announce(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Announcement stored.")
		return nil
	},
}

var messageCmd = &cobra.Command{
	Use:   "message [slot-key] [text]",
	Short: "Send a private message to one game seat",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err := eng.SendMessage(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Message stored.")
		return nil
	},
}

// ============================================================================
// EXPORT COMMAND
// ============================================================================

var exportCmd = &cobra.Command{
	Use:   "export [session] [format]",
	Short: "Export a session to file",
	Long: `Export a session to markdown, PDF, JSON, or a CSV roster.

Examples:
  warrant export spring json
  warrant export spring pdf
  warrant export spring csv -o roster.csv`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := export.Format(strings.ToLower(args[1]))
		exporter, err := export.GetExporter(format)
		if err != nil {
			return err
		}

		eng, _, store, err := getEngine()
		if err != nil {
			return err
		}
		defer store.Close()

		bundle, err := eng.BuildBundle(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = export.GenerateFilename(bundle.Session, exporter.FileExtension())
		}

		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()

		if err := exporter.Export(bundle, file); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		fmt.Printf("Exported to: %s\n", outputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
}

// ============================================================================
// CONFIG COMMANDS
// ============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config file: %s\n\n", config.DefaultConfigPath())

		fmt.Println("Current settings:")
		fmt.Printf("  Port:              %d\n", appConfig.Server.Port)
		fmt.Printf("  Admin token set:   %t\n", appConfig.Server.AdminToken != "")
		fmt.Printf("  Database:          %s\n", appConfig.DBPath())
		fmt.Printf("  Log:               %s (%s)\n", appConfig.Log.Level, appConfig.Log.Format)
		fmt.Printf("  Critic pass floor: %d\n", appConfig.Game.CriticPassFloor)
		fmt.Printf("  Max attempts:      %d\n", appConfig.Scheduler.MaxAttempts)
		fmt.Printf("  Exhaustion:        %s\n", appConfig.Scheduler.Exhaustion)
		fmt.Printf("  Timezone:          %s\n", appConfig.Session.Timezone)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create example config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(config.GenerateExample()), 0644); err != nil {
			return err
		}

		fmt.Printf("Created config at: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// ============================================================================
// HELPERS
// ============================================================================

func seatName(s *export.Seat) string {
	if s == nil || s.Participant == nil {
		return "(detached)"
	}
	return s.Participant.Name
}

func scenarioName(sc *core.Scenario) string {
	if sc == nil {
		return "-"
	}
	return sc.Name
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
