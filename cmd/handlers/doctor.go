package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"podbrief/internal/config"
	"podbrief/internal/content"
	"podbrief/internal/google"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// report prints check results and remembers whether any failed
type report struct {
	out    io.Writer
	failed int
}

func (r *report) section(title string) {
	fmt.Fprintln(r.out, titleStyle.Render(title))
}

func (r *report) ok(format string, args ...any) {
	fmt.Fprintln(r.out, okStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func (r *report) warn(format string, args ...any) {
	fmt.Fprintln(r.out, warnStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

func (r *report) fail(format string, args ...any) {
	r.failed++
	fmt.Fprintln(r.out, failStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

func (r *report) detail(format string, args ...any) {
	fmt.Fprintln(r.out, dimStyle.Render("  "+fmt.Sprintf(format, args...)))
}

// NewDoctorCmd validates configuration and access to every resource
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, storage and Google Workspace access",
		Long: `Run every check needed before a real run:
  • configuration errors and warnings
  • the processed meeting store
  • Google credentials and Drive listing permission
  • the meet recordings folder, if configured
  • read access to the context, weekly summary and archive documents`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runDoctor(ctx context.Context, out io.Writer) error {
	r := &report{out: out}

	cfg, err := loadConfig()
	if err != nil {
		r.fail("%v", err)
		return fmt.Errorf("doctor found %d problem(s)", r.failed)
	}

	checkConfig(r, cfg)
	checkStore(ctx, r, cfg)

	r.section("Google Workspace")
	ws, err := newWorkspace(ctx, cfg, nil)
	if err != nil {
		r.fail("Credentials: %v", err)
	} else {
		r.ok("Credentials loaded")
		checkDrive(ctx, r, cfg, ws.clients)
		checkDocuments(ctx, r, cfg, ws.clients)
	}

	if r.failed > 0 {
		return fmt.Errorf("doctor found %d problem(s)", r.failed)
	}
	fmt.Fprintln(out, okStyle.Render("\nAll checks passed"))
	return nil
}

func checkConfig(r *report, cfg config.Config) {
	r.section("Configuration")

	r.detail("Pod: %s, leader %s", orNotSet(cfg.Pod.Name), orNotSet(cfg.Pod.LeaderEmail))
	r.detail("Meeting titles: %s", orNotSet(strings.Join(cfg.Pod.MeetingTitles, ", ")))
	r.detail("Lookback %d day(s), transcript search ±%d day(s), %s matching", cfg.Pod.LookbackDays, cfg.Pod.SearchDays, cfg.Pod.MatchMode)
	r.detail("Meet recordings folder: %s", orDefault(cfg.Pod.FolderID, "not set (searching all of Drive)"))
	r.detail("Email: %s via %s, all participants %t", cfg.Pod.SubjectPrefix, cfg.Email.Provider, cfg.Pod.EmailAllParticipants)

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		r.warn("%s", w)
	}
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.ok("Configuration is valid")
}

func checkStore(ctx context.Context, r *report, cfg config.Config) {
	r.section("Processed meeting store")

	flags, processed, err := openStore(ctx, cfg)
	if err != nil {
		r.fail("%v", err)
		return
	}
	defer flags.Close()

	ids, err := processed.List(ctx)
	if err != nil {
		r.fail("Read %s: %v", processed.Key(), err)
		return
	}
	r.ok("%s store reachable, %d processed meeting(s)", cfg.Store.Driver, len(ids))
}

func checkDrive(ctx context.Context, r *report, cfg config.Config, clients *google.Clients) {
	if err := clients.Drive.CheckAccess(ctx); err != nil {
		r.fail("Drive listing: %v", err)
		r.detail("Grant the Drive readonly scope to the credentials")
	} else {
		r.ok("Drive listing permitted")
	}

	if cfg.Pod.FolderID == "" {
		return
	}
	if err := clients.Drive.CheckFolder(ctx, cfg.Pod.FolderID); err != nil {
		r.warn("Meet recordings folder %s: %v", cfg.Pod.FolderID, err)
		r.detail("Transcript search will fall back to all of Drive")
	} else {
		r.ok("Meet recordings folder accessible")
	}
}

func checkDocuments(ctx context.Context, r *report, cfg config.Config, clients *google.Clients) {
	documents := []struct {
		name string
		id   string
	}{
		{"OKR context document", cfg.Pod.ContextDocID},
		{"Weekly summary document", cfg.Pod.WeeklyDocID},
		{"Transcript archive document", cfg.Pod.ArchiveDocID},
	}

	for _, d := range documents {
		if d.id == "" {
			r.warn("%s not configured", d.name)
			continue
		}
		text, err := clients.Docs.GetDocumentText(ctx, d.id)
		if err != nil {
			r.fail("%s (%s): %v", d.name, d.id, err)
			continue
		}
		r.ok("%s accessible (%d characters)", d.name, len([]rune(text)))
		if !content.IsValid(text) && d.id == cfg.Pod.ContextDocID {
			r.detail("Context document looks empty, summaries will say OKR context not available")
		}
	}
}

func orNotSet(s string) string {
	return orDefault(s, "not set")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
