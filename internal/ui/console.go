package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"formbricks-seeder/internal/common/config"
	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/generator"
	"formbricks-seeder/internal/lifecycle"
	"formbricks-seeder/internal/models"
	"formbricks-seeder/internal/seeder"
	"formbricks-seeder/internal/snapshot"
)

// Console writes user-facing output. Logs go elsewhere.
type Console struct {
	out    io.Writer
	styles Styles
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out, styles: DefaultStyles()}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) Panel(title, body string) {
	content := c.styles.Title.Render(title)
	if body != "" {
		content += "\n" + body
	}
	c.println(c.styles.Panel.Render(content))
}

func (c *Console) Success(format string, args ...interface{}) {
	c.println(c.styles.Success.Render("✓ " + fmt.Sprintf(format, args...)))
}

func (c *Console) Warn(format string, args ...interface{}) {
	c.println(c.styles.Warning.Render("⚠ " + fmt.Sprintf(format, args...)))
}

func (c *Console) Fail(format string, args ...interface{}) {
	c.println(c.styles.Error.Render("✗ " + fmt.Sprintf(format, args...)))
}

func (c *Console) Info(format string, args ...interface{}) {
	c.println(c.styles.Info.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Muted(format string, args ...interface{}) {
	c.println(c.styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Error renders a failed command with its remediation steps.
func (c *Console) Error(se *apperrors.StandardError, remediation []string) {
	c.Fail("%s", se.Message)
	if se.Details != "" {
		c.Muted("  %s", se.Details)
	}
	if logs, ok := se.Metadata["logs"].(string); ok && logs != "" {
		c.println(c.styles.Panel.BorderForeground(Destructive).Render(c.styles.Bold.Render("Recent logs") + "\n" + logs))
	}
	for _, step := range remediation {
		c.Info("  → %s", step)
	}
}

// ==========================
// Lifecycle
// ==========================

func (c *Console) StartupProgress(p lifecycle.Progress) {
	state := "starting"
	if p.ServiceRunning {
		state = "container running, waiting for health check"
	}
	c.Muted("  ... %s elapsed (%s)", p.Elapsed.Round(time.Second), state)
}

func (c *Console) Started(res *lifecycle.UpResult, url string) {
	if res.AlreadyRunning {
		c.Success("Formbricks is already running at %s", url)
		return
	}
	c.Success("Formbricks is ready at %s (took %s)", url, res.Elapsed.Round(time.Second))
}

// ==========================
// Generation
// ==========================

func (c *Console) SurveyGenerated(e generator.SurveyEvent) {
	line := fmt.Sprintf("[%d/%d] %s", e.Index, e.Total, e.Name)
	switch e.Source {
	case generator.SourceFallback:
		c.Warn("%s (fallback template)", line)
	case generator.SourceCache:
		c.Success("%s (cached)", line)
	default:
		c.Success("%s", line)
	}
}

func (c *Console) GenerationSummary(ds *models.Dataset, manifest *snapshot.Manifest, dir string) {
	t := NewTable("Generated data", "Resource", "Count", "File")
	t.AddRow("Surveys", fmt.Sprint(len(ds.Surveys)), manifest.Files[snapshot.KindSurveys])
	t.AddRow("Users", fmt.Sprint(len(ds.Users)), manifest.Files[snapshot.KindUsers])
	t.AddRow("Responses", fmt.Sprint(len(ds.Responses)), manifest.Files[snapshot.KindResponses])
	fmt.Fprint(c.out, t.View(c.styles))

	roles := models.RoleCounts(ds.Users)
	c.Muted("Roles: owner=%d manager=%d admin=%d viewer=%d",
		roles[models.RoleOwner], roles[models.RoleManager], roles[models.RoleAdmin], roles[models.RoleViewer])
	c.Muted("Run %s written to %s", manifest.RunID, dir)
}

// ==========================
// Seeding
// ==========================

// SeedReporter streams seeding outcomes to the console.
type SeedReporter struct {
	c *Console
}

func (c *Console) SeedReporter() *SeedReporter {
	return &SeedReporter{c: c}
}

func (r *SeedReporter) PhaseStarted(phase seeder.Phase, total int) {
	r.c.println("")
	r.c.println(r.c.styles.Title.Render(fmt.Sprintf("Seeding %s (%d)", phase, total)))
}

func (r *SeedReporter) ItemCreated(phase seeder.Phase, label, id string) {
	if id == "" {
		r.c.Success("%s", label)
		return
	}
	r.c.Success("%s → %s", label, id)
}

func (r *SeedReporter) ItemFailed(phase seeder.Phase, label, reason string) {
	r.c.Fail("%s: %s", label, reason)
}

func (r *SeedReporter) PhaseSkipped(phase seeder.Phase, reason string) {
	r.c.Muted("Skipping %s: %s", phase, reason)
}

func (c *Console) SeedSummary(tally *seeder.Tally) {
	t := NewTable("Seeding summary", "Resource", "Created", "Failed", "Success rate")
	for _, row := range tally.Rows() {
		t.AddRow(row.Resource, fmt.Sprint(row.Created), fmt.Sprint(row.Failed), fmt.Sprintf("%.1f%%", row.SuccessRate))
	}
	if view := t.View(c.styles); view != "" {
		c.println("")
		fmt.Fprint(c.out, view)
	}
	if tally.MappingPath != "" {
		c.Muted("Survey mapping saved to %s", tally.MappingPath)
	}
}

// ==========================
// Config
// ==========================

func (c *Console) ConfigTable(rows []config.DisplayRow, warnings []string) {
	t := NewTable("Configuration", "Setting", "Value")
	for _, r := range rows {
		t.AddRow(r.Key, r.Value)
	}
	fmt.Fprint(c.out, t.View(c.styles))
	for _, w := range warnings {
		c.Warn("%s", w)
	}
	if len(warnings) == 0 {
		c.Success("Configuration looks good")
	}
}

// Steps renders a numbered list, e.g. setup instructions.
func (c *Console) Steps(title string, steps []string) {
	var sb strings.Builder
	for i, s := range steps {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, s))
	}
	c.Panel(title, sb.String())
}
