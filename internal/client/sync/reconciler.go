package sync

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/watchdeck/watchdeck/internal/client/config"
	"github.com/watchdeck/watchdeck/internal/dashsdk"
)

// confirmPreviewLimit caps how many candidates the confirmation prompt shows.
const confirmPreviewLimit = 10

var (
	styleDanger = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stylePath   = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	styleFaint  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// ReconcileOptions control a reconcile run.
type ReconcileOptions struct {
	// DryRun lists the candidates and stops before deleting anything.
	DryRun bool
	// Yes skips the interactive confirmation.
	Yes bool
	// Confirm is where the y/N answer is read from. Defaults to stdin.
	Confirm io.Reader
	// Out is where listings and prompts are written. Defaults to stdout.
	Out io.Writer
}

func (o *ReconcileOptions) defaults() {
	if o.Confirm == nil {
		o.Confirm = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
}

// Reconciler removes files from the dashboards that no longer exist locally.
// One-shot: scan local, diff against each target's tree, delete the
// leftovers. Rerunning is always safe, already-missing files count as done.
type Reconciler struct {
	cfg     *config.Config
	targets []*Target
	gate    *AuthGate
}

func NewReconciler(cfg *config.Config, targets []*Target, gate *AuthGate) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		targets: targets,
		gate:    gate,
	}
}

func (r *Reconciler) Run(ctx context.Context, opts *ReconcileOptions) error {
	if opts == nil {
		opts = &ReconcileOptions{}
	}
	opts.defaults()

	local := r.localFiles()
	slog.Info("scanned local files", "count", local.Cardinality())

	for _, target := range r.targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.reconcileTarget(ctx, target, local, opts)
	}

	return nil
}

// localFiles builds the set of root-relative paths the dashboards are
// supposed to have.
func (r *Reconciler) localFiles() mapset.Set[string] {
	local := mapset.NewSet[string]()
	for _, path := range trackedFiles(r.cfg) {
		local.Add(r.cfg.RelPath(path))
	}
	return local
}

// remoteFiles fetches and flattens a target's file tree. Any failure yields
// an empty set; the caller skips the target rather than guessing.
func (r *Reconciler) remoteFiles(ctx context.Context, target *Target) mapset.Set[string] {
	files := mapset.NewSet[string]()

	slog.Info("fetching file list", "target", target.URL)
	root, err := target.Client.ListFiles(ctx, nil)
	if errors.Is(err, dashsdk.ErrUnauthorized) {
		slog.Info("file listing requires authentication, retrying with credentials", "target", target.URL)
		root, err = target.Client.ListFiles(ctx, r.gate.ForTarget(ctx, target.URL))
	}
	if err != nil {
		slog.Error("failed to fetch file list", "target", target.URL, "error", err)
		return files
	}

	for _, path := range dashsdk.FlattenTree(root) {
		files.Add(path)
	}

	slog.Info("found remote files", "target", target.URL, "count", files.Cardinality())
	return files
}

func (r *Reconciler) reconcileTarget(ctx context.Context, target *Target, local mapset.Set[string], opts *ReconcileOptions) {
	slog.Info("processing target", "target", target.URL)

	remote := r.remoteFiles(ctx, target)
	if remote.Cardinality() == 0 {
		slog.Warn("no files found, skipping", "target", target.URL)
		return
	}

	candidates := remote.Difference(local).ToSlice()
	if len(candidates) == 0 {
		fmt.Fprintln(opts.Out, styleOK.Render(fmt.Sprintf("%s is already in sync", target.URL)))
		return
	}
	sort.Strings(candidates)

	if opts.DryRun {
		printCandidates(opts.Out, target.URL, candidates, 0)
		fmt.Fprintln(opts.Out, styleFaint.Render(fmt.Sprintf("dry run: would delete %d files from %s", len(candidates), target.URL)))
		return
	}

	if !opts.Yes {
		printCandidates(opts.Out, target.URL, candidates, confirmPreviewLimit)
		if !confirm(opts.Confirm, opts.Out) {
			fmt.Fprintln(opts.Out, styleFaint.Render("deletion cancelled"))
			return
		}
	}

	deleted := 0
	for _, path := range candidates {
		auth := r.gate.ForPath(ctx, target.URL, path)

		ok, err := target.Client.DeleteFile(ctx, path, auth)
		if err != nil {
			slog.Error("delete failed", "target", target.URL, "path", path, "error", err)
			continue
		}
		if ok {
			slog.Info("deleted", "target", target.URL, "path", path)
		} else {
			slog.Info("already deleted", "target", target.URL, "path", path)
		}
		deleted++
	}

	line := fmt.Sprintf("deleted %d/%d files from %s", deleted, len(candidates), target.URL)
	if deleted == len(candidates) {
		fmt.Fprintln(opts.Out, styleOK.Render(line))
	} else {
		fmt.Fprintln(opts.Out, styleDanger.Render(line))
	}
}

// printCandidates lists the doomed paths. A limit of 0 prints all of them.
func printCandidates(out io.Writer, targetURL string, paths []string, limit int) {
	fmt.Fprintln(out, styleDanger.Render(fmt.Sprintf("about to delete %d files from %s", len(paths), targetURL)))
	for i, path := range paths {
		if limit > 0 && i == limit {
			fmt.Fprintln(out, styleFaint.Render(fmt.Sprintf("  ... and %d more", len(paths)-limit)))
			break
		}
		fmt.Fprintln(out, stylePath.Render("  - "+path))
	}
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "proceed with deletion? [y/N]: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
