package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/hypewriter/internal/api"
)

var (
	createFrom   string
	createFields api.CreateProjectRequest
	importFields api.ImportProjectRequest
	importAuto   bool
)

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsUseCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsImportCmd)
	projectsCmd.AddCommand(projectsCurrentCmd)

	projectsCreateCmd.Flags().StringVar(&createFrom, "from", "", "read project fields from a TOML file")
	projectsCreateCmd.Flags().StringVar(&createFields.Title, "title", "", "project title")
	projectsCreateCmd.Flags().StringVar(&createFields.Author, "author", "", "author name")
	projectsCreateCmd.Flags().StringVar(&createFields.Genre, "genre", "", "genre")
	projectsCreateCmd.Flags().StringVar(&createFields.Description, "description", "", "short description")

	projectsImportCmd.Flags().StringVar(&importFields.Title, "title", "", "project title (derived from the file name when empty)")
	projectsImportCmd.Flags().StringVar(&importFields.Author, "author", "", "author name (detected from a \"by\" line when empty)")
	projectsImportCmd.Flags().StringVar(&importFields.Genre, "genre", "", "genre")
	projectsImportCmd.Flags().BoolVar(&importAuto, "auto-metadata", true, "let the backend fill in missing metadata")
}

// projectsCmd is the parent command for project operations
var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project", "p"},
	Short:   "List, create, import, activate and delete projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Long: `List every project on the backend. The active project is marked with *.

Examples:
  hypewriter projects list
  hypewriter projects list --server http://books.local:8000`,
	Args: cobra.NoArgs,
	RunE: withApp(runProjectsList),
}

var projectsUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Activate a project",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runProjectsUse),
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project and make it active",
	Long: `Create a project from flags or a TOML file. Flags override file values.

Examples:
  hypewriter projects create --title "The Long Road" --author "Ann Lee"

  # meta.toml:
  #   title = "The Long Road"
  #   author = "Ann Lee"
  #   genre = "Fantasy"
  hypewriter projects create --from meta.toml`,
	Args: cobra.NoArgs,
	RunE: withApp(runProjectsCreate),
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runProjectsDelete),
}

var projectsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a .txt or .md manuscript as a project",
	Long: `Import a plain text or markdown manuscript. The backend counts words and
detects chapters ("Chapter 1", "Chapter One", "1. Title", "Part 2").

Examples:
  hypewriter projects import ~/novels/the-long-road.md
  hypewriter projects import draft.txt --title "Draft" --genre Mystery`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runProjectsImport),
}

var projectsCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active project",
	Args:  cobra.NoArgs,
	RunE:  withApp(runProjectsCurrent),
}

// withApp builds the app for the duration of one command.
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.WithoutCancel(ctx)) //nolint:errcheck
		return run(ctx, a, cmd, args)
	}
}

// initializeProjects loads the project list and restores the remembered
// project. Load failures surface as errors here since there is nothing
// else to show.
func initializeProjects(ctx context.Context, a *app) error {
	if err := a.projects.Initialize(ctx); err != nil {
		return err
	}
	if msg := a.projects.Error(); msg != "" {
		return errors.New(msg)
	}
	return nil
}

func runProjectsList(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := initializeProjects(ctx, a); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !a.projects.HasProjects() {
		fmt.Fprintln(out, "No projects yet. Create one with: hypewriter projects create --title <title>")
		return nil
	}

	current, _ := a.projects.CurrentProject()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tTITLE\tAUTHOR\tWORDS\tCHAPTERS\tMODIFIED")
	for _, p := range a.projects.Projects() {
		marker := ""
		if p.ID == current.ID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			marker, p.ID, p.Title, p.Author, p.WordCount, p.ChapterCount, p.LastModified)
	}
	return w.Flush()
}

func runProjectsUse(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	p, err := a.projects.SetCurrentProject(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Switched to %q (%s)\n", p.Title, p.ID)
	return nil
}

func runProjectsCreate(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	req, err := createRequest(cmd)
	if err != nil {
		return err
	}

	p, err := a.projects.CreateProject(ctx, req)
	if err != nil {
		return err
	}
	printProject(cmd.OutOrStdout(), "Created", p)
	return nil
}

// createRequest merges the --from file with explicitly set flags.
func createRequest(cmd *cobra.Command) (api.CreateProjectRequest, error) {
	var req api.CreateProjectRequest
	if createFrom != "" {
		if _, err := toml.DecodeFile(createFrom, &req); err != nil {
			return req, fmt.Errorf("failed to read %s: %w", createFrom, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		req.Title = createFields.Title
	}
	if flags.Changed("author") {
		req.Author = createFields.Author
	}
	if flags.Changed("genre") {
		req.Genre = createFields.Genre
	}
	if flags.Changed("description") {
		req.Description = createFields.Description
	}
	return req, nil
}

func runProjectsDelete(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	// Load first so deleting the active project can fall back to another.
	if err := initializeProjects(ctx, a); err != nil {
		return err
	}
	if err := a.projects.DeleteProject(ctx, args[0]); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Deleted %s\n", args[0])
	if p, ok := a.projects.CurrentProject(); ok {
		fmt.Fprintf(out, "Active project is now %q (%s)\n", p.Title, p.ID)
	}
	return nil
}

func runProjectsImport(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	req := importFields
	req.FilePath = path
	req.AutoGenerateMetadata = importAuto

	p, err := a.projects.ImportProject(ctx, req)
	if err != nil {
		return err
	}
	printProject(cmd.OutOrStdout(), "Imported", p)
	return nil
}

func runProjectsCurrent(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	if err := initializeProjects(ctx, a); err != nil {
		return err
	}
	p, ok := a.projects.CurrentProject()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No project selected")
		return nil
	}
	printProject(cmd.OutOrStdout(), "Current", p)
	return nil
}

func printProject(out io.Writer, verb string, p api.ProjectMetadata) {
	fmt.Fprintf(out, "%s %q (%s)\n", verb, p.Title, p.ID)
	if p.Author != "" {
		fmt.Fprintf(out, "  author:   %s\n", p.Author)
	}
	if p.Genre != "" {
		fmt.Fprintf(out, "  genre:    %s\n", p.Genre)
	}
	fmt.Fprintf(out, "  words:    %d\n", p.WordCount)
	fmt.Fprintf(out, "  chapters: %d\n", p.ChapterCount)
}
