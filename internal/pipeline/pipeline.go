// Package pipeline drives a cargo-dockerize run from project discovery to
// the optional image archive.
//
// Orchestration steps:
//  1. Locate the project root (Cargo.toml) and load optional defaults
//  2. Read package name and version from the manifest
//  3. Validate the image name, tags and Dockerfile path
//  4. Resolve the commit revision (best effort) and build provenance labels
//  5. cargo build --release
//  6. docker build with every tag and label
//  7. Export the image to <name>-<tag>.tgz (only when requested)
//
// Every external command runs once, synchronously, in the project root.
// The first failure aborts the run; only the revision lookup may fail
// without stopping it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rachlenko/cargo-dockerize/internal/config"
	"github.com/rachlenko/cargo-dockerize/internal/docker"
	"github.com/rachlenko/cargo-dockerize/internal/model"
	"github.com/rachlenko/cargo-dockerize/internal/project"
	"github.com/rachlenko/cargo-dockerize/internal/runner"
	"github.com/rachlenko/cargo-dockerize/internal/vcs"
)

// DefaultDockerfile is used when neither a flag nor the defaults file names one.
const DefaultDockerfile = "Dockerfile"

// RevisionResolver looks up the commit identifier of a directory.
// *vcs.Resolver satisfies it.
type RevisionResolver interface {
	Revision(ctx context.Context, dir string) model.Revision
}

// Saver is an image stream source that holds resources until closed.
// *docker.Client satisfies it.
type Saver interface {
	docker.ImageSaver
	Close() error
}

// SaverFactory opens a Saver. It is only called when export is requested.
type SaverFactory func(ctx context.Context) (Saver, error)

// Options carries the user's choices for one run. Empty strings and nil
// pointers/slices mean "not given on the command line"; those fall back to
// the project defaults file and then to the manifest.
type Options struct {
	// WorkDir is where the search for Cargo.toml starts.
	WorkDir string

	Name       string
	Tag        string
	Dockerfile string

	// ExtraTags is nil when not given; a non-nil empty slice overrides the
	// defaults file with "no extra tags".
	ExtraTags []string

	Export *bool

	Labels LabelValues
}

// LabelValues are the optional provenance label inputs.
type LabelValues struct {
	Title           string
	Description     string
	Authors         string
	URL             string
	Source          string
	Vendor          string
	Licenses        string
	ApplicationName string
}

// Result describes what a run did. On failure it holds everything resolved
// before the abort and Stage is model.StageAborted.
type Result struct {
	Stage        model.Stage            `json:"stage"`
	ProjectRoot  string                 `json:"projectRoot,omitempty"`
	DefaultsFile string                 `json:"defaultsFile,omitempty"`
	Package      model.PackageMetadata  `json:"package"`
	Image        model.ImageReference   `json:"image"`
	Tags         []model.ImageReference `json:"tags,omitempty"`
	Dockerfile   string                 `json:"dockerfile,omitempty"`
	Revision     string                 `json:"revision,omitempty"`
	Labels       model.Labels           `json:"labels,omitempty"`
	Archive      string                 `json:"archive,omitempty"`
}

// Pipeline holds the collaborators of a run. Use New for the production
// wiring; tests replace individual fields.
type Pipeline struct {
	Runner    runner.Runner
	Revisions RevisionResolver
	OpenSaver SaverFactory

	// Now returns the build timestamp for the created label.
	Now func() time.Time

	// Out receives the human-readable progress lines.
	Out io.Writer

	// Logf receives diagnostic messages. Nil discards them.
	Logf func(format string, args ...interface{})
}

// New returns a Pipeline that runs cargo and docker from PATH, asks git for
// the revision and exports through the Docker Engine API. Child processes
// write to this process's stdout and stderr; replace Runner to redirect
// them.
func New(out io.Writer) *Pipeline {
	return &Pipeline{
		Runner:    runner.New(),
		Revisions: vcs.NewResolver(),
		OpenSaver: OpenDockerSaver,
		Now:       time.Now,
		Out:       out,
	}
}

// OpenDockerSaver connects to the local Docker daemon and checks that it
// answers before any archive file is created.
func OpenDockerSaver(ctx context.Context) (Saver, error) {
	c, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Run executes the pipeline. The returned Result is never nil.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}

	if err := p.run(ctx, opts, res); err != nil {
		p.transition(res, model.StageAborted)
		return res, err
	}

	p.transition(res, model.StageDone)
	p.printf("Dockerize completed successfully!\n")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, opts Options, res *Result) error {
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return model.WrapCLIError(model.ExitIOError, "failed to get current directory", err)
		}
		workDir = wd
	}

	root, err := project.FindRoot(workDir)
	if err != nil {
		return err
	}
	res.ProjectRoot = root
	p.transition(res, model.StageLocated)
	p.printf("Project root: %s\n", root)

	defaults, defaultsPath, err := config.Load(root)
	if err != nil {
		return err
	}
	if defaultsPath != "" {
		res.DefaultsFile = defaultsPath
		p.logf("Loaded defaults from %s", defaultsPath)
	}

	meta, err := project.ReadMetadata(root)
	if err != nil {
		return err
	}
	res.Package = meta
	p.transition(res, model.StageMetadataRead)
	p.logf("Package %s %s", meta.Name, meta.Version)

	opts = mergeDefaults(opts, defaults)

	image, err := docker.NewImageReference(firstNonEmpty(opts.Name, meta.Name), firstNonEmpty(opts.Tag, meta.Version))
	if err != nil {
		return err
	}
	extra, err := docker.ExtraReferences(image, opts.ExtraTags)
	if err != nil {
		return err
	}
	res.Image = image
	res.Tags = append([]model.ImageReference{image}, extra...)

	res.Dockerfile = opts.Dockerfile
	if err := checkDockerfile(root, opts.Dockerfile); err != nil {
		return err
	}

	rev := p.Revisions.Revision(ctx, root)
	if !rev.Resolved() {
		p.logf("Could not resolve git revision, using %q: %v", rev.Value, rev.Err)
	}
	res.Revision = rev.String()

	res.Labels = docker.BuildLabels(docker.LabelInput{
		Image:           image,
		Revision:        rev,
		Created:         p.now(),
		Title:           opts.Labels.Title,
		Description:     opts.Labels.Description,
		Authors:         opts.Labels.Authors,
		URL:             opts.Labels.URL,
		Source:          opts.Labels.Source,
		Vendor:          opts.Labels.Vendor,
		Licenses:        opts.Labels.Licenses,
		ApplicationName: opts.Labels.ApplicationName,
	})
	for _, l := range res.Labels {
		p.logf("Label %s", l)
	}

	p.printf("Building Rust project...\n")
	if err := project.Build(ctx, p.Runner, root); err != nil {
		return err
	}
	p.transition(res, model.StageProjectBuilt)

	p.printf("Building Docker image: %s...\n", image)
	buildOpts := docker.BuildOptions{
		Tags:       res.Tags,
		Dockerfile: opts.Dockerfile,
		Labels:     res.Labels,
	}
	p.logf("Running %s", runner.CommandLine("docker", docker.BuildArgs(buildOpts)...))
	if err := docker.BuildImage(ctx, p.Runner, root, buildOpts); err != nil {
		return err
	}
	p.transition(res, model.StageImageBuilt)

	if opts.Export == nil || !*opts.Export {
		return nil
	}

	archive := filepath.Join(root, image.ArchiveName())
	p.printf("Exporting Docker image to: %s...\n", archive)
	if err := p.export(ctx, image, archive); err != nil {
		return err
	}
	res.Archive = archive
	p.transition(res, model.StageExported)
	p.printf("Docker image exported successfully to: %s\n", archive)

	return nil
}

// export opens the saver, streams the image to archive and closes the saver.
func (p *Pipeline) export(ctx context.Context, image model.ImageReference, archive string) error {
	saver, err := p.OpenSaver(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = saver.Close() }()

	n, err := docker.ExportImage(ctx, saver, image, archive)
	if err != nil {
		return err
	}
	p.logf("Wrote %d bytes of image data to %s", n, archive)
	return nil
}

// checkDockerfile verifies that the Dockerfile exists before any build runs.
// Relative paths are resolved against the project root, the directory
// docker build runs in.
func checkDockerfile(root, dockerfile string) error {
	path := dockerfile
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, dockerfile)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewCLIError(model.ExitNotFound, fmt.Sprintf("Dockerfile not found at: %s", path))
		}
		return model.WrapCLIError(model.ExitIOError, fmt.Sprintf("failed to access %s", path), err)
	}
	if info.IsDir() {
		return model.NewCLIError(model.ExitNotFound, fmt.Sprintf("Dockerfile not found at: %s (is a directory)", path))
	}
	return nil
}

// mergeDefaults fills every option the user did not set from the defaults
// file, then applies the built-in Dockerfile default.
func mergeDefaults(opts Options, d *config.Defaults) Options {
	if d != nil {
		opts.Name = firstNonEmpty(opts.Name, d.Name)
		opts.Tag = firstNonEmpty(opts.Tag, d.Tag)
		opts.Dockerfile = firstNonEmpty(opts.Dockerfile, d.Dockerfile)
		if opts.ExtraTags == nil {
			opts.ExtraTags = d.Tags
		}
		if opts.Export == nil {
			opts.Export = d.Export
		}

		l := &opts.Labels
		l.Title = firstNonEmpty(l.Title, d.Labels.Title)
		l.Description = firstNonEmpty(l.Description, d.Labels.Description)
		l.Authors = firstNonEmpty(l.Authors, d.Labels.Authors)
		l.URL = firstNonEmpty(l.URL, d.Labels.URL)
		l.Source = firstNonEmpty(l.Source, d.Labels.Source)
		l.Vendor = firstNonEmpty(l.Vendor, d.Labels.Vendor)
		l.Licenses = firstNonEmpty(l.Licenses, d.Labels.Licenses)
		l.ApplicationName = firstNonEmpty(l.ApplicationName, d.Labels.ApplicationName)
	}

	opts.Dockerfile = firstNonEmpty(opts.Dockerfile, DefaultDockerfile)
	return opts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// transition moves res to stage. A run that reached Done or Aborted stays
// there.
func (p *Pipeline) transition(res *Result, stage model.Stage) {
	if res.Stage.IsTerminal() {
		return
	}
	p.logf("Stage %s → %s", res.Stage, stage)
	res.Stage = stage
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Pipeline) printf(format string, args ...interface{}) {
	if p.Out == nil {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}
