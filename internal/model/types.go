package model

import (
	"fmt"
)

// ManifestFile is the project descriptor that marks a project root and
// carries the package name and version.
const ManifestFile = "Cargo.toml"

// UnknownRevision is substituted for the commit identifier when git cannot
// report one.
const UnknownRevision = "unknown"

// PackageMetadata holds the package name and version extracted from the
// manifest. It is never modified after being read.
type PackageMetadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ImageReference identifies a single image tag: "<Name>:<Tag>".
type ImageReference struct {
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// String returns the reference in "name:tag" form as passed to docker build -t.
func (r ImageReference) String() string {
	return r.Name + ":" + r.Tag
}

// ArchiveName returns the export file name "<name>-<tag>.tgz".
//
// A name containing a registry or namespace ("ghcr.io/acme/svc") keeps its
// slashes, so the archive lands in a subdirectory of the project root.
func (r ImageReference) ArchiveName() string {
	return fmt.Sprintf("%s-%s.tgz", r.Name, r.Tag)
}

// WithTag returns a copy of the reference with a different tag.
func (r ImageReference) WithTag(tag string) ImageReference {
	return ImageReference{Name: r.Name, Tag: tag}
}

// BuildLabel is a single key/value provenance label attached to the image.
type BuildLabel struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// String returns "key=value", the form docker build expects after --label.
func (l BuildLabel) String() string {
	return l.Key + "=" + l.Value
}

// Labels is an append-only ordered sequence of BuildLabel.
//
// Duplicate keys are allowed and a later entry never replaces an earlier
// one: the slice is handed to docker build in order, one --label flag per
// entry, and docker applies them in that order.
type Labels []BuildLabel

// Add appends a label and returns the extended sequence.
func (ls Labels) Add(key, value string) Labels {
	return append(ls, BuildLabel{Key: key, Value: value})
}

// Get returns the value of the first label with the given key.
func (ls Labels) Get(key string) (string, bool) {
	for _, l := range ls {
		if l.Key == key {
			return l.Value, true
		}
	}
	return "", false
}

// Count returns how many labels carry the given key.
func (ls Labels) Count(key string) int {
	n := 0
	for _, l := range ls {
		if l.Key == key {
			n++
		}
	}
	return n
}

// Args renders the labels as docker build arguments:
//
//	--label key1=value1 --label key2=value2 ...
func (ls Labels) Args() []string {
	args := make([]string, 0, len(ls)*2)
	for _, l := range ls {
		args = append(args, "--label", l.String())
	}
	return args
}

// Revision is the result of a best-effort commit lookup.
//
// It is not a (value, error) pair: a failed lookup is not a
// failure of the pipeline. Value is always usable as a label value; Err
// records why the sentinel was substituted, for diagnostics only.
type Revision struct {
	Value string
	Err   error
}

// ResolvedRevision wraps a commit identifier that git reported successfully.
func ResolvedRevision(id string) Revision {
	return Revision{Value: id}
}

// FallbackRevision returns the sentinel revision, remembering the cause.
func FallbackRevision(cause error) Revision {
	return Revision{Value: UnknownRevision, Err: cause}
}

// Resolved reports whether Value is a real commit identifier.
func (r Revision) Resolved() bool {
	return r.Err == nil && r.Value != UnknownRevision
}

// String returns the label value for the revision.
func (r Revision) String() string {
	return r.Value
}

// Stage represents the position of a run in the release pipeline.
// The transitions are:
//
//	Located → MetadataRead → ProjectBuilt → ImageBuilt → [Exported] → Done
//	any stage → Aborted
type Stage string

const (
	// StageLocated means the project root containing Cargo.toml was found.
	StageLocated Stage = "located"

	// StageMetadataRead means name and version were extracted from the manifest.
	StageMetadataRead Stage = "metadata-read"

	// StageProjectBuilt means cargo build --release succeeded.
	StageProjectBuilt Stage = "project-built"

	// StageImageBuilt means docker build succeeded.
	StageImageBuilt Stage = "image-built"

	// StageExported means the image archive was written.
	StageExported Stage = "exported"

	// StageDone is the terminal success state.
	StageDone Stage = "done"

	// StageAborted is the terminal failure state.
	StageAborted Stage = "aborted"
)

// String returns the string representation of Stage.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition can happen from s.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageAborted
}

// ExitCode defines the process exit codes of the CLI. Each fatal error
// category maps to its own code so scripts and CI jobs can tell a compile
// failure from an image build failure without parsing output.
type ExitCode int

const (
	// ExitSuccess indicates the pipeline completed.
	ExitSuccess ExitCode = 0

	// ExitGeneralError covers usage errors and anything unclassified.
	ExitGeneralError ExitCode = 1

	// ExitNotFound indicates Cargo.toml or the Dockerfile could not be found.
	ExitNotFound ExitCode = 2

	// ExitParseError indicates the manifest or the defaults file is malformed.
	ExitParseError ExitCode = 3

	// ExitBuildFailed indicates cargo build exited non-zero.
	ExitBuildFailed ExitCode = 4

	// ExitImageBuildFailed indicates docker build exited non-zero.
	ExitImageBuildFailed ExitCode = 5

	// ExitExportFailed indicates the image could not be saved.
	ExitExportFailed ExitCode = 6

	// ExitIOError indicates a local file could not be read or written.
	ExitIOError ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
