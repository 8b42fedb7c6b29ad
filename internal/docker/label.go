package docker

import (
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// LabelApplicationName carries the --application-name value. The OCI
// annotation set has no dedicated "application" key; ref.name is the
// closest standard key describing what the image is called.
const LabelApplicationName = ocispec.AnnotationRefName

// LabelInput collects everything BuildLabels needs. Optional string fields
// that are empty are omitted from the output rather than emitted empty.
type LabelInput struct {
	// Image is the primary reference; its name is the default title and its
	// tag becomes the version label.
	Image model.ImageReference

	// Revision is the best-effort commit identifier.
	Revision model.Revision

	// Created is the build timestamp. It is written in UTC with second
	// precision.
	Created time.Time

	Title           string
	Description     string
	Authors         string
	URL             string
	Source          string
	Vendor          string
	Licenses        string
	ApplicationName string
}

// BuildLabels constructs the ordered provenance label sequence for an image.
//
// The created, version, revision and title labels are always present, in
// that order. The remaining labels follow in a fixed order, each only when
// its input is non-empty:
//
//	description, authors, url, source, vendor, licenses, application name
//
// Values are passed through as given; docker build receives one --label
// flag per entry.
func BuildLabels(in LabelInput) model.Labels {
	title := in.Title
	if title == "" {
		title = in.Image.Name
	}

	labels := make(model.Labels, 0, 11)
	labels = labels.Add(ocispec.AnnotationCreated, FormatCreated(in.Created))
	labels = labels.Add(ocispec.AnnotationVersion, in.Image.Tag)
	labels = labels.Add(ocispec.AnnotationRevision, in.Revision.String())
	labels = labels.Add(ocispec.AnnotationTitle, title)

	optional := []struct {
		key   string
		value string
	}{
		{ocispec.AnnotationDescription, in.Description},
		{ocispec.AnnotationAuthors, in.Authors},
		{ocispec.AnnotationURL, in.URL},
		{ocispec.AnnotationSource, in.Source},
		{ocispec.AnnotationVendor, in.Vendor},
		{ocispec.AnnotationLicenses, in.Licenses},
		{LabelApplicationName, in.ApplicationName},
	}
	for _, o := range optional {
		if o.value == "" {
			continue
		}
		labels = labels.Add(o.key, o.value)
	}

	return labels
}

// FormatCreated renders a timestamp the way the created label expects it:
// RFC 3339 in UTC, truncated to whole seconds ("2026-10-19T08:30:00Z").
func FormatCreated(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
