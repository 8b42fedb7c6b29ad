package docker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// baseInput returns a LabelInput with only the always-present fields set.
func baseInput() LabelInput {
	return LabelInput{
		Image:    model.ImageReference{Name: "svc", Tag: "1.2.3"},
		Revision: model.ResolvedRevision("0123456789abcdef0123456789abcdef01234567"),
		Created:  time.Date(2026, 10, 19, 8, 30, 15, 987654321, time.UTC),
	}
}

// TestBuildLabels_Defaults verifies the four labels emitted when no optional
// field is supplied, and their order.
func TestBuildLabels_Defaults(t *testing.T) {
	labels := BuildLabels(baseInput())

	require.Len(t, labels, 4)
	assert.Equal(t, model.Labels{
		{Key: "org.opencontainers.image.created", Value: "2026-10-19T08:30:15Z"},
		{Key: "org.opencontainers.image.version", Value: "1.2.3"},
		{Key: "org.opencontainers.image.revision", Value: "0123456789abcdef0123456789abcdef01234567"},
		{Key: "org.opencontainers.image.title", Value: "svc"},
	}, labels)
}

func TestBuildLabels_TitleOverride(t *testing.T) {
	in := baseInput()
	in.Title = "Service API"

	labels := BuildLabels(in)

	title, ok := labels.Get("org.opencontainers.image.title")
	require.True(t, ok)
	assert.Equal(t, "Service API", title)
	assert.Equal(t, 1, labels.Count("org.opencontainers.image.title"))
}

// TestBuildLabels_Licenses checks that the licenses label appears exactly
// once when supplied and not at all otherwise.
func TestBuildLabels_Licenses(t *testing.T) {
	in := baseInput()
	in.Licenses = "MIT"

	with := BuildLabels(in)
	assert.Equal(t, 1, with.Count("org.opencontainers.image.licenses"))
	assert.Contains(t, with.Args(), "org.opencontainers.image.licenses=MIT")

	without := BuildLabels(baseInput())
	assert.Equal(t, 0, without.Count("org.opencontainers.image.licenses"))
}

func TestBuildLabels_AllOptional(t *testing.T) {
	in := baseInput()
	in.Title = "svc"
	in.Description = "Does things; fast."
	in.Authors = "Jane <jane@example.com>"
	in.URL = "https://example.com/svc"
	in.Source = "https://git.example.com/svc"
	in.Vendor = "Example Inc."
	in.Licenses = "Apache-2.0 OR MIT"
	in.ApplicationName = "svc-api"

	labels := BuildLabels(in)

	keys := make([]string, 0, len(labels))
	for _, l := range labels {
		keys = append(keys, l.Key)
	}
	assert.Equal(t, []string{
		"org.opencontainers.image.created",
		"org.opencontainers.image.version",
		"org.opencontainers.image.revision",
		"org.opencontainers.image.title",
		"org.opencontainers.image.description",
		"org.opencontainers.image.authors",
		"org.opencontainers.image.url",
		"org.opencontainers.image.source",
		"org.opencontainers.image.vendor",
		"org.opencontainers.image.licenses",
		"org.opencontainers.image.ref.name",
	}, keys)

	// Values are passed through untouched.
	desc, _ := labels.Get("org.opencontainers.image.description")
	assert.Equal(t, "Does things; fast.", desc)
}

func TestBuildLabels_UnknownRevision(t *testing.T) {
	in := baseInput()
	in.Revision = model.FallbackRevision(errors.New("not a git repository"))

	labels := BuildLabels(in)

	rev, ok := labels.Get("org.opencontainers.image.revision")
	require.True(t, ok)
	assert.Equal(t, "unknown", rev)
}

func TestFormatCreated(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	ts := time.Date(2026, 10, 19, 17, 30, 0, 500, loc)

	assert.Equal(t, "2026-10-19T08:30:00Z", FormatCreated(ts))
}
