package docker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

func TestNewImageReference(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		tag     string
		want    string
		wantErr bool
	}{
		{name: "simple", image: "svc", tag: "1.2.3", want: "svc:1.2.3"},
		{name: "registry and namespace", image: "ghcr.io/acme/svc", tag: "edge", want: "ghcr.io/acme/svc:edge"},
		{name: "registry with port", image: "localhost:5000/svc", tag: "beta", want: "localhost:5000/svc:beta"},
		{name: "name kept as given", image: "docker.io/library/svc", tag: "1", want: "docker.io/library/svc:1"},
		{name: "uppercase name", image: "Svc", tag: "1.0.0", wantErr: true},
		{name: "embedded tag", image: "svc:latest", tag: "1.0.0", wantErr: true},
		{name: "empty name", image: "", tag: "1.0.0", wantErr: true},
		{name: "empty tag", image: "svc", tag: "", wantErr: true},
		{name: "semver build metadata", image: "svc", tag: "1.0.0+abc", wantErr: true},
		{name: "tag starting with dot", image: "svc", tag: ".hidden", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewImageReference(tt.image, tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				var cliErr *model.CLIError
				require.True(t, errors.As(err, &cliErr))
				assert.Equal(t, model.ExitGeneralError, cliErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.String())
		})
	}
}

func TestExtraReferences(t *testing.T) {
	primary := model.ImageReference{Name: "svc", Tag: "1.2.3"}

	refs, err := ExtraReferences(primary, []string{"beta", " edge ", "", "  "})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, "svc:beta", refs[0].String())
	assert.Equal(t, "svc:edge", refs[1].String())
}

func TestExtraReferences_Invalid(t *testing.T) {
	primary := model.ImageReference{Name: "svc", Tag: "1.2.3"}

	_, err := ExtraReferences(primary, []string{"beta", "not/valid"})
	assert.Error(t, err)
}

func TestExtraReferences_None(t *testing.T) {
	refs, err := ExtraReferences(model.ImageReference{Name: "svc", Tag: "1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}
