package docker

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// NewImageReference validates an image name and tag and returns the
// reference used for "docker build -t".
//
// The name must be a bare repository name ("svc", "ghcr.io/acme/svc"):
// lowercase, without a tag or digest. The tag must match the registry tag
// grammar (at most 128 characters of [A-Za-z0-9_.-], not starting with "."
// or "-"). Cargo versions with build metadata ("1.0.0+abc") are rejected
// here because docker would reject them after the cargo build already ran.
//
// The returned reference keeps name exactly as given; it is not expanded to
// its fully qualified form.
func NewImageReference(name, tag string) (model.ImageReference, error) {
	named, err := reference.ParseNormalizedNamed(name)
	if err != nil {
		return model.ImageReference{}, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid image name %q", name), err)
	}
	if !reference.IsNameOnly(named) {
		return model.ImageReference{}, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid image name %q: use --tag/--tags instead of embedding a tag or digest", name))
	}

	if _, err := reference.WithTag(named, tag); err != nil {
		return model.ImageReference{}, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid image tag %q", tag), err)
	}

	return model.ImageReference{Name: name, Tag: tag}, nil
}

// ExtraReferences validates additional tags for the primary image. Tags are
// trimmed of surrounding whitespace and empty entries are dropped; order is
// preserved.
func ExtraReferences(primary model.ImageReference, tags []string) ([]model.ImageReference, error) {
	refs := make([]model.ImageReference, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		ref, err := NewImageReference(primary.Name, tag)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
