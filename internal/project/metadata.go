package project

import (
	"fmt"
	"os"
	"strings"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// ReadMetadata reads Cargo.toml in root and extracts the package name and
// version.
//
// Returns a CLIError with ExitIOError if the manifest cannot be read and
// ExitParseError if either field is missing or malformed.
func ReadMetadata(root string) (model.PackageMetadata, error) {
	path := ManifestPath(root)

	data, err := os.ReadFile(path)
	if err != nil {
		return model.PackageMetadata{}, model.WrapCLIError(model.ExitIOError,
			fmt.Sprintf("failed to read %s", path), err)
	}

	return ParseMetadata(string(data))
}

// ParseMetadata extracts name and version from manifest text.
//
// For each field the first line whose trimmed form starts with "<field> ="
// is used; the value is everything after the first "=", trimmed of
// whitespace and then of surrounding double quotes. Sections are ignored.
func ParseMetadata(content string) (model.PackageMetadata, error) {
	name, err := scanField(content, "name")
	if err != nil {
		return model.PackageMetadata{}, err
	}

	version, err := scanField(content, "version")
	if err != nil {
		return model.PackageMetadata{}, err
	}

	return model.PackageMetadata{Name: name, Version: version}, nil
}

// scanField finds the first "<field> =" line and returns its value.
func scanField(content, field string) (string, error) {
	prefix := field + " ="

	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), prefix) {
			continue
		}

		_, value, ok := strings.Cut(line, "=")
		if !ok {
			return "", model.NewCLIError(model.ExitParseError,
				fmt.Sprintf("invalid %s format in %s", field, model.ManifestFile))
		}
		return strings.Trim(strings.TrimSpace(value), `"`), nil
	}

	return "", model.NewCLIError(model.ExitParseError,
		fmt.Sprintf("could not find package %s in %s", field, model.ManifestFile))
}
