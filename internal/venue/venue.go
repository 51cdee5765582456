// Package venue normalises ground names and fills in missing host cities.
package venue

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var defaultCities []byte

type cityFile struct {
	Cities map[string]string `yaml:"cities"`
}

// Directory maps normalised venue names to their host city.
type Directory struct {
	cities map[string]string
}

// Default returns the built-in directory.
func Default() *Directory {
	d, err := parse(defaultCities)
	if err != nil {
		panic(fmt.Sprintf("venue: embedded cities.yaml: %v", err))
	}
	return d
}

// Load reads a YAML file of the form `cities: {venue: city}` and layers it
// over the built-in directory. An empty path returns Default.
func Load(path string) (*Directory, error) {
	d := Default()
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venues file: %w", err)
	}
	extra, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for v, c := range extra.cities {
		d.cities[v] = c
	}
	return d, nil
}

func parse(data []byte) (*Directory, error) {
	var f cityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse venues: %w", err)
	}
	d := &Directory{cities: make(map[string]string, len(f.Cities))}
	for v, c := range f.Cities {
		d.cities[Normalize(v)] = strings.TrimSpace(c)
	}
	return d, nil
}

// Len returns the number of venues in the directory.
func (d *Directory) Len() int { return len(d.cities) }

// City returns the host city of venue. A non-empty known city from the match
// file takes precedence over the directory.
func (d *Directory) City(venue, known string) string {
	if known = strings.TrimSpace(known); known != "" {
		return known
	}
	return d.cities[Normalize(venue)]
}

// Normalize cuts a venue name at its first comma, so that "Eden Park,
// Auckland" and "Eden Park" are the same ground.
func Normalize(name string) string {
	head, _, _ := strings.Cut(name, ",")
	return strings.TrimSpace(head)
}
