// Package content loads the static course dataset: circuit templates,
// quiz question pools and the course sections whose items are tracked.
package content

import "github.com/p-n-ai/apprentice/internal/catalogue"

// Section is a course page made of trackable items.
type Section struct {
	ID     string   `yaml:"id" json:"id"`
	Title  string   `yaml:"title" json:"title"`
	Course string   `yaml:"course" json:"course"`
	Items  []string `yaml:"items" json:"items"`
}

type templatesFile struct {
	Templates []catalogue.CircuitTemplate `yaml:"templates"`
}

type sectionsFile struct {
	Sections []Section `yaml:"sections"`
}
