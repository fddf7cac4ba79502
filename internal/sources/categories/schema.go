package categories

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one category in the YAML file. It accepts either a plain
// scalar ("books") or a mapping with name and label.
type Entry struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// UnmarshalYAML implements the scalar shorthand.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		e.Name = node.Value
		return nil
	case yaml.MappingNode:
		type plain Entry
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*e = Entry(p)
		return nil
	default:
		return fmt.Errorf("line %d: category must be a name or a {name, label} mapping", node.Line)
	}
}

// File is the root structure of categories.yaml:
//
//	categories:
//	  - books
//	  - name: home
//	    label: Home & Kitchen
type File struct {
	Categories []Entry `yaml:"categories"`
}
