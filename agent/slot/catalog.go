package slot

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DomainProfile = "profile"
	DomainSorting = "sorting"
)

var ErrSchemaNotFound = errors.New("schema not found")

//go:embed schemas.yaml
var catalogRaw []byte

type catalogFile struct {
	Schemas []struct {
		Domain string  `yaml:"domain"`
		Topic  string  `yaml:"topic"`
		Fields []Field `yaml:"fields"`
	} `yaml:"schemas"`
}

// Catalog indexes schemas by domain.
type Catalog struct {
	order   []string
	schemas map[string]*Schema
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode schema catalog: %w", err)
	}

	c := &Catalog{schemas: make(map[string]*Schema, len(file.Schemas))}
	for _, def := range file.Schemas {
		s, err := NewSchema(def.Domain, def.Topic, def.Fields)
		if err != nil {
			return nil, err
		}
		if _, dup := c.schemas[s.Domain()]; dup {
			return nil, fmt.Errorf("duplicate schema domain=%s", s.Domain())
		}
		c.schemas[s.Domain()] = s
		c.order = append(c.order, s.Domain())
	}
	return c, nil
}

func (c *Catalog) Schema(domain string) (*Schema, error) {
	s, ok := c.schemas[domain]
	if !ok {
		return nil, fmt.Errorf("%w: domain=%s", ErrSchemaNotFound, domain)
	}
	return s, nil
}

func (c *Catalog) Domains() []string {
	return append([]string(nil), c.order...)
}

var (
	defaultCatalog    *Catalog
	defaultCatalogErr error
	defaultOnce       sync.Once
)

// DefaultCatalog returns the embedded catalog. The embedded file is part of
// the build, so a parse failure is a programming error and panics.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = ParseCatalog(catalogRaw)
	})
	if defaultCatalogErr != nil {
		panic(defaultCatalogErr)
	}
	return defaultCatalog
}

func Profile() *Schema {
	s, _ := DefaultCatalog().Schema(DomainProfile)
	return s
}

func Sorting() *Schema {
	s, _ := DefaultCatalog().Schema(DomainSorting)
	return s
}
