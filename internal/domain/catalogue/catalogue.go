package catalogue

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalogue []byte

// Catalogue is the immutable set of packages, ads and payment methods.
// Lookups go through id maps built once at construction.
type Catalogue struct {
	packages []Package
	ads      []Ad
	methods  []PaymentMethod

	packageByID map[string]Package
	adByID      map[string]Ad
	methodByID  map[string]PaymentMethod
}

// New validates the records and builds the id indexes.
func New(packages []Package, ads []Ad, methods []PaymentMethod) (*Catalogue, error) {
	c := &Catalogue{
		packages:    append([]Package(nil), packages...),
		ads:         append([]Ad(nil), ads...),
		methods:     append([]PaymentMethod(nil), methods...),
		packageByID: make(map[string]Package, len(packages)),
		adByID:      make(map[string]Ad, len(ads)),
		methodByID:  make(map[string]PaymentMethod, len(methods)),
	}

	for _, p := range packages {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("%w: package without id", ErrInvalidCatalogue)
		case p.Price <= 0:
			return nil, fmt.Errorf("%w: package %s has no price", ErrInvalidCatalogue, p.ID)
		case p.DailyAds <= 0:
			return nil, fmt.Errorf("%w: package %s has no daily ads", ErrInvalidCatalogue, p.ID)
		}
		if _, dup := c.packageByID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate package %s", ErrInvalidCatalogue, p.ID)
		}
		c.packageByID[p.ID] = p
	}

	for _, a := range ads {
		switch {
		case a.ID == "":
			return nil, fmt.Errorf("%w: ad without id", ErrInvalidCatalogue)
		case a.Reward <= 0:
			return nil, fmt.Errorf("%w: ad %s has no reward", ErrInvalidCatalogue, a.ID)
		case a.Duration <= 0:
			return nil, fmt.Errorf("%w: ad %s has no duration", ErrInvalidCatalogue, a.ID)
		}
		if _, dup := c.adByID[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate ad %s", ErrInvalidCatalogue, a.ID)
		}
		c.adByID[a.ID] = a
	}

	for _, m := range methods {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: payment method without id", ErrInvalidCatalogue)
		}
		if _, dup := c.methodByID[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate payment method %s", ErrInvalidCatalogue, m.ID)
		}
		c.methodByID[m.ID] = m
	}

	return c, nil
}

// Load reads a catalogue file. An empty path loads the built-in catalogue.
func Load(path string) (*Catalogue, error) {
	data := defaultCatalogue
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalogue %s: %w", path, err)
		}
		data = raw
	}
	return Parse(data)
}

// Default returns the built-in catalogue.
func Default() *Catalogue {
	c, err := Parse(defaultCatalogue)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes YAML catalogue data.
func Parse(data []byte) (*Catalogue, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalogue, err)
	}
	return New(f.Packages, f.Ads, f.PaymentMethods)
}

func (c *Catalogue) Package(id string) (Package, bool) {
	p, ok := c.packageByID[id]
	return p, ok
}

func (c *Catalogue) Ad(id string) (Ad, bool) {
	a, ok := c.adByID[id]
	return a, ok
}

func (c *Catalogue) PaymentMethod(id string) (PaymentMethod, bool) {
	m, ok := c.methodByID[id]
	return m, ok
}

// HasPaymentMethod is used as the payment_method validation tag.
func (c *Catalogue) HasPaymentMethod(id string) bool {
	_, ok := c.methodByID[id]
	return ok
}

func (c *Catalogue) Packages() []Package {
	return append([]Package(nil), c.packages...)
}

func (c *Catalogue) Ads() []Ad {
	return append([]Ad(nil), c.ads...)
}

func (c *Catalogue) PaymentMethods() []PaymentMethod {
	return append([]PaymentMethod(nil), c.methods...)
}
