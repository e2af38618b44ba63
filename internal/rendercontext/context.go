// Package rendercontext defines the data a contract template is rendered
// against and converts it to the plain map the engine reads.
package rendercontext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidContext = errors.New("invalid render context")

type Client struct {
	FullName  string `json:"fullName,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
}

type Organization struct {
	Name            string `json:"name"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	ZipCode         string `json:"zipCode,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	Siret           string `json:"siret,omitempty"`
	ManagerFullName string `json:"managerFullName,omitempty"`
	ManagerInitials string `json:"managerInitials,omitempty"`
}

type Package struct {
	Name       string  `json:"name"`
	NumDresses int     `json:"numDresses"`
	PriceHT    float64 `json:"priceHT"`
	PriceTTC   float64 `json:"priceTTC"`
}

// Contract amounts are raw numbers; formatting happens in the currency helper.
type Contract struct {
	Number       string   `json:"number"`
	Type         string   `json:"type,omitempty"`
	Status       string   `json:"status,omitempty"`
	TotalTTC     float64  `json:"totalTTC"`
	TotalHT      float64  `json:"totalHT"`
	TotalDeposit float64  `json:"totalDeposit"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Package      *Package `json:"package,omitempty"`
}

// Signature is only present once the contract has been signed.
type Signature struct {
	Method    string `json:"method,omitempty"`
	Date      string `json:"date,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
}

type Dress struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Reference   string  `json:"reference,omitempty"`
	Size        string  `json:"size,omitempty"`
	Color       string  `json:"color,omitempty"`
	PricePerDay float64 `json:"pricePerDay"`
	Quantity    int     `json:"quantity"`
	Days        int     `json:"days"`
	Subtotal    float64 `json:"subtotal"`
}

type Addon struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type PackageLine struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// Context is one contract snapshot as pushed by the host application.
type Context struct {
	Client    Client        `json:"client"`
	Org       Organization  `json:"org"`
	Contract  Contract      `json:"contract"`
	Signature *Signature    `json:"signature,omitempty"`
	Dresses   []Dress       `json:"dresses,omitempty"`
	Addons    []Addon       `json:"addons,omitempty"`
	Packages  []PackageLine `json:"packages,omitempty"`
}

// RootKeys are the top-level names a template can reference.
func RootKeys() []string {
	return []string{"client", "org", "contract", "signature", "dresses", "addons", "packages"}
}

// FromJSON decodes and validates a context snapshot. Monetary fields must be
// JSON numbers: a preformatted "1 234,50 €" string is rejected.
func FromJSON(data []byte) (*Context, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var c Context
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the fields templates depend on.
func (c *Context) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Contract.Number) == "" {
		problems = append(problems, "contract.number is required")
	}
	if strings.TrimSpace(c.Org.Name) == "" {
		problems = append(problems, "org.name is required")
	}

	finite := func(path string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, path+" must be a finite number")
		}
	}
	nonNegative := func(path string, n int) {
		if n < 0 {
			problems = append(problems, path+" must not be negative")
		}
	}

	finite("contract.totalTTC", c.Contract.TotalTTC)
	finite("contract.totalHT", c.Contract.TotalHT)
	finite("contract.totalDeposit", c.Contract.TotalDeposit)
	if p := c.Contract.Package; p != nil {
		finite("contract.package.priceHT", p.PriceHT)
		finite("contract.package.priceTTC", p.PriceTTC)
		nonNegative("contract.package.numDresses", p.NumDresses)
	}
	for i, d := range c.Dresses {
		prefix := fmt.Sprintf("dresses.%d.", i)
		finite(prefix+"pricePerDay", d.PricePerDay)
		finite(prefix+"subtotal", d.Subtotal)
		nonNegative(prefix+"quantity", d.Quantity)
		nonNegative(prefix+"days", d.Days)
	}
	for i, a := range c.Addons {
		prefix := fmt.Sprintf("addons.%d.", i)
		finite(prefix+"price", a.Price)
		finite(prefix+"subtotal", a.Subtotal)
		nonNegative(prefix+"quantity", a.Quantity)
	}
	for i, p := range c.Packages {
		prefix := fmt.Sprintf("packages.%d.", i)
		finite(prefix+"price", p.Price)
		finite(prefix+"subtotal", p.Subtotal)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidContext, strings.Join(problems, "; "))
	}
	return nil
}

// ToMap converts the context to the map[string]any tree the engine resolves
// paths against. Numbers become float64.
func (c *Context) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render context: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal render context: %w", err)
	}
	return out, nil
}
