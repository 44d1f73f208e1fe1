package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of a scenario (.yaml, .yml or .json).
//
//	name: corp-small
//	systems:
//	  - name: EMP-LAPTOP
//	    os: Windows 10
//	    services: [browser]
//	    credentials: [emp@corp]
//	    privilege: user
//	links:
//	  - a: EMP-LAPTOP
//	    b: FILE-SRV
//	    allow_ab: [SMB, HTTP]
//	    allow_ba: [HTTP]
//	exploits:
//	  - name: CVE-2020-0796-SMBGhost
//	    service: SMB
//	    requires_privilege: user
//	    grants_privilege: admin
//	    reuse: once_per_system
type Document struct {
	Name     string       `yaml:"name" json:"name"`
	Systems  []SystemDoc  `yaml:"systems" json:"systems"`
	Routes   []RouteDoc   `yaml:"routes,omitempty" json:"routes,omitempty"`
	Links    []LinkDoc    `yaml:"links,omitempty" json:"links,omitempty"`
	Exploits []ExploitDoc `yaml:"exploits" json:"exploits"`
}

// SystemDoc describes one system.
type SystemDoc struct {
	Name        string   `yaml:"name" json:"name"`
	OS          string   `yaml:"os" json:"os"`
	Services    []string `yaml:"services,omitempty" json:"services,omitempty"`
	Credentials []string `yaml:"credentials,omitempty" json:"credentials,omitempty"`
	Privilege   string   `yaml:"privilege,omitempty" json:"privilege,omitempty"`
}

// RouteDoc describes a one-way route. Routes keep their declaration order.
type RouteDoc struct {
	From  string   `yaml:"from" json:"from"`
	To    string   `yaml:"to" json:"to"`
	Allow []string `yaml:"allow" json:"allow"`
}

// LinkDoc describes a pair of routes between A and B. Links are applied after
// routes and re-sort each endpoint's routes by destination name.
type LinkDoc struct {
	A       string   `yaml:"a" json:"a"`
	B       string   `yaml:"b" json:"b"`
	AllowAB []string `yaml:"allow_ab" json:"allow_ab"`
	AllowBA []string `yaml:"allow_ba" json:"allow_ba"`
}

// ExploitDoc describes one exploit. An empty Service makes it local.
type ExploitDoc struct {
	Name              string `yaml:"name" json:"name"`
	Service           string `yaml:"service,omitempty" json:"service,omitempty"`
	RequiresPrivilege string `yaml:"requires_privilege,omitempty" json:"requires_privilege,omitempty"`
	OSContains        string `yaml:"os_contains,omitempty" json:"os_contains,omitempty"`
	RequiresCredTag   string `yaml:"requires_cred_tag,omitempty" json:"requires_cred_tag,omitempty"`
	GrantsPrivilege   string `yaml:"grants_privilege,omitempty" json:"grants_privilege,omitempty"`
	LootsCredentials  bool   `yaml:"loots_credentials,omitempty" json:"loots_credentials,omitempty"`
	Reuse             string `yaml:"reuse,omitempty" json:"reuse,omitempty"`
	Limit             int    `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Format is a scenario document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath detects the document format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported scenario format: %s (supported: .json, .yaml, .yml)", filepath.Ext(path))
	}
}

// Load reads and builds the scenario stored at path.
// The format is detected by file extension.
func Load(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a scenario document and builds it.
func Parse(data []byte, format Format) (*Scenario, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON scenario: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML scenario: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format: %q", format)
	}
	return doc.Build()
}

// Build converts the document into a Scenario.
func (d *Document) Build() (*Scenario, error) {
	b := NewBuilder(d.Name)

	for _, sd := range d.Systems {
		priv, err := ParsePrivilege(sd.Privilege)
		if err != nil {
			return nil, fmt.Errorf("system %q: %w", sd.Name, err)
		}
		b.AddSystem(&System{
			Name:             sd.Name,
			OS:               sd.OS,
			Services:         append([]string(nil), sd.Services...),
			Credentials:      append([]string(nil), sd.Credentials...),
			InitialPrivilege: priv,
		})
	}
	for _, rd := range d.Routes {
		b.Route(rd.From, rd.To, rd.Allow...)
	}
	for _, ld := range d.Links {
		b.Link(ld.A, ld.B, ld.AllowAB, ld.AllowBA)
	}
	for _, ed := range d.Exploits {
		ex, err := ed.exploit()
		if err != nil {
			return nil, fmt.Errorf("exploit %q: %w", ed.Name, err)
		}
		b.AddExploit(ex)
	}

	return b.Build()
}

func (ed ExploitDoc) exploit() (*Exploit, error) {
	need, err := ParsePrivilege(ed.RequiresPrivilege)
	if err != nil {
		return nil, err
	}
	grant, err := ParsePrivilege(ed.GrantsPrivilege)
	if err != nil {
		return nil, err
	}
	kind, err := ParseReuseKind(ed.Reuse)
	if err != nil {
		return nil, err
	}

	access := Local()
	if ed.Service != "" {
		access = Lateral(ed.Service)
	}

	reuse := ReusePolicy{Kind: kind}
	if kind == ReuseLimited {
		reuse.Limit = ed.Limit
	}

	return &Exploit{
		Name:              ed.Name,
		Access:            access,
		RequiredPrivilege: need,
		OSContains:        ed.OSContains,
		RequiredCredTag:   ed.RequiresCredTag,
		GrantsPrivilege:   grant,
		LootsCredentials:  ed.LootsCredentials,
		Reuse:             reuse,
	}, nil
}

// ToDocument renders a scenario back into its document form. Routes are
// emitted one-way in stored order so the rebuilt scenario searches identically.
func ToDocument(sc *Scenario) *Document {
	doc := &Document{Name: sc.Name()}

	for _, s := range sc.Systems() {
		doc.Systems = append(doc.Systems, SystemDoc{
			Name:        s.Name,
			OS:          s.OS,
			Services:    append([]string(nil), s.Services...),
			Credentials: append([]string(nil), s.Credentials...),
			Privilege:   s.InitialPrivilege.String(),
		})
		for _, r := range s.Routes {
			doc.Routes = append(doc.Routes, RouteDoc{
				From:  r.From.Name,
				To:    r.To.Name,
				Allow: append([]string(nil), r.Allow...),
			})
		}
	}

	for _, e := range sc.Exploits() {
		ed := ExploitDoc{
			Name:              e.Name,
			Service:           e.Access.Service,
			RequiresPrivilege: e.RequiredPrivilege.String(),
			OSContains:        e.OSContains,
			RequiresCredTag:   e.RequiredCredTag,
			LootsCredentials:  e.LootsCredentials,
			Reuse:             e.Reuse.Kind.String(),
		}
		if e.GrantsPrivilege != PrivNone {
			ed.GrantsPrivilege = e.GrantsPrivilege.String()
		}
		if e.Reuse.Kind == ReuseLimited {
			ed.Limit = e.Reuse.Limit
		}
		doc.Exploits = append(doc.Exploits, ed)
	}

	return doc
}

// Marshal encodes the scenario as a document in the given format.
func Marshal(sc *Scenario, format Format) ([]byte, error) {
	doc := ToDocument(sc)
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported scenario format: %q", format)
	}
}
